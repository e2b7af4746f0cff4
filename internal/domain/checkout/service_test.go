// internal/domain/checkout/service_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/tax"
)

func physicalCart() *cart.Cart {
	widget := &product.Product{
		Name:        "Widget",
		ProductType: product.ProductTypePhysical,
		Weight:      2000,
		IsTaxable:   true,
	}
	ebook := &product.Product{
		Name:        "Field Guide",
		ProductType: product.ProductTypeDigital,
		IsTaxable:   true,
	}
	return &cart.Cart{
		Items: []cart.CartItem{
			{ID: 1, Price: 2500, Quantity: 2, Product: widget},
			{ID: 2, Price: 1000, Quantity: 1, Product: ebook},
		},
		Subtotal: 6000,
	}
}

func TestBuildLineItemsWithSyntheticLines(t *testing.T) {
	userCart := physicalCart()
	quote := shipping.Quote{Rate: 1400, ZoneName: "domestic"}
	taxResult := tax.Result{Amount: 1080, Inclusive: false}

	lineItems := buildLineItems(userCart, quote, taxResult)

	assert.Len(t, lineItems, 4)
	assert.Equal(t, payment.LineItem{Name: "Widget", UnitAmount: 2500, Quantity: 2}, lineItems[0])
	assert.Equal(t, payment.LineItem{Name: "Field Guide", UnitAmount: 1000, Quantity: 1}, lineItems[1])
	assert.Equal(t, payment.LineItem{Name: "Shipping (domestic)", UnitAmount: 1400, Quantity: 1}, lineItems[2])
	assert.Equal(t, payment.LineItem{Name: "Tax", UnitAmount: 1080, Quantity: 1}, lineItems[3])
}

func TestBuildLineItemsSkipsZeroShipping(t *testing.T) {
	lineItems := buildLineItems(physicalCart(), shipping.Quote{Rate: 0}, tax.Result{Amount: 0})
	assert.Len(t, lineItems, 2)
}

func TestBuildLineItemsSkipsInclusiveTax(t *testing.T) {
	lineItems := buildLineItems(physicalCart(), shipping.Quote{}, tax.Result{Amount: 1080, Inclusive: true})
	assert.Len(t, lineItems, 2)
}

func TestBuildLineItemsVariantName(t *testing.T) {
	prod := &product.Product{Name: "Shirt", ProductType: product.ProductTypePhysical}
	userCart := &cart.Cart{
		Items: []cart.CartItem{
			{Price: 3000, Quantity: 1, Product: prod, Variant: &product.ProductVariant{Name: "Large"}},
		},
	}

	lineItems := buildLineItems(userCart, shipping.Quote{}, tax.Result{})
	assert.Equal(t, "Shirt (Large)", lineItems[0].Name)
}

func TestShippingItemsMapping(t *testing.T) {
	override := int64(300)
	userCart := &cart.Cart{
		Items: []cart.CartItem{
			{Quantity: 2, Product: &product.Product{
				ProductType:          product.ProductTypePhysical,
				Weight:               1500,
				LengthCm:             20,
				WidthCm:              10,
				HeightCm:             5,
				ShippingRateOverride: &override,
			}},
			{Quantity: 1, Product: &product.Product{ProductType: product.ProductTypeGiftCard}},
		},
	}

	items := shippingItems(userCart)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(1500), items[0].WeightGrams)
	assert.Equal(t, &override, items[0].RateOverride)
	assert.False(t, items[0].Digital)
	assert.True(t, items[1].Digital)
}

func TestTaxItemsMapping(t *testing.T) {
	reduced := int64(500)
	userCart := &cart.Cart{
		Items: []cart.CartItem{
			{Price: 2500, Quantity: 2, Product: &product.Product{IsTaxable: true, TaxRateOverrideBps: &reduced}},
			{Price: 1000, Quantity: 1, Product: &product.Product{IsTaxable: false}},
		},
	}

	items := taxItems(userCart)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(5000), items[0].LineTotal)
	assert.Equal(t, &reduced, items[0].OverrideBps)
	assert.False(t, items[1].Taxable)
}

func TestCartHasCategory(t *testing.T) {
	userCart := &cart.Cart{
		Items: []cart.CartItem{
			{Product: &product.Product{Category: "books"}},
		},
	}

	assert.True(t, cartHasCategory(userCart, "books"))
	assert.False(t, cartHasCategory(userCart, "electronics"))
}

func TestCartIsDigitalOnly(t *testing.T) {
	digital := &cart.Cart{
		Items: []cart.CartItem{
			{Product: &product.Product{ProductType: product.ProductTypeDigital}},
			{Product: &product.Product{ProductType: product.ProductTypeGiftCard}},
		},
	}
	assert.True(t, cartIsDigitalOnly(digital))
	assert.False(t, cartIsDigitalOnly(physicalCart()))

	// A line missing its product snapshot counts as physical
	unknown := &cart.Cart{Items: []cart.CartItem{{Product: nil}}}
	assert.False(t, cartIsDigitalOnly(unknown))
}

func TestTaxableAmount(t *testing.T) {
	assert.Equal(t, int64(0), taxableAmount(tax.Result{Amount: 900, Inclusive: true}))
	assert.Equal(t, int64(900), taxableAmount(tax.Result{Amount: 900, Inclusive: false}))
}

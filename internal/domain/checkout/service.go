// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
)

// Service builds payment provider checkout sessions from carts
type Service struct {
	config         *config.Config
	cartService    *cart.Service
	couponService  *coupon.Service
	addressService *user.AddressService
	paymentClient  *payment.Client
	shippingCalc   *shipping.Calculator
	taxCalc        *tax.Calculator
	logger         *logrus.Logger
}

// NewService creates a new checkout service
func NewService(cfg *config.Config, cartService *cart.Service, couponService *coupon.Service, addressService *user.AddressService, paymentClient *payment.Client, logger *logrus.Logger) *Service {
	return &Service{
		config:         cfg,
		cartService:    cartService,
		couponService:  couponService,
		addressService: addressService,
		paymentClient:  paymentClient,
		shippingCalc:   shipping.NewCalculator(cfg.Shipping.FreeShippingThreshold, cfg.Shipping.DimensionalDivisor),
		taxCalc:        tax.NewCalculator(cfg.Tax.DefaultRateBps, cfg.Tax.ShippingTaxable, cfg.Tax.Inclusive),
		logger:         logger,
	}
}

// CreateSessionRequest represents checkout initiation data
type CreateSessionRequest struct {
	AddressID  *uint  `json:"address_id"`
	CouponCode string `json:"coupon_code"`
}

// SessionResponse carries the provider redirect
type SessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateSession builds a provider checkout session for the user's cart. The
// session metadata carries everything fulfillment needs so the webhook
// handler never depends on state that may change between now and payment.
func (s *Service) CreateSession(ctx context.Context, userID uint, req *CreateSessionRequest) (*SessionResponse, error) {
	userCart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty")
	}

	digitalOnly := true
	for _, line := range userCart.Items {
		if line.Product == nil {
			return nil, fmt.Errorf("cart line %d references a missing product", line.ID)
		}
		if !line.Product.IsDigitalDelivery() {
			digitalOnly = false
		}
	}

	var shippingAddress *user.Address
	if !digitalOnly {
		if req.AddressID == nil {
			return nil, fmt.Errorf("shipping address is required for physical items")
		}
		shippingAddress, err = s.addressService.GetAddress(userID, *req.AddressID)
		if err != nil {
			return nil, err
		}
	}

	subtotal := userCart.Subtotal

	// Explicit coupon beats the one attached to the cart
	couponCode := coupon.NormalizeCode(req.CouponCode)
	if couponCode == "" {
		couponCode = userCart.AppliedCoupon
	}

	var appliedCoupon *coupon.Coupon
	if couponCode != "" {
		result, err := s.couponService.Validate(couponCode, subtotal, userID)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, fmt.Errorf("coupon %s: %s", couponCode, result.Reason)
		}
		appliedCoupon = result.Coupon

		if appliedCoupon.Category != "" && !cartHasCategory(userCart, appliedCoupon.Category) {
			return nil, fmt.Errorf("coupon %s: no eligible items in cart", couponCode)
		}
	}

	discountID, err := s.ensureProviderCoupon(ctx, appliedCoupon)
	if err != nil {
		return nil, err
	}

	var shippingQuote shipping.Quote
	if !digitalOnly {
		freeShipping := appliedCoupon != nil && appliedCoupon.Type == coupon.TypeFreeShipping
		shippingQuote = s.shippingCalc.Calculate(shippingAddress.Country, shippingItems(userCart), subtotal, freeShipping)
	}

	taxResult := s.taxCalc.Calculate(taxItems(userCart), shippingQuote.Rate)

	var discountAmount int64
	if appliedCoupon != nil {
		discountAmount = appliedCoupon.DiscountAmount(subtotal)
	}

	lineItems := buildLineItems(userCart, shippingQuote, taxResult)

	metadata := map[string]string{
		order.MetaUserID:         strconv.FormatUint(uint64(userID), 10),
		order.MetaDigitalOnly:    strconv.FormatBool(digitalOnly),
		order.MetaShippingAmount: strconv.FormatInt(shippingQuote.Rate, 10),
		order.MetaTaxAmount:      strconv.FormatInt(taxableAmount(taxResult), 10),
		order.MetaDiscountAmount: strconv.FormatInt(discountAmount, 10),
	}
	if couponCode != "" {
		metadata[order.MetaCouponCode] = couponCode
	}
	if shippingAddress != nil {
		serialized, err := json.Marshal(shippingAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize shipping address: %w", err)
		}
		metadata[order.MetaAddress] = string(serialized)
	}

	session, err := s.paymentClient.CreateCheckoutSession(ctx, &payment.CreateSessionRequest{
		LineItems:  lineItems,
		DiscountID: discountID,
		Metadata:   metadata,
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckoutSessionsCreated.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
		"subtotal":   subtotal,
		"shipping":   shippingQuote.Rate,
	}).Info("checkout session created")

	return &SessionResponse{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

// QuoteRequest represents pre-checkout quote data
type QuoteRequest struct {
	AddressID  uint   `json:"address_id"`
	CouponCode string `json:"coupon_code"`
}

// QuoteShipping prices shipping for the current cart and a destination
// without creating a session. An all-digital cart quotes zero.
func (s *Service) QuoteShipping(ctx context.Context, userID uint, req *QuoteRequest) (*shipping.Quote, error) {
	userCart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty")
	}

	if cartIsDigitalOnly(userCart) {
		return &shipping.Quote{}, nil
	}
	if req.AddressID == 0 {
		return nil, fmt.Errorf("shipping address is required for physical items")
	}

	shippingAddress, err := s.addressService.GetAddress(userID, req.AddressID)
	if err != nil {
		return nil, err
	}

	freeShipping := false
	if code := coupon.NormalizeCode(req.CouponCode); code != "" {
		result, err := s.couponService.Validate(code, userCart.Subtotal, userID)
		if err != nil {
			return nil, err
		}
		freeShipping = result.Valid && result.Coupon.Type == coupon.TypeFreeShipping
	}

	quote := s.shippingCalc.Calculate(shippingAddress.Country, shippingItems(userCart), userCart.Subtotal, freeShipping)
	return &quote, nil
}

// QuoteTax computes the tax for the current cart. When an address is given
// the shipping rate for that destination feeds the shipping-taxable rule.
func (s *Service) QuoteTax(ctx context.Context, userID uint, req *QuoteRequest) (*tax.Result, error) {
	userCart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty")
	}

	var shippingRate int64
	if req.AddressID != 0 && !cartIsDigitalOnly(userCart) {
		shippingAddress, err := s.addressService.GetAddress(userID, req.AddressID)
		if err != nil {
			return nil, err
		}
		quote := s.shippingCalc.Calculate(shippingAddress.Country, shippingItems(userCart), userCart.Subtotal, false)
		shippingRate = quote.Rate
	}

	result := s.taxCalc.Calculate(taxItems(userCart), shippingRate)
	return &result, nil
}

// ensureProviderCoupon returns the provider discount object id for a
// discounting coupon, minting a replacement when the local record has none.
// A failed mint aborts the checkout: skipping the discount silently would
// either overcharge the customer or not honor the advertised price.
func (s *Service) ensureProviderCoupon(ctx context.Context, coup *coupon.Coupon) (string, error) {
	if coup == nil || !coup.NeedsProviderCoupon() {
		return "", nil
	}
	if coup.ProviderCouponID != "" {
		return coup.ProviderCouponID, nil
	}

	var percentOff, amountOff int64
	if coup.Type == coupon.TypePercentage {
		percentOff = coup.Value
	} else {
		amountOff = coup.Value
	}

	providerID, err := s.paymentClient.CreateCoupon(ctx, coup.Code, percentOff, amountOff)
	if err != nil {
		return "", fmt.Errorf("failed to recreate provider coupon %s: %w", coup.Code, err)
	}

	// Persist only after the provider call succeeded
	if err := s.couponService.SetProviderCouponID(coup.ID, providerID); err != nil {
		return "", err
	}

	metrics.CouponSelfHeals.Inc()
	s.logger.WithFields(logrus.Fields{
		"coupon_code":        coup.Code,
		"provider_coupon_id": providerID,
	}).Warn("provider coupon was missing, recreated")

	return providerID, nil
}

func cartIsDigitalOnly(userCart *cart.Cart) bool {
	for _, line := range userCart.Items {
		if line.Product == nil || !line.Product.IsDigitalDelivery() {
			return false
		}
	}
	return true
}

func cartHasCategory(userCart *cart.Cart, category string) bool {
	for _, line := range userCart.Items {
		if line.Product != nil && line.Product.Category == category {
			return true
		}
	}
	return false
}

// shippingItems maps cart lines to the shipping calculator's input
func shippingItems(userCart *cart.Cart) []shipping.Item {
	items := make([]shipping.Item, 0, len(userCart.Items))
	for _, line := range userCart.Items {
		prod := line.Product
		items = append(items, shipping.Item{
			WeightGrams:  prod.Weight,
			LengthCm:     prod.LengthCm,
			WidthCm:      prod.WidthCm,
			HeightCm:     prod.HeightCm,
			Quantity:     line.Quantity,
			RateOverride: prod.ShippingRateOverride,
			FreeShipping: prod.IsFreeShipping,
			Digital:      prod.IsDigitalDelivery(),
		})
	}
	return items
}

// taxItems maps cart lines to the tax calculator's input
func taxItems(userCart *cart.Cart) []tax.Item {
	items := make([]tax.Item, 0, len(userCart.Items))
	for _, line := range userCart.Items {
		prod := line.Product
		items = append(items, tax.Item{
			LineTotal:   line.LineTotal(),
			Taxable:     prod.IsTaxable,
			OverrideBps: prod.TaxRateOverrideBps,
		})
	}
	return items
}

// buildLineItems produces the provider line items: one per cart entry at its
// locked-in unit price, plus synthetic lines for non-zero shipping and
// non-zero non-inclusive tax
func buildLineItems(userCart *cart.Cart, shippingQuote shipping.Quote, taxResult tax.Result) []payment.LineItem {
	lineItems := make([]payment.LineItem, 0, len(userCart.Items)+2)
	for _, line := range userCart.Items {
		name := line.Product.Name
		if line.Variant != nil {
			name = fmt.Sprintf("%s (%s)", name, line.Variant.Name)
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:       name,
			UnitAmount: line.Price,
			Quantity:   line.Quantity,
		})
	}

	if shippingQuote.Rate > 0 {
		lineItems = append(lineItems, payment.LineItem{
			Name:       fmt.Sprintf("Shipping (%s)", shippingQuote.ZoneName),
			UnitAmount: shippingQuote.Rate,
			Quantity:   1,
		})
	}

	if taxResult.Amount > 0 && !taxResult.Inclusive {
		lineItems = append(lineItems, payment.LineItem{
			Name:       "Tax",
			UnitAmount: taxResult.Amount,
			Quantity:   1,
		})
	}

	return lineItems
}

// taxableAmount is the tax carried into metadata; inclusive tax was never
// added to the total so fulfillment must not see it either
func taxableAmount(taxResult tax.Result) int64 {
	if taxResult.Inclusive {
		return 0
	}
	return taxResult.Amount
}

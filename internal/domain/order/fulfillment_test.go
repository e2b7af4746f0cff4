// internal/domain/order/fulfillment_test.go
package order

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestResolveAmountsExplicitSplit(t *testing.T) {
	metadata := map[string]string{
		MetaShippingAmount: "1400",
		MetaTaxAmount:      "900",
		MetaDiscountAmount: "250",
	}

	subtotal, shipping, tax, discount := resolveAmounts(metadata, 7050, 5000)
	assert.Equal(t, int64(4750), subtotal)
	assert.Equal(t, int64(1400), shipping)
	assert.Equal(t, int64(900), tax)
	assert.Equal(t, int64(250), discount)
}

func TestResolveAmountsDiscountKeepsTotalsConsistent(t *testing.T) {
	// Discounted order: the stored subtotal is net of the discount so the
	// captured total always equals subtotal + shipping + tax
	metadata := map[string]string{
		MetaShippingAmount: "1400",
		MetaTaxAmount:      "900",
		MetaDiscountAmount: "500",
	}
	captured := int64(6800)

	subtotal, shipping, tax, discount := resolveAmounts(metadata, captured, 5000)
	assert.Equal(t, int64(4500), subtotal)
	assert.Equal(t, int64(500), discount)
	assert.Equal(t, captured, subtotal+shipping+tax)
}

func TestResolveAmountsDiscountNeverExceedsSubtotal(t *testing.T) {
	metadata := map[string]string{
		MetaShippingAmount: "0",
		MetaTaxAmount:      "0",
		MetaDiscountAmount: "9000",
	}

	subtotal, _, _, _ := resolveAmounts(metadata, 0, 5000)
	assert.Equal(t, int64(0), subtotal)
}

func TestResolveAmountsFallbackAttributesGapToShipping(t *testing.T) {
	subtotal, shipping, tax, discount := resolveAmounts(map[string]string{}, 6400, 5000)
	assert.Equal(t, int64(5000), subtotal)
	assert.Equal(t, int64(1400), shipping)
	assert.Equal(t, int64(0), tax)
	assert.Equal(t, int64(0), discount)
}

func TestResolveAmountsFallbackNeverNegative(t *testing.T) {
	// Captured below subtotal (discounted order without the metadata split)
	_, shipping, tax, _ := resolveAmounts(map[string]string{}, 4500, 5000)
	assert.Equal(t, int64(0), shipping)
	assert.Equal(t, int64(0), tax)
}

func TestResolveAmountsRejectsGarbage(t *testing.T) {
	metadata := map[string]string{
		MetaShippingAmount: "not-a-number",
		MetaTaxAmount:      "-5",
	}

	_, shipping, tax, _ := resolveAmounts(metadata, 6400, 5000)
	assert.Equal(t, int64(1400), shipping)
	assert.Equal(t, int64(0), tax)
}

func TestIsDuplicateOrderError(t *testing.T) {
	assert.False(t, isDuplicateOrderError(nil))
	assert.False(t, isDuplicateOrderError(errors.New("connection reset")))
	assert.True(t, isDuplicateOrderError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateOrderError(fmt.Errorf("failed to create order: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, isDuplicateOrderError(errors.New(`failed to create order: ERROR: duplicate key value violates unique constraint "idx_orders_order_number" (SQLSTATE 23505)`)))
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseUserID("")
	assert.Error(t, err)

	_, err = parseUserID("0")
	assert.Error(t, err)

	_, err = parseUserID("abc")
	assert.Error(t, err)
}

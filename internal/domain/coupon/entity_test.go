// internal/domain/coupon/entity_test.go
package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("save10"))
	assert.Equal(t, "SAVE10", NormalizeCode("  Save10 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

// The type literals are part of the JSON API; changing one breaks clients
func TestTypeLiterals(t *testing.T) {
	assert.Equal(t, Type("percentage"), TypePercentage)
	assert.Equal(t, Type("fixed"), TypeFixed)
	assert.Equal(t, Type("shipping"), TypeFreeShipping)
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     int64
	}{
		{
			name:     "percentage",
			coupon:   Coupon{Type: TypePercentage, Value: 10},
			subtotal: 2500,
			want:     250,
		},
		{
			name:     "percentage rounds down",
			coupon:   Coupon{Type: TypePercentage, Value: 10},
			subtotal: 999,
			want:     99,
		},
		{
			name:     "fixed",
			coupon:   Coupon{Type: TypeFixed, Value: 500},
			subtotal: 2500,
			want:     500,
		},
		{
			name:     "fixed capped at subtotal",
			coupon:   Coupon{Type: TypeFixed, Value: 5000},
			subtotal: 2500,
			want:     2500,
		},
		{
			name:     "free shipping discounts nothing",
			coupon:   Coupon{Type: TypeFreeShipping},
			subtotal: 2500,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.DiscountAmount(tt.subtotal))
		})
	}
}

func TestNeedsProviderCoupon(t *testing.T) {
	assert.True(t, (&Coupon{Type: TypePercentage}).NeedsProviderCoupon())
	assert.True(t, (&Coupon{Type: TypeFixed}).NeedsProviderCoupon())
	assert.False(t, (&Coupon{Type: TypeFreeShipping}).NeedsProviderCoupon())
}

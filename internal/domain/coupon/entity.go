// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Type represents the discount mechanics of a coupon
type Type string

const (
	TypePercentage   Type = "percentage"
	TypeFixed        Type = "fixed"
	TypeFreeShipping Type = "shipping"
)

// Coupon represents the coupon entity. Codes are stored upper-cased and
// compared case-insensitively. ProviderCouponID references the discount
// object minted at the payment provider; it may lag behind local state and
// is re-created on demand during checkout.
type Coupon struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description string `gorm:"size:255" json:"description"`
	Type        Type   `gorm:"not null;size:20" json:"type"`
	Value       int64  `gorm:"not null" json:"value"` // Percent for percentage, cents for fixed

	MinPurchaseAmount int64  `gorm:"default:0" json:"min_purchase_amount"` // Cents, 0 = none
	Category          string `gorm:"size:100" json:"category"`             // Restricts to one product category when set

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	UsageLimit       int `gorm:"default:0" json:"usage_limit"`        // 0 = unlimited
	UsageCount       int `gorm:"default:0" json:"usage_count"`
	LimitPerCustomer int `gorm:"default:0" json:"limit_per_customer"` // 0 = unlimited

	IsActive         bool   `gorm:"default:true" json:"is_active"`
	ProviderCouponID string `gorm:"size:100" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CouponRedemption records one confirmed use of a coupon by a user. Rows are
// written at order creation, never at validation, so abandoned checkouts do
// not consume allowance.
type CouponRedemption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CouponID    uint      `gorm:"not null;index:idx_redemption_coupon_user,priority:1" json:"coupon_id"`
	UserID      uint      `gorm:"not null;index:idx_redemption_coupon_user,priority:2" json:"user_id"`
	OrderNumber string    `gorm:"not null;size:255" json:"order_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Coupon) TableName() string           { return "coupons" }
func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// BeforeCreate normalizes the code
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	c.Code = NormalizeCode(c.Code)
	return nil
}

// NormalizeCode upper-cases and trims a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountAmount computes the discount in cents against a subtotal. A
// free-shipping coupon discounts nothing here; it zeroes the shipping rate
// instead.
func (c *Coupon) DiscountAmount(subtotal int64) int64 {
	switch c.Type {
	case TypePercentage:
		return subtotal * c.Value / 100
	case TypeFixed:
		if c.Value > subtotal {
			return subtotal
		}
		return c.Value
	default:
		return 0
	}
}

// NeedsProviderCoupon reports whether checkout must reference a provider
// discount object for this coupon
func (c *Coupon) NeedsProviderCoupon() bool {
	return c.Type == TypePercentage || c.Type == TypeFixed
}

// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartItem represents one product line in a user's cart. Price is snapshotted
// at add time so the checkout total matches what the user saw.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"index" json:"variant_id,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // Unit price in cents at add time
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *product.Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant *product.ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal returns quantity times unit price
func (c *CartItem) LineTotal() int64 {
	return c.Price * int64(c.Quantity)
}

// Cart is the assembled view of a user's cart
type Cart struct {
	Items         []CartItem `json:"items"`
	Subtotal      int64      `json:"subtotal"`
	ItemCount     int        `json:"item_count"`
	AppliedCoupon string     `json:"applied_coupon,omitempty"`
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

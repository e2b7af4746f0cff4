// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

// validTransitions defines the allowed status moves. Digital-only orders are
// created directly in delivered and never pass through the shipping states.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

// CanTransitionTo reports whether a status move is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Order represents the order entity. OrderNumber equals the payment
// provider's session id verbatim and doubles as the fulfillment idempotency
// key. All item fields are snapshots: later product edits never change an
// existing order.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:255" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Status      Status `gorm:"not null;default:'pending';size:20;index" json:"status"`

	Subtotal       int64  `gorm:"not null" json:"subtotal"` // Cents, net of discount
	ShippingAmount int64  `gorm:"default:0" json:"shipping_amount"`
	TaxAmount      int64  `gorm:"default:0" json:"tax_amount"`
	DiscountAmount int64  `gorm:"default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"size:3;default:'usd'" json:"currency"`

	CouponCode        string `gorm:"size:50" json:"coupon_code,omitempty"`
	ShippingAddressID *uint  `json:"shipping_address_id,omitempty"`
	TrackingNumber    string `gorm:"size:100" json:"tracking_number,omitempty"`
	IsDigitalOnly     bool   `gorm:"default:false" json:"is_digital_only"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is one snapshotted line of an order
type OrderItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null" json:"product_id"`
	VariantID *uint `json:"variant_id,omitempty"`

	ProductName string `gorm:"not null;size:255" json:"product_name"`
	VariantName string `gorm:"size:255" json:"variant_name,omitempty"`
	SKU         string `gorm:"size:100" json:"sku"`
	ImageURL    string `gorm:"size:500" json:"image_url"`
	ProductType string `gorm:"size:20" json:"product_type"`

	UnitPrice  int64 `gorm:"not null" json:"unit_price"` // Cents, base plus variant adjustment
	Quantity   int   `gorm:"not null" json:"quantity"`
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	// Digital delivery
	DownloadCount int `gorm:"default:0" json:"download_count"`
	DownloadLimit int `gorm:"default:0" json:"download_limit"` // 0 = unlimited

	// Gift cards
	GiftCardCode string `gorm:"size:30;index" json:"gift_card_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderStatusHistory records each status change for auditing
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null;size:20" json:"status"`
	Comment   string    `gorm:"size:500" json:"comment,omitempty"`
	ChangedBy uint      `json:"changed_by,omitempty"` // 0 = system
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// IsDigital reports whether the item needs no physical shipping
func (i *OrderItem) IsDigital() bool {
	return i.ProductType == "digital" || i.ProductType == "gift_card"
}

// CanDownload reports whether another download is allowed
func (i *OrderItem) CanDownload() bool {
	if !i.IsDigital() {
		return false
	}
	return i.DownloadLimit == 0 || i.DownloadCount < i.DownloadLimit
}

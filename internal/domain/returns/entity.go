// internal/domain/returns/entity.go
package returns

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the return request status
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusRefunded Status = "refunded"
)

// validTransitions defines the allowed return status moves
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRefunded},
	StatusRejected: {},
	StatusRefunded: {},
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

// ReturnRequest represents a customer's request to return delivered items
type ReturnRequest struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"not null;index" json:"order_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Status  Status `gorm:"not null;default:'pending';size:20" json:"status"`

	Reason       string `gorm:"size:500;not null" json:"reason"`
	PhotoURLs    string `gorm:"size:2000" json:"photo_urls,omitempty"` // Comma-separated
	RefundMethod string `gorm:"size:30;default:'original_payment'" json:"refund_method"`
	AdminComment string `gorm:"size:500" json:"admin_comment,omitempty"`
	RefundAmount int64  `gorm:"default:0" json:"refund_amount"` // Cents, set on approval

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []ReturnItem `gorm:"foreignKey:ReturnRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// ReturnItem is one order line included in a return
type ReturnItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReturnRequestID uint      `gorm:"not null;index" json:"return_request_id"`
	OrderItemID     uint      `gorm:"not null" json:"order_item_id"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	Reason          string    `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName overrides
func (ReturnRequest) TableName() string { return "return_requests" }
func (ReturnItem) TableName() string    { return "return_items" }

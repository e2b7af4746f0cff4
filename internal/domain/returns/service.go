// internal/domain/returns/service.go
package returns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Service handles return request logic
type Service struct {
	db           *gorm.DB
	orderService *order.Service
	logger       *logrus.Logger
}

// NewService creates a new returns service
func NewService(db *gorm.DB, orderService *order.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:           db,
		orderService: orderService,
		logger:       logger,
	}
}

// CreateReturnRequest represents return initiation data
type CreateReturnRequest struct {
	OrderID      uint     `json:"order_id" binding:"required"`
	Reason       string   `json:"reason" binding:"required"`
	RefundMethod string   `json:"refund_method" binding:"omitempty,oneof=original_payment store_credit"`
	PhotoURLs    []string `json:"photo_urls"`
	Items        []struct {
		OrderItemID uint   `json:"order_item_id" binding:"required"`
		Quantity    int    `json:"quantity" binding:"required,min=1"`
		Reason      string `json:"reason"`
	} `json:"items" binding:"required,min=1"`
}

// Create opens a return request against a delivered order
func (s *Service) Create(userID uint, req *CreateReturnRequest) (*ReturnRequest, error) {
	ord, err := s.orderService.GetOrder(userID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if ord.Status != order.StatusDelivered {
		return nil, fmt.Errorf("only delivered orders can be returned")
	}

	var open int64
	err = s.db.Model(&ReturnRequest{}).
		Where("order_id = ? AND status IN ?", ord.ID, []Status{StatusPending, StatusApproved}).
		Count(&open).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check open returns: %w", err)
	}
	if open > 0 {
		return nil, fmt.Errorf("a return is already open for this order")
	}

	itemsByID := make(map[uint]*order.OrderItem, len(ord.Items))
	for i := range ord.Items {
		itemsByID[ord.Items[i].ID] = &ord.Items[i]
	}

	refundMethod := req.RefundMethod
	if refundMethod == "" {
		refundMethod = "original_payment"
	}

	request := ReturnRequest{
		OrderID:      ord.ID,
		UserID:       userID,
		Status:       StatusPending,
		Reason:       req.Reason,
		RefundMethod: refundMethod,
		PhotoURLs:    strings.Join(req.PhotoURLs, ","),
	}
	for _, line := range req.Items {
		ordered, ok := itemsByID[line.OrderItemID]
		if !ok {
			return nil, fmt.Errorf("order item %d does not belong to this order", line.OrderItemID)
		}
		if line.Quantity > ordered.Quantity {
			return nil, fmt.Errorf("cannot return more than the ordered quantity")
		}
		request.Items = append(request.Items, ReturnItem{
			OrderItemID: line.OrderItemID,
			Quantity:    line.Quantity,
			Reason:      line.Reason,
		})
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to create return request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"return_id": request.ID,
		"order_id":  ord.ID,
		"user_id":   userID,
	}).Info("return request created")

	return &request, nil
}

// ListForUser retrieves a user's return requests
func (s *Service) ListForUser(userID uint) ([]ReturnRequest, error) {
	var requests []ReturnRequest
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve return requests: %w", err)
	}
	return requests, nil
}

// ListAll retrieves return requests across all users, optionally by status
func (s *Service) ListAll(status string) ([]ReturnRequest, error) {
	query := s.db.Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []ReturnRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve return requests: %w", err)
	}
	return requests, nil
}

// Approve accepts a pending return and records the refund amount
func (s *Service) Approve(requestID uint, refundAmount int64, comment string) (*ReturnRequest, error) {
	return s.transition(requestID, StatusApproved, func(request *ReturnRequest) error {
		if refundAmount <= 0 {
			return fmt.Errorf("refund amount must be positive")
		}
		request.RefundAmount = refundAmount
		request.AdminComment = comment
		return nil
	})
}

// Reject declines a pending return
func (s *Service) Reject(requestID uint, comment string) (*ReturnRequest, error) {
	return s.transition(requestID, StatusRejected, func(request *ReturnRequest) error {
		request.AdminComment = comment
		return nil
	})
}

// MarkRefunded closes an approved return and moves the order to returned,
// which updates the order ledger through the order service
func (s *Service) MarkRefunded(requestID uint, changedBy uint) (*ReturnRequest, error) {
	request, err := s.transition(requestID, StatusRefunded, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.orderService.UpdateStatus(request.OrderID, order.StatusReturned, "return refunded", changedBy); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *Service) transition(requestID uint, target Status, mutate func(*ReturnRequest) error) (*ReturnRequest, error) {
	var request ReturnRequest
	if err := s.db.Preload("Items").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("return request not found")
		}
		return nil, fmt.Errorf("failed to retrieve return request: %w", err)
	}

	if !request.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("invalid return transition from %s to %s", request.Status, target)
	}

	request.Status = target
	if mutate != nil {
		if err := mutate(&request); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to update return request: %w", err)
	}
	return &request, nil
}

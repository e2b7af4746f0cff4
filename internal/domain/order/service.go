// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/pkg/cache"
	"github.com/your-org/storefront-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// Service handles order reads and status transitions
type Service struct {
	db            *gorm.DB
	config        *config.Config
	ledgerService *ledger.Service
	publisher     *events.Publisher
	invalidator   *cache.Invalidator
	logger        *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, ledgerService *ledger.Service, publisher *events.Publisher, invalidator *cache.Invalidator, logger *logrus.Logger) *Service {
	return &Service{
		db:            db,
		config:        cfg,
		ledgerService: ledgerService,
		publisher:     publisher,
		invalidator:   invalidator,
		logger:        logger,
	}
}

// GetOrder retrieves an order scoped to its owner
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Preload("StatusHistory").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// GetOrderByNumber retrieves an order by its provider session id
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// ListOrders retrieves a user's orders, newest first
func (s *Service) ListOrders(userID uint, page, limit int) ([]Order, int64, error) {
	query := s.db.Model(&Order{}).Where("user_id = ?", userID)
	return s.paginate(query, page, limit)
}

// AdminListOrdersRequest represents admin order listing filters
type AdminListOrdersRequest struct {
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// AdminListOrders retrieves orders across all users with filters
func (s *Service) AdminListOrders(req *AdminListOrdersRequest) ([]Order, int64, error) {
	query := s.db.Model(&Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	return s.paginate(query, req.Page, req.Limit)
}

func (s *Service) paginate(query *gorm.DB, page, limit int) ([]Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []Order
	offset := (page - 1) * limit
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status         Status `json:"status" binding:"required"`
	Comment        string `json:"comment"`
	TrackingNumber string `json:"tracking_number"`
}

// UpdateStatus moves an order to a new status. The base row, the audit
// history and the ledger entry change in one transaction.
func (s *Service) UpdateStatus(orderID uint, newStatus Status, comment string, changedBy uint) (*Order, error) {
	return s.updateStatus(orderID, newStatus, comment, "", changedBy)
}

// UpdateStatusWithTracking also records a carrier tracking number, normally
// alongside the move to shipped
func (s *Service) UpdateStatusWithTracking(orderID uint, req *UpdateStatusRequest, changedBy uint) (*Order, error) {
	return s.updateStatus(orderID, req.Status, req.Comment, req.TrackingNumber, changedBy)
}

func (s *Service) updateStatus(orderID uint, newStatus Status, comment, trackingNumber string, changedBy uint) (*Order, error) {
	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !ord.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("invalid status transition from %s to %s", ord.Status, newStatus)
	}

	oldStatus := ord.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": newStatus}
		if trackingNumber != "" {
			updates["tracking_number"] = trackingNumber
		}
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    newStatus,
			Comment:   comment,
			ChangedBy: changedBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		return s.ledgerService.Replace(tx, ledger.ScopeOrdersByStatus,
			ledger.OrderKey(ord.ID), string(newStatus), ord.TotalAmount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   ord.ID,
		"old_status": oldStatus,
		"new_status": newStatus,
		"changed_by": changedBy,
	}).Info("order status updated")

	s.publisher.Publish(events.SubjectOrderStatusChanged, map[string]interface{}{
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
		"old_status":   oldStatus,
		"new_status":   newStatus,
	})
	s.invalidator.Invalidate(cache.RecordKey("orders", ord.ID))

	ord.Status = newStatus
	if trackingNumber != "" {
		ord.TrackingNumber = trackingNumber
	}
	return &ord, nil
}

// RecordDownload increments the download counter on a digital order item
func (s *Service) RecordDownload(userID, orderID, itemID uint) (*OrderItem, error) {
	ord, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	var item *OrderItem
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			item = &ord.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("order item not found")
	}
	if !item.IsDigital() {
		return nil, fmt.Errorf("item is not a digital product")
	}

	// Guarded update so the limit holds under concurrent downloads
	query := s.db.Model(&OrderItem{}).Where("id = ?", item.ID)
	if item.DownloadLimit > 0 {
		query = query.Where("download_count < download_limit")
	}
	result := query.Update("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record download: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("download limit reached")
	}

	item.DownloadCount++
	return item, nil
}

// AssignGiftCardCode sets the redemption code on a manual-mode gift card
// item. Codes minted at fulfillment are never overwritten.
func (s *Service) AssignGiftCardCode(orderID, itemID uint, code string) (*OrderItem, error) {
	var item OrderItem
	err := s.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order item not found")
		}
		return nil, fmt.Errorf("failed to retrieve order item: %w", err)
	}

	if item.ProductType != "gift_card" {
		return nil, fmt.Errorf("item is not a gift card")
	}
	if item.GiftCardCode != "" {
		return nil, fmt.Errorf("gift card code already assigned")
	}

	if err := s.db.Model(&item).Update("gift_card_code", code).Error; err != nil {
		return nil, fmt.Errorf("failed to assign gift card code: %w", err)
	}
	item.GiftCardCode = code
	return &item, nil
}

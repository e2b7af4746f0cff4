// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/cache"
	"gorm.io/gorm"
)

const (
	appliedCouponKeyFormat = "applied_coupon:%d"
	appliedCouponTTL       = 7 * 24 * time.Hour
)

// Service handles cart logic. Cart lines live in the database; the applied
// coupon code is a volatile attachment kept in Redis so an expired or
// deleted coupon never blocks the cart itself.
type Service struct {
	db             *gorm.DB
	redis          *redis.Client
	productService *product.Service
	invalidator    *cache.Invalidator
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, productService *product.Service) *Service {
	return &Service{
		db:             db,
		redis:          redisClient,
		productService: productService,
		invalidator:    cache.NewInvalidator(redisClient),
	}
}

// AddItemRequest represents cart add data
type AddItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// GetCart assembles the user's cart with totals and the attached coupon code
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	var items []CartItem
	err := s.db.Preload("Product").Preload("Product.Variants").Preload("Variant").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	cart := &Cart{Items: items}
	for _, item := range items {
		cart.Subtotal += item.LineTotal()
		cart.ItemCount += item.Quantity
	}
	cart.AppliedCoupon = s.GetAppliedCoupon(ctx, userID)
	return cart, nil
}

// AddItem adds a product line, merging quantity into an existing line for the
// same product and variant
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddItemRequest) (*Cart, error) {
	prod, err := s.productService.GetProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	var variant *product.ProductVariant
	if req.VariantID != nil {
		variant, err = s.productService.GetVariant(req.ProductID, *req.VariantID)
		if err != nil {
			return nil, err
		}
	}

	unitPrice := prod.UnitPrice(variant)

	var existing CartItem
	query := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID)
	if req.VariantID != nil {
		query = query.Where("variant_id = ?", *req.VariantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	err = query.First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"quantity": existing.Quantity + req.Quantity,
			"price":    unitPrice,
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Quantity:  req.Quantity,
			Price:     unitPrice,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}

	s.invalidator.Invalidate(cache.RecordKey("cart_items", userID))
	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets a line's quantity; zero removes the line
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	var item CartItem
	err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item not found")
		}
		return nil, fmt.Errorf("failed to retrieve cart item: %w", err)
	}

	if quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
	} else {
		if err := s.db.Model(&item).Update("quantity", quantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	s.invalidator.Invalidate(cache.RecordKey("cart_items", userID))
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes one cart line
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) (*Cart, error) {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("cart item not found")
	}

	s.invalidator.Invalidate(cache.RecordKey("cart_items", userID))
	return s.GetCart(ctx, userID)
}

// Clear removes all cart lines and the attached coupon. When tx is non-nil
// the line deletion joins the caller's transaction.
func (s *Service) Clear(ctx context.Context, tx *gorm.DB, userID uint) error {
	db := s.db
	if tx != nil {
		db = tx
	}
	if err := db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.RemoveAppliedCoupon(ctx, userID)
	s.invalidator.Invalidate(cache.RecordKey("cart_items", userID))
	return nil
}

// AttachCoupon stores a coupon code against the cart. Validation happens at
// checkout; attachment only normalizes the code.
func (s *Service) AttachCoupon(ctx context.Context, userID uint, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("coupon code is required")
	}
	key := fmt.Sprintf(appliedCouponKeyFormat, userID)
	if err := s.redis.Set(ctx, key, code, appliedCouponTTL).Err(); err != nil {
		return fmt.Errorf("failed to attach coupon: %w", err)
	}
	return nil
}

// GetAppliedCoupon returns the attached coupon code, or empty when none
func (s *Service) GetAppliedCoupon(ctx context.Context, userID uint) string {
	key := fmt.Sprintf(appliedCouponKeyFormat, userID)
	code, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return code
}

// RemoveAppliedCoupon detaches the coupon code from the cart
func (s *Service) RemoveAppliedCoupon(ctx context.Context, userID uint) {
	key := fmt.Sprintf(appliedCouponKeyFormat, userID)
	s.redis.Del(ctx, key)
}

// internal/domain/wishlist/service.go
package wishlist

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles wishlist logic
type Service struct {
	db             *gorm.DB
	productService *product.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, productService *product.Service) *Service {
	return &Service{
		db:             db,
		productService: productService,
	}
}

// GetWishlist retrieves all wishlist items for a user
func (s *Service) GetWishlist(userID uint) ([]WishlistItem, error) {
	var items []WishlistItem
	err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	return items, nil
}

// AddItem saves a product to the wishlist. Adding an already saved product
// is a no-op.
func (s *Service) AddItem(userID, productID uint) (*WishlistItem, error) {
	if _, err := s.productService.GetProduct(productID); err != nil {
		return nil, err
	}

	var existing WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}

	item := WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return &item, nil
}

// RemoveItem removes a product from the wishlist
func (s *Service) RemoveItem(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("wishlist item not found")
	}
	return nil
}

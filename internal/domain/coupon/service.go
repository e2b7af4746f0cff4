// internal/domain/coupon/service.go
package coupon

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Service handles coupon validation and lifecycle
type Service struct {
	db *gorm.DB
}

// NewService creates a new coupon service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ValidationResult is the answer of a validation pass. Reason is set only
// when Valid is false and is safe to show to the end user.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Coupon *Coupon `json:"coupon,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

func invalid(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: reason}
}

// Validate checks a code against a purchase amount and user. Rules apply in
// a fixed order so the user always sees the most fundamental failure first.
// Validation never mutates usage state.
func (s *Service) Validate(code string, purchaseAmount int64, userID uint) (*ValidationResult, error) {
	coup, err := s.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("coupon not found"), nil
		}
		return nil, err
	}

	var redemptions int64
	if coup.LimitPerCustomer > 0 {
		err := s.db.Model(&CouponRedemption{}).
			Where("coupon_id = ? AND user_id = ?", coup.ID, userID).
			Count(&redemptions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count coupon redemptions: %w", err)
		}
	}

	return validateRules(coup, purchaseAmount, redemptions, time.Now().UTC()), nil
}

// validateRules applies the rule chain to an already-loaded coupon.
// redemptions is the user's prior confirmed-use count, only consulted by the
// final rule.
func validateRules(coup *Coupon, purchaseAmount, redemptions int64, now time.Time) *ValidationResult {
	if !coup.IsActive {
		return invalid("coupon is not active")
	}

	if coup.ValidFrom != nil && now.Before(*coup.ValidFrom) {
		return invalid("coupon is not yet active")
	}
	if coup.ValidUntil != nil && now.After(*coup.ValidUntil) {
		return invalid("coupon has expired")
	}

	if coup.MinPurchaseAmount > 0 && purchaseAmount < coup.MinPurchaseAmount {
		shortfall := coup.MinPurchaseAmount - purchaseAmount
		return invalid(fmt.Sprintf("minimum purchase not met, add %d more", shortfall))
	}

	if coup.UsageLimit > 0 && coup.UsageCount >= coup.UsageLimit {
		return invalid("coupon usage limit reached")
	}

	if coup.LimitPerCustomer > 0 && redemptions >= int64(coup.LimitPerCustomer) {
		return invalid("coupon already used")
	}

	return &ValidationResult{Valid: true, Coupon: coup}
}

// GetByCode retrieves a coupon by its normalized code
func (s *Service) GetByCode(code string) (*Coupon, error) {
	var coup Coupon
	err := s.db.Where("code = ?", NormalizeCode(code)).First(&coup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}
	return &coup, nil
}

// Redeem increments the usage count and records the redemption inside the
// caller's order transaction. The guarded update makes the usage limit hold
// under concurrent fulfillments: the losing transaction matches zero rows.
func (s *Service) Redeem(tx *gorm.DB, coup *Coupon, userID uint, orderNumber string) error {
	query := tx.Model(&Coupon{}).Where("id = ?", coup.ID)
	if coup.UsageLimit > 0 {
		query = query.Where("usage_count < usage_limit")
	}

	result := query.Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon usage limit reached")
	}

	redemption := CouponRedemption{
		CouponID:    coup.ID,
		UserID:      userID,
		OrderNumber: orderNumber,
	}
	if err := tx.Create(&redemption).Error; err != nil {
		return fmt.Errorf("failed to record coupon redemption: %w", err)
	}
	return nil
}

// SetProviderCouponID persists a freshly minted provider discount object id.
// Called only after the provider call succeeded, so the local record never
// references an object that was not created.
func (s *Service) SetProviderCouponID(couponID uint, providerID string) error {
	err := s.db.Model(&Coupon{}).Where("id = ?", couponID).
		Update("provider_coupon_id", providerID).Error
	if err != nil {
		return fmt.Errorf("failed to persist provider coupon id: %w", err)
	}
	return nil
}

// CreateCouponRequest represents admin coupon creation data
type CreateCouponRequest struct {
	Code              string     `json:"code" binding:"required"`
	Description       string     `json:"description"`
	Type              Type       `json:"type" binding:"required"`
	Value             int64      `json:"value"`
	MinPurchaseAmount int64      `json:"min_purchase_amount"`
	Category          string     `json:"category"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        int        `json:"usage_limit"`
	LimitPerCustomer  int        `json:"limit_per_customer"`
	IsActive          *bool      `json:"is_active"`
}

// Create adds a new coupon
func (s *Service) Create(req *CreateCouponRequest) (*Coupon, error) {
	switch req.Type {
	case TypePercentage:
		if req.Value <= 0 || req.Value > 100 {
			return nil, fmt.Errorf("percentage value must be between 1 and 100")
		}
	case TypeFixed:
		if req.Value <= 0 {
			return nil, fmt.Errorf("fixed discount must be positive")
		}
	case TypeFreeShipping:
		// Value unused
	default:
		return nil, fmt.Errorf("invalid coupon type: %s", req.Type)
	}

	coup := Coupon{
		Code:              NormalizeCode(req.Code),
		Description:       req.Description,
		Type:              req.Type,
		Value:             req.Value,
		MinPurchaseAmount: req.MinPurchaseAmount,
		Category:          req.Category,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		UsageLimit:        req.UsageLimit,
		LimitPerCustomer:  req.LimitPerCustomer,
		IsActive:          true,
	}
	if req.IsActive != nil {
		coup.IsActive = *req.IsActive
	}

	if err := s.db.Create(&coup).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &coup, nil
}

// UpdateCouponRequest represents admin coupon update data
type UpdateCouponRequest struct {
	Description       *string    `json:"description"`
	Value             *int64     `json:"value"`
	MinPurchaseAmount *int64     `json:"min_purchase_amount"`
	Category          *string    `json:"category"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        *int       `json:"usage_limit"`
	LimitPerCustomer  *int       `json:"limit_per_customer"`
	IsActive          *bool      `json:"is_active"`
}

// Update modifies an existing coupon. The code and type are immutable so a
// minted provider discount object never drifts in meaning.
func (s *Service) Update(couponID uint, req *UpdateCouponRequest) (*Coupon, error) {
	var coup Coupon
	if err := s.db.First(&coup, couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon not found")
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.MinPurchaseAmount != nil {
		updates["min_purchase_amount"] = *req.MinPurchaseAmount
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.LimitPerCustomer != nil {
		updates["limit_per_customer"] = *req.LimitPerCustomer
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&coup).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update coupon: %w", err)
		}
	}
	return &coup, nil
}

// Delete soft-deletes a coupon
func (s *Service) Delete(couponID uint) error {
	result := s.db.Delete(&Coupon{}, couponID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon not found")
	}
	return nil
}

// List retrieves coupons with pagination
func (s *Service) List(page, limit int) ([]Coupon, int64, error) {
	var total int64
	if err := s.db.Model(&Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var coupons []Coupon
	offset := (page - 1) * limit
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, total, nil
}

// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// ErrNotAuthorized is returned when a non-admin invokes an admin operation.
// Authorization failures are explicit errors, unlike missing authentication
// which read paths treat as "no data".
var ErrNotAuthorized = errors.New("admin access required")

// Service handles user identity resolution and profile logic
type Service struct {
	db            *gorm.DB
	config        *config.Config
	ledgerService *ledger.Service
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, ledgerService *ledger.Service) *Service {
	return &Service{
		db:            db,
		config:        cfg,
		ledgerService: ledgerService,
	}
}

// ResolvedIdentity is the internal identity of an authenticated caller
type ResolvedIdentity struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
}

// ResolveIdentity maps an external identity {subject, email} to the internal
// user record, creating it on first sign-in. Exactly one user exists per
// subject; a changed provider email is mirrored onto the existing record.
func (s *Service) ResolveIdentity(subject, email string) (*ResolvedIdentity, error) {
	if subject == "" {
		return nil, fmt.Errorf("identity subject is required")
	}

	var usr User
	err := s.db.Where("auth_subject = ?", subject).First(&usr).Error
	if err == nil {
		now := time.Now().UTC()
		updates := map[string]interface{}{"last_login_at": now}
		if email != "" && email != usr.Email {
			updates["email"] = email
		}
		if err := s.db.Model(&usr).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user sign-in: %w", err)
		}
		return &ResolvedIdentity{UserID: usr.ID, Role: usr.Role}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	// First sign-in: create the user and its ledger entry together
	now := time.Now().UTC()
	usr = User{
		AuthSubject: subject,
		Email:       email,
		Role:        RoleCustomer,
		LastLoginAt: &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&usr).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.ledgerService.Insert(tx, ledger.ScopeUsersByRole, string(usr.Role), ledger.UserKey(usr.ID), 1)
	})
	if err != nil {
		return nil, err
	}

	return &ResolvedIdentity{UserID: usr.ID, Role: usr.Role}, nil
}

// GetUser retrieves a user by internal ID
func (s *Service) GetUser(userID uint) (*User, error) {
	var usr User
	result := s.db.Preload("Addresses").First(&usr, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}
	return &usr, nil
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

// UpdateProfile updates the caller's own profile fields
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	usr, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	if len(updates) > 0 {
		if err := s.db.Model(usr).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetUser(userID)
}

// RequireAdmin re-verifies the actor's role against the database. Every
// elevated operation calls this independently instead of trusting a token
// claim captured at sign-in.
func (s *Service) RequireAdmin(actorID uint) error {
	var usr User
	if err := s.db.Select("role").First(&usr, actorID).Error; err != nil {
		return ErrNotAuthorized
	}
	if !usr.IsAdmin() {
		return ErrNotAuthorized
	}
	return nil
}

// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/pkg/events"
	"gorm.io/gorm"
)

// AdminService handles elevated user management operations. Every method
// takes the acting admin's ID and re-checks the role from the database.
type AdminService struct {
	db            *gorm.DB
	userService   *Service
	ledgerService *ledger.Service
	publisher     *events.Publisher
	logger        *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, userService *Service, ledgerService *ledger.Service, publisher *events.Publisher, logger *logrus.Logger) *AdminService {
	return &AdminService{
		db:            db,
		userService:   userService,
		ledgerService: ledgerService,
		publisher:     publisher,
		logger:        logger,
	}
}

// ListUsersRequest represents admin user listing filters
type ListUsersRequest struct {
	Role   string `form:"role"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ListUsers retrieves users with filters and pagination
func (s *AdminService) ListUsers(actorID uint, req *ListUsersRequest) ([]User, int64, error) {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&User{})
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Search != "" {
		term := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page := req.Page
	limit := req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var users []User
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve users: %w", err)
	}

	return users, total, nil
}

// GetUser retrieves any user by ID for an admin
func (s *AdminService) GetUser(actorID, userID uint) (*User, error) {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return nil, err
	}
	return s.userService.GetUser(userID)
}

// UpdateRole changes a user's role. The base record and its ledger entry
// move partitions in the same transaction.
func (s *AdminService) UpdateRole(actorID, userID uint, newRole Role) (*User, error) {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return nil, err
	}
	if newRole != RoleCustomer && newRole != RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", newRole)
	}
	if actorID == userID {
		return nil, fmt.Errorf("cannot change your own role")
	}

	usr, err := s.userService.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if usr.Role == newRole {
		return usr, nil
	}

	oldRole := usr.Role
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(usr).Update("role", newRole).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		return s.ledgerService.Replace(tx, ledger.ScopeUsersByRole, ledger.UserKey(userID), string(newRole), 1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
		"old_role": oldRole,
		"new_role": newRole,
	}).Info("user role changed")

	s.publisher.Publish(events.SubjectUserRoleChanged, map[string]interface{}{
		"user_id":  userID,
		"old_role": oldRole,
		"new_role": newRole,
	})

	usr.Role = newRole
	return usr, nil
}

// UpdateTags replaces a user's free-form tags
func (s *AdminService) UpdateTags(actorID, userID uint, tags []string) (*User, error) {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return nil, err
	}

	usr, err := s.userService.GetUser(userID)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}

	if err := s.db.Model(usr).Update("tags", strings.Join(cleaned, ",")).Error; err != nil {
		return nil, fmt.Errorf("failed to update tags: %w", err)
	}
	return s.userService.GetUser(userID)
}

// UpdateNotes replaces the admin-only notes on a user
func (s *AdminService) UpdateNotes(actorID, userID uint, notes string) (*User, error) {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return nil, err
	}

	usr, err := s.userService.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(usr).Update("admin_notes", notes).Error; err != nil {
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}
	return s.userService.GetUser(userID)
}

// DeleteUser soft-deletes a user and removes its owned rows and ledger entry
// in one transaction. Orders are kept: they reference the user but record
// their own snapshots.
func (s *AdminService) DeleteUser(actorID, userID uint) error {
	if err := s.userService.RequireAdmin(actorID); err != nil {
		return err
	}
	if actorID == userID {
		return fmt.Errorf("cannot delete your own account")
	}

	usr, err := s.userService.GetUser(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&Address{}).Error; err != nil {
			return fmt.Errorf("failed to delete addresses: %w", err)
		}
		// Owned rows in other domains, referenced by table to keep this
		// package free of cross-domain imports
		if err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Exec("DELETE FROM wishlist_items WHERE user_id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist items: %w", err)
		}
		if err := tx.Delete(usr).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.ledgerService.Delete(tx, ledger.ScopeUsersByRole, ledger.UserKey(userID))
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
	}).Info("user deleted")

	return nil
}

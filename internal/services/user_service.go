// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

// UserService covers the admin-facing user management surface.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type AdminUpdateUserRequest struct {
	Name     string  `json:"name" validate:"omitempty,min=2,max=100"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Role     string  `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"is_active"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}

type UserListFilter struct {
	Role     string
	IsActive *bool
}

func (s *UserService) List(filter *UserListFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter != nil {
		if filter.Role != "" {
			query = query.Where("role = ?", filter.Role)
		}
		if filter.IsActive != nil {
			query = query.Where("is_active = ?", *filter.IsActive)
		}
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "last_login_at"}

	var users []models.User
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// UserStats is the admin dashboard summary of the user base.
type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Admins    int64 `json:"admins"`
	Customers int64 `json:"customers"`
}

func (s *UserService) Stats() (*UserStats, error) {
	stats := &UserStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Total, s.db.Model(&models.User{})},
		{&stats.Active, s.db.Model(&models.User{}).Where("is_active = ?", true)},
		{&stats.Inactive, s.db.Model(&models.User{}).Where("is_active = ?", false)},
		{&stats.Admins, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin)},
		{&stats.Customers, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	}

	return stats, nil
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) Update(userID uuid.UUID, req *AdminUpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("email = ? AND id != ?", req.Email, userID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
		updates["email"] = req.Email
	}
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.Get(userID)
}

// Delete removes a user account. Admins may not delete themselves.
func (s *UserService) Delete(actorID, userID uuid.UUID) error {
	if actorID == userID {
		return ErrSelfDelete
	}

	user, err := s.Get(userID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"actor_id": actorID,
	}).Info("User deleted")

	return nil
}

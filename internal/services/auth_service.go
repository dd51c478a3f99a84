// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/config"
	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateDetailsRequest struct {
	Name    string          `json:"name" validate:"omitempty,min=2,max=100"`
	Email   string          `json:"email" validate:"omitempty,email"`
	Phone   *string         `json:"phone" validate:"omitempty,max=30"`
	Avatar  *string         `json:"avatar"`
	Address *models.Address `json:"address"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// TokenPair carries the access/refresh token pair issued on register and login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthResult struct {
	User   *models.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     models.UserRoleCustomer,
		IsActive: true,
		Phone:    req.Phone,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredential
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	s.db.Model(&user).UpdateColumn("last_login_at", now)
	user.LastLoginAt = &now

	tokens, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: &user, Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	user, err := s.Me(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateDetails(userID uuid.UUID, req *UpdateDetailsRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Me(userID)
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
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Address != nil {
		updates["address_street"] = req.Address.Street
		updates["address_city"] = req.Address.City
		updates["address_state"] = req.Address.State
		updates["address_zip_code"] = req.Address.ZipCode
		updates["address_country"] = req.Address.Country
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.Me(userID)
}

func (s *AuthService) UpdatePassword(userID uuid.UUID, req *UpdatePasswordRequest) (*TokenPair, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Me(userID)
	if err != nil {
		return nil, err
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return nil, ErrInvalidCredential
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Model(user).UpdateColumn("password_hash", user.PasswordHash).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := utils.GenerateJWT(user.ID, user.Name, user.Email, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenTTL) * 3600,
	}, nil
}

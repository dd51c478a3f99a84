// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	cfg := newTestConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	s.service = NewAuthService(s.db, cfg)
}

func (s *AuthServiceTestSuite) register(email string) *AuthResult {
	result, err := s.service.Register(&RegisterRequest{
		Name:     "New Shopper",
		Email:    email,
		Password: "Password123",
	})
	require.NoError(s.T(), err)
	return result
}

func (s *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	result := s.register("shopper@example.com")

	assert.Equal(s.T(), models.UserRoleCustomer, result.User.Role)
	assert.NotEmpty(s.T(), result.Tokens.AccessToken)
	assert.NotEmpty(s.T(), result.Tokens.RefreshToken)

	claims, err := utils.ValidateJWT(result.Tokens.AccessToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), result.User.ID.String(), claims.UserID)
	assert.Equal(s.T(), "user", claims.Role)
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	s.register("shopper@example.com")

	_, err := s.service.Register(&RegisterRequest{
		Name:     "Copycat",
		Email:    "shopper@example.com",
		Password: "Password123",
	})
	assert.ErrorIs(s.T(), err, ErrEmailTaken)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.register("shopper@example.com")

	result, err := s.service.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "Password123",
	})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), result.Tokens.AccessToken)
	assert.NotNil(s.T(), result.User.LastLoginAt)
}

func (s *AuthServiceTestSuite) TestLoginWrongPassword() {
	s.register("shopper@example.com")

	_, err := s.service.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "WrongPassword",
	})
	assert.ErrorIs(s.T(), err, ErrInvalidCredential)

	// Unknown emails get the same answer as wrong passwords.
	_, err = s.service.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "Password123",
	})
	assert.ErrorIs(s.T(), err, ErrInvalidCredential)
}

func (s *AuthServiceTestSuite) TestLoginDisabledAccount() {
	result := s.register("shopper@example.com")
	require.NoError(s.T(), s.db.Model(&models.User{}).Where("id = ?", result.User.ID).
		UpdateColumn("is_active", false).Error)

	_, err := s.service.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "Password123",
	})
	assert.ErrorIs(s.T(), err, ErrAccountDisabled)
}

func (s *AuthServiceTestSuite) TestRefreshRotatesTokens() {
	result := s.register("shopper@example.com")

	refreshed, err := s.service.Refresh(result.Tokens.RefreshToken)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), result.User.ID, refreshed.User.ID)
	assert.NotEmpty(s.T(), refreshed.Tokens.AccessToken)

	_, err = s.service.Refresh("not-a-real-token")
	assert.ErrorIs(s.T(), err, ErrInvalidCredential)
}

func (s *AuthServiceTestSuite) TestUpdateDetails() {
	result := s.register("shopper@example.com")

	phone := "555-0101"
	updated, err := s.service.UpdateDetails(result.User.ID, &UpdateDetailsRequest{
		Name:  "Renamed Shopper",
		Phone: &phone,
		Address: &models.Address{
			Street:  "2 Side St",
			City:    "Springfield",
			ZipCode: "12345",
			Country: "US",
		},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed Shopper", updated.Name)
	assert.Equal(s.T(), "555-0101", updated.Phone)
	assert.Equal(s.T(), "2 Side St", updated.Address.Street)
}

func (s *AuthServiceTestSuite) TestUpdateDetailsEmailCollision() {
	s.register("taken@example.com")
	result := s.register("shopper@example.com")

	_, err := s.service.UpdateDetails(result.User.ID, &UpdateDetailsRequest{
		Email: "taken@example.com",
	})
	assert.ErrorIs(s.T(), err, ErrEmailTaken)
}

func (s *AuthServiceTestSuite) TestUpdatePassword() {
	result := s.register("shopper@example.com")

	_, err := s.service.UpdatePassword(result.User.ID, &UpdatePasswordRequest{
		CurrentPassword: "WrongPassword",
		NewPassword:     "NewPassword456",
	})
	assert.ErrorIs(s.T(), err, ErrInvalidCredential)

	tokens, err := s.service.UpdatePassword(result.User.ID, &UpdatePasswordRequest{
		CurrentPassword: "Password123",
		NewPassword:     "NewPassword456",
	})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), tokens.AccessToken)

	_, err = s.service.Login(&LoginRequest{
		Email:    "shopper@example.com",
		Password: "NewPassword456",
	})
	assert.NoError(s.T(), err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

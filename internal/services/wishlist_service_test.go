// internal/services/wishlist_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
)

type WishlistServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *WishlistService
	user    *models.User
	product *models.Product
}

func (s *WishlistServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewWishlistService(s.db)
	s.user = createTestUser(s.T(), s.db, "wisher@example.com", models.UserRoleCustomer)
	s.product = createTestProduct(s.T(), s.db, "Drone", 250, 3)
}

func (s *WishlistServiceTestSuite) TestAddAndGet() {
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))

	items, err := s.service.Get(s.user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), s.product.ID, items[0].ProductID)
	require.NotNil(s.T(), items[0].Product)
	assert.Equal(s.T(), "Drone", items[0].Product.Title)
}

func (s *WishlistServiceTestSuite) TestAddDuplicate() {
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))
	err := s.service.Add(s.user.ID, s.product.ID)
	assert.ErrorIs(s.T(), err, ErrAlreadyInWishlist)
}

func (s *WishlistServiceTestSuite) TestAddUnknownProduct() {
	ghost := createTestProduct(s.T(), s.db, "Ghost", 1, 1)
	require.NoError(s.T(), s.db.Unscoped().Delete(ghost).Error)

	err := s.service.Add(s.user.ID, ghost.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *WishlistServiceTestSuite) TestRemove() {
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))
	require.NoError(s.T(), s.service.Remove(s.user.ID, s.product.ID))

	items, err := s.service.Get(s.user.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)

	// Removing again reports the absence.
	err = s.service.Remove(s.user.ID, s.product.ID)
	assert.ErrorIs(s.T(), err, ErrNotInWishlist)
}

func (s *WishlistServiceTestSuite) TestClear() {
	second := createTestProduct(s.T(), s.db, "Gimbal", 120, 4)
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))
	require.NoError(s.T(), s.service.Add(s.user.ID, second.ID))

	require.NoError(s.T(), s.service.Clear(s.user.ID))

	items, err := s.service.Get(s.user.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)
}

func (s *WishlistServiceTestSuite) TestContains() {
	// No wishlist row yet.
	contains, err := s.service.Contains(s.user.ID, s.product.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), contains)

	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))

	contains, err = s.service.Contains(s.user.ID, s.product.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), contains)
}

func (s *WishlistServiceTestSuite) TestCountMatchesLiveItems() {
	// No wishlist row yet.
	count, err := s.service.Count(s.user.ID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), count)

	second := createTestProduct(s.T(), s.db, "Charger", 40, 6)
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))
	require.NoError(s.T(), s.service.Add(s.user.ID, second.ID))

	count, err = s.service.Count(s.user.ID)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, count)

	// A deleted product no longer counts, matching Get's filtering.
	require.NoError(s.T(), s.db.Delete(second).Error)

	count, err = s.service.Count(s.user.ID)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, count)
}

func (s *WishlistServiceTestSuite) TestGetFiltersDanglingEntries() {
	require.NoError(s.T(), s.service.Add(s.user.ID, s.product.ID))

	// Hard-delete the product behind the wishlist's back.
	require.NoError(s.T(), s.db.Unscoped().Delete(s.product).Error)

	items, err := s.service.Get(s.user.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)
}

func TestWishlistServiceSuite(t *testing.T) {
	suite.Run(t, new(WishlistServiceTestSuite))
}

// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProductService
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewProductService(s.db)
}

func (s *ProductServiceTestSuite) TestCreateGeneratesSKUWhenMissing() {
	product, err := s.service.Create(&CreateProductRequest{
		Title:       "Bluetooth Speaker",
		Description: "Portable speaker with 12 hour battery",
		Price:       49.99,
		Category:    "electronics",
		Stock:       10,
	})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), product.SKU)
	assert.True(s.T(), product.IsActive)
}

func (s *ProductServiceTestSuite) TestCreateRejectsUnknownCategory() {
	_, err := s.service.Create(&CreateProductRequest{
		Title:       "Mystery Item",
		Description: "Something that fits no category",
		Price:       5,
		Category:    "contraband",
	})
	assert.Error(s.T(), err)
}

func (s *ProductServiceTestSuite) TestListFiltersAndSorts() {
	createTestProduct(s.T(), s.db, "Budget Mouse", 10, 5)
	createTestProduct(s.T(), s.db, "Office Mouse", 25, 0)
	expensive := createTestProduct(s.T(), s.db, "Gaming Mouse", 80, 3)

	// Price ceiling.
	maxPrice := 30.0
	products, total, err := s.service.List(ProductFilter{MaxPrice: &maxPrice, Sort: SortPriceAsc})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, total)
	require.Len(s.T(), products, 2)
	assert.Equal(s.T(), "Budget Mouse", products[0].Title)
	assert.Equal(s.T(), "Office Mouse", products[1].Title)

	// In-stock only drops the sold out one.
	inStock := true
	products, total, err = s.service.List(ProductFilter{InStock: &inStock, Sort: SortPriceDesc})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, total)
	require.Len(s.T(), products, 2)
	assert.Equal(s.T(), expensive.ID, products[0].ID)

	// Search matches title case-insensitively.
	products, _, err = s.service.List(ProductFilter{Search: "gaming"})
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), "Gaming Mouse", products[0].Title)
}

func (s *ProductServiceTestSuite) TestListHidesInactiveProducts() {
	product := createTestProduct(s.T(), s.db, "Retired Gadget", 15, 5)
	require.NoError(s.T(), s.db.Model(product).UpdateColumn("is_active", false).Error)

	products, total, err := s.service.List(ProductFilter{})
	require.NoError(s.T(), err)
	assert.Zero(s.T(), total)
	assert.Empty(s.T(), products)
}

func (s *ProductServiceTestSuite) TestListUnknownSortFallsBackToNewest() {
	createTestProduct(s.T(), s.db, "First", 5, 1)
	createTestProduct(s.T(), s.db, "Second", 5, 1)

	products, _, err := s.service.List(ProductFilter{Sort: SortKey("price-sideways")})
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2)
}

func (s *ProductServiceTestSuite) TestUpdateAppliesPartialChanges() {
	product := createTestProduct(s.T(), s.db, "Webcam", 70, 5)

	newPrice := 60.0
	discount := 10.0
	updated, err := s.service.Update(product.ID, &UpdateProductRequest{
		Price:    &newPrice,
		Discount: &discount,
	})
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), 60.0, updated.Price, 0.001)
	assert.InDelta(s.T(), 54.0, updated.EffectivePrice(), 0.001)
	assert.Equal(s.T(), "Webcam", updated.Title)
}

func (s *ProductServiceTestSuite) TestDeleteRemovesProductAndReviews() {
	product := createTestProduct(s.T(), s.db, "Doomed", 10, 1)
	user := createTestUser(s.T(), s.db, "r@example.com", models.UserRoleCustomer)

	reviewService := NewReviewService(s.db)
	require.NoError(s.T(), reviewService.Add(product.ID, user.ID, &AddReviewRequest{
		Rating:  4,
		Comment: "liked it before it was discontinued",
	}))

	require.NoError(s.T(), s.service.Delete(product.ID))

	_, err := s.service.Get(product.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	var reviews int64
	s.db.Model(&models.Review{}).Where("product_id = ?", product.ID).Count(&reviews)
	assert.Zero(s.T(), reviews)
}

func (s *ProductServiceTestSuite) TestGetFeatured() {
	product := createTestProduct(s.T(), s.db, "Star Item", 99, 2)
	require.NoError(s.T(), s.db.Model(product).UpdateColumn("is_featured", true).Error)
	createTestProduct(s.T(), s.db, "Plain Item", 9, 2)

	featured, err := s.service.GetFeatured(8)
	require.NoError(s.T(), err)
	require.Len(s.T(), featured, 1)
	assert.Equal(s.T(), product.ID, featured[0].ID)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

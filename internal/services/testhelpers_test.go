// internal/services/testhelpers_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopverse/storefront-backend/internal/config"
	"github.com/shopverse/storefront-backend/internal/models"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps every session on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
		&models.Order{},
		&models.OrderItem{},
		&models.Wishlist{},
		&models.WishlistItem{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{
			Currency: "usd",
		},
		Order: config.OrderConfig{
			TaxRate:               0.10,
			FreeShippingThreshold: 100,
			FlatShippingFee:       10,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

var skuCounter int

func createTestProduct(t *testing.T, db *gorm.DB, title string, price float64, stock int) *models.Product {
	t.Helper()

	skuCounter++
	product := &models.Product{
		Title:       title,
		Description: "A product used in tests only",
		Price:       price,
		Category:    "electronics",
		SKU:         fmt.Sprintf("TEST-SKU-%04d", skuCounter),
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func testShippingAddress() ShippingAddressRequest {
	return ShippingAddressRequest{
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
		Phone:      "555-0100",
	}
}

func createTestOrder(t *testing.T, svc *OrderService, userID uuid.UUID, productID uuid.UUID, qty int) *models.Order {
	t.Helper()

	order, err := svc.Create(userID, &CreateOrderRequest{
		Items:           []OrderLineRequest{{ProductID: productID, Quantity: qty}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   models.PaymentMethodStripe,
	})
	require.NoError(t, err)
	return order
}

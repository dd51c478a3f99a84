// internal/database/connection_test.go
package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopverse/storefront-backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestWithTransactionCommits(t *testing.T) {
	db := openTestDB(t)

	err := WithTransaction(db, func(tx *gorm.DB) error {
		return tx.Create(&models.User{
			Name:  "Committed",
			Email: "committed@example.com",
			Role:  models.UserRoleCustomer,
		}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{
			Name:  "Doomed",
			Email: "doomed@example.com",
			Role:  models.UserRoleCustomer,
		}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(db, func(tx *gorm.DB) error {
			if err := tx.Create(&models.User{
				Name:  "Panicked",
				Email: "panicked@example.com",
				Role:  models.UserRoleCustomer,
			}).Error; err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
)

type WishlistService struct {
	db *gorm.DB
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// getOrCreate lazily creates the caller's wishlist on first access.
func (s *WishlistService) getOrCreate(userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := s.db.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).First(&wishlist).Error
	if err == nil {
		return &wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	wishlist = models.Wishlist{UserID: userID}
	if err := s.db.Create(&wishlist).Error; err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}
	return &wishlist, nil
}

// Get returns the wishlist items joined with live products. Entries whose
// product was deleted are filtered out here rather than eagerly cleaned up.
func (s *WishlistService) Get(userID uuid.UUID) ([]models.WishlistItem, error) {
	wishlist, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.WishlistItem, 0, len(wishlist.Items))
	for _, item := range wishlist.Items {
		if item.Product == nil {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *WishlistService) Add(userID, productID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	wishlist, err := s.getOrCreate(userID)
	if err != nil {
		return err
	}

	if wishlist.Contains(productID) {
		return ErrAlreadyInWishlist
	}

	item := models.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  productID,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

func (s *WishlistService) Remove(userID, productID uuid.UUID) error {
	wishlist, err := s.getOrCreate(userID)
	if err != nil {
		return err
	}

	res := s.db.Where("wishlist_id = ? AND product_id = ?", wishlist.ID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotInWishlist
	}

	return nil
}

func (s *WishlistService) Clear(userID uuid.UUID) error {
	wishlist, err := s.getOrCreate(userID)
	if err != nil {
		return err
	}

	if err := s.db.Where("wishlist_id = ?", wishlist.ID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}

	return nil
}

// Count returns the number of wishlist entries whose product still exists,
// matching what Get would return. Users without a wishlist count zero.
func (s *WishlistService) Count(userID uuid.UUID) (int64, error) {
	var wishlist models.Wishlist
	err := s.db.Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.WishlistItem{}).
		Joins("JOIN products ON products.id = wishlist_items.product_id AND products.deleted_at IS NULL").
		Where("wishlist_items.wishlist_id = ?", wishlist.ID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}

	return count, nil
}

func (s *WishlistService) Contains(userID, productID uuid.UUID) (bool, error) {
	var wishlist models.Wishlist
	err := s.db.Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlist.ID, productID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	return count > 0, nil
}

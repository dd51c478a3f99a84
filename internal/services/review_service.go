// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/database"
	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=500"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=500"`
}

// UserReview is a caller's review joined with its product for listings.
type UserReview struct {
	models.Review
	ProductTitle string `json:"product_title"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Add writes a review and recomputes the product's aggregate in the same
// transaction. One review per user per product.
func (s *ReviewService) Add(productID, userID uuid.UUID, req *AddReviewRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", productID, userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("reviewer not found: %w", err)
		}

		review := &models.Review{
			ProductID: productID,
			UserID:    userID,
			Name:      user.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		return s.recomputeRating(tx, productID)
	})
}

// Update mutates the caller's own review and recomputes the aggregate.
func (s *ReviewService) Update(productID, userID uuid.UUID, req *UpdateReviewRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).
			First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		review.Rating = req.Rating
		review.Comment = req.Comment

		if err := tx.Save(&review).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}

		return s.recomputeRating(tx, productID)
	})
}

// Delete removes the caller's own review and recomputes the aggregate.
func (s *ReviewService) Delete(productID, userID uuid.UUID) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		res := tx.Where("product_id = ? AND user_id = ?", productID, userID).
			Delete(&models.Review{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return s.recomputeRating(tx, productID)
	})
}

// DeleteByID removes any review by its id (admin moderation path).
func (s *ReviewService) DeleteByID(productID, reviewID uuid.UUID) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND product_id = ?", reviewID, productID).
			Delete(&models.Review{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return s.recomputeRating(tx, productID)
	})
}

func (s *ReviewService) ListForProduct(productID uuid.UUID) ([]models.Review, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var reviews []models.Review
	if err := s.db.Where("product_id = ?", productID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, nil
}

func (s *ReviewService) ListMine(userID uuid.UUID) ([]UserReview, error) {
	var reviews []models.Review
	if err := s.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	userReviews := make([]UserReview, 0, len(reviews))
	for _, r := range reviews {
		ur := UserReview{Review: r}
		if r.Product != nil {
			ur.ProductTitle = r.Product.Title
		}
		ur.Product = nil
		userReviews = append(userReviews, ur)
	}

	return userReviews, nil
}

// ListAll returns reviews across all products for moderation, optionally
// filtered by rating.
func (s *ReviewService) ListAll(rating *int, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Preload("User").Preload("Product")

	if rating != nil {
		query = query.Where("rating = ?", *rating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// recomputeRating sets the product's rating to the mean of its review
// ratings, rounded to one decimal place (0 with no reviews), and updates the
// review count. Called explicitly by every mutation in this service.
func (s *ReviewService) recomputeRating(tx *gorm.DB, productID uuid.UUID) error {
	var stats struct {
		Count int64
		Sum   float64
	}

	if err := tx.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COUNT(*) as count, COALESCE(SUM(rating), 0) as sum").
		Scan(&stats).Error; err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	var rating float64
	if stats.Count > 0 {
		rating = math.Round(stats.Sum/float64(stats.Count)*10) / 10
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": stats.Count,
		}).Error; err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	return nil
}

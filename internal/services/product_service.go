// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/database"
	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Title          string                 `json:"title" validate:"required,min=3,max=100"`
	Description    string                 `json:"description" validate:"required,min=10,max=2000"`
	Price          float64                `json:"price" validate:"required,gte=0"`
	OriginalPrice  float64                `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	Category       string                 `json:"category" validate:"required"`
	Brand          string                 `json:"brand,omitempty"`
	SKU            string                 `json:"sku,omitempty"`
	Images         []string               `json:"images,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Features       []string               `json:"features,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Stock          int                    `json:"stock" validate:"gte=0"`
	Discount       float64                `json:"discount,omitempty" validate:"gte=0,lte=100"`
	IsActive       *bool                  `json:"is_active,omitempty"`
	IsFeatured     *bool                  `json:"is_featured,omitempty"`
	Weight         float64                `json:"weight,omitempty" validate:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	Title          string                 `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description    string                 `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	Price          *float64               `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category       string                 `json:"category,omitempty"`
	Brand          string                 `json:"brand,omitempty"`
	Images         []string               `json:"images,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Features       []string               `json:"features,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Stock          *int                   `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Discount       *float64               `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool                  `json:"is_active,omitempty"`
	IsFeatured     *bool                  `json:"is_featured,omitempty"`
}

// SortKey enumerates the catalog sort orders accepted at the boundary.
type SortKey string

const (
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
)

var sortExpressions = map[SortKey]string{
	SortPriceAsc:   "price ASC",
	SortPriceDesc:  "price DESC",
	SortRatingDesc: "rating DESC",
	SortNewest:     "created_at DESC",
	SortOldest:     "created_at ASC",
}

// ProductFilter is the explicit, enumerated catalog filter. Everything is
// parsed and validated once at the handler boundary.
type ProductFilter struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	InStock   *bool
	Sort      SortKey
	Page      int
	Limit     int
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) Create(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !models.IsValidCategory(req.Category) {
		return nil, fmt.Errorf("invalid category %q", req.Category)
	}

	sku := req.SKU
	if sku == "" {
		generated, err := utils.GenerateSKU()
		if err != nil {
			return nil, fmt.Errorf("failed to generate SKU: %w", err)
		}
		sku = generated
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	isFeatured := false
	if req.IsFeatured != nil {
		isFeatured = *req.IsFeatured
	}

	product := &models.Product{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Category:       req.Category,
		Brand:          req.Brand,
		SKU:            sku,
		Images:         pqArray(req.Images),
		Tags:           pqArray(req.Tags),
		Features:       pqArray(req.Features),
		Specifications: models.JSONB(req.Specifications),
		Stock:          req.Stock,
		Discount:       req.Discount,
		IsActive:       isActive,
		IsFeatured:     isFeatured,
		Weight:         req.Weight,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) Get(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("reviews.created_at DESC")
	}).Preload("Reviews.User").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) Update(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != "" {
		if !models.IsValidCategory(req.Category) {
			return nil, fmt.Errorf("invalid category %q", req.Category)
		}
		updates["category"] = req.Category
	}
	if req.Brand != "" {
		updates["brand"] = req.Brand
	}
	if req.Images != nil {
		updates["images"] = pqArray(req.Images)
	}
	if req.Tags != nil {
		updates["tags"] = pqArray(req.Tags)
	}
	if req.Features != nil {
		updates["features"] = pqArray(req.Features)
	}
	if req.Specifications != nil {
		updates["specifications"] = models.JSONB(req.Specifications)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	return &product, nil
}

// Delete removes a product and its reviews. Wishlist entries are left to
// dangle; reads filter them out.
func (s *ProductService) Delete(id uuid.UUID) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}

		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return nil
	})
}

// List applies the enumerated filter over active products.
func (s *ProductService) List(filter ProductFilter) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("is_active = ?", true)

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}

	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}

	if filter.InStock != nil && *filter.InStock {
		query = query.Where("stock > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	order, ok := sortExpressions[filter.Sort]
	if !ok {
		order = sortExpressions[SortNewest]
	}
	query = query.Order(order)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query = query.Offset((page - 1) * limit).Limit(limit)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetFeatured(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}

	return products, nil
}

func (s *ProductService) GetCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func pqArray(values []string) pq.StringArray {
	out := make([]string, len(values))
	copy(out, values)
	return pq.StringArray(out)
}

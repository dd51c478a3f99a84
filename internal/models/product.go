// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Title         string         `json:"title" gorm:"size:100;not null"`
	Description   string         `json:"description" gorm:"type:text;not null"`
	Price         float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice float64        `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`
	Category      string         `json:"category" gorm:"size:50;not null;index"`
	Brand         string         `json:"brand,omitempty" gorm:"size:100;index"`
	SKU           string         `json:"sku" gorm:"size:50;uniqueIndex"`
	Images        pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags          pq.StringArray `json:"tags" gorm:"type:text[]"`
	Features      pq.StringArray `json:"features" gorm:"type:text[]"`
	Specifications JSONB         `json:"specifications,omitempty" gorm:"type:jsonb"`
	Stock         int            `json:"stock" gorm:"not null;default:0"`
	// Discount is a percentage in [0,100] applied on top of Price.
	Discount    float64 `json:"discount" gorm:"type:decimal(5,2);default:0"`
	Rating      float64 `json:"rating" gorm:"type:decimal(3,1);default:0"`
	ReviewCount int64   `json:"review_count" gorm:"default:0"`
	IsActive    bool    `json:"is_active" gorm:"default:true;index"`
	IsFeatured  bool    `json:"is_featured" gorm:"default:false"`
	Weight      float64 `json:"weight,omitempty" gorm:"type:decimal(10,3)"`

	// Relationships
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// EffectivePrice is the unit price after the discount percentage is applied.
// Order lines snapshot this value at order time.
func (p *Product) EffectivePrice() float64 {
	if p.Discount > 0 {
		return p.Price - p.Price*p.Discount/100
	}
	return p.Price
}

// FirstImage returns the primary display image, empty when none is set.
func (p *Product) FirstImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	// Name is the reviewer's display name captured when the review is written.
	Name    string `json:"name" gorm:"size:50;not null"`
	Rating  int    `json:"rating" gorm:"not null"`
	Comment string `json:"comment" gorm:"type:text;not null"`

	// Relationships
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

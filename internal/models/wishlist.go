// internal/models/wishlist.go
package models

import (
	"github.com/google/uuid"
)

// Wishlist holds non-owning references to products. One wishlist per user,
// created lazily on first access. Entries may dangle after a product is
// deleted; reads filter them out via the product join.
type Wishlist struct {
	BaseModel
	UserID uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Items  []WishlistItem `json:"items" gorm:"foreignKey:WishlistID"`
}

type WishlistItem struct {
	BaseModel
	WishlistID uuid.UUID `json:"wishlist_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_product"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_product"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Contains reports whether the wishlist already references the product.
func (w *Wishlist) Contains(productID uuid.UUID) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

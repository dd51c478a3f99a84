// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ShippingAddress struct {
	Address    string `json:"address" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	PostalCode string `json:"postal_code" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100"`
	Phone      string `json:"phone" gorm:"size:30"`
}

// PaymentResult is the gateway snapshot recorded when an order is paid.
type PaymentResult struct {
	TransactionID string `json:"id" gorm:"size:255"`
	Status        string `json:"status" gorm:"size:50"`
	UpdateTime    string `json:"update_time" gorm:"size:50"`
	EmailAddress  string `json:"email_address" gorm:"size:255"`
}

// OrderItem is a single product+quantity line. Name, image and unit price are
// captured at order time and never change, even if the catalog does.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Image     string    `json:"image" gorm:"size:500"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	// UnitPrice is the effective (post-discount) price frozen at order time.
	UnitPrice float64 `json:"price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type Order struct {
	BaseModel
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index:idx_orders_user_created"`
	OrderNumber string          `json:"order_number" gorm:"size:30;uniqueIndex"`
	Items       []OrderItem     `json:"order_items" gorm:"foreignKey:OrderID"`
	Shipping    ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`

	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentResult PaymentResult `json:"payment_result" gorm:"embedded;embeddedPrefix:payment_"`

	TaxPrice      float64 `json:"tax_price" gorm:"type:decimal(10,2);not null;default:0"`
	ShippingPrice float64 `json:"shipping_price" gorm:"type:decimal(10,2);not null;default:0"`
	TotalPrice    float64 `json:"total_price" gorm:"type:decimal(10,2);not null;default:0"`

	IsPaid      bool       `json:"is_paid" gorm:"not null;default:false"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	IsDelivered bool       `json:"is_delivered" gorm:"not null;default:false"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	Status         OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes          string      `json:"notes,omitempty" gorm:"size:500"`
	TrackingNumber string      `json:"tracking_number,omitempty" gorm:"size:100"`

	RefundRequested bool         `json:"refund_requested" gorm:"default:false"`
	RefundReason    string       `json:"refund_reason,omitempty" gorm:"size:500"`
	RefundStatus    RefundStatus `json:"refund_status" gorm:"type:varchar(20);default:'none'"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Subtotal is the sum of line price times quantity, before tax and shipping.
func (o *Order) Subtotal() float64 {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	return subtotal
}

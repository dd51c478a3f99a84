// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/config"
	"github.com/shopverse/storefront-backend/internal/database"
	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

const orderNumberAttempts = 3

// generateOrderNumber is swappable so collision handling can be tested.
var generateOrderNumber = utils.GenerateOrderNumber

type OrderService struct {
	db  *gorm.DB
	cfg *config.Config
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"order_items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method" validate:"required,oneof=stripe paypal cod"`
	Notes           string                 `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled refunded"`
}

type RequestRefundRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

type MarkPaidRequest struct {
	TransactionID string `json:"id" validate:"required"`
	Status        string `json:"status" validate:"required"`
	UpdateTime    string `json:"update_time" validate:"required"`
	EmailAddress  string `json:"email_address" validate:"required,email"`
}

type OrderListFilter struct {
	utils.PaginationParams
	Status    *models.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// allowedTransitions is the single authoritative order state machine.
// cancelled and refunded are terminal; delivered can still move to refunded
// (and cancelled) through the refund flow.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusDelivered:  {models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusCancelled:  {},
	models.OrderStatusRefunded:   {},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NewOrderService(db *gorm.DB, cfg *config.Config) *OrderService {
	return &OrderService{
		db:  db,
		cfg: cfg,
	}
}

// Create builds an order from the cart lines: validates every line, snapshots
// effective prices, decrements stock and persists the order in one
// transaction. A failing line rolls back every earlier decrement, so partial
// stock mutations never commit.
func (s *OrderService) Create(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order *models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Phase one: resolve and validate every line before touching stock.
		items := make([]models.OrderItem, 0, len(req.Items))
		var subtotal float64

		for _, line := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %s: %w", line.ProductID, ErrNotFound)
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.Stock < line.Quantity {
				return fmt.Errorf("%s: %w", product.Title, ErrInsufficientStock)
			}

			unitPrice := product.EffectivePrice()
			subtotal += unitPrice * float64(line.Quantity)

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Title,
				Image:     product.FirstImage(),
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
			})
		}

		// Phase two: apply all decrements conditionally. A concurrent order
		// that drained the stock since phase one shows up as zero affected
		// rows and aborts the whole transaction.
		for i, line := range req.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%s: %w", items[i].Name, ErrInsufficientStock)
			}
		}

		taxPrice := subtotal * s.cfg.Order.TaxRate
		shippingPrice := s.cfg.Order.FlatShippingFee
		if subtotal > s.cfg.Order.FreeShippingThreshold {
			shippingPrice = 0
		}

		order = &models.Order{
			UserID: userID,
			Items:  items,
			Shipping: models.ShippingAddress{
				Address:    req.ShippingAddress.Address,
				City:       req.ShippingAddress.City,
				PostalCode: req.ShippingAddress.PostalCode,
				Country:    req.ShippingAddress.Country,
				Phone:      req.ShippingAddress.Phone,
			},
			PaymentMethod: req.PaymentMethod,
			TaxPrice:      taxPrice,
			ShippingPrice: shippingPrice,
			TotalPrice:    subtotal + taxPrice + shippingPrice,
			Status:        models.OrderStatusPending,
			RefundStatus:  models.RefundStatusNone,
			Notes:         req.Notes,
		}

		return s.insertWithOrderNumber(tx, order)
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// insertWithOrderNumber inserts the order under a fresh order number and
// retries with a new number when the unique index rejects it. Each attempt
// runs in a savepoint so a collision aborts only that insert, not the
// surrounding transaction.
func (s *OrderService) insertWithOrderNumber(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := generateOrderNumber()
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		order.OrderNumber = number

		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(order).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
	return errors.New("could not reserve a unique order number")
}

func (s *OrderService) GetMine(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("user_id = ?", userID).
		Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// GetByID returns the order when the caller owns it or is an admin.
func (s *OrderService) GetByID(orderID, callerID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Product").Preload("User").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != callerID && !isAdmin {
		return nil, ErrNotAuthorized
	}

	return &order, nil
}

func (s *OrderService) ListAll(filter OrderListFilter) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items").Preload("User")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_price", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// MarkPaid records the payment snapshot on an order. Owner or admin only.
func (s *OrderService) MarkPaid(orderID, callerID uuid.UUID, isAdmin bool, result models.PaymentResult) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != callerID && !isAdmin {
		return nil, ErrNotAuthorized
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = result

	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := s.db.Preload("Items").First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &order, nil
}

// markPaidIfUnpaid is the idempotent webhook path: it only mutates the order
// when the paid flag is still unset, so duplicate or out-of-order deliveries
// are no-ops.
func (s *OrderService) markPaidIfUnpaid(orderID uuid.UUID, result models.PaymentResult) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.IsPaid {
			return nil
		}

		now := time.Now()
		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentResult = result

		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
}

// TransitionStatus is the only place order status changes. Moving into
// cancelled or refunded restores every line's stock in the same transaction.
func (s *OrderService) TransitionStatus(orderID uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !canTransition(order.Status, newStatus) {
			return fmt.Errorf("%s -> %s: %w", order.Status, newStatus, ErrInvalidTransition)
		}

		order.Status = newStatus

		switch newStatus {
		case models.OrderStatusDelivered:
			now := time.Now()
			order.IsDelivered = true
			order.DeliveredAt = &now

		case models.OrderStatusCancelled, models.OrderStatusRefunded:
			// Restore inventory for every line. One transaction covers all
			// lines, so a failure restores nothing rather than some.
			for _, item := range order.Items {
				res := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
				if res.Error != nil {
					return fmt.Errorf("failed to restore stock: %w", res.Error)
				}
			}
			if newStatus == models.OrderStatusRefunded {
				order.RefundStatus = models.RefundStatusApproved
			}
		}

		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
	}).Info("Order status updated")

	return &order, nil
}

// RequestRefund flags a delivered order for refund review. It does not change
// the order status or restore stock; that happens if an admin later drives
// the order to refunded via TransitionStatus.
func (s *OrderService) RequestRefund(orderID, userID uuid.UUID, reason string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrNotAuthorized
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, ErrNotEligible
	}

	if order.RefundRequested {
		return nil, ErrAlreadyRequested
	}

	order.RefundRequested = true
	order.RefundReason = reason
	order.RefundStatus = models.RefundStatusPending

	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return &order, nil
}

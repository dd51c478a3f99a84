// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/config"
	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

// PaymentGateway abstracts the external payment provider. The production
// implementation wraps Stripe; tests substitute a fake.
type PaymentGateway interface {
	CreateIntent(amountCents int64, currency string, metadata map[string]string) (*GatewayIntent, error)
	GetIntent(id string) (*GatewayIntent, error)
	CreateRefund(intentID string, amountCents int64) (*GatewayRefund, error)
	VerifyWebhook(payload []byte, signature string) (*GatewayEvent, error)
}

// GatewayIntent is the provider-neutral view of a payment intent.
type GatewayIntent struct {
	ID           string
	ClientSecret string
	Status       string
	ReceiptEmail string
	Metadata     map[string]string
}

type GatewayRefund struct {
	ID     string
	Amount int64
	Status string
}

type GatewayEvent struct {
	Type   string
	Intent *GatewayIntent
}

const (
	// Intent status reported by the gateway on success.
	IntentStatusSucceeded = "succeeded"

	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type PaymentService struct {
	db           *gorm.DB
	cfg          *config.Config
	gateway      PaymentGateway
	orderService *OrderService
}

type CreateIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type ConfirmPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

type RefundRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Amount  float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type RefundResponse struct {
	RefundID string        `json:"refund_id"`
	Amount   float64       `json:"amount"`
	Order    *models.Order `json:"order"`
}

// PaymentMethodInfo describes a checkout option shown to clients.
type PaymentMethodInfo struct {
	ID          models.PaymentMethod `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gateway PaymentGateway, orderService *OrderService) *PaymentService {
	return &PaymentService{
		db:           db,
		cfg:          cfg,
		gateway:      gateway,
		orderService: orderService,
	}
}

// amountToCents converts the order total to the gateway's minor units.
func amountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent requests a payment intent for the order's total. Only the
// order's owner may pay, and paid orders are rejected.
func (s *PaymentService) CreateIntent(orderID, userID uuid.UUID) (*PaymentIntentResponse, error) {
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

	if order.IsPaid {
		return nil, ErrAlreadyPaid
	}

	intent, err := s.gateway.CreateIntent(amountToCents(order.TotalPrice), s.cfg.Payment.Currency, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// Confirm checks the intent's status with the gateway and marks the order
// paid on success. Anything other than success leaves the order untouched.
func (s *PaymentService) Confirm(orderID, userID uuid.UUID, intentID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("User").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrNotAuthorized
	}

	intent, err := s.gateway.GetIntent(intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	if intent.Status != IntentStatusSucceeded {
		return nil, ErrPaymentIncomplete
	}

	payerEmail := intent.ReceiptEmail
	if payerEmail == "" && order.User != nil {
		payerEmail = order.User.Email
	}

	result := models.PaymentResult{
		TransactionID: intent.ID,
		Status:        intent.Status,
		UpdateTime:    time.Now().UTC().Format(time.RFC3339),
		EmailAddress:  payerEmail,
	}

	return s.orderService.MarkPaid(orderID, userID, false, result)
}

// Refund reverses a stripe payment and drives the order through the single
// refunded transition, which also restores stock. Amount defaults to the
// order total and is clamped to it.
func (s *PaymentService) Refund(req *RefundRequest) (*RefundResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	if err := s.db.First(&order, "id = ?", req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.IsPaid {
		return nil, ErrNotPaid
	}

	if order.PaymentMethod != models.PaymentMethodStripe {
		return nil, ErrWrongPaymentKind
	}

	// The gateway is only charged once the order can actually reach refunded;
	// otherwise a replay (or a refund against a terminal order) would move
	// money and then fail the transition below.
	if !canTransition(order.Status, models.OrderStatusRefunded) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, models.OrderStatusRefunded, ErrInvalidTransition)
	}

	refundAmount := req.Amount
	if refundAmount <= 0 || refundAmount > order.TotalPrice {
		refundAmount = order.TotalPrice
	}

	gatewayRefund, err := s.gateway.CreateRefund(order.PaymentResult.TransactionID, amountToCents(refundAmount))
	if err != nil {
		return nil, fmt.Errorf("failed to process refund: %w", err)
	}

	updated, err := s.orderService.TransitionStatus(order.ID, models.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}

	return &RefundResponse{
		RefundID: gatewayRefund.ID,
		Amount:   refundAmount,
		Order:    updated,
	}, nil
}

// HandleWebhook processes gateway push notifications. Signature failures are
// reported without touching any order; the order update itself is best-effort
// and idempotent so duplicate deliveries are no-ops and the gateway always
// gets its acknowledgement.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case EventPaymentSucceeded:
		s.applySucceededIntent(event.Intent)

	case EventPaymentFailed:
		if event.Intent != nil {
			logrus.WithField("payment_intent", event.Intent.ID).Warn("Payment failed")
		}

	default:
		logrus.WithField("event_type", event.Type).Debug("Unhandled webhook event")
	}

	return nil
}

func (s *PaymentService) applySucceededIntent(intent *GatewayIntent) {
	if intent == nil {
		return
	}

	orderIDStr, ok := intent.Metadata["order_id"]
	if !ok {
		return
	}

	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		logrus.WithField("order_id", orderIDStr).Warn("Webhook carried an invalid order id")
		return
	}

	result := models.PaymentResult{
		TransactionID: intent.ID,
		Status:        intent.Status,
		UpdateTime:    time.Now().UTC().Format(time.RFC3339),
		EmailAddress:  intent.ReceiptEmail,
	}

	if err := s.orderService.markPaidIfUnpaid(orderID, result); err != nil {
		// Log and continue so the acknowledgement still reaches the gateway.
		logrus.WithError(err).WithField("order_id", orderID).Error("Failed to apply webhook payment")
	}
}

// Methods returns the checkout options the storefront supports.
func (s *PaymentService) Methods() []PaymentMethodInfo {
	return []PaymentMethodInfo{
		{
			ID:          models.PaymentMethodStripe,
			Name:        "Credit/Debit Card",
			Description: "Pay with Visa, Mastercard, American Express",
		},
		{
			ID:          models.PaymentMethodPayPal,
			Name:        "PayPal",
			Description: "Pay with your PayPal account",
		},
		{
			ID:          models.PaymentMethodCOD,
			Name:        "Cash on Delivery",
			Description: "Pay when you receive your order",
		},
	}
}

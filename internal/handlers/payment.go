// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// POST /payments/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	intent, err := h.paymentService.CreateIntent(req.OrderID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	order, err := h.paymentService.Confirm(req.OrderID, userID, req.PaymentIntentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /payments/methods
func (h *PaymentHandler) GetPaymentMethods(c *gin.Context) {
	utils.SuccessResponse(c, h.paymentService.Methods())
}

// POST /payments/refund (admin)
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var req services.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	refund, err := h.paymentService.Refund(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, refund)
}

// POST /payments/webhook
//
// The raw body is required for signature verification; it must not go
// through the JSON binder.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read webhook payload", nil)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(payload, signature); err != nil {
		logrus.WithError(err).Warn("Webhook rejected")
		utils.BadRequestResponse(c, "Webhook verification failed", nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"received": true})
}

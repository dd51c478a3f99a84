// internal/handlers/order.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.Create(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /orders/myorders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetMine(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(orderID, userID, isAdmin(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /orders (admin)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.OrderListFilter{PaginationParams: params}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.OrderStatus(statusStr)
		filter.Status = &status
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}

	orders, total, err := h.orderService.ListAll(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /orders/:id/pay
func (h *OrderHandler) PayOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	order, err := h.orderService.MarkPaid(orderID, userID, isAdmin(c), models.PaymentResult{
		TransactionID: req.TransactionID,
		Status:        req.Status,
		UpdateTime:    req.UpdateTime,
		EmailAddress:  req.EmailAddress,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PUT /orders/:id/deliver (admin)
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.TransitionStatus(orderID, models.OrderStatusDelivered)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PUT /orders/:id/status (admin)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	order, err := h.orderService.TransitionStatus(orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/refund
func (h *OrderHandler) RequestRefund(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	order, err := h.orderService.RequestRefund(orderID, userID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

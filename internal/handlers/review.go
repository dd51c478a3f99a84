// internal/handlers/review.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /reviews/product/:productId
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForProduct(productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, reviews)
}

// POST /reviews/product/:productId
func (h *ReviewHandler) AddReview(c *gin.Context) {
	h.addReview(c, "productId")
}

// POST /products/:id/reviews, the product-scoped alias for the same operation.
func (h *ReviewHandler) AddReviewForProduct(c *gin.Context) {
	h.addReview(c, "id")
}

func (h *ReviewHandler) addReview(c *gin.Context, param string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, param)
	if !ok {
		return
	}

	var req services.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.reviewService.Add(productID, userID, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"message": "Review added"})
}

// PUT /reviews/:productId
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.reviewService.Update(productID, userID, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Review updated"})
}

// DELETE /reviews/:productId
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(productID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Review deleted"})
}

// GET /reviews/my-reviews
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListMine(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, reviews)
}

// GET /reviews (admin)
func (h *ReviewHandler) ListAllReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var rating *int
	if v := c.Query("rating"); v != "" {
		if r, err := strconv.Atoi(v); err == nil && r >= 1 && r <= 5 {
			rating = &r
		}
	}

	reviews, total, err := h.reviewService.ListAll(rating, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// DELETE /reviews/:productId/:reviewId (admin)
func (h *ReviewHandler) AdminDeleteReview(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteByID(productID, reviewID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Review deleted"})
}

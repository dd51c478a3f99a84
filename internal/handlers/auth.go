// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type AuthHandler struct {
	authService    *services.AuthService
	storageService *services.StorageService
}

func NewAuthHandler(authService *services.AuthService, storageService *services.StorageService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		storageService: storageService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.authService.Register(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.authService.Login(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// POST /auth/logout
//
// Tokens are stateless, so there is nothing to revoke server-side; the
// endpoint exists so clients have a uniform place to discard their session.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"message": "Logged out"})
}

// PUT /auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.authService.UpdateDetails(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// POST /auth/avatar
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		utils.BadRequestResponse(c, "Avatar file is required", nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to open uploaded file", err.Error())
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("avatars"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	user, err := h.authService.UpdateDetails(userID, &services.UpdateDetailsRequest{Avatar: &result.URL})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"avatar": user.Avatar,
		"upload": result,
	})
}

// PUT /auth/updatepassword
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	tokens, err := h.authService.UpdatePassword(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, tokens)
}

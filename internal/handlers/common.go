// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

// currentUserID reads the authenticated caller's ID from the gin context.
// Returns false (and writes the response) when missing or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

func isAdmin(c *gin.Context) bool {
	role, _ := utils.GetUserRoleFromContext(c)
	return role == "admin"
}

// parseIDParam parses a uuid path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500; the original message is not leaked.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "Resource")
	case errors.Is(err, services.ErrNotAuthorized):
		utils.UnauthorizedResponse(c, "You do not have access to this resource")
	case errors.Is(err, services.ErrInvalidCredential),
		errors.Is(err, services.ErrAccountDisabled):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrAlreadyInWishlist),
		errors.Is(err, services.ErrAlreadyRequested),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrNotPaid),
		errors.Is(err, services.ErrPaymentIncomplete),
		errors.Is(err, services.ErrWrongPaymentKind),
		errors.Is(err, services.ErrNotEligible),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotInWishlist),
		errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrWebhookSignature):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.InternalErrorResponse(c, "Something went wrong")
	}
}

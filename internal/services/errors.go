// internal/services/errors.go
package services

import "errors"

// Domain-rule violations detected at the operation boundary. Handlers map
// these onto HTTP statuses; services never retry them.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrNotPaid           = errors.New("order is not paid")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrWrongPaymentKind  = errors.New("refunds are only available for stripe payments")
	ErrNotEligible       = errors.New("order must be delivered to request refund")
	ErrAlreadyRequested  = errors.New("refund already requested for this order")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrDuplicateReview   = errors.New("product already reviewed")
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrNotInWishlist     = errors.New("product not found in wishlist")
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrWebhookSignature  = errors.New("webhook signature verification failed")
	ErrSelfDelete        = errors.New("cannot delete your own account")
)

package model

import (
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidPromoCode    = "INVALID_PROMO_CODE"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeSubmissionInFlight  = "SUBMISSION_IN_PROGRESS"
	ErrCodeCheckoutNotStarted  = "CHECKOUT_NOT_STARTED"
	ErrCodeItemNotInCart       = "ITEM_NOT_IN_CART"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeRequestFailed       = "REQUEST_FAILED"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeUnknownPaymentMthd  = "UNKNOWN_PAYMENT_METHOD"
	ErrCodeUnknownShippingMthd = "UNKNOWN_SHIPPING_METHOD"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidPromoCode      = NewDomainError(ErrCodeInvalidPromoCode, "Invalid promo code")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidStatus         = NewDomainError(ErrCodeInvalidStatus, "Status must be one of pending, processing, shipped, delivered, cancelled")
	ErrEmptyCart             = NewDomainError(ErrCodeEmptyCart, "Your cart is empty. Please add items before checkout.")
	ErrInvalidTransition     = NewDomainError(ErrCodeInvalidTransition, "This checkout step is not available right now")
	ErrSubmissionInProgress  = NewDomainError(ErrCodeSubmissionInFlight, "Order submission already in progress")
	ErrCheckoutNotStarted    = NewDomainError(ErrCodeCheckoutNotStarted, "No checkout in progress for this session")
	ErrItemNotInCart         = NewDomainError(ErrCodeItemNotInCart, "Item not found in cart")
	ErrSessionNotFound       = NewDomainError(ErrCodeSessionNotFound, "Session not found or expired")
	ErrForbidden             = NewDomainError(ErrCodeForbidden, "Admin access required")
	ErrInvalidDateRange      = NewDomainError(ErrCodeInvalidDateRange, "Start date must not be after end date")
	ErrUnknownPaymentMethod  = NewDomainError(ErrCodeUnknownPaymentMthd, "Please select a payment method")
	ErrUnknownShippingMethod = NewDomainError(ErrCodeUnknownShippingMthd, "Shipping method must be standard or express")
)

// ValidationError carries per-field messages for client-side form checks.
// It never originates from the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

package model

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	OrderID       string `json:"orderId,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeInvalidParameter         = "INVALID_PARAMETER"
	ErrCodeInvalidCheckoutRequest   = "INVALID_CHECKOUT_REQUEST"
	ErrCodeCartEmptyAfterResolution = "CART_EMPTY_AFTER_RESOLUTION"
	ErrCodePreferenceCreationFailed = "PREFERENCE_CREATION_FAILED"
	ErrCodeOrderNotFound            = "ORDER_NOT_FOUND"
	ErrCodeOrderNotRetryable        = "ORDER_NOT_RETRYABLE"
	ErrCodeUnauthorised             = "UNAUTHORIZED"
	ErrCodeRateLimited              = "RATE_LIMITED"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Status  int
	// OrderID is set when the failure happened after the order was persisted.
	OrderID *uuid.UUID
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so callers can compare against the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// InvalidCheckoutRequest reports a request rejected before any write.
func InvalidCheckoutRequest(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidCheckoutRequest, message, http.StatusBadRequest)
}

// PreferenceCreationFailed reports a gateway failure after the order was persisted.
func PreferenceCreationFailed(orderID uuid.UUID, err error) *DomainError {
	e := NewDomainError(ErrCodePreferenceCreationFailed, "failed to create payment preference", http.StatusBadGateway)
	e.OrderID = &orderID
	e.Err = err
	return e
}

// Common domain errors
var (
	ErrInvalidCheckoutRequest   = InvalidCheckoutRequest("invalid checkout request")
	ErrCartEmptyAfterResolution = NewDomainError(ErrCodeCartEmptyAfterResolution, "none of the requested items could be found in the catalog", http.StatusBadRequest)
	ErrPreferenceCreationFailed = NewDomainError(ErrCodePreferenceCreationFailed, "failed to create payment preference", http.StatusBadGateway)
	ErrOrderNotFound            = NewDomainError(ErrCodeOrderNotFound, "order not found", http.StatusNotFound)
	ErrOrderNotRetryable        = NewDomainError(ErrCodeOrderNotRetryable, "order is not awaiting a payment preference", http.StatusConflict)
)

// AsDomainError extracts a DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

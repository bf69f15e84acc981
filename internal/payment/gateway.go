// Package payment talks to the electronic payment gateway and produces pickup
// instructions for offline payment methods.
package payment

import (
	"context"
	"errors"
	"fmt"

	"checkout-engine/internal/model"

	"github.com/google/uuid"
)

// Payer is the customer contact data sent with a preference.
type Payer struct {
	Name  string
	Email string
	Phone *string
}

// PreferenceRequest describes a checkout session to open at the gateway.
type PreferenceRequest struct {
	OrderID  uuid.UUID
	Items    []model.OrderLineItem
	Payer    Payer
	Site     *model.Site
	Currency string
}

// Preference is the gateway's checkout session.
type Preference struct {
	ID        string
	InitPoint string
}

// Gateway creates payment preferences.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}

// ProviderError is a non-2xx answer from the gateway.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment provider returned status %d: %s", e.StatusCode, e.Message)
}

var (
	ErrProviderUnreachable     = errors.New("payment provider unreachable")
	ErrInvalidProviderResponse = errors.New("invalid payment provider response")
)

// FailureReason returns a short caller-safe description of a gateway failure,
// or "" when err did not come from the gateway.
func FailureReason(err error) string {
	var perr *ProviderError
	switch {
	case errors.As(err, &perr):
		if perr.Message != "" {
			return perr.Message
		}
		return fmt.Sprintf("payment provider returned status %d", perr.StatusCode)
	case errors.Is(err, ErrProviderUnreachable):
		return ErrProviderUnreachable.Error()
	case errors.Is(err, ErrInvalidProviderResponse):
		return ErrInvalidProviderResponse.Error()
	}
	return ""
}

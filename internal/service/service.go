package service

import (
	"context"

	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"

	"github.com/google/uuid"
)

// CheckoutService turns checkout requests into persisted orders.
type CheckoutService interface {
	// Checkout validates, prices and persists the request, then either opens a payment
	// preference or returns pickup instructions.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*CheckoutResult, error)

	// RetryPreference re-runs only the gateway steps for an order that was persisted
	// without a payment preference.
	RetryPreference(ctx context.Context, orderID uuid.UUID) (*CheckoutResult, error)
}

// OrderService exposes persisted orders for follow-up.
type OrderService interface {
	// GetByID retrieves an order with its items. Unknown IDs return model.ErrOrderNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListAwaitingPreference lists gateway orders still missing a payment preference.
	ListAwaitingPreference(ctx context.Context, limit int) ([]model.Order, error)
}

// CatalogLoader resolves the catalog records referenced by a checkout.
type CatalogLoader interface {
	Load(ctx context.Context, items []model.CheckoutItemRequest) (*catalog.Lookup, error)
}

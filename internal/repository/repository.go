package repository

import (
	"context"

	"checkout-engine/internal/model"

	"github.com/google/uuid"
)

// CatalogRepository defines read access to the product and course catalog.
type CatalogRepository interface {
	// GetPhysicalItemsByIDs retrieves physical items in a single round trip.
	// Unknown IDs are silently absent from the result.
	GetPhysicalItemsByIDs(ctx context.Context, ids []string) ([]model.PhysicalItem, error)

	// GetDigitalCourseByID retrieves a single course. Returns nil, nil when absent.
	GetDigitalCourseByID(ctx context.Context, id string) (*model.DigitalCourse, error)
}

// CustomerRepository defines customer upsert and stat tracking.
type CustomerRepository interface {
	// Upsert creates the customer or refreshes the existing profile matched by email,
	// incrementing its order count.
	Upsert(ctx context.Context, email, name string, phone *string) (*model.Customer, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create persists the order and its line items in one transaction.
	Create(ctx context.Context, order *model.Order) (uuid.UUID, error)

	// Update applies the non-nil patch fields. Returns model.ErrOrderNotFound when no row matches.
	Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error

	// GetByID retrieves an order with its items. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListAwaitingPreference lists gateway orders still pending without a payment preference,
	// oldest first.
	ListAwaitingPreference(ctx context.Context, limit int) ([]model.Order, error)
}

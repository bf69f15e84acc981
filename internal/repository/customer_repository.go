package repository

import (
	"context"
	"fmt"
	"time"

	"checkout-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// Upsert creates or refreshes a customer keyed by email.
// A nil phone keeps the stored phone number.
func (r *customerRepository) Upsert(ctx context.Context, email, name string, phone *string) (*model.Customer, error) {
	query := `
		INSERT INTO customers (id, email, name, phone, order_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, customers.phone),
			order_count = customers.order_count + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, phone, order_count, created_at, updated_at
	`

	var c model.Customer
	err := r.pool.QueryRow(ctx, query, uuid.New(), email, name, phone, time.Now().UTC()).Scan(
		&c.ID,
		&c.Email,
		&c.Name,
		&c.Phone,
		&c.OrderCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to upsert customer")
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	r.logger.Debug().
		Str("customer_id", c.ID.String()).
		Int("order_count", c.OrderCount).
		Msg("customer upserted")

	return &c, nil
}

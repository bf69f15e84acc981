package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, status, payment_status, payment_method, customer_id,
	customer_name, customer_email, customer_phone,
	total::text, currency, fulfillment, preference_id, external_reference,
	payment_url, created_at, updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Create inserts the order and its items within a single transaction.
// ID and timestamps are assigned here when unset.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) (id uuid.UUID, err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		now := time.Now().UTC()
		order.CreatedAt = now
		order.UpdatedAt = now
	}

	var fulfillment []byte
	if !order.Fulfillment.IsEmpty() {
		fulfillment, err = json.Marshal(order.Fulfillment)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode fulfillment metadata: %w", err)
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	orderQuery := `
		INSERT INTO orders (
			id, status, payment_status, payment_method, customer_id,
			customer_name, customer_email, customer_phone,
			total, currency, fulfillment, preference_id, external_reference,
			payment_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID,
		order.Status,
		order.PaymentStatus,
		string(order.PaymentMethod),
		order.CustomerID,
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.Total.String(),
		order.Currency,
		fulfillment,
		order.PreferenceID,
		order.ExternalReference,
		order.PaymentURL,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return uuid.Nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = r.createItems(ctx, tx, order.ID, order.Items); err != nil {
		return uuid.Nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return uuid.Nil, fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return order.ID, nil
}

// createItems inserts the order's line items as one batch.
func (r *orderRepository) createItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, item_type, ref_id, name, quantity, unit_price, line_total, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query,
			uuid.New(),
			orderID,
			i,
			string(item.ItemType),
			item.RefID,
			item.Name,
			item.Quantity,
			item.UnitPrice.String(),
			item.LineTotal.String(),
			item.Image,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("ref_id", items[i].RefID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// Update applies the non-nil fields of patch to the order.
func (r *orderRepository) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch) error {
	query := `
		UPDATE orders SET
			preference_id = COALESCE($2, preference_id),
			external_reference = COALESCE($3, external_reference),
			payment_url = COALESCE($4, payment_url),
			updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, patch.PreferenceID, patch.ExternalReference, patch.PaymentURL, time.Now().UTC())
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("order_id", id.String()).Msg("order to update not found")
		return model.ErrOrderNotFound
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListAwaitingPreference lists gateway orders that never received a payment preference.
func (r *orderRepository) ListAwaitingPreference(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE preference_id IS NULL
			AND status = $1
			AND payment_status = $2
			AND payment_method = $3
		ORDER BY created_at
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		model.OrderStatusPending,
		model.PaymentStatusPending,
		string(model.PaymentMethodMercadoPago),
		limit,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders awaiting preference")
		return nil, fmt.Errorf("failed to query orders awaiting preference: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderLineItem, error) {
	query := `
		SELECT item_type, ref_id, name, quantity, unit_price::text, line_total::text, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderLineItem
	for rows.Next() {
		var (
			item                 model.OrderLineItem
			itemType             string
			unitPrice, lineTotal string
		)
		if err := rows.Scan(&itemType, &item.RefID, &item.Name, &item.Quantity, &unitPrice, &lineTotal, &item.Image); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.ItemType = model.ItemType(itemType)
		if item.UnitPrice, err = parseDecimal(unitPrice); err != nil {
			return nil, err
		}
		if item.LineTotal, err = parseDecimal(lineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order         model.Order
		paymentMethod string
		total         string
		fulfillment   []byte
	)

	err := row.Scan(
		&order.ID,
		&order.Status,
		&order.PaymentStatus,
		&paymentMethod,
		&order.CustomerID,
		&order.Customer.Name,
		&order.Customer.Email,
		&order.Customer.Phone,
		&total,
		&order.Currency,
		&fulfillment,
		&order.PreferenceID,
		&order.ExternalReference,
		&order.PaymentURL,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.PaymentMethod = model.PaymentMethod(paymentMethod)
	if order.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}

	if len(fulfillment) > 0 {
		var meta model.FulfillmentMetadata
		if err := json.Unmarshal(fulfillment, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode fulfillment metadata: %w", err)
		}
		order.Fulfillment = &meta
	}

	return &order, nil
}

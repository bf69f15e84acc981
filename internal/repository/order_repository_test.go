package repository

import (
	"context"
	"testing"
	"time"

	"checkout-engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrder builds a pending order for the given customer.
func newTestOrder(customerID uuid.UUID, method model.PaymentMethod, fulfillment *model.FulfillmentMetadata) *model.Order {
	return &model.Order{
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: method,
		CustomerID:    customerID,
		Customer: model.CustomerSnapshot{
			Name:  "Ana",
			Email: "ana@example.com",
		},
		Items: []model.OrderLineItem{
			{
				ItemType:  model.ItemTypePhysical,
				RefID:     "P1",
				Name:      "Taza de cerámica",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(100),
				LineTotal: decimal.NewFromInt(200),
				Image:     strPtr("https://cdn.example.com/p1.jpg"),
			},
			{
				ItemType:  model.ItemTypePhysical,
				RefID:     "P2",
				Name:      "Taller de cerámica",
				Quantity:  1,
				UnitPrice: decimal.RequireFromString("90.50"),
				LineTotal: decimal.RequireFromString("90.50"),
			},
		},
		Total:       decimal.RequireFromString("290.50"),
		Currency:    "ARS",
		Fulfillment: fulfillment,
	}
}

// setupOrderTestDB creates a test database with a stored customer.
func setupOrderTestDB(t *testing.T) (*pgxpool.Pool, uuid.UUID, func()) {
	pool, cleanup := setupTestDB(t)

	customer, err := NewCustomerRepository(pool, zerolog.Nop()).
		Upsert(context.Background(), "ana@example.com", "Ana", nil)
	require.NoError(t, err)

	return pool, customer.ID, cleanup
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, customerID, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	orderType := model.OrderTypePresentialCourse
	site := model.SiteAlmagro
	meta := &model.FulfillmentMetadata{
		OrderType:       &orderType,
		Sede:            &site,
		PickupLocations: []string{"Av. Corrientes 4000"},
	}

	tests := []struct {
		name  string
		order *model.Order
	}{
		{
			name:  "Order with fulfillment metadata",
			order: newTestOrder(customerID, model.PaymentMethodTransfer, meta),
		},
		{
			name:  "Order without fulfillment metadata",
			order: newTestOrder(customerID, model.PaymentMethodCash, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.Create(ctx, tt.order)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)

			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, model.OrderStatusPending, got.Status)
			assert.Equal(t, model.PaymentStatusPending, got.PaymentStatus)
			assert.Equal(t, tt.order.PaymentMethod, got.PaymentMethod)
			assert.Equal(t, customerID, got.CustomerID)
			assert.Equal(t, "ana@example.com", got.Customer.Email)
			assert.True(t, decimal.RequireFromString("290.50").Equal(got.Total))
			assert.Equal(t, tt.order.Fulfillment, got.Fulfillment)
			assert.Nil(t, got.PreferenceID)

			require.Len(t, got.Items, 2)
			assert.Equal(t, "P1", got.Items[0].RefID)
			assert.Equal(t, 2, got.Items[0].Quantity)
			assert.True(t, decimal.NewFromInt(200).Equal(got.Items[0].LineTotal))
			assert.Equal(t, "P2", got.Items[1].RefID)
			assert.Nil(t, got.Items[1].Image)
		})
	}
}

func TestOrderRepository_Create_RollsBackOnItemFailure(t *testing.T) {
	pool, customerID, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := newTestOrder(customerID, model.PaymentMethodCash, nil)
	order.Items[1].Quantity = 0 // violates CHECK (quantity > 0)

	_, err := repo.Create(ctx, order)
	require.Error(t, err)

	var count int
	err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE id = $1", order.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderRepository_Update(t *testing.T) {
	pool, customerID, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestOrder(customerID, model.PaymentMethodMercadoPago, nil))
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	ref := id.String()
	err = repo.Update(ctx, id, model.OrderPatch{
		PreferenceID:      strPtr("pref-123"),
		ExternalReference: &ref,
		PaymentURL:        strPtr("https://pay.example/pref-123"),
	})
	require.NoError(t, err)

	after, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, strPtr("pref-123"), after.PreferenceID)
	assert.Equal(t, &ref, after.ExternalReference)
	assert.Equal(t, strPtr("https://pay.example/pref-123"), after.PaymentURL)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	// Nil fields leave stored values untouched
	require.NoError(t, repo.Update(ctx, id, model.OrderPatch{}))
	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, strPtr("pref-123"), again.PreferenceID)
	assert.Equal(t, strPtr("https://pay.example/pref-123"), again.PaymentURL)
}

func TestOrderRepository_Update_NotFound(t *testing.T) {
	pool, _, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())

	err := repo.Update(context.Background(), uuid.New(), model.OrderPatch{PreferenceID: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	pool, _, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())

	order, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestOrderRepository_ListAwaitingPreference(t *testing.T) {
	pool, customerID, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	awaiting, err := repo.Create(ctx, newTestOrder(customerID, model.PaymentMethodMercadoPago, nil))
	require.NoError(t, err)

	attached, err := repo.Create(ctx, newTestOrder(customerID, model.PaymentMethodMercadoPago, nil))
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, attached, model.OrderPatch{PreferenceID: strPtr("pref-1")}))

	_, err = repo.Create(ctx, newTestOrder(customerID, model.PaymentMethodCash, nil))
	require.NoError(t, err)

	orders, err := repo.ListAwaitingPreference(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, awaiting, orders[0].ID)
	assert.Len(t, orders[0].Items, 2)
}

package integration

import (
	"context"
	"testing"

	"checkout-engine/internal/catalog"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLoader_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	loader := catalog.NewLoader(repository.NewCatalogRepository(testDB.Pool, logger), 2, logger)

	ctx := context.Background()

	t.Run("Load resolves physical items and courses", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		lookup, err := loader.Load(ctx, []model.CheckoutItemRequest{
			{ItemType: model.ItemTypePhysical, CatalogID: ClayID, Quantity: 1},
			{ItemType: model.ItemTypePhysical, CatalogID: WorkshopID, Quantity: 1},
			{ItemType: model.ItemTypePhysical, CatalogID: ClayID, Quantity: 4},
			{ItemType: model.ItemTypeDigitalCourse, CatalogID: CourseID, Quantity: 1},
		})
		require.NoError(t, err)

		assert.Len(t, lookup.Physical, 2)
		assert.Len(t, lookup.Courses, 1)

		clay := lookup.Physical[ClayID]
		assert.Nil(t, clay.Price)
		require.NotNil(t, clay.PriceCash)
		assert.True(t, decimal.NewFromInt(1000).Equal(*clay.PriceCash))
		assert.Equal(t, []string{"https://img.test/clay.png"}, clay.Images)

		workshop := lookup.Physical[WorkshopID]
		require.NotNil(t, workshop.Sede)
		assert.Equal(t, "Almagro", *workshop.Sede)

		assert.Equal(t, "Wheel basics online", lookup.Courses[CourseID].Title)
	})

	t.Run("Load leaves unknown IDs absent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		lookup, err := loader.Load(ctx, []model.CheckoutItemRequest{
			{ItemType: model.ItemTypePhysical, CatalogID: "missing", Quantity: 1},
			{ItemType: model.ItemTypeDigitalCourse, CatalogID: "missing-course", Quantity: 1},
			{ItemType: model.ItemTypePhysical, CatalogID: GlazeID, Quantity: 1},
		})
		require.NoError(t, err)

		assert.True(t, lookup.Has(model.ItemTypePhysical, GlazeID))
		assert.False(t, lookup.Has(model.ItemTypePhysical, "missing"))
		assert.False(t, lookup.Has(model.ItemTypeDigitalCourse, "missing-course"))
	})
}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	customers := repository.NewCustomerRepository(testDB.Pool, logger)
	orders := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	newOrder := func(t *testing.T, method model.PaymentMethod) *model.Order {
		t.Helper()

		c, err := customers.Upsert(ctx, "ana@example.com", "Ana Test", nil)
		require.NoError(t, err)

		return &model.Order{
			ID:            uuid.New(),
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
			PaymentMethod: method,
			CustomerID:    c.ID,
			Customer:      model.CustomerSnapshot{Name: c.Name, Email: c.Email},
			Items: []model.OrderLineItem{
				{
					ItemType:  model.ItemTypePhysical,
					RefID:     GlazeID,
					Name:      "Glaze set",
					Quantity:  2,
					UnitPrice: decimal.NewFromInt(500),
					LineTotal: decimal.NewFromInt(500),
				},
			},
			Total:    decimal.NewFromInt(500),
			Currency: "ARS",
		}
	}

	t.Run("gateway order leaves the pending list once a preference is attached", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		id, err := orders.Create(ctx, newOrder(t, model.PaymentMethodMercadoPago))
		require.NoError(t, err)

		pending, err := orders.ListAwaitingPreference(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, id, pending[0].ID)

		prefID := "pref-1"
		ref := id.String()
		url := "https://pay.test/pref-1"
		require.NoError(t, orders.Update(ctx, id, model.OrderPatch{
			PreferenceID:      &prefID,
			ExternalReference: &ref,
			PaymentURL:        &url,
		}))

		pending, err = orders.ListAwaitingPreference(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)

		order, err := orders.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, prefID, *order.PreferenceID)
		assert.Equal(t, url, *order.PaymentURL)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
	})

	t.Run("cash orders are never awaiting a preference", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		_, err := orders.Create(ctx, newOrder(t, model.PaymentMethodCash))
		require.NoError(t, err)

		pending, err := orders.ListAwaitingPreference(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("Update of an unknown order returns not found", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		prefID := "pref-x"
		err := orders.Update(ctx, uuid.New(), model.OrderPatch{PreferenceID: &prefID})
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

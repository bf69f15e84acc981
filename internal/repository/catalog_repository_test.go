package repository

import (
	"context"
	"sort"
	"testing"

	"checkout-engine/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// seedCatalog inserts physical items and courses used by the catalog tests.
func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO physical_items (id, name, category, unit, price, price_cash, price_other, legacy_price, images, sede, location_text)
		VALUES
			('P1', 'Taza de cerámica', 'bazar', 'unidad', 120.00, 100.00, 130.00, NULL, ARRAY['https://cdn.example.com/p1.jpg'], NULL, NULL),
			('P2', 'Taller de cerámica', 'talleres', 'clase', NULL, NULL, NULL, 90.00, '{}', 'almagro', 'Av. Corrientes 4000'),
			('P3', 'Gift Card $5000', 'regalos', 'unidad', 5000.00, NULL, NULL, NULL, '{}', NULL, NULL)
	`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO digital_courses (id, title) VALUES ('C1', 'Curso online de torno')
	`)
	require.NoError(t, err)
}

func TestCatalogRepository_GetPhysicalItemsByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, pool)

	repo := NewCatalogRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name        string
		ids         []string
		expectedIDs []string
	}{
		{
			name:        "All found",
			ids:         []string{"P1", "P2"},
			expectedIDs: []string{"P1", "P2"},
		},
		{
			name:        "Missing IDs are dropped",
			ids:         []string{"P1", "UNKNOWN"},
			expectedIDs: []string{"P1"},
		},
		{
			name:        "Empty input",
			ids:         []string{},
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.GetPhysicalItemsByIDs(ctx, tt.ids)
			require.NoError(t, err)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			sort.Strings(ids)
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestCatalogRepository_PhysicalItemFields(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, pool)

	repo := NewCatalogRepository(pool, zerolog.Nop())

	items, err := repo.GetPhysicalItemsByIDs(context.Background(), []string{"P1", "P2"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]model.PhysicalItem{}
	for _, item := range items {
		byID[item.ID] = item
	}

	p1 := byID["P1"]
	require.NotNil(t, p1.PriceCash)
	assert.True(t, decimal.NewFromInt(100).Equal(*p1.PriceCash))
	require.NotNil(t, p1.PriceOther)
	assert.True(t, decimal.NewFromInt(130).Equal(*p1.PriceOther))
	assert.Nil(t, p1.LegacyPrice)
	assert.Nil(t, p1.Sede)
	assert.Equal(t, []string{"https://cdn.example.com/p1.jpg"}, p1.Images)

	p2 := byID["P2"]
	assert.Nil(t, p2.Price)
	require.NotNil(t, p2.LegacyPrice)
	assert.True(t, decimal.NewFromInt(90).Equal(*p2.LegacyPrice))
	assert.Equal(t, strPtr("almagro"), p2.Sede)
	assert.Equal(t, strPtr("Av. Corrientes 4000"), p2.LocationText)
	assert.Empty(t, p2.Images)
}

func TestCatalogRepository_GetDigitalCourseByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, pool)

	repo := NewCatalogRepository(pool, zerolog.Nop())
	ctx := context.Background()

	course, err := repo.GetDigitalCourseByID(ctx, "C1")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "Curso online de torno", course.Title)

	missing, err := repo.GetDigitalCourseByID(ctx, "C404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

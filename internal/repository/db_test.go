package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer, applies the schema and returns a pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func TestMigrate_Idempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Second application must not fail
	require.NoError(t, Migrate(ctx, pool))

	for _, table := range []string{"physical_items", "digital_courses", "customers", "orders", "order_items"} {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist", table)
	}
}

func TestSchema_Embedded(t *testing.T) {
	assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS orders")
	assert.Contains(t, Schema(), "idx_orders_awaiting_preference")
}

func TestParseNullableDecimal(t *testing.T) {
	d, err := parseNullableDecimal(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	s := "1234.50"
	d, err = parseNullableDecimal(&s)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, decimal.RequireFromString("1234.5").Equal(*d))

	bad := "abc"
	_, err = parseNullableDecimal(&bad)
	assert.Error(t, err)
}

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"checkout-engine/internal/config"
	"checkout-engine/internal/database"
	"checkout-engine/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB creates a PostgreSQL test container, opens a pool through the
// production constructor and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
		ConnectAttempts: 5,
	}

	pool, err := database.NewPool(ctx, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
	}
}

// Seeded catalog IDs.
const (
	ClayID       = "clay-stoneware"
	GlazeID      = "glaze-set"
	WorkshopID   = "workshop-almagro"
	GiftCardID   = "gift-card"
	PickupItemID = "kiln-shelf"
	CourseID     = "course-wheel-basics"
)

// SeedCatalog inserts a small catalog covering every pricing and fulfillment path.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	physical := []struct {
		id, name, category, unit string
		price, cash, other       *string
		sede, location           *string
		images                   []string
	}{
		{ClayID, "Stoneware clay", "arcillas", "kg", nil, ptr("1000.00"), ptr("1200.00"), nil, nil, []string{"https://img.test/clay.png"}},
		{GlazeID, "Glaze set", "esmaltes", "lote", ptr("500.00"), nil, nil, nil, nil, nil},
		{WorkshopID, "Saturday workshop", "cursos", "", ptr("3000.00"), nil, nil, ptr("Almagro"), ptr("Almagro studio, ground floor"), nil},
		{GiftCardID, "Gift card", "regalos", "", ptr("2000.00"), nil, nil, nil, nil, nil},
		{PickupItemID, "Kiln shelf", "hornos", "unidad", ptr("800.00"), nil, nil, nil, ptr("Retiro en Ciudad Jardín"), nil},
	}

	for _, p := range physical {
		images := p.images
		if images == nil {
			images = []string{}
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO physical_items (id, name, category, unit, price, price_cash, price_other, images, sede, location_text)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10)`,
			p.id, p.name, p.category, p.unit, p.price, p.cash, p.other, images, p.sede, p.location,
		)
		if err != nil {
			t.Fatalf("failed to seed physical item %s: %v", p.id, err)
		}
	}

	if _, err := pool.Exec(ctx,
		"INSERT INTO digital_courses (id, title) VALUES ($1, $2)",
		CourseID, "Wheel basics online",
	); err != nil {
		t.Fatalf("failed to seed course %s: %v", CourseID, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "customers", "digital_courses", "physical_items"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

func ptr(s string) *string {
	return &s
}

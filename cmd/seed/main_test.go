package main

import (
	"context"
	"testing"
	"time"

	"shopcore/internal/database"
	"shopcore/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSeedProducts(t *testing.T) {
	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))

	n, err := seedProducts(ctx, pool, demoCatalogue)
	require.NoError(t, err)
	assert.Equal(t, len(demoCatalogue), n)

	// Re-seeding updates prices in place.
	_, err = seedProducts(ctx, pool, []model.Product{{ID: "P001", Title: "Desk Lamp", UnitPrice: decimal.RequireFromString("14.00")}})
	require.NoError(t, err)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count))
	assert.Equal(t, len(demoCatalogue), count)

	var price decimal.Decimal
	require.NoError(t, pool.QueryRow(ctx, "SELECT unit_price FROM products WHERE id = 'P001'").Scan(&price))
	assert.Equal(t, "14.00", price.StringFixed(2))
}

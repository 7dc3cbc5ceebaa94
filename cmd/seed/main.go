// Command seed applies the schema and loads a demo catalogue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"shopcore/internal/config"
	"shopcore/internal/database"
	"shopcore/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// demoCatalogue is the product set loaded by default.
var demoCatalogue = []model.Product{
	{ID: "P001", Title: "Desk Lamp", UnitPrice: decimal.RequireFromString("12.50")},
	{ID: "P002", Title: "Notebook", UnitPrice: decimal.RequireFromString("3.20")},
	{ID: "P003", Title: "Ceramic Mug", UnitPrice: decimal.RequireFromString("8.00")},
	{ID: "P004", Title: "Mechanical Keyboard", UnitPrice: decimal.RequireFromString("89.99")},
	{ID: "P005", Title: "Sticker", UnitPrice: decimal.RequireFromString("0.30")},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (defaults to DB_* variables)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	if *dsn == "" {
		*dsn = (&config.DatabaseConfig{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     5432,
			User:     envOr("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: envOr("DB_NAME", "shopcore"),
		}).ConnectionString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := database.Connect(ctx, *dsn, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	n, err := seedProducts(ctx, pool, demoCatalogue)
	if err != nil {
		return err
	}

	fmt.Printf("Schema applied, %d products seeded\n", n)
	return nil
}

// seedProducts upserts products by id and returns how many were written.
func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []model.Product) (int, error) {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO products (id, title, unit_price)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, unit_price = EXCLUDED.unit_price
		`, p.ID, p.Title, p.UnitPrice)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, p := range products {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

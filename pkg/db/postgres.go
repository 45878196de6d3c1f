package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func NewPostgresConnection(cfg PostgresConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the four durable collections if they don't exist.
// They are deliberately independent tables: the checkout flow never relies
// on a transaction spanning more than one of them.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price BIGINT NOT NULL DEFAULT 0,
			stock BIGINT NOT NULL DEFAULT 0 CHECK (stock >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			discount_type TEXT NOT NULL,
			discount_value DOUBLE PRECISION NOT NULL,
			max_discount BIGINT,
			min_order_value BIGINT NOT NULL DEFAULT 0,
			max_total_uses INTEGER,
			current_use_count INTEGER NOT NULL DEFAULT 0,
			max_uses_per_user INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			start_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expiry_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS coupons_code_key ON coupons (lower(code))`,
		`CREATE TABLE IF NOT EXISTS coupon_usages (
			id TEXT PRIMARY KEY,
			coupon_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			discount_amount BIGINT NOT NULL,
			used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS coupon_usages_user_idx ON coupon_usages (coupon_id, user_id)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			items JSONB NOT NULL,
			original_amount BIGINT NOT NULL,
			discount_amount BIGINT NOT NULL DEFAULT 0,
			shipping_fee BIGINT NOT NULL DEFAULT 0,
			amount BIGINT NOT NULL,
			coupon JSONB,
			address JSONB NOT NULL,
			payment_method TEXT NOT NULL,
			payment_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL,
			placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			cancelled_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id, placed_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

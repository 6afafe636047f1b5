package db

import (
	"context"
	"fmt"

	"github.com/tourvia/booking-service/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                 UUID PRIMARY KEY,
	name               TEXT NOT NULL,
	page_path          TEXT NOT NULL,
	unit_price_full    NUMERIC(10,2) NOT NULL DEFAULT 0,
	unit_price_reduced NUMERIC(10,2) NOT NULL DEFAULT 0,
	deposit_percentage NUMERIC(5,2) NOT NULL DEFAULT 20,
	price_plan_full    TEXT,
	price_plan_reduced TEXT,
	is_active          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reservations (
	id                 UUID PRIMARY KEY,
	product_id         UUID NOT NULL REFERENCES products(id),
	reserved_date      DATE NOT NULL,
	full_count         INT NOT NULL DEFAULT 0,
	reduced_count      INT NOT NULL DEFAULT 0,
	first_name         TEXT NOT NULL,
	last_name          TEXT NOT NULL,
	email              TEXT NOT NULL,
	phone              TEXT NOT NULL,
	total_price        NUMERIC(10,2) NOT NULL,
	deposit_amount     NUMERIC(10,2) NOT NULL,
	payment_status     TEXT NOT NULL DEFAULT 'pending_checkout',
	payment_session_id TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations (payment_status);
`

// Migrate bootstraps the schema. Statements are idempotent so running
// this on every boot is safe.
func Migrate(ctx context.Context) error {
	if _, err := DB.Exec(ctx, schema); err != nil {
		logger.ErrorLogger.Errorf("Schema migration failed: %v", err)
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	logger.InfoLogger.Info("Schema migration completed.")
	return nil
}

package database

import (
	"context"
	"fmt"
)

// migrationStatements run in order at boot. Every statement is idempotent so
// a restart against an already-migrated database is a no-op.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'STAFF',
		push_token TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS regions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL DEFAULT '',
		region_id UUID REFERENCES regions(id) ON DELETE SET NULL,
		region_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (category, name)
	)`,

	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		vehicle_name TEXT NOT NULL DEFAULT '',
		vehicle_plate TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_number TEXT NOT NULL UNIQUE,
		customer_id UUID NOT NULL REFERENCES customers(id),
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		customer_address TEXT NOT NULL DEFAULT '',
		customer_region_name TEXT,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		driver_name TEXT,
		driver_vehicle_plate TEXT,
		status TEXT NOT NULL DEFAULT 'TO_BE_PICKED_UP',
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		discounted_total NUMERIC(12,2) NOT NULL DEFAULT 0,
		paid_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		remaining_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		is_credit_debt BOOLEAN NOT NULL DEFAULT FALSE,
		pickup_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		delivery_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		notes TEXT,
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		product_category TEXT NOT NULL,
		product_unit TEXT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		quantity NUMERIC(12,2) NOT NULL,
		line_total NUMERIC(12,2) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		amount NUMERIC(12,2) NOT NULL,
		category TEXT NOT NULL DEFAULT 'GENERAL',
		description TEXT NOT NULL DEFAULT '',
		entry_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS incomes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		amount NUMERIC(12,2) NOT NULL,
		category TEXT NOT NULL DEFAULT 'OTHER',
		description TEXT NOT NULL DEFAULT '',
		entry_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS message_templates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_pickup_date ON orders (pickup_date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_delivery_date ON orders (delivery_date)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_credit ON orders (is_credit_debt) WHERE is_credit_debt`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_entry_date ON expenses (entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_incomes_entry_date ON incomes (entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers (name)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range migrationStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}
	return nil
}

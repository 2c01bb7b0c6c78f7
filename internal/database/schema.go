package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates every table, index and sequence the application
// needs.  All statements are idempotent so the function can run on every
// startup.  Cart items cascade with their cart (the duplicate-cart merge
// relies on this) and order lines cascade with their order, while orders
// keep a SET NULL user reference so financial history survives account
// deletion.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			surname TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'CLIENT',
			client_type TEXT NOT NULL DEFAULT 'INDIVIDUAL',
			siret TEXT,
			company_name TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			reset_token_hash TEXT,
			reset_token_expires TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL,
			promo_price NUMERIC(12,2),
			tax_rate NUMERIC(5,2) NOT NULL DEFAULT 20,
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			low_stock_threshold INTEGER NOT NULL DEFAULT 5,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			labels JSONB NOT NULL DEFAULT '[]',
			category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_carts_user ON carts (user_id)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id BIGSERIAL PRIMARY KEY,
			cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(12,2) NOT NULL,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (cart_id, product_id)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			status TEXT NOT NULL DEFAULT 'EN_ATTENTE',
			shipping_address JSONB NOT NULL,
			billing_address JSONB,
			payment_mode TEXT NOT NULL DEFAULT 'VIREMENT',
			subtotal_ht NUMERIC(12,2) NOT NULL,
			total_tva NUMERIC(12,2) NOT NULL,
			shipping_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_ttc NUMERIC(12,2) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT REFERENCES products(id) ON DELETE SET NULL,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price_ht NUMERIC(12,2) NOT NULL,
			tax_rate NUMERIC(5,2) NOT NULL,
			line_total_ht NUMERIC(12,2) NOT NULL,
			line_tva NUMERIC(12,2) NOT NULL,
			line_total_ttc NUMERIC(12,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines (order_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id BIGSERIAL PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'general',
			value JSONB NOT NULL,
			value_type TEXT NOT NULL DEFAULT 'string',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

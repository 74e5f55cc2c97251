package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Open connects through the pgx stdlib driver and pings the server.
func Open(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a Postgres unique_violation,
// whichever driver produced it.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// Schema lists the bootstrap statements run by Migrate, in order.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		"firstName" TEXT NOT NULL DEFAULT '',
		"lastName" TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		"resetToken" TEXT,
		"resetTokenExpiry" TIMESTAMPTZ,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		"imageUrl" TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		"offerPrice" NUMERIC(12,2),
		stock INT NOT NULL DEFAULT 0,
		"imgUrl" TEXT NOT NULL DEFAULT '',
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id TEXT PRIMARY KEY,
		"userId" TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		"fullName" TEXT NOT NULL,
		"phoneNumber" TEXT NOT NULL,
		pincode TEXT NOT NULL DEFAULT '',
		area TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		"isDefault" BOOLEAN NOT NULL DEFAULT FALSE,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id TEXT PRIMARY KEY,
		"userId" TEXT NOT NULL,
		"productId" TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE ("userId", "productId")
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		"userId" TEXT NOT NULL,
		"totalAmount" NUMERIC(12,2) NOT NULL DEFAULT 0,
		"kakapayTransactionId" TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		"paymentStatus" TEXT NOT NULL DEFAULT 'PENDING',
		"shippingAddressLine1" TEXT NOT NULL DEFAULT '',
		"shippingAddressLine2" TEXT NOT NULL DEFAULT '',
		"shippingCity" TEXT NOT NULL DEFAULT '',
		"shippingState" TEXT NOT NULL DEFAULT '',
		"shippingZipCode" TEXT NOT NULL DEFAULT '',
		"shippingCountry" TEXT NOT NULL DEFAULT '',
		"shippingAddressId" TEXT,
		"orderDate" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_kakapay_transaction_id_key
		ON orders ("kakapayTransactionId") WHERE "kakapayTransactionId" IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		"orderId" TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		"productId" TEXT NOT NULL,
		quantity INT NOT NULL,
		"priceAtOrder" NUMERIC(12,2) NOT NULL,
		"position" INT NOT NULL DEFAULT 0,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE order_items ADD COLUMN IF NOT EXISTS "position" INT NOT NULL DEFAULT 0`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		"orderId" TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		"paymentMethod" TEXT NOT NULL DEFAULT '',
		"transactionId" TEXT NOT NULL UNIQUE,
		amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'XOF',
		status TEXT NOT NULL,
		"paymentDate" TIMESTAMPTZ,
		"createdAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates missing tables and indexes.
func Migrate(db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

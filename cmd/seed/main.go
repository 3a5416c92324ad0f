// Package main provides a CLI tool that creates the database schema and
// seeds it with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/invoiceseq"
	"salesdesk/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := createSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema is up to date")

	if err := seedUsers(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed users", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// createSchema creates all tables and indexes if they do not exist yet.
// The unique index on doc_orders (store_id, number) is the last line of
// defense for invoice number uniqueness; the commit transaction should
// never actually hit it.
func createSchema(ctx context.Context, pool *postgres.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cat_companies (
			id            UUID PRIMARY KEY,
			code          TEXT NOT NULL,
			name          TEXT NOT NULL,
			full_name     TEXT NOT NULL DEFAULT '',
			tax_id        TEXT NOT NULL DEFAULT '',
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version       INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_companies_code
			ON cat_companies (code) WHERE deletion_mark = FALSE`,

		`CREATE TABLE IF NOT EXISTS cat_stores (
			id             UUID PRIMARY KEY,
			company_id     UUID NOT NULL REFERENCES cat_companies (id),
			code           TEXT NOT NULL,
			name           TEXT NOT NULL,
			address        TEXT,
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			invoice_prefix TEXT NOT NULL DEFAULT '',
			invoice_token  TEXT NOT NULL,
			deletion_mark  BOOLEAN NOT NULL DEFAULT FALSE,
			version        INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_stores_code
			ON cat_stores (company_id, code) WHERE deletion_mark = FALSE`,

		`CREATE TABLE IF NOT EXISTS cat_products (
			id            UUID PRIMARY KEY,
			company_id    UUID NOT NULL REFERENCES cat_companies (id),
			store_id      UUID NOT NULL REFERENCES cat_stores (id),
			code          TEXT NOT NULL,
			name          TEXT NOT NULL,
			sku           TEXT NOT NULL,
			unit_price    BIGINT NOT NULL DEFAULT 0,
			total_stock   BIGINT NOT NULL DEFAULT 0,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version       INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_products_sku
			ON cat_products (store_id, sku) WHERE deletion_mark = FALSE`,

		`CREATE TABLE IF NOT EXISTS doc_orders (
			id             UUID PRIMARY KEY,
			number         TEXT NOT NULL,
			date           TIMESTAMPTZ NOT NULL,
			company_id     UUID NOT NULL REFERENCES cat_companies (id),
			store_id       UUID NOT NULL REFERENCES cat_stores (id),
			status         TEXT NOT NULL,
			comment        TEXT NOT NULL DEFAULT '',
			customer_info  JSONB,
			payments       JSONB,
			total_quantity BIGINT NOT NULL DEFAULT 0,
			total_amount   BIGINT NOT NULL DEFAULT 0,
			line_count     INTEGER NOT NULL DEFAULT 0,
			batch_count    INTEGER NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by     TEXT NOT NULL DEFAULT '',
			updated_by     TEXT NOT NULL DEFAULT '',
			deletion_mark  BOOLEAN NOT NULL DEFAULT FALSE,
			version        INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_orders_store_number
			ON doc_orders (store_id, number)`,
		`CREATE INDEX IF NOT EXISTS ix_doc_orders_store_date
			ON doc_orders (store_id, date DESC)`,

		`CREATE TABLE IF NOT EXISTS doc_order_line_batches (
			id           UUID PRIMARY KEY,
			order_id     UUID NOT NULL REFERENCES doc_orders (id),
			batch_number INTEGER NOT NULL,
			items        JSONB NOT NULL,
			status       TEXT NOT NULL,
			UNIQUE (order_id, batch_number)
		)`,

		`CREATE TABLE IF NOT EXISTS sys_audit (
			id                 UUID PRIMARY KEY,
			entity_type        TEXT NOT NULL,
			entity_id          UUID NOT NULL,
			action             TEXT NOT NULL,
			user_id            TEXT NOT NULL DEFAULT '',
			changes            JSONB,
			changes_compressed BYTEA,
			compression_algo   TEXT NOT NULL DEFAULT 'none',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_sys_audit_entity
			ON sys_audit (entity_type, entity_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			full_name     TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'cashier',
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version       INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email
			ON users (email) WHERE deletion_mark = FALSE`,
	}

	for _, stmt := range statements {
		if _, err := pool.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func seedUsers(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	users := []struct {
		emailEnv    string
		passEnv     string
		defaultMail string
		defaultPass string
		fullName    string
		role        string
		isAdmin     bool
	}{
		{"ADMIN_EMAIL", "ADMIN_PASSWORD", "admin@salesdesk.io", "Admin123!", "System Admin", "manager", true},
		{"CASHIER_EMAIL", "CASHIER_PASSWORD", "cashier@salesdesk.io", "Cashier123!", "Demo Cashier", "cashier", false},
	}

	for _, u := range users {
		email := os.Getenv(u.emailEnv)
		if email == "" {
			email = u.defaultMail
		}
		password := os.Getenv(u.passEnv)
		if password == "" {
			password = u.defaultPass
		}

		var existingID id.ID
		err := pool.Pool.QueryRow(ctx,
			`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
			email,
		).Scan(&existingID)
		if err == nil {
			log.Infow("user already exists", "email", email, "user_id", existingID)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check user exists: %w", err)
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		userID := id.New()
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, full_name, role, is_admin, is_active, version)
			VALUES ($1, $2, $3, $4, $5, $6, true, 1)
		`, userID, email, string(passwordHash), u.fullName, u.role, u.isAdmin)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		log.Infow("user created", "email", email, "role", u.role, "user_id", userID)
	}

	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Company
	companyID := id.New()
	companyCode := "CMP-001"
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_companies (id, code, name, full_name, tax_id, version, deletion_mark)
		VALUES ($1, $2, $3, $4, $5, 1, false)
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, companyID, companyCode, "Acme Retail", "Acme Retail Group LLC", "9900000001")
	if err != nil {
		return fmt.Errorf("seed company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx,
			`SELECT id FROM cat_companies WHERE code = $1 AND deletion_mark = FALSE`,
			companyCode,
		).Scan(&companyID)
		if err != nil {
			return fmt.Errorf("fetch existing company: %w", err)
		}
	}

	// 2. Stores
	stores := []struct {
		code   string
		name   string
		prefix string
	}{
		{"ST-001", "Downtown", "DT-"},
		{"ST-002", "Airport", "AP-"},
	}

	storeIDs := make(map[string]id.ID)
	for _, s := range stores {
		storeID := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_stores (id, company_id, code, name, is_active, invoice_prefix, invoice_token, version, deletion_mark)
			VALUES ($1, $2, $3, $4, true, $5, $6, 1, false)
			ON CONFLICT (company_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, storeID, companyID, s.code, s.name, s.prefix, string(invoiceseq.New(s.prefix)))
		if err != nil {
			return fmt.Errorf("seed store %s: %w", s.code, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_stores WHERE company_id = $1 AND code = $2 AND deletion_mark = FALSE`,
				companyID, s.code,
			).Scan(&storeID)
			if err != nil {
				return fmt.Errorf("fetch existing store %s: %w", s.code, err)
			}
		}
		storeIDs[s.code] = storeID
	}

	// 3. Products
	products := []struct {
		storeCode string
		sku       string
		name      string
		price     int64 // minor units
		stock     int64 // whole units
	}{
		{"ST-001", "COF-250", "Coffee Beans 250g", 899, 120},
		{"ST-001", "TEA-020", "Green Tea 20 bags", 449, 80},
		{"ST-001", "MUG-STD", "Ceramic Mug", 650, 35},
		{"ST-001", "CHO-070", "Dark Chocolate 70%", 320, 200},
		{"ST-002", "COF-250", "Coffee Beans 250g", 999, 40},
		{"ST-002", "WTR-050", "Still Water 0.5L", 150, 500},
	}

	for _, p := range products {
		storeID, ok := storeIDs[p.storeCode]
		if !ok {
			continue
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, company_id, store_id, code, name, sku, unit_price, total_stock, is_active, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, $4, $6, $7, true, 1, false)
			ON CONFLICT (store_id, sku) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), companyID, storeID, p.sku, p.name, p.price, p.stock*types.QuantityScale)
		if err != nil {
			log.Warnw("failed to seed product", "sku", p.sku, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

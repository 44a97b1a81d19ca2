package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements DDL idempotente de las tablas que usan los adaptadores.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		sku             TEXT NOT NULL DEFAULT '',
		unit_measure    TEXT NOT NULL DEFAULT 'g',
		track_inventory BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		yield_in_grams NUMERIC NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id         TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		position          INT NOT NULL,
		kind              TEXT NOT NULL CHECK (kind IN ('product', 'recipe')),
		reference_id      TEXT NOT NULL,
		quantity_in_grams NUMERIC NOT NULL,
		PRIMARY KEY (recipe_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_items (
		id                        TEXT PRIMARY KEY,
		product_id                TEXT NOT NULL UNIQUE REFERENCES products(id),
		current_quantity_in_grams NUMERIC NOT NULL DEFAULT 0,
		minimum_quantity_in_grams NUMERIC NOT NULL DEFAULT 0,
		average_unit_cost         NUMERIC NOT NULL DEFAULT 0,
		highest_unit_cost         NUMERIC NOT NULL DEFAULT 0,
		last_movement_id          TEXT,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		seq                         BIGSERIAL,
		id                          TEXT PRIMARY KEY,
		stock_item_id               TEXT NOT NULL REFERENCES stock_items(id),
		type                        TEXT NOT NULL,
		quantity_in_grams           NUMERIC NOT NULL,
		previous_quantity_in_grams  NUMERIC NOT NULL,
		resulting_quantity_in_grams NUMERIC NOT NULL,
		unit_cost                   NUMERIC,
		total_cost                  NUMERIC,
		reference                   TEXT NOT NULL DEFAULT '',
		performed_by                TEXT NOT NULL DEFAULT '',
		performed_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_item ON stock_movements (stock_item_id, performed_at DESC, seq DESC)`,
	`CREATE TABLE IF NOT EXISTS stock_alerts (
		id                TEXT PRIMARY KEY,
		stock_item_id     TEXT NOT NULL REFERENCES stock_items(id),
		severity          TEXT NOT NULL,
		status            TEXT NOT NULL,
		quantity_in_grams NUMERIC NOT NULL,
		minimum_in_grams  NUMERIC NOT NULL,
		acknowledged_by   TEXT NOT NULL DEFAULT '',
		resolved_at       TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_stock_alerts_live ON stock_alerts (stock_item_id)
		WHERE status IN ('open', 'acknowledged')`,
	`CREATE TABLE IF NOT EXISTS production_plans (
		id                       TEXT PRIMARY KEY,
		recipe_id                TEXT NOT NULL REFERENCES recipes(id),
		quantity_in_units        NUMERIC NOT NULL,
		unit_of_measure          TEXT NOT NULL,
		status                   TEXT NOT NULL,
		actual_quantity_in_units NUMERIC,
		scheduled_for            TIMESTAMPTZ,
		notes                    TEXT NOT NULL DEFAULT '',
		archived                 BOOLEAN NOT NULL DEFAULT FALSE,
		created_by               TEXT NOT NULL DEFAULT '',
		started_at               TIMESTAMPTZ,
		completed_at             TIMESTAMPTZ,
		completion_claim         TEXT NOT NULL DEFAULT '',
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE production_plans ADD COLUMN IF NOT EXISTS completion_claim TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_production_plans_status ON production_plans (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS production_plan_availability_records (
		id                       TEXT PRIMARY KEY,
		plan_id                  TEXT NOT NULL UNIQUE REFERENCES production_plans(id),
		status                   TEXT NOT NULL,
		shortages                JSONB NOT NULL DEFAULT '[]',
		total_required_in_grams  NUMERIC NOT NULL,
		total_shortage_in_grams  NUMERIC NOT NULL,
		estimated_cost           NUMERIC NOT NULL,
		confirmed_by             TEXT NOT NULL DEFAULT '',
		actual_consumed_in_grams NUMERIC,
		actual_shortage_in_grams NUMERIC,
		execution_started_at     TIMESTAMPTZ,
		execution_completed_at   TIMESTAMPTZ,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS production_divergences (
		id                         TEXT PRIMARY KEY,
		plan_id                    TEXT NOT NULL REFERENCES production_plans(id),
		product_id                 TEXT NOT NULL,
		severity                   TEXT NOT NULL,
		type                       TEXT NOT NULL,
		expected_quantity_in_units NUMERIC NOT NULL,
		actual_quantity_in_units   NUMERIC NOT NULL,
		description                TEXT NOT NULL DEFAULT '',
		reported_by                TEXT NOT NULL DEFAULT '',
		created_at                 TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_production_divergences_plan ON production_divergences (plan_id)`,
}

// EnsureSchema crea las tablas e índices si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

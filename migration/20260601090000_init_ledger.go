package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitLedger, downInitLedger)
}

func upInitLedger(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE trips (
			id UUID PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500) NOT NULL DEFAULT '',
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			initial_budget NUMERIC(14,2) NOT NULL DEFAULT 0,
			currency CHAR(3) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_trips_dates CHECK (end_date >= start_date),
			CONSTRAINT chk_trips_budget CHECK (initial_budget >= 0)
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_trips_user_id ON trips(user_id);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE categories (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL,
			type VARCHAR(10) NOT NULL,
			name VARCHAR(50) NOT NULL,
			icon VARCHAR(50) NOT NULL DEFAULT '',
			color VARCHAR(9) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_categories_trip
				FOREIGN KEY(trip_id)
				REFERENCES trips(id)
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE transactions (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL,
			type VARCHAR(10) NOT NULL,
			amount NUMERIC(14,2),
			currency CHAR(3) NOT NULL,
			category_id UUID,
			description VARCHAR(100) NOT NULL,
			notes VARCHAR(300) NOT NULL DEFAULT '',
			date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_transactions_trip
				FOREIGN KEY(trip_id)
				REFERENCES trips(id)
				ON DELETE CASCADE,
			CONSTRAINT fk_transactions_category
				FOREIGN KEY(category_id)
				REFERENCES categories(id)
				ON DELETE SET NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE recurring_transactions (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL,
			type VARCHAR(10) NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			currency CHAR(3) NOT NULL,
			frequency VARCHAR(16) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			last_applied TIMESTAMPTZ,
			description VARCHAR(100) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_recurring_trip
				FOREIGN KEY(trip_id)
				REFERENCES trips(id)
				ON DELETE CASCADE,
			CONSTRAINT chk_recurring_dates CHECK (end_date >= start_date)
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_categories_trip_id ON categories(trip_id);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_recurring_trip_id ON recurring_transactions(trip_id);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitLedger(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS recurring_transactions;
		DROP TABLE IF EXISTS transactions;
		DROP TABLE IF EXISTS categories;
		DROP TABLE IF EXISTS trips;
	`)
	return err
}

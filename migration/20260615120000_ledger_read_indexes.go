package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upLedgerReadIndexes, downLedgerReadIndexes)
}

func upLedgerReadIndexes(ctx context.Context, tx *sql.Tx) error {
	// transactions are always read newest first per trip
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_transactions_trip_date ON transactions(trip_id, date DESC);`)
	if err != nil {
		return err
	}

	// at most one active trip per user
	_, err = tx.ExecContext(ctx, `CREATE UNIQUE INDEX uq_trips_user_active ON trips(user_id) WHERE is_active;`)
	if err != nil {
		return err
	}

	return nil
}

func downLedgerReadIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP INDEX IF EXISTS uq_trips_user_active;
		DROP INDEX IF EXISTS idx_transactions_trip_date;
	`)
	return err
}

// Package sqlitecache persists the last fetched exchange rate table in a
// local SQLite file so a restarted process can serve rates offline.
package sqlitecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"nomadguide/currency"
)

type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Cache) Load(ctx context.Context) (currency.RateTable, bool, error) {
	var (
		base, ratesJSON, updatedAt string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT base, rates_json, updated_at FROM rate_snapshots WHERE id = 1`,
	).Scan(&base, &ratesJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return currency.RateTable{}, false, nil
	}
	if err != nil {
		return currency.RateTable{}, false, fmt.Errorf("load rate snapshot: %w", err)
	}

	rates := map[string]decimal.Decimal{}
	if err := json.Unmarshal([]byte(ratesJSON), &rates); err != nil {
		return currency.RateTable{}, false, fmt.Errorf("decode rate snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return currency.RateTable{}, false, fmt.Errorf("parse rate snapshot time: %w", err)
	}
	return currency.RateTable{Base: base, Rates: rates, UpdatedAt: ts}, true, nil
}

func (c *Cache) Save(ctx context.Context, table currency.RateTable) error {
	ratesJSON, err := json.Marshal(table.Rates)
	if err != nil {
		return fmt.Errorf("encode rate snapshot: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO rate_snapshots (id, base, rates_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base = excluded.base,
			rates_json = excluded.rates_json,
			updated_at = excluded.updated_at`,
		table.Base, string(ratesJSON), table.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save rate snapshot: %w", err)
	}
	return nil
}

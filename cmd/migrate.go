package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"nomadguide/db/pg"
	_ "nomadguide/migration"
)

const migrationsDir = "migration"

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "migrate the ledger database",
		Long:  `This command migrates the PostgreSQL ledger schema with goose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			up, _ := cmd.Flags().GetBool("up")
			down, _ := cmd.Flags().GetBool("down")
			if down {
				up = false
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			goose.SetLogger(slogGooseLogger{log})
			if err := goose.SetDialect("postgres"); err != nil {
				return fmt.Errorf("set goose dialect: %w", err)
			}

			db, err := sql.Open("postgres", pg.CreateDSN(cfg.DatabaseURL))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
			defer pingCancel()
			if err := db.PingContext(pingCtx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			switch {
			case up:
				log.Info("running up migrations")
				if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
					return fmt.Errorf("goose up: %w", err)
				}
			case down:
				log.Info("rolling back the last migration")
				if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
					return fmt.Errorf("goose down: %w", err)
				}
			}
			return goose.StatusContext(ctx, db, migrationsDir)
		},
	}

	cmd.Flags().BoolP("up", "u", true, "up the version of db")
	cmd.Flags().BoolP("down", "d", false, "down the version of db")

	return cmd
}

// slogGooseLogger sends goose output through the process logger.
type slogGooseLogger struct {
	log *slog.Logger
}

func (l slogGooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l slogGooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

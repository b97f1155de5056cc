package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nomadguide/config"
	"nomadguide/logging"
)

var RootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "track a trip budget while travelling",
	Long: `nomadguide records the incomes and outcomes of a trip, keeps its balance
and budget status up to date and serves the figures over a REST API.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(summaryCommand())
	RootCmd.AddCommand(ratesCommand())
}

// setup loads the configuration and builds the process logger from it.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	slog.SetDefault(log)
	return cfg, log, nil
}

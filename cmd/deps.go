package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"nomadguide/config"
	dbt "nomadguide/db/db"
	"nomadguide/db/mem"
	"nomadguide/db/pg"
	"nomadguide/logging"
	"nomadguide/mq/gcppubsub"
	"nomadguide/mq/goch"
	"nomadguide/mq/mq"
	"nomadguide/mq/rabbit"
	"nomadguide/rates"
	"nomadguide/rates/sqlitecache"
)

func nop() error { return nil }

func openStore(cfg *config.Config, log *slog.Logger) (dbt.TripStore, func() error, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store, data is lost on exit")
		return mem.NewInMemoryTripStore(), nop, nil
	}
	db, err := pg.InitPostgresGORM(pg.CreateDSN(cfg.DatabaseURL), logging.For(log, logging.ComponentStore))
	if err != nil {
		return nil, nil, err
	}
	return pg.NewGORMTripStore(db), func() error { return pg.CloseGORM(db) }, nil
}

func openQueue(ctx context.Context, cfg *config.Config, log *slog.Logger) (mq.TripChangeQueue, error) {
	switch cfg.MQMode {
	case mq.ModeGoChan:
		return goch.NewChannelTripChangeQueue(0), nil
	case mq.ModeRabbitMQ:
		conn, err := rabbit.NewRabbitConnection(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		q, err := rabbit.NewRabbitTripChangeQueue(conn, log)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return q, nil
	case mq.ModeGCPPubSub:
		q, err := gcppubsub.NewGCPTripChangeQueue(ctx, cfg.GCPProjectID, log)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown mq mode %q", cfg.MQMode)
	}
}

// openRates builds the rate provider. When the on-disk cache cannot be
// opened the process keeps its rates in memory instead.
func openRates(cfg *config.Config, log *slog.Logger) (*rates.Provider, func() error) {
	fetcher := rates.NewHTTPFetcher(cfg.RatesURL, cfg.RatesTimeout)
	cache, err := sqlitecache.Open(cfg.RatesCachePath)
	if err != nil {
		log.Warn("rate cache unavailable, keeping rates in memory", "path", cfg.RatesCachePath, "error", err)
		return rates.NewProvider(fetcher, rates.NewMemoryCache(), rates.WithLogger(log)), nop
	}
	return rates.NewProvider(fetcher, cache, rates.WithLogger(log)), cache.Close
}

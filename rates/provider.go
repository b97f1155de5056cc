package rates

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"nomadguide/currency"
	"nomadguide/logging"
)

// Fetcher retrieves a fresh table from an upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) (currency.RateTable, error)
}

// Cache persists the last successfully fetched table.
type Cache interface {
	Load(ctx context.Context) (currency.RateTable, bool, error)
	Save(ctx context.Context, table currency.RateTable) error
}

// Result is what GetRates hands to callers. Success is false whenever
// the table is a fallback; Error then says why.
type Result struct {
	Table   currency.RateTable `json:"table"`
	Success bool               `json:"success"`
	Cached  bool               `json:"cached"`
	Stale   bool               `json:"stale"`
	Error   string             `json:"error,omitempty"`
}

type Provider struct {
	fetcher  Fetcher
	cache    Cache
	fallback currency.RateTable
	now      func() time.Time
	log      *slog.Logger
	group    singleflight.Group
}

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.log = logging.For(l, logging.ComponentRates) }
}

func WithFallback(table currency.RateTable) Option {
	return func(p *Provider) { p.fallback = table }
}

func NewProvider(fetcher Fetcher, cache Cache, opts ...Option) *Provider {
	p := &Provider{
		fetcher:  fetcher,
		cache:    cache,
		fallback: currency.OfflineTable(),
		now:      time.Now,
		log:      logging.For(logging.Discard(), logging.ComponentRates),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetRates returns a fresh cached table when one exists, otherwise
// fetches. A failed fetch never fails the call: it falls back to the
// cached table, stale or not, and then to the offline table.
func (p *Provider) GetRates(ctx context.Context, forceRefresh bool) Result {
	if !forceRefresh {
		if table, ok := p.loadCache(ctx); ok && !table.IsStale(p.now()) {
			return Result{Table: table, Success: true, Cached: true}
		}
	}

	// The fetch is shared by every waiting caller, so it must outlive
	// the cancellation of whichever caller started it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := p.group.Do("fetch", func() (any, error) {
		return p.refresh(shared), nil
	})
	return v.(Result)
}

func (p *Provider) refresh(ctx context.Context) Result {
	table, err := p.fetcher.Fetch(ctx)
	if err == nil {
		if table.UpdatedAt.IsZero() {
			table.UpdatedAt = p.now()
		}
		if saveErr := p.cache.Save(ctx, table); saveErr != nil {
			p.log.WarnContext(ctx, "could not persist exchange rates", "error", saveErr)
		}
		p.log.InfoContext(ctx, "exchange rates refreshed", "base", table.Base, "currencies", len(table.Rates))
		return Result{Table: table, Success: true}
	}

	p.log.WarnContext(ctx, "exchange rate fetch failed, falling back", "error", err)
	if cached, ok := p.loadCache(ctx); ok {
		return Result{
			Table:  cached,
			Cached: true,
			Stale:  cached.IsStale(p.now()),
			Error:  err.Error(),
		}
	}
	return Result{Table: p.fallback, Stale: true, Error: err.Error()}
}

func (p *Provider) loadCache(ctx context.Context) (currency.RateTable, bool) {
	table, ok, err := p.cache.Load(ctx)
	if err != nil {
		p.log.WarnContext(ctx, "could not read cached exchange rates", "error", err)
		return currency.RateTable{}, false
	}
	return table, ok
}

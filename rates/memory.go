package rates

import (
	"context"
	"maps"
	"sync"

	"nomadguide/currency"
)

// MemoryCache keeps the table for the life of the process.
type MemoryCache struct {
	mu    sync.RWMutex
	table *currency.RateTable
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Load(_ context.Context) (currency.RateTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return currency.RateTable{}, false, nil
	}
	out := *c.table
	out.Rates = maps.Clone(c.table.Rates)
	return out, true, nil
}

func (c *MemoryCache) Save(_ context.Context, table currency.RateTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := table
	copied.Rates = maps.Clone(table.Rates)
	c.table = &copied
	return nil
}

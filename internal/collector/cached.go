package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"StockScope/internal/cache"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
)

// CachedFetcher memoizes daily bars in an explicit cache.Store.
// Profiles are not cached.
type CachedFetcher struct {
	Fetcher
	Store   cache.Store
	TTL     time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// NewCachedFetcher wraps f with store using ttl-wide buckets.
func NewCachedFetcher(f Fetcher, store cache.Store, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Store: store, TTL: ttl, Metrics: m, Now: time.Now}
}

func barsResource(symbol string, days int) string {
	return fmt.Sprintf("bars:%s:%d", symbol, days)
}

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	key := cache.KeyAt(barsResource(symbol, days), c.Now(), c.TTL)

	if data, ok, err := c.Store.Get(ctx, key); err != nil {
		log.Printf("[WARN] cache get %s: %v", key, err)
	} else if ok {
		var s model.PriceSeries
		if err := json.Unmarshal(data, &s); err == nil {
			c.Metrics.ObserveCache(true)
			return &s, nil
		}
		log.Printf("[WARN] cache decode %s, refetching", key)
	}
	c.Metrics.ObserveCache(false)

	s, err := c.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(s); err == nil {
		if err := c.Store.Set(ctx, key, data); err != nil {
			log.Printf("[WARN] cache set %s: %v", key, err)
		}
	}
	return s, nil
}

// Invalidate drops cached bars of symbol for the given day counts.
func (c *CachedFetcher) Invalidate(ctx context.Context, symbol string, days ...int) error {
	for _, d := range days {
		if err := c.Store.Invalidate(ctx, barsResource(symbol, d)); err != nil {
			return err
		}
	}
	return nil
}

// InstrumentedFetcher records fetch results in Prometheus.
type InstrumentedFetcher struct {
	Fetcher
	Metrics *metrics.Metrics
}

func (f *InstrumentedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	start := time.Now()
	s, err := f.Fetcher.FetchDailyBars(ctx, symbol, days)
	f.Metrics.ObserveFetch(f.Name(), err, time.Since(start))
	return s, err
}

func (f *InstrumentedFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	start := time.Now()
	p, err := f.Fetcher.FetchProfile(ctx, symbol)
	f.Metrics.ObserveFetch(f.Name(), err, time.Since(start))
	return p, err
}

package collector

import (
	"context"
	"errors"

	"StockScope/internal/model"
)

// ErrUpstream marks a failed or timed-out fetch from an external data source.
var ErrUpstream = errors.New("upstream fetch failure")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error)
	FetchProfile(ctx context.Context, symbol string) (*model.Profile, error)
	Name() string
}

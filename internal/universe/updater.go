package universe

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockScope/internal/collector"
	"StockScope/internal/model"
)

// Filter defaults of the snapshot updater.
const (
	DefaultMinVolume    = 100000
	DefaultMinReturn3M  = -50.0
	DefaultPacing       = 500 * time.Millisecond
	threeMonthTradeDays = 63
)

// DividendSource supplies an alternative dividend yield by company name.
type DividendSource interface {
	DividendYield(ctx context.Context, name string) (float64, error)
}

// Updater collects fundamentals for a ticker list and keeps the listings that
// pass the liquidity and valuation filter.
type Updater struct {
	Fetcher     collector.Fetcher
	Dividends   DividendSource // optional
	MinVolume   float64
	MinReturn3M float64
	Pacing      time.Duration
	Path        string // snapshot written on success when set
}

// NewUpdater creates an Updater with the default filter and pacing.
func NewUpdater(f collector.Fetcher, dividends DividendSource, path string) *Updater {
	return &Updater{
		Fetcher:     f,
		Dividends:   dividends,
		MinVolume:   DefaultMinVolume,
		MinReturn3M: DefaultMinReturn3M,
		Pacing:      DefaultPacing,
		Path:        path,
	}
}

// Update collects every ticker, filters, and saves the snapshot. Tickers that
// fail to collect are skipped.
func (u *Updater) Update(ctx context.Context, tickers []string) ([]model.Listing, error) {
	var collected []model.Listing
	for i, t := range tickers {
		if i > 0 && u.Pacing > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(u.Pacing):
			}
		}

		log.Printf("[INFO] universe: collecting %s", t)
		l, err := u.collect(ctx, t)
		if err != nil {
			log.Printf("[WARN] universe: skip %s: %v", t, err)
			continue
		}
		collected = append(collected, l)
	}

	kept := u.Filter(collected)
	log.Printf("[INFO] universe: %d collected, %d kept", len(collected), len(kept))

	if u.Path != "" {
		if err := Save(u.Path, kept); err != nil {
			return kept, fmt.Errorf("save snapshot: %w", err)
		}
	}
	return kept, nil
}

func (u *Updater) collect(ctx context.Context, ticker string) (model.Listing, error) {
	p, err := u.Fetcher.FetchProfile(ctx, ticker)
	if err != nil {
		return model.Listing{}, err
	}
	l := model.Listing{
		Ticker:        ticker,
		Name:          p.Name,
		PER:           p.PER,
		PBR:           p.PBR,
		DividendYield: p.DividendYield,
		Volume:        p.Volume,
	}

	if s, err := u.Fetcher.FetchDailyBars(ctx, ticker, threeMonthTradeDays); err == nil {
		l.Return3M = Return(s)
	} else {
		log.Printf("[WARN] universe: %s bars: %v", ticker, err)
	}

	if u.Dividends != nil && l.Name != "" {
		if d, err := u.Dividends.DividendYield(ctx, l.Name); err == nil && d > 0 {
			l.DividendYield = d
		}
	}
	return l, nil
}

// Return is the percent change from the first to the last close; 0 when the
// series is empty or starts at 0.
func Return(s *model.PriceSeries) float64 {
	if s.Len() == 0 {
		return 0
	}
	first := s.Points[0].Close
	if first == 0 {
		return 0
	}
	return (s.Points[len(s.Points)-1].Close - first) / first * 100
}

// Filter keeps listings with Volume > MinVolume, PER > 0 and Return3M > MinReturn3M.
func (u *Updater) Filter(listings []model.Listing) []model.Listing {
	kept := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Volume > u.MinVolume && l.PER > 0 && l.Return3M > u.MinReturn3M {
			kept = append(kept, l)
		}
	}
	return kept
}

// Package ranking scores a universe of tickers in parallel and orders them.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/strategy"

	"github.com/google/uuid"
)

const (
	DefaultTopN         = 10
	DefaultWorkers      = 4
	DefaultFetchTimeout = 10 * time.Second
	DefaultDays         = 120
)

// Ranker fetches, scores and orders tickers.
type Ranker struct {
	Fetcher      collector.Fetcher
	Engine       *strategy.Engine
	Params       model.IndicatorParams
	Workers      int
	FetchTimeout time.Duration
	Days         int
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// NewRanker creates a Ranker with default pool size, timeout and history length.
func NewRanker(f collector.Fetcher, engine *strategy.Engine, params model.IndicatorParams) *Ranker {
	return &Ranker{
		Fetcher:      f,
		Engine:       engine,
		Params:       params,
		Workers:      DefaultWorkers,
		FetchTimeout: DefaultFetchTimeout,
		Days:         DefaultDays,
		Now:          time.Now,
	}
}

// Rank scores every listing and returns the top N. Tickers that cannot be
// scored stay in the result with score 0 and a non-OK status.
func (r *Ranker) Rank(ctx context.Context, universe []model.Listing, style model.Style, topN int) *model.Ranking {
	start := time.Now()
	if topN <= 0 {
		topN = DefaultTopN
	}

	entries := make([]model.RankedEntry, len(universe))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.workers(len(universe)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i] = r.scoreOne(ctx, universe[i], style)
			}
		}()
	}
	for i := range universe {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	statuses := make([]string, len(entries))
	for i, e := range entries {
		statuses[i] = string(e.Status)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	r.Metrics.ObserveRank(time.Since(start), statuses)

	return &model.Ranking{
		RunID:       uuid.NewString(),
		Style:       style,
		Policy:      r.Engine.Policy.Name(),
		Universe:    len(universe),
		Entries:     entries,
		GeneratedAt: r.now(),
	}
}

func (r *Ranker) scoreOne(ctx context.Context, l model.Listing, style model.Style) model.RankedEntry {
	entry := model.RankedEntry{Ticker: l.Ticker, Name: l.Name, Status: model.StatusOK}
	if entry.Name == "" {
		entry.Name = l.Ticker
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout())
	series, err := r.Fetcher.FetchDailyBars(fetchCtx, l.Ticker, r.days())
	cancel()
	if err != nil {
		log.Printf("[WARN] rank %s: fetch failed: %v", l.Ticker, err)
		entry.Status, entry.Err = model.StatusNoData, err
		return entry
	}

	frame, err := calculator.ComputeIndicators(series, r.Params)
	if err != nil {
		entry.Status, entry.Err = model.StatusNoData, err
		return entry
	}

	score, err := r.Engine.Score(frame, style)
	switch {
	case errors.Is(err, strategy.ErrIndicatorsNotReady):
		entry.Status, entry.Err = model.StatusNotReady, err
	case err != nil:
		entry.Status, entry.Err = model.StatusNoData, fmt.Errorf("score %s: %w", l.Ticker, err)
	default:
		entry.Score = score.Value
	}
	return entry
}

func (r *Ranker) workers(n int) int {
	w := r.Workers
	if w <= 0 {
		w = DefaultWorkers
	}
	if w > n {
		w = n
	}
	return w
}

func (r *Ranker) fetchTimeout() time.Duration {
	if r.FetchTimeout <= 0 {
		return DefaultFetchTimeout
	}
	return r.FetchTimeout
}

func (r *Ranker) days() int {
	if r.Days <= 0 {
		return DefaultDays
	}
	return r.Days
}

func (r *Ranker) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

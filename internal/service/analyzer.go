// Package service composes fetching, indicators, crossovers and scoring into
// the single-ticker analysis and universe ranking used by the front-ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/crossover"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/ranking"
	"StockScope/internal/recorder"
	"StockScope/internal/strategy"
)

// ErrNoData means the ticker cannot be analyzed: the fetch failed or the
// series is too short.
var ErrNoData = errors.New("cannot analyze this ticker")

// Analyzer runs analyses and rankings and records their history.
type Analyzer struct {
	Fetcher      collector.Fetcher
	Engine       *strategy.Engine
	Ranker       *ranking.Ranker
	Params       model.IndicatorParams
	Days         int
	FetchTimeout time.Duration
	Recorder     recorder.Recorder
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// NewAnalyzer wires an Analyzer and its Ranker around one fetcher and engine.
func NewAnalyzer(f collector.Fetcher, engine *strategy.Engine, params model.IndicatorParams,
	rec recorder.Recorder, m *metrics.Metrics) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	rk := ranking.NewRanker(f, engine, params)
	rk.Metrics = m
	return &Analyzer{
		Fetcher:      f,
		Engine:       engine,
		Ranker:       rk,
		Params:       params,
		Days:         ranking.DefaultDays,
		FetchTimeout: ranking.DefaultFetchTimeout,
		Recorder:     rec,
		Metrics:      m,
		Now:          time.Now,
	}
}

// Analyze fetches one ticker and derives its indicators, crossovers, score
// and advice. A ticker without a scoreable row is returned with Ready false
// and a zero score.
func (a *Analyzer) Analyze(ctx context.Context, ticker string, style model.Style) (*model.Analysis, error) {
	res, err := a.analyze(ctx, ticker, style)
	a.Metrics.ObserveAnalysis(string(style), err)
	if err != nil {
		return nil, err
	}
	if err := a.Recorder.RecordAnalysis(res); err != nil {
		log.Printf("[WARN] record analysis %s: %v", ticker, err)
	}
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, ticker string, style model.Style) (*model.Analysis, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.FetchTimeout)
	defer cancel()

	series, err := a.Fetcher.FetchDailyBars(fetchCtx, ticker, a.Days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", ticker, ErrNoData, err)
	}
	frame, err := calculator.ComputeIndicators(series, a.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", ticker, ErrNoData, err)
	}

	res := &model.Analysis{
		Ticker:     ticker,
		Name:       a.name(fetchCtx, ticker),
		Style:      style,
		Frame:      frame,
		Crossovers: crossover.Detect(frame),
		Ready:      true,
		AnalyzedAt: a.Now(),
	}

	score, err := a.Engine.Score(frame, style)
	if errors.Is(err, strategy.ErrIndicatorsNotReady) {
		res.Ready = false
	} else if err != nil {
		return nil, err
	}
	res.Score = score
	res.Advice = strategy.Advise(frame, res.Crossovers)

	res.LastClose = series.Points[len(series.Points)-1].Close
	if hi, lo, err := calculator.CalculateRange(series.Points, 0); err == nil {
		res.RangeHigh, res.RangeLow = hi, lo
		res.RangePos, _ = calculator.RangePosition(res.LastClose, hi, lo)
	}
	return res, nil
}

// name resolves the display name; lookup failures fall back to the ticker.
func (a *Analyzer) name(ctx context.Context, ticker string) string {
	p, err := a.Fetcher.FetchProfile(ctx, ticker)
	if err != nil || p.Name == "" || p.Name == "N/A" {
		return ticker
	}
	return p.Name
}

// Rank ranks the universe and records the run.
func (a *Analyzer) Rank(ctx context.Context, universe []model.Listing, style model.Style, topN int) *model.Ranking {
	r := a.Ranker.Rank(ctx, universe, style, topN)
	if err := a.Recorder.RecordRanking(r); err != nil {
		log.Printf("[WARN] record ranking %s: %v", r.RunID, err)
	}
	log.Printf("[INFO] ranked %d tickers for %s (run %s)", r.Universe, style, r.RunID)
	return r
}

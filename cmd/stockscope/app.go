package main

import (
	"log"

	"StockScope/internal/cache"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/news"
	"StockScope/internal/recorder"
	"StockScope/internal/ranking"
	"StockScope/internal/service"
	"StockScope/internal/strategy"
	"StockScope/internal/universe"
)

// app holds the components shared by every mode.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	fetcher  collector.Fetcher
	store    cache.Store
	recorder recorder.Recorder
	analyzer *service.Analyzer
	updater  *universe.Updater
	news     *news.Client
	style    model.Style
}

func newFetcher(cfg *config.Config, m *metrics.Metrics) collector.Fetcher {
	var f collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		f = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		f = &collector.MockFetcher{Price: 50000}
	default:
		f = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", f.Name())
	return &collector.InstrumentedFetcher{Fetcher: f, Metrics: m}
}

func newStore(cfg *config.Config) cache.Store {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil
	case config.CacheRedis:
		s, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err == nil {
			return s
		}
		log.Printf("[WARN] redis cache unavailable, using memory: %v", err)
	}
	return cache.NewMemoryStore()
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newApp(cfg *config.Config) (*app, error) {
	style, err := model.ParseStyle(cfg.Ranking.Style)
	if err != nil {
		return nil, err
	}
	policy, err := strategy.NewPolicy(cfg.Scoring.Policy, cfg.Scoring.Weights, cfg.Scoring.RecentWindow)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] scoring policy: %s", policy.Name())

	a := &app{cfg: cfg, metrics: metrics.NewMetrics(), style: style}
	a.fetcher = newFetcher(cfg, a.metrics)
	a.store = newStore(cfg)
	if a.store != nil {
		a.fetcher = collector.NewCachedFetcher(a.fetcher, a.store, cfg.Cache.TTL, a.metrics)
	}
	a.recorder = newRecorder(cfg)

	a.analyzer = service.NewAnalyzer(a.fetcher, strategy.NewEngine(policy), cfg.Indicators, a.recorder, a.metrics)
	a.analyzer.Days = cfg.DataSource.Days
	a.analyzer.FetchTimeout = cfg.Ranking.FetchTimeout
	a.analyzer.Ranker.Days = cfg.DataSource.Days
	a.analyzer.Ranker.Workers = cfg.Ranking.Workers
	a.analyzer.Ranker.FetchTimeout = cfg.Ranking.FetchTimeout
	if a.analyzer.Days <= 0 {
		a.analyzer.Days = ranking.DefaultDays
	}

	scraper := collector.NewNaverDividendScraper(cfg.Universe.DividendSelector, cfg.Proxy)
	a.updater = universe.NewUpdater(a.fetcher, scraper, cfg.Universe.Path)
	a.updater.MinVolume = cfg.Universe.MinVolume
	a.updater.MinReturn3M = cfg.Universe.MinReturn3M
	a.updater.Pacing = cfg.Universe.Pacing

	a.news = news.NewClient(collector.NewHTTPClient(cfg.Proxy))
	if cfg.News.ItemSelector != "" {
		a.news.ItemSelector = cfg.News.ItemSelector
	}
	if cfg.News.TitleSelector != "" {
		a.news.TitleSelector = cfg.News.TitleSelector
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("[WARN] close cache: %v", err)
		}
	}
}

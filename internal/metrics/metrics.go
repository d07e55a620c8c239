package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec // labels: source, result
	FetchDur      *prometheus.HistogramVec
	CacheTotal    *prometheus.CounterVec // labels: result
	RankDur       prometheus.Histogram
	RankEntries   *prometheus.CounterVec // labels: status
	AnalysesTotal *prometheus.CounterVec // labels: style, result
}

// NewMetrics creates and registers all metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_fetch_total",
			Help: "Market data fetches by source and result",
		}, []string{"source", "result"}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockscope_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_cache_total",
			Help: "Series cache lookups by result",
		}, []string{"result"}),
		RankDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockscope_rank_duration_seconds",
			Help:    "Universe ranking latency",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RankEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_rank_entries_total",
			Help: "Ranked tickers by status",
		}, []string{"status"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_analyses_total",
			Help: "Single-ticker analyses by style and result",
		}, []string{"style", "result"}),
	}
	m.registry.MustRegister(
		m.FetchTotal, m.FetchDur, m.CacheTotal,
		m.RankDur, m.RankEntries, m.AnalysesTotal,
	)
	return m
}

// Registry returns the registry holding all metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(source string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, result(err)).Inc()
	m.FetchDur.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheTotal.WithLabelValues("miss").Inc()
	}
}

// ObserveRank records a ranking run and the status of every entry.
func (m *Metrics) ObserveRank(d time.Duration, statuses []string) {
	if m == nil {
		return
	}
	m.RankDur.Observe(d.Seconds())
	for _, s := range statuses {
		m.RankEntries.WithLabelValues(s).Inc()
	}
}

// ObserveAnalysis records a single-ticker analysis.
func (m *Metrics) ObserveAnalysis(style string, err error) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(style, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

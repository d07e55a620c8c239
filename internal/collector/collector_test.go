package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockScope/internal/cache"
	"StockScope/internal/model"

	"github.com/PuerkitoBio/goquery"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[1717372800,1717459200,1717459300,1717545600],
"indicators":{"quote":[{"open":[1,2,2.1,null],"high":[1.5,2.5,2.6,null],"low":[0.5,1.5,1.6,null],
"close":[1.2,2.2,2.3,null],"volume":[100,200,210,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{"price":{"shortName":"SamsungElec"},
"summaryDetail":{"trailingPE":{"raw":12.5},"dividendYield":{"raw":0.021},"volume":{"raw":150000}},
"defaultKeyStatistics":{"priceToBook":{"raw":1.3}}}],"error":null}}`

func yahooServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/v8/finance/chart/005930.KS"):
			_, _ = w.Write([]byte(chartJSON))
		case strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/005930.KS"):
			_, _ = w.Write([]byte(summaryJSON))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
}

func TestYahooFetcher_DailyBars(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.ChartURL, f.SummaryURL = srv.URL, srv.URL

	s, err := f.FetchDailyBars(context.Background(), "005930.KS", 120)
	if err != nil {
		t.Fatal(err)
	}
	// The null bar is skipped and the two bars of 2024-06-04 collapse to the later one.
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d: %+v", s.Len(), s.Points)
	}
	if s.Points[1].Close != 2.3 {
		t.Errorf("expected last intraday close 2.3, got %.2f", s.Points[1].Close)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("series should validate: %v", err)
	}
}

func TestYahooFetcher_Profile(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.ChartURL, f.SummaryURL = srv.URL, srv.URL

	p, err := f.FetchProfile(context.Background(), "005930.KS")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "SamsungElec" || p.PER != 12.5 || p.PBR != 1.3 || p.Volume != 150000 {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.DividendYield < 2.09 || p.DividendYield > 2.11 {
		t.Errorf("expected dividend yield 2.1%%, got %.3f", p.DividendYield)
	}
}

func TestYahooFetcher_UpstreamError(t *testing.T) {
	srv := yahooServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.ChartURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "UNKNOWN", 10)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			_, _ = w.Write([]byte(`[{"timestamp":1717459200,"close":2},{"timestamp":1717372800,"close":1}]`))
		case "/api/v1/profile":
			_, _ = w.Write([]byte(`{"name":"Hynix","per":8.1}`))
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	s, err := f.FetchDailyBars(context.Background(), "000660.KS", 2)
	if err != nil {
		t.Fatal(err)
	}
	if s.Points[0].Close != 1 || s.Points[1].Close != 2 {
		t.Errorf("expected chronological order, got %+v", s.Points)
	}
	p, err := f.FetchProfile(context.Background(), "000660.KS")
	if err != nil || p.Name != "Hynix" || p.PER != 8.1 {
		t.Errorf("unexpected profile %+v (%v)", p, err)
	}

	bad := NewRESTFetcher(srv.URL, "wrong", "")
	if _, err := bad.FetchDailyBars(context.Background(), "X", 1); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

type countingFetcher struct {
	MockFetcher
	calls int
}

func (c *countingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	c.calls++
	return c.MockFetcher.FetchDailyBars(ctx, symbol, days)
}

func TestCachedFetcher(t *testing.T) {
	ctx := context.Background()
	inner := &countingFetcher{MockFetcher: MockFetcher{Price: 100, Anchor: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)}}
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	cf := NewCachedFetcher(inner, cache.NewMemoryStore(), time.Hour, nil)
	cf.Now = func() time.Time { return now }

	a, err := cf.FetchDailyBars(ctx, "A", 30)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cf.FetchDailyBars(ctx, "A", 30)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
	if a.Len() != b.Len() || !a.Points[0].Date.Equal(b.Points[0].Date) {
		t.Error("cached series differs from fetched series")
	}

	now = now.Add(2 * time.Hour)
	_, _ = cf.FetchDailyBars(ctx, "A", 30)
	if inner.calls != 2 {
		t.Errorf("expected refetch after bucket rollover, got %d calls", inner.calls)
	}

	if err := cf.Invalidate(ctx, "A", 30); err != nil {
		t.Fatal(err)
	}
	_, _ = cf.FetchDailyBars(ctx, "A", 30)
	if inner.calls != 3 {
		t.Errorf("expected refetch after invalidation, got %d calls", inner.calls)
	}
}

func TestMockFetcher_Timeout(t *testing.T) {
	m := &MockFetcher{Price: 10, Delay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := m.FetchDailyBars(ctx, "SLOW", 30)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected upstream deadline error, got %v", err)
	}
}

func TestParseDividendCell(t *testing.T) {
	html := `<div class="rate_info"><table class="per_table"><tr><td> 2.45% </td><td>9</td></tr></table></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	v, err := parseDividendCell(doc, defaultDividendSelector)
	if err != nil || v != 2.45 {
		t.Errorf("expected 2.45, got %.2f (%v)", v, err)
	}

	empty, _ := goquery.NewDocumentFromReader(strings.NewReader(`<html></html>`))
	if _, err := parseDividendCell(empty, defaultDividendSelector); !errors.Is(err, ErrNoDividendCell) {
		t.Errorf("expected ErrNoDividendCell, got %v", err)
	}
}

func TestNaverDividendScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<div class="rate_info"><table class="per_table"><tr><td>3.1%</td></tr></table></div>`))
	}))
	defer srv.Close()

	s := NewNaverDividendScraper("", "")
	s.BaseURL = srv.URL
	v, err := s.DividendYield(context.Background(), "삼성전자")
	if err != nil || v != 3.1 {
		t.Errorf("expected 3.1, got %.2f (%v)", v, err)
	}
}

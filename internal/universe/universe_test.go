package universe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScope/internal/collector"
	"StockScope/internal/model"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "universe.csv")
	in := []model.Listing{
		{Ticker: "005930.KS", Name: "삼성전자", PER: 12.5, PBR: 1.3, DividendYield: 2.1, Volume: 150000, Return3M: 4.2},
		{Ticker: "000660.KS", Name: "SK하이닉스, 우"},
	}
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), string(utf8BOM)) {
		t.Error("expected BOM prefix")
	}

	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []model.Listing
		wantErr error
	}{
		{
			name: "minimal columns",
			csv:  "ticker,name\nAAA,Alpha\n,blank\n",
			want: []model.Listing{{Ticker: "AAA", Name: "Alpha"}},
		},
		{
			name: "legacy korean headers with bom",
			csv:  "\ufeffticker,name,PER,PBR,배당률,거래량,3개월수익률\n005930.KS,삼성전자,12,1.1,2.5,200000,-3\n",
			want: []model.Listing{{Ticker: "005930.KS", Name: "삼성전자", PER: 12, PBR: 1.1, DividendYield: 2.5, Volume: 200000, Return3M: -3}},
		},
		{
			name: "unparsable numbers read as zero",
			csv:  "name,ticker,per\nBeta,BBB,n/a\n",
			want: []model.Listing{{Ticker: "BBB", Name: "Beta"}},
		},
		{
			name:    "missing name",
			csv:     "ticker,per\nAAA,1\n",
			wantErr: ErrMissingColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.csv))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d listings, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("listing %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFind(t *testing.T) {
	ls := []model.Listing{{Ticker: "005930.KS", Name: "삼성전자"}, {Ticker: "AAPL", Name: "Apple"}}
	if l, ok := Find(ls, "삼성전자"); !ok || l.Ticker != "005930.KS" {
		t.Errorf("name lookup failed: %+v", l)
	}
	if l, ok := Find(ls, " aapl "); !ok || l.Name != "Apple" {
		t.Errorf("ticker lookup failed: %+v", l)
	}
	if _, ok := Find(ls, "MSFT"); ok {
		t.Error("expected miss")
	}
}

type fakeDividends map[string]float64

func (f fakeDividends) DividendYield(_ context.Context, name string) (float64, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return 0, collector.ErrUpstream
}

func bars(closes ...float64) *model.PriceSeries {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: day.AddDate(0, 0, i), Close: c}
	}
	return &model.PriceSeries{Points: pts}
}

func TestUpdater(t *testing.T) {
	f := &collector.MockFetcher{
		Profiles: map[string]*model.Profile{
			"GOOD":   {Name: "Good", PER: 10, Volume: 200000, DividendYield: 1},
			"THIN":   {Name: "Thin", PER: 10, Volume: 100000},
			"LOSS":   {Name: "Loss", PER: -3, Volume: 500000},
			"CRASH":  {Name: "Crash", PER: 5, Volume: 500000},
			"NOBARS": {Name: "NoBars", PER: 5, Volume: 500000},
		},
		Series: map[string]*model.PriceSeries{
			"GOOD":  bars(100, 110),
			"THIN":  bars(100, 100),
			"LOSS":  bars(100, 100),
			"CRASH": bars(100, 40),
		},
		Errors: map[string]error{"GONE": collector.ErrUpstream},
	}
	path := filepath.Join(t.TempDir(), "universe.csv")
	u := NewUpdater(f, fakeDividends{"Good": 3.5}, path)
	u.Pacing = 0

	// NOBARS falls back to flat generated bars, a zero return.
	got, err := u.Update(context.Background(), []string{"GOOD", "THIN", "LOSS", "CRASH", "GONE", "NOBARS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Ticker != "GOOD" || got[1].Ticker != "NOBARS" {
		t.Fatalf("unexpected kept listings %+v", got)
	}
	if got[0].DividendYield != 3.5 {
		t.Errorf("expected scraped dividend override, got %.1f", got[0].DividendYield)
	}
	if got[0].Return3M < 9.99 || got[0].Return3M > 10.01 {
		t.Errorf("expected 10%% return, got %.2f", got[0].Return3M)
	}
	if got[1].DividendYield != 0 {
		t.Errorf("failed scrape must keep profile yield, got %.1f", got[1].DividendYield)
	}

	saved, err := Load(path)
	if err != nil || len(saved) != 2 {
		t.Errorf("expected saved snapshot with 2 rows, got %d (%v)", len(saved), err)
	}
}

func TestUpdater_Cancelled(t *testing.T) {
	u := NewUpdater(&collector.MockFetcher{}, nil, "")
	u.Pacing = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Update(ctx, []string{"A", "B"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

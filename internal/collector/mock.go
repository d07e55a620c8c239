package collector

import (
	"context"
	"fmt"
	"time"

	"StockScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	Anchor   time.Time // date of the last generated bar; zero means today
	Series   map[string]*model.PriceSeries
	Profiles map[string]*model.Profile
	Errors   map[string]error
	Delay    time.Duration
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("mock fetch: %w: %w", ErrUpstream, ctx.Err())
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	return &model.PriceSeries{Symbol: symbol, Points: GenerateMockBars(m.Price, days, m.anchor()), FetchedAt: time.Now()}, nil
}

func (m *MockFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if p, ok := m.Profiles[symbol]; ok {
		return p, nil
	}
	return &model.Profile{Symbol: symbol, Name: symbol, PER: 10, PBR: 1, Volume: 1000000}, nil
}

func (m *MockFetcher) anchor() time.Time {
	if m.Anchor.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return m.Anchor
}

// GenerateMockBars builds count gently rising daily bars ending at last.
func GenerateMockBars(basePrice float64, count int, last time.Time) []model.PricePoint {
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PricePoint{
			Date:   last.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

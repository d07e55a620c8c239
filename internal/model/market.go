package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnorderedSeries is returned when points are not strictly increasing by date.
var ErrUnorderedSeries = errors.New("price series not strictly increasing by date")

// PricePoint represents a single daily OHLCV bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds raw price data for analysis.
type PriceSeries struct {
	Symbol    string       `json:"symbol"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Len returns the number of points.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Validate checks ordering and non-negative volume.
func (s *PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Volume < 0 {
			return fmt.Errorf("point %d: negative volume %.0f", i, p.Volume)
		}
		if i > 0 && !p.Date.After(s.Points[i-1].Date) {
			return fmt.Errorf("point %d (%s): %w", i, p.Date.Format("2006-01-02"), ErrUnorderedSeries)
		}
	}
	return nil
}

// Closes returns the close prices in order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Profile holds company fundamentals returned by a data source.
type Profile struct {
	Symbol        string
	Name          string
	PER           float64
	PBR           float64
	DividendYield float64 // percent
	Volume        float64
}

package calculator

import (
	"errors"

	"StockScope/internal/model"
)

var (
	// ErrInvalidPeriod is returned for a non-positive window.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrInsufficientData is returned when a series is too short to analyze.
	ErrInsufficientData = errors.New("not enough data")
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingMean returns the trailing simple mean at every position.
// Positions before period-1 are undefined.
func RollingMean(values []float64, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Value, len(values))
	for i := period - 1; i < len(values); i++ {
		m, err := CalculateSMA(values[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = model.Defined(m)
	}
	return out, nil
}

// EMASeries computes an exponential moving average seeded with the simple
// mean of the first period defined inputs. Undefined inputs are skipped and
// produce undefined outputs.
func EMASeries(values []model.Value, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Value, len(values))
	k := 2.0 / float64(period+1)
	var count int
	var sum, prev float64
	for i, v := range values {
		if !v.Valid {
			continue
		}
		count++
		switch {
		case count < period:
			sum += v.Float
			continue
		case count == period:
			sum += v.Float
			prev = sum / float64(period)
		default:
			prev = v.Float*k + prev*(1-k)
		}
		out[i] = model.Defined(prev)
	}
	return out, nil
}

// EMA computes EMASeries over plain prices.
func EMA(prices []float64, period int) ([]model.Value, error) {
	return EMASeries(definedAll(prices), period)
}

func definedAll(prices []float64) []model.Value {
	out := make([]model.Value, len(prices))
	for i, p := range prices {
		out[i] = model.Defined(p)
	}
	return out
}

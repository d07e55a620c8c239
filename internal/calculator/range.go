package calculator

import (
	"errors"
	"math"

	"StockScope/internal/model"
)

// CalculateRange scans the most recent lookback points and returns the high and low.
// A non-positive lookback scans the whole series.
func CalculateRange(points []model.PricePoint, lookback int) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, ErrInsufficientData
	}
	n := len(points)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if points[i].High > high {
			high = points[i].High
		}
		if points[i].Low < low {
			low = points[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where the current price sits within the range (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

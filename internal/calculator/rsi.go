package calculator

import "StockScope/internal/model"

// RSISeries computes the Wilder-smoothed RSI at every position.
// The first average gain/loss is the simple mean of the first period changes,
// so positions 0..period-1 are undefined.
func RSISeries(closes []float64, period int) ([]model.Value, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Value, len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = model.Defined(rsiFrom(avgGain, avgLoss))

	// Wilder smoothing for remaining bars
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = model.Defined(rsiFrom(avgGain, avgLoss))
	}
	return out, nil
}

// CalculateRSI returns the latest RSI value.
func CalculateRSI(closes []float64, period int) (float64, error) {
	series, err := RSISeries(closes, period)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 || !series[len(series)-1].Valid {
		return 0, ErrInsufficientData
	}
	return series[len(series)-1].Float, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

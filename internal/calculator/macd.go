package calculator

import "StockScope/internal/model"

// MACDSeries returns EMA(fast)-EMA(slow) and its EMA(signal).
// MACD is undefined until the slow EMA is; the signal starts once signal
// MACD values exist.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, sig []model.Value, err error) {
	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, err
	}
	macd = make([]model.Value, len(closes))
	for i := range closes {
		if emaFast[i].Valid && emaSlow[i].Valid {
			macd[i] = model.Defined(emaFast[i].Float - emaSlow[i].Float)
		}
	}
	sig, err = EMASeries(macd, signal)
	if err != nil {
		return nil, nil, err
	}
	return macd, sig, nil
}

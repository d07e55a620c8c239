package calculator

import (
	"fmt"

	"StockScope/internal/model"
)

// MinPoints is the shortest series ComputeIndicators accepts.
const MinPoints = 10

// ComputeIndicators derives EMA, RSI and MACD columns for a price series.
func ComputeIndicators(series *model.PriceSeries, params model.IndicatorParams) (*model.IndicatorFrame, error) {
	if series.Len() < MinPoints {
		return nil, fmt.Errorf("%d points, need %d: %w", series.Len(), MinPoints, ErrInsufficientData)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	emaShort, err := EMA(closes, params.EMAShort)
	if err != nil {
		return nil, fmt.Errorf("ema short: %w", err)
	}
	emaLong, err := EMA(closes, params.EMALong)
	if err != nil {
		return nil, fmt.Errorf("ema long: %w", err)
	}
	rsi, err := RSISeries(closes, params.RSI)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, signal, err := MACDSeries(closes, params.MACDFast, params.MACDSlow, params.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	frame := &model.IndicatorFrame{
		Symbol: series.Symbol,
		Params: params,
		Rows:   make([]model.IndicatorRow, len(series.Points)),
	}
	for i, p := range series.Points {
		frame.Rows[i] = model.IndicatorRow{
			PricePoint: p,
			EMAShort:   emaShort[i],
			EMALong:    emaLong[i],
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: signal[i],
		}
	}
	return frame, nil
}

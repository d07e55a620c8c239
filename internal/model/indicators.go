package model

// Series names accepted by IndicatorFrame.Series.
const (
	SeriesClose      = "close"
	SeriesEMAShort   = "ema_short"
	SeriesEMALong    = "ema_long"
	SeriesRSI        = "rsi"
	SeriesMACD       = "macd"
	SeriesMACDSignal = "macd_signal"
)

// IndicatorParams are the indicator windows.
type IndicatorParams struct {
	EMAShort   int `yaml:"ema_short"`
	EMALong    int `yaml:"ema_long"`
	RSI        int `yaml:"rsi"`
	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`
}

// DefaultIndicatorParams returns EMA 5/20, RSI 14 and MACD 12/26/9.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{EMAShort: 5, EMALong: 20, RSI: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9}
}

// IndicatorRow is a price point extended with derived indicators.
type IndicatorRow struct {
	PricePoint
	EMAShort   Value `json:"ema_short"`
	EMALong    Value `json:"ema_long"`
	RSI        Value `json:"rsi"`
	MACD       Value `json:"macd"`
	MACDSignal Value `json:"macd_signal"`
}

// Complete reports whether every indicator on the row is defined.
func (r *IndicatorRow) Complete() bool {
	return r.EMAShort.Valid && r.EMALong.Valid && r.RSI.Valid && r.MACD.Valid && r.MACDSignal.Valid
}

// IndicatorFrame is a price series with position-aligned indicators.
type IndicatorFrame struct {
	Symbol string          `json:"symbol"`
	Params IndicatorParams `json:"params"`
	Rows   []IndicatorRow  `json:"rows"`
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Closes returns the close prices.
func (f *IndicatorFrame) Closes() []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Close
	}
	return out
}

// Volumes returns the volumes.
func (f *IndicatorFrame) Volumes() []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Volume
	}
	return out
}

// Series returns (date, value) pairs for the named column, or nil for an unknown name.
func (f *IndicatorFrame) Series(name string) []SeriesPoint {
	var pick func(r *IndicatorRow) Value
	switch name {
	case SeriesClose:
		pick = func(r *IndicatorRow) Value { return Defined(r.Close) }
	case SeriesEMAShort:
		pick = func(r *IndicatorRow) Value { return r.EMAShort }
	case SeriesEMALong:
		pick = func(r *IndicatorRow) Value { return r.EMALong }
	case SeriesRSI:
		pick = func(r *IndicatorRow) Value { return r.RSI }
	case SeriesMACD:
		pick = func(r *IndicatorRow) Value { return r.MACD }
	case SeriesMACDSignal:
		pick = func(r *IndicatorRow) Value { return r.MACDSignal }
	default:
		return nil
	}
	out := make([]SeriesPoint, len(f.Rows))
	for i := range f.Rows {
		out[i] = SeriesPoint{Date: f.Rows[i].Date, Value: pick(&f.Rows[i])}
	}
	return out
}

package model

import "time"

// CrossoverKind is the direction of an EMA crossover.
type CrossoverKind string

const (
	Bullish CrossoverKind = "BULLISH"
	Bearish CrossoverKind = "BEARISH"
)

// CrossoverEvent marks a sign flip of (EMAShort - EMALong).
type CrossoverEvent struct {
	Date  time.Time     `json:"date"`
	Kind  CrossoverKind `json:"kind"`
	Price float64       `json:"price"`
}

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Score is the attractiveness of one ticker under one style.
type Score struct {
	Ticker  string
	Style   Style
	Policy  string
	Value   float64
	Factors []FactorScore
	AsOf    time.Time
}

// RSIZone classifies the latest RSI.
type RSIZone string

const (
	ZoneOverbought RSIZone = "OVERBOUGHT"
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneUnknown    RSIZone = "UNKNOWN"
)

// Advice is the textual buy/sell guidance derived from the latest indicators.
type Advice struct {
	RSI       Value
	RSIZone   RSIZone
	MACDAbove bool
	MACDKnown bool
	BuyRef    Value // most recent bullish crossover close
	SellRef   Value // most recent bearish crossover close
}

// Analysis is the full single-ticker result.
type Analysis struct {
	Ticker     string
	Name       string
	Style      Style
	Frame      *IndicatorFrame
	Crossovers []CrossoverEvent
	Score      *Score
	Ready      bool // false when no scoreable row existed
	Advice     Advice
	LastClose  float64
	RangeHigh  float64
	RangeLow   float64
	RangePos   float64 // 0.0 ~ 1.0 within the fetched window
	AnalyzedAt time.Time
}

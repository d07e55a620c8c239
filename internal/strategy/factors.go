package strategy

import (
	"fmt"

	"StockScope/internal/calculator"
	"StockScope/internal/crossover"
	"StockScope/internal/model"
)

const (
	volumeWindow   = 5
	momentumWindow = 3
)

// Weights are the points of each weighted-policy factor.
type Weights struct {
	Volume    float64 `yaml:"volume"`
	Momentum  float64 `yaml:"momentum"`
	Crossover float64 `yaml:"crossover"`
	RSI       float64 `yaml:"rsi"`
}

// WeightSet holds per-style weights.
type WeightSet struct {
	Aggressive Weights `yaml:"aggressive"`
	Stable     Weights `yaml:"stable"`
	Dividend   Weights `yaml:"dividend"`
}

// DefaultWeightSet returns the reference weights.
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Aggressive: Weights{Volume: 40, Momentum: 30, Crossover: 20, RSI: 10},
		Stable:     Weights{Volume: 20, Momentum: 20, Crossover: 30, RSI: 10},
		Dividend:   Weights{Volume: 15, Momentum: 10, Crossover: 20, RSI: 15},
	}
}

// For returns the weights of a style.
func (w WeightSet) For(style model.Style) Weights {
	switch style {
	case model.Aggressive:
		return w.Aggressive
	case model.Stable:
		return w.Stable
	default:
		return w.Dividend
	}
}

// WeightedPolicy combines volume surge, momentum, crossover recency and an RSI band.
type WeightedPolicy struct {
	Weights      WeightSet
	RecentWindow int // rows searched for a crossover, including the scored row
}

// NewWeightedPolicy creates a WeightedPolicy; recentWindow <= 0 means 5.
func NewWeightedPolicy(weights WeightSet, recentWindow int) *WeightedPolicy {
	if recentWindow <= 0 {
		recentWindow = 5
	}
	return &WeightedPolicy{Weights: weights, RecentWindow: recentWindow}
}

func (p *WeightedPolicy) Name() string { return PolicyWeighted }

func (p *WeightedPolicy) Ready(frame *model.IndicatorFrame, i int) bool {
	r := &frame.Rows[i]
	return i >= volumeWindow-1 && r.EMAShort.Valid && r.EMALong.Valid && r.RSI.Valid
}

func (p *WeightedPolicy) Evaluate(frame *model.IndicatorFrame, i int, style model.Style) []model.FactorScore {
	w := p.Weights.For(style)
	return []model.FactorScore{
		scoreVolumeSurge(frame, i, style, w.Volume),
		scoreMomentum(frame, i, w.Momentum),
		p.scoreCrossover(frame, i, style, w.Crossover),
		scoreRSIBand(frame, i, style, w.RSI),
	}
}

// scoreVolumeSurge compares the row volume with its 5-period rolling mean.
// Threshold: 2x for aggressive, 1x otherwise.
func scoreVolumeSurge(frame *model.IndicatorFrame, i int, style model.Style, weight float64) model.FactorScore {
	threshold := 1.0
	if style == model.Aggressive {
		threshold = 2.0
	}
	volumes := frame.Volumes()[:i+1]
	means, err := calculator.RollingMean(volumes, volumeWindow)
	if err != nil || !means[i].Valid || means[i].Float == 0 {
		return binary("거래량 급증", false, weight, "거래량 평균 불가")
	}
	ratio := volumes[i] / means[i].Float
	return binary("거래량 급증", ratio > threshold, weight, fmt.Sprintf("평균 대비 %.2fx (기준 %.0fx)", ratio, threshold))
}

// scoreMomentum checks that the last three daily changes sum above zero.
func scoreMomentum(frame *model.IndicatorFrame, i int, weight float64) model.FactorScore {
	if i < momentumWindow {
		return binary("가격 모멘텀", false, weight, "데이터 부족")
	}
	change := frame.Rows[i].Close - frame.Rows[i-momentumWindow].Close
	return binary("가격 모멘텀", change > 0, weight, fmt.Sprintf("3일 변화 %+.2f", change))
}

// scoreCrossover rewards a recent golden cross for aggressive investors and
// the absence of any cross (trend stability) for everyone else.
func (p *WeightedPolicy) scoreCrossover(frame *model.IndicatorFrame, i int, style model.Style, weight float64) model.FactorScore {
	start := i - p.RecentWindow + 1
	if start < 0 {
		start = 0
	}
	window := &model.IndicatorFrame{Symbol: frame.Symbol, Rows: frame.Rows[:i+1]}
	recent := crossover.EventsSince(crossover.Detect(window), frame.Rows[start].Date)

	if style == model.Aggressive {
		_, ok := crossover.LastEvent(recent, model.Bullish)
		return binary("골든크로스", ok, weight, fmt.Sprintf("최근 %d일 골든크로스 %v", p.RecentWindow, ok))
	}
	return binary("추세 안정", len(recent) == 0, weight, fmt.Sprintf("최근 %d일 크로스 %d회", p.RecentWindow, len(recent)))
}

// scoreRSIBand checks RSI membership in 30-60 (aggressive) or 40-60.
func scoreRSIBand(frame *model.IndicatorFrame, i int, style model.Style, weight float64) model.FactorScore {
	lo, hi := 40.0, 60.0
	if style == model.Aggressive {
		lo = 30
	}
	rsi := frame.Rows[i].RSI.Float
	return binary("RSI 구간", rsi >= lo && rsi <= hi, weight, fmt.Sprintf("RSI=%.0f (%.0f~%.0f)", rsi, lo, hi))
}

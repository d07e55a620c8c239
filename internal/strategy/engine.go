package strategy

import (
	"errors"
	"fmt"

	"StockScope/internal/model"
)

// ErrIndicatorsNotReady is returned when no row has the indicators a policy needs.
var ErrIndicatorsNotReady = errors.New("indicators not ready")

// Policy scores a single indicator row for a style.
type Policy interface {
	Name() string
	// Ready reports whether row i carries everything Evaluate reads.
	Ready(frame *model.IndicatorFrame, i int) bool
	Evaluate(frame *model.IndicatorFrame, i int, style model.Style) []model.FactorScore
}

// Policy names accepted by NewPolicy.
const (
	PolicySimple   = "simple"
	PolicyWeighted = "weighted"
)

// NewPolicy builds a policy by name. Weights and recentWindow only apply to
// the weighted policy.
func NewPolicy(name string, weights WeightSet, recentWindow int) (Policy, error) {
	switch name {
	case PolicySimple:
		return SimplePolicy{}, nil
	case PolicyWeighted, "":
		return NewWeightedPolicy(weights, recentWindow), nil
	}
	return nil, fmt.Errorf("unknown scoring policy %q", name)
}

// Engine applies a policy to the most recent ready row of a frame.
type Engine struct {
	Policy Policy
}

// NewEngine creates a new Engine.
func NewEngine(p Policy) *Engine {
	return &Engine{Policy: p}
}

// Score computes the score of the latest ready row. When no row is ready it
// returns a zero score together with ErrIndicatorsNotReady.
func (e *Engine) Score(frame *model.IndicatorFrame, style model.Style) (*model.Score, error) {
	score := &model.Score{
		Ticker: frame.Symbol,
		Style:  style,
		Policy: e.Policy.Name(),
	}
	idx := e.latestReady(frame)
	if idx < 0 {
		return score, fmt.Errorf("%s: %w", frame.Symbol, ErrIndicatorsNotReady)
	}

	score.AsOf = frame.Rows[idx].Date
	score.Factors = e.Policy.Evaluate(frame, idx, style)
	for _, f := range score.Factors {
		score.Value += f.Weighted
	}
	if score.Value < 0 {
		score.Value = 0
	}
	return score, nil
}

func (e *Engine) latestReady(frame *model.IndicatorFrame) int {
	for i := frame.Len() - 1; i >= 0; i-- {
		if e.Policy.Ready(frame, i) {
			return i
		}
	}
	return -1
}

package recorder

import "StockScope/internal/model"

// Recorder persists analysis and ranking history.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	RecordRanking(r *model.Ranking) error
	Close() error
}

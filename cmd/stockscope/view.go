package main

import (
	"time"

	"StockScope/internal/model"
)

type entryView struct {
	Rank   int     `json:"rank"`
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Status string  `json:"status"`
	Error  string  `json:"error,omitempty"`
}

type rankingView struct {
	RunID       string      `json:"run_id"`
	Style       model.Style `json:"style"`
	Policy      string      `json:"policy"`
	Universe    int         `json:"universe"`
	GeneratedAt time.Time   `json:"generated_at"`
	Entries     []entryView `json:"entries"`
}

func newRankingView(r *model.Ranking) rankingView {
	v := rankingView{
		RunID:       r.RunID,
		Style:       r.Style,
		Policy:      r.Policy,
		Universe:    r.Universe,
		GeneratedAt: r.GeneratedAt,
		Entries:     make([]entryView, len(r.Entries)),
	}
	for i, e := range r.Entries {
		v.Entries[i] = entryView{Rank: e.Rank, Ticker: e.Ticker, Name: e.Name, Score: e.Score, Status: string(e.Status)}
		if e.Err != nil {
			v.Entries[i].Error = e.Err.Error()
		}
	}
	return v
}

type analysisView struct {
	Ticker     string                         `json:"ticker"`
	Name       string                         `json:"name"`
	Style      model.Style                    `json:"style"`
	Ready      bool                           `json:"ready"`
	Score      float64                        `json:"score"`
	Factors    []model.FactorScore            `json:"factors,omitempty"`
	LastClose  float64                        `json:"last_close"`
	RangePos   float64                        `json:"range_position"`
	Advice     model.Advice                   `json:"advice"`
	Crossovers []model.CrossoverEvent         `json:"crossovers"`
	Series     map[string][]model.SeriesPoint `json:"series"`
}

func newAnalysisView(a *model.Analysis) analysisView {
	v := analysisView{
		Ticker:     a.Ticker,
		Name:       a.Name,
		Style:      a.Style,
		Ready:      a.Ready,
		LastClose:  a.LastClose,
		RangePos:   a.RangePos,
		Advice:     a.Advice,
		Crossovers: a.Crossovers,
		Series:     map[string][]model.SeriesPoint{},
	}
	if a.Score != nil {
		v.Score, v.Factors = a.Score.Value, a.Score.Factors
	}
	for _, name := range []string{model.SeriesClose, model.SeriesEMAShort, model.SeriesEMALong, model.SeriesRSI, model.SeriesMACD, model.SeriesMACDSignal} {
		v.Series[name] = a.Frame.Series(name)
	}
	return v
}

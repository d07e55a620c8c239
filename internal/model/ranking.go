package model

import "time"

// RankStatus tells a zero score apart from a failed ticker.
type RankStatus string

const (
	StatusOK       RankStatus = "OK"
	StatusNoData   RankStatus = "NO_DATA"
	StatusNotReady RankStatus = "NOT_READY"
)

// Listing is one row of the universe snapshot.
type Listing struct {
	Ticker        string
	Name          string
	PER           float64
	PBR           float64
	DividendYield float64
	Volume        float64
	Return3M      float64
}

// RankedEntry is one ranked ticker.
type RankedEntry struct {
	Rank   int
	Ticker string
	Name   string
	Score  float64
	Status RankStatus
	Err    error
}

// Ranking is an ordered top-N list.
type Ranking struct {
	RunID       string
	Style       Style
	Policy      string
	Universe    int
	Entries     []RankedEntry
	GeneratedAt time.Time
}

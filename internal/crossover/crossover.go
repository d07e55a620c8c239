// Package crossover detects EMA short/long crossover events on an indicator frame.
package crossover

import (
	"time"

	"StockScope/internal/model"
)

// Detect returns every crossover in chronological order.
//
// With diff = EMAShort - EMALong, a bullish event fires at i when
// diff[i-1] <= 0 < diff[i] and a bearish one when diff[i-1] >= 0 > diff[i].
// Rows where either diff is undefined never emit.
func Detect(frame *model.IndicatorFrame) []model.CrossoverEvent {
	var events []model.CrossoverEvent
	if frame == nil {
		return events
	}
	for i := 1; i < len(frame.Rows); i++ {
		prev, ok := diff(&frame.Rows[i-1])
		if !ok {
			continue
		}
		cur, ok := diff(&frame.Rows[i])
		if !ok {
			continue
		}
		row := &frame.Rows[i]
		switch {
		case prev <= 0 && cur > 0:
			events = append(events, model.CrossoverEvent{Date: row.Date, Kind: model.Bullish, Price: row.Close})
		case prev >= 0 && cur < 0:
			events = append(events, model.CrossoverEvent{Date: row.Date, Kind: model.Bearish, Price: row.Close})
		}
	}
	return events
}

func diff(r *model.IndicatorRow) (float64, bool) {
	if !r.EMAShort.Valid || !r.EMALong.Valid {
		return 0, false
	}
	return r.EMAShort.Float - r.EMALong.Float, true
}

// LastEvent returns the most recent event of the given kind.
func LastEvent(events []model.CrossoverEvent, kind model.CrossoverKind) (model.CrossoverEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return model.CrossoverEvent{}, false
}

// LastBuyPrice is the close of the most recent bullish crossover.
func LastBuyPrice(events []model.CrossoverEvent) (float64, bool) {
	e, ok := LastEvent(events, model.Bullish)
	return e.Price, ok
}

// LastSellPrice is the close of the most recent bearish crossover.
func LastSellPrice(events []model.CrossoverEvent) (float64, bool) {
	e, ok := LastEvent(events, model.Bearish)
	return e.Price, ok
}

// EventsSince returns events dated at or after since.
func EventsSince(events []model.CrossoverEvent, since time.Time) []model.CrossoverEvent {
	for i, e := range events {
		if !e.Date.Before(since) {
			return events[i:]
		}
	}
	return nil
}

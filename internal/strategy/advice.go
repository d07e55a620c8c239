package strategy

import (
	"StockScope/internal/crossover"
	"StockScope/internal/model"
)

// RSI thresholds for the advice panel.
const (
	Overbought = 70.0
	Oversold   = 30.0
)

// Advise summarises the latest row: RSI zone, MACD direction and the
// crossover reference prices.
func Advise(frame *model.IndicatorFrame, events []model.CrossoverEvent) model.Advice {
	adv := model.Advice{RSIZone: model.ZoneUnknown}
	if frame.Len() == 0 {
		return adv
	}
	last := &frame.Rows[frame.Len()-1]

	adv.RSI = last.RSI
	if last.RSI.Valid {
		switch {
		case last.RSI.Float > Overbought:
			adv.RSIZone = model.ZoneOverbought
		case last.RSI.Float < Oversold:
			adv.RSIZone = model.ZoneOversold
		default:
			adv.RSIZone = model.ZoneNeutral
		}
	}
	if last.MACD.Valid && last.MACDSignal.Valid {
		adv.MACDKnown = true
		adv.MACDAbove = last.MACD.Float > last.MACDSignal.Float
	}
	if p, ok := crossover.LastBuyPrice(events); ok {
		adv.BuyRef = model.Defined(p)
	}
	if p, ok := crossover.LastSellPrice(events); ok {
		adv.SellRef = model.Defined(p)
	}
	return adv
}

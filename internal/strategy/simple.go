package strategy

import (
	"fmt"

	"StockScope/internal/model"
)

// SimplePolicy awards fixed points per binary rule:
// AGGRESSIVE 10 for RSI<30 and 10 for MACD>Signal, STABLE 10 for
// EMAShort>EMALong, DIVIDEND a flat 5.
type SimplePolicy struct{}

func (SimplePolicy) Name() string { return PolicySimple }

func (SimplePolicy) Ready(frame *model.IndicatorFrame, i int) bool {
	return frame.Rows[i].Complete()
}

func (SimplePolicy) Evaluate(frame *model.IndicatorFrame, i int, style model.Style) []model.FactorScore {
	row := &frame.Rows[i]
	switch style {
	case model.Aggressive:
		return []model.FactorScore{
			binary("RSI 과매도", row.RSI.Float < 30, 10, fmt.Sprintf("RSI=%.0f", row.RSI.Float)),
			binary("MACD 상향", row.MACD.Float > row.MACDSignal.Float, 10,
				fmt.Sprintf("MACD=%.2f Signal=%.2f", row.MACD.Float, row.MACDSignal.Float)),
		}
	case model.Stable:
		return []model.FactorScore{
			binary("정배열", row.EMAShort.Float > row.EMALong.Float, 10,
				fmt.Sprintf("EMA5=%.2f EMA20=%.2f", row.EMAShort.Float, row.EMALong.Float)),
		}
	case model.Dividend:
		return []model.FactorScore{binary("배당 기본점수", true, 5, "고정")}
	}
	return nil
}

func binary(name string, hit bool, weight float64, commentary string) model.FactorScore {
	raw := 0.0
	if hit {
		raw = 1
	}
	return model.FactorScore{
		Name:       name,
		RawScore:   raw,
		Weight:     weight,
		Weighted:   raw * weight,
		Commentary: commentary,
	}
}

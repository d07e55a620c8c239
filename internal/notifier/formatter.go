package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"StockScope/internal/model"
	"StockScope/internal/watchlist"

	"github.com/shopspring/decimal"
)

// Glossary is the indicator help text shown by /help.
var Glossary = []struct{ Term, Text string }{
	{"RSI", "상대강도지수: 과매수/과매도 상태 판단 (70↑ 과매수, 30↓ 과매도)"},
	{"EMA", "지수이동평균선: 최근 가격에 가중치를 둔 추세 지표"},
	{"MACD", "이동평균 간 차이를 이용한 추세 반전 지표"},
	{"PER", "주가수익비율: 수익 대비 주가 수준 (낮을수록 저평가)"},
	{"PBR", "주가순자산비율: 자산 대비 주가 수준 (1보다 낮으면 저평가)"},
	{"배당수익률", "연 배당금 ÷ 주가 = 배당 투자 수익률"},
}

// price renders a price rounded to two decimals without trailing zeros.
func price(p float64) string {
	return decimal.NewFromFloat(p).Round(2).String()
}

func value(v model.Value, format string) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf(format, v.Float)
}

// FormatAnalysis formats a single-ticker analysis.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> (%s) | %s\n\n",
		html.EscapeString(a.Name), html.EscapeString(a.Ticker), a.Style.Label()))

	b.WriteString(fmt.Sprintf("종가: %s\n", price(a.LastClose)))
	b.WriteString(fmt.Sprintf("기간 고가/저가: %s / %s (위치 %.0f%%)\n\n",
		price(a.RangeHigh), price(a.RangeLow), a.RangePos*100))

	if n := a.Frame.Len(); n > 0 {
		last := a.Frame.Rows[n-1]
		b.WriteString(fmt.Sprintf("EMA%d: %s | EMA%d: %s\n",
			a.Frame.Params.EMAShort, value(last.EMAShort, "%.2f"),
			a.Frame.Params.EMALong, value(last.EMALong, "%.2f")))
		b.WriteString(fmt.Sprintf("RSI: %s | MACD: %s / Signal: %s\n\n",
			value(last.RSI, "%.1f"), value(last.MACD, "%.2f"), value(last.MACDSignal, "%.2f")))
	}

	b.WriteString("🧮 <b>점수</b>\n")
	if a.Score == nil || !a.Ready {
		b.WriteString("  지표 계산에 필요한 데이터가 부족합니다 (0점)\n\n")
	} else {
		for _, f := range a.Score.Factors {
			mark := "✗"
			if f.RawScore > 0 {
				mark = "✓"
			}
			b.WriteString(fmt.Sprintf("  %s %s (%s): %.0f/%.0f\n",
				mark, f.Name, html.EscapeString(f.Commentary), f.Weighted, f.Weight))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  합계: %.0f점 (%s)\n\n", a.Score.Value, a.Score.Policy))
	}

	b.WriteString("💡 <b>투자 판단 요약</b>\n")
	b.WriteString(adviceText(a.Advice))
	return b.String()
}

func adviceText(adv model.Advice) string {
	var b strings.Builder
	switch adv.RSIZone {
	case model.ZoneOverbought:
		b.WriteString("⚠️ RSI 70 이상 → 과매수 구간으로 매도 고려\n")
	case model.ZoneOversold:
		b.WriteString("✅ RSI 30 이하 → 과매도 구간으로 매수 기회\n")
	case model.ZoneNeutral:
		b.WriteString("ℹ️ RSI 중간값 → 관망\n")
	default:
		b.WriteString("ℹ️ RSI 계산 불가\n")
	}
	if adv.MACDKnown {
		if adv.MACDAbove {
			b.WriteString("📈 MACD > Signal → 상승 전환 신호\n")
		} else {
			b.WriteString("📉 MACD < Signal → 하락 전환 주의\n")
		}
	}
	if adv.BuyRef.Valid {
		b.WriteString(fmt.Sprintf("🟢 최근 골든크로스 가격: %s\n", price(adv.BuyRef.Float)))
	}
	if adv.SellRef.Valid {
		b.WriteString(fmt.Sprintf("🔴 최근 데드크로스 가격: %s\n", price(adv.SellRef.Float)))
	}
	return b.String()
}

// FormatRanking formats a ranking as a numbered list.
func FormatRanking(r *model.Ranking) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>%s 추천 순위</b> | %s\n", r.Style.Label(), r.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("대상 %d종목 · 정책 %s\n\n", r.Universe, r.Policy))
	if len(r.Entries) == 0 {
		b.WriteString("순위를 매길 종목이 없습니다.\n")
		return b.String()
	}
	for _, e := range r.Entries {
		line := fmt.Sprintf("%d. %s (%s) %.0f점", e.Rank, html.EscapeString(e.Name), html.EscapeString(e.Ticker), e.Score)
		switch e.Status {
		case model.StatusNoData:
			line += " · 데이터 없음"
		case model.StatusNotReady:
			line += " · 지표 준비 중"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatNews formats headlines and their keywords.
func FormatNews(keyword string, headlines, keywords []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📰 <b>%s</b> 뉴스\n\n", html.EscapeString(keyword)))
	if len(headlines) == 0 {
		b.WriteString("관련 뉴스를 찾지 못했습니다.\n")
		return b.String()
	}
	for _, h := range headlines {
		b.WriteString("• " + html.EscapeString(h) + "\n")
	}
	if len(keywords) > 0 {
		b.WriteString("\n🔑 키워드: " + html.EscapeString(strings.Join(keywords, ", ")) + "\n")
	}
	return b.String()
}

// FormatWatchlist lists the watched tickers.
func FormatWatchlist(entries []watchlist.Entry) string {
	if len(entries) == 0 {
		return "⭐ 관심 종목이 없습니다. /watch &lt;티커&gt; 로 추가하세요."
	}
	var b strings.Builder
	b.WriteString("⭐ <b>관심 종목</b>\n\n")
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.Ticker
		}
		b.WriteString(fmt.Sprintf("• %s (%s) · %s\n", html.EscapeString(name), html.EscapeString(e.Ticker), e.AddedAt.Format("2006-01-02")))
	}
	return b.String()
}

// FormatDigest summarises watchlist analyses in one message. failed maps
// tickers that could not be analyzed to their error.
func FormatDigest(analyses []*model.Analysis, failed map[string]error, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⭐ <b>관심 종목 요약</b> | %s\n\n", at.Format("2006-01-02")))
	for _, a := range analyses {
		score := "0점 (준비 중)"
		if a.Ready && a.Score != nil {
			score = fmt.Sprintf("%.0f점", a.Score.Value)
		}
		b.WriteString(fmt.Sprintf("• %s %s · RSI %s · %s\n",
			html.EscapeString(a.Name), price(a.LastClose), value(a.Advice.RSI, "%.0f"), score))
	}
	tickers := make([]string, 0, len(failed))
	for t := range failed {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("• %s: ⚠️ %s\n", html.EscapeString(t), html.EscapeString(failed[t].Error())))
	}
	return b.String()
}

// FormatUpdate reports a refreshed universe snapshot.
func FormatUpdate(listings []model.Listing, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⟳ <b>종목 데이터 갱신 완료</b> | %s\n", at.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("필터 통과: %d종목\n", len(listings)))
	for _, l := range listings {
		b.WriteString(fmt.Sprintf("• %s PER %.1f · 배당 %.2f%% · 3개월 %+.1f%%\n",
			html.EscapeString(l.Name), l.PER, l.DividendYield, l.Return3M))
	}
	return b.String()
}

// FormatGlossary renders the indicator glossary and command help.
func FormatGlossary() string {
	var b strings.Builder
	b.WriteString("🧠 <b>기술 지표 용어 설명</b>\n\n")
	for _, g := range Glossary {
		b.WriteString(fmt.Sprintf("• <b>%s</b>: %s\n", g.Term, g.Text))
	}
	b.WriteString("\n📋 <b>명령어</b>\n")
	b.WriteString("/analyze &lt;티커|종목명&gt; [스타일] - 종목 분석\n")
	b.WriteString("/rank [스타일] [개수] - 추천 순위\n")
	b.WriteString("/update - 종목 데이터 갱신\n")
	b.WriteString("/news &lt;키워드&gt; - 뉴스 키워드\n")
	b.WriteString("/watch &lt;티커&gt; · /unwatch &lt;티커&gt; · /watchlist\n")
	b.WriteString("\n스타일: 공격적(aggressive) · 안정적(stable) · 배당형(dividend)\n")
	return b.String()
}

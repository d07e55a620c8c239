package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockScope/internal/model"
	"StockScope/internal/watchlist"
)

var day = time.Date(2024, 6, 3, 15, 40, 0, 0, time.UTC)

func TestFormatAnalysis(t *testing.T) {
	a := &model.Analysis{
		Ticker: "005930.KS",
		Name:   "삼성<전자>",
		Style:  model.Aggressive,
		Frame: &model.IndicatorFrame{
			Params: model.DefaultIndicatorParams(),
			Rows: []model.IndicatorRow{{
				EMAShort: model.Defined(70100.456), EMALong: model.Defined(69000),
				RSI: model.Defined(75.2), MACD: model.Defined(12.3),
			}},
		},
		Score: &model.Score{Value: 70, Policy: "weighted", Factors: []model.FactorScore{
			{Name: "거래량 급증", RawScore: 1, Weight: 40, Weighted: 40, Commentary: "x2.5"},
			{Name: "RSI 구간", RawScore: 0, Weight: 10, Weighted: 0, Commentary: "RSI=75"},
		}},
		Ready:     true,
		Advice:    model.Advice{RSIZone: model.ZoneOverbought, MACDKnown: true, MACDAbove: true, BuyRef: model.Defined(68500.5)},
		LastClose: 70200.125,
		RangeHigh: 72000, RangeLow: 60000, RangePos: 0.85,
	}
	got := FormatAnalysis(a)
	for _, want := range []string{
		"삼성&lt;전자&gt;", "공격적", "종가: 70200.13", "EMA5: 70100.46", "Signal: -",
		"✓ 거래량 급증", "✗ RSI 구간", "합계: 70점", "과매수", "상승 전환", "골든크로스 가격: 68500.5",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "데드크로스") {
		t.Error("absent sell reference must not be rendered")
	}

	a.Ready = false
	if got := FormatAnalysis(a); !strings.Contains(got, "데이터가 부족") {
		t.Errorf("not ready analysis should say so:\n%s", got)
	}
}

func TestFormatRanking(t *testing.T) {
	r := &model.Ranking{
		Style: model.Stable, Policy: "weighted", Universe: 3, GeneratedAt: day,
		Entries: []model.RankedEntry{
			{Rank: 1, Ticker: "A", Name: "Alpha", Score: 60, Status: model.StatusOK},
			{Rank: 2, Ticker: "B", Name: "Beta", Status: model.StatusNoData},
			{Rank: 3, Ticker: "C", Name: "Gamma", Status: model.StatusNotReady},
		},
	}
	got := FormatRanking(r)
	for _, want := range []string{"안정적 추천 순위", "1. Alpha (A) 60점", "2. Beta (B) 0점 · 데이터 없음", "3. Gamma (C) 0점 · 지표 준비 중"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if got := FormatRanking(&model.Ranking{Style: model.Dividend}); !strings.Contains(got, "없습니다") {
		t.Errorf("empty ranking message missing:\n%s", got)
	}
}

func TestFormatOthers(t *testing.T) {
	news := FormatNews("반도체", []string{"반도체 & 수출"}, []string{"반도체", "수출"})
	if !strings.Contains(news, "반도체 &amp; 수출") || !strings.Contains(news, "키워드: 반도체, 수출") {
		t.Errorf("unexpected news message:\n%s", news)
	}
	if got := FormatNews("x", nil, nil); !strings.Contains(got, "찾지 못했습니다") {
		t.Errorf("unexpected empty news message:\n%s", got)
	}

	wl := FormatWatchlist([]watchlist.Entry{{Ticker: "AAPL", AddedAt: day}})
	if !strings.Contains(wl, "AAPL (AAPL) · 2024-06-03") {
		t.Errorf("unexpected watchlist message:\n%s", wl)
	}

	digest := FormatDigest(
		[]*model.Analysis{{Name: "Alpha", LastClose: 10, Ready: true, Score: &model.Score{Value: 30}, Advice: model.Advice{RSI: model.Defined(44)}}},
		map[string]error{"ZZZ": errors.New("down"), "BBB": errors.New("gone")}, day)
	if !strings.Contains(digest, "Alpha 10 · RSI 44 · 30점") || strings.Index(digest, "BBB") > strings.Index(digest, "ZZZ") {
		t.Errorf("unexpected digest:\n%s", digest)
	}

	help := FormatGlossary()
	for _, g := range Glossary {
		if !strings.Contains(help, g.Term) {
			t.Errorf("glossary missing %s", g.Term)
		}
	}
}

type fakeTelegram struct {
	mu       sync.Mutex
	failures int
	sent     []map[string]interface{}
	updates  int
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if f.failures > 0 {
				f.failures--
				http.Error(w, "flood", http.StatusTooManyRequests)
				return
			}
			var msg map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
				t.Errorf("decode: %v", err)
			}
			f.sent = append(f.sent, msg)
			_, _ = w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.updates++
			if f.updates == 1 {
				_, _ = w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":" /help ","chat":{"id":99}}},
					{"update_id":8}]}`))
				return
			}
			var req struct {
				Offset int `json:"offset"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode: %v", err)
			}
			if req.Offset != 9 {
				t.Errorf("expected offset 9, got %d", req.Offset)
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
		}
	})
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "1", "")
	n.APIBase = srv.URL
	n.Backoff = time.Millisecond
	return n
}

func TestSendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failures: 2}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	n := newTestNotifier(srv)

	if err := n.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatal(err)
	}
	if len(fake.sent) != 1 || fake.sent[0]["chat_id"] != "1" || fake.sent[0]["parse_mode"] != "HTML" {
		t.Errorf("unexpected sent messages %+v", fake.sent)
	}

	fake.failures = 5
	if err := n.SendWithRetry(context.Background(), "hello", 1); err == nil {
		t.Error("expected exhausted retries to fail")
	}
}

func TestStartPolling(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	n := newTestNotifier(srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got string
	go func() {
		defer close(done)
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = cmd
			return "reply"
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		fake.mu.Lock()
		polled := fake.updates >= 2
		fake.mu.Unlock()
		if polled {
			break
		}
		select {
		case <-deadline:
			t.Fatal("polling did not progress")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if got != "/help" {
		t.Errorf("expected trimmed command, got %q", got)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.sent) != 1 || fake.sent[0]["chat_id"] != "99" || fake.sent[0]["text"] != "reply" {
		t.Errorf("expected reply to originating chat, got %+v", fake.sent)
	}
}

func TestSendWithRetry_RetryAfter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests","parameters":{"retry_after":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()
	n := newTestNotifier(srv)
	n.Backoff = time.Hour

	var apiErr *APIError
	if err := n.Send("x"); !errors.As(err, &apiErr) || apiErr.RetryAfter != time.Second || apiErr.Status != 429 {
		t.Fatalf("expected APIError with retry_after, got %v", err)
	}
	start := time.Now()
	if err := n.SendWithRetry(context.Background(), "x", 1); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 10*time.Second {
		t.Error("expected retry_after to replace the hour-long backoff")
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"short", "hello", 10, []string{"hello"}},
		{"line break", "abc\ndefgh", 6, []string{"abc", "defgh"}},
		{"hard cut", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"keeps runes whole", "가나다", 4, []string{"가", "나", "다"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

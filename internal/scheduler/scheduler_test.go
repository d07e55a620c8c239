package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/service"
	"StockScope/internal/strategy"
	"StockScope/internal/universe"
	"StockScope/internal/watchlist"
)

type captureSender struct{ sent []string }

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.sent = append(c.sent, text)
	return nil
}

type fakeNews struct{ err error }

func (f fakeNews) Headlines(_ context.Context, keyword string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{keyword + " 실적 개선", keyword + " 실적 발표"}, nil
}

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func rising(n int) *model.PriceSeries {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		c := 100 + float64(i)
		pts[i] = model.PricePoint{Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 200000}
	}
	return &model.PriceSeries{Points: pts}
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureSender) {
	t.Helper()
	dir := t.TempDir()
	f := &collector.MockFetcher{
		Series: map[string]*model.PriceSeries{"005930.KS": rising(60), "000660.KS": rising(60)},
		Profiles: map[string]*model.Profile{
			"005930.KS": {Name: "삼성전자", PER: 12, Volume: 500000},
			"000660.KS": {Name: "SK하이닉스", PER: 8, Volume: 400000},
		},
		Errors: map[string]error{"BROKEN": collector.ErrUpstream},
	}
	a := service.NewAnalyzer(f, strategy.NewEngine(strategy.SimplePolicy{}), model.DefaultIndicatorParams(), nil, nil)

	uPath := filepath.Join(dir, "universe.csv")
	if err := universe.Save(uPath, []model.Listing{{Ticker: "005930.KS", Name: "삼성전자"}, {Ticker: "000660.KS", Name: "SK하이닉스"}}); err != nil {
		t.Fatal(err)
	}
	up := universe.NewUpdater(f, nil, filepath.Join(dir, "updated.csv"))
	up.Pacing = 0

	wl, err := watchlist.NewManager(filepath.Join(dir, "watchlist.json"))
	if err != nil {
		t.Fatal(err)
	}
	sender := &captureSender{}
	s := NewScheduler(context.Background(), a, up, fakeNews{}, wl, sender, uPath)
	s.Tickers = []string{"005930.KS", "000660.KS", "BROKEN"}
	s.Style = model.Stable
	s.Now = func() time.Time { return day }
	return s, sender
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	tests := []struct {
		command string
		want    []string
	}{
		{"/analyze 삼성전자", []string{"삼성전자", "005930.KS", "안정적", "합계: 10점"}},
		{"/analyze 005930.ks 공격적", []string{"005930.KS", "공격적"}},
		{"/analyze BROKEN", []string{"데이터를 불러올 수 없습니다"}},
		{"/analyze", []string{"사용법"}},
		{"/rank", []string{"안정적 추천 순위", "1. 삼성전자 (005930.KS) 10점", "2. SK하이닉스"}},
		{"/rank@StockScopeBot dividend 1", []string{"배당형 추천 순위", "1. 삼성전자 (005930.KS) 5점"}},
		{"/rank yolo", []string{"알 수 없는 스타일"}},
		{"/news 반도체", []string{"반도체 실적 개선", "키워드: 반도체, 실적"}},
		{"/watch 삼성전자", []string{"005930.KS", "추가했습니다"}},
		{"/watch 005930.KS", []string{"이미 관심 종목"}},
		{"/watchlist", []string{"삼성전자 (005930.KS)"}},
		{"/unwatch 삼성전자", []string{"제거했습니다"}},
		{"/unwatch 삼성전자", []string{"관심 종목이 아닙니다"}},
		{"/help", []string{"기술 지표 용어 설명", "/rank"}},
		{"/update", []string{"갱신 완료", "필터 통과: 2종목"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := s.HandleCommand(ctx, tt.command)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%q: missing %q in:\n%s", tt.command, w, got)
				}
			}
		})
	}

	if got := s.HandleCommand(ctx, "   "); got != "" {
		t.Errorf("blank command should not reply, got %q", got)
	}
}

func TestHandleCommand_Failures(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.News = fakeNews{err: errors.New("blocked")}
	if got := s.HandleCommand(context.Background(), "/news 반도체"); !strings.Contains(got, "blocked") {
		t.Errorf("expected news error, got %q", got)
	}
	s.UniversePath = filepath.Join(t.TempDir(), "missing.csv")
	if got := s.HandleCommand(context.Background(), "/rank"); !strings.Contains(got, "/update") {
		t.Errorf("expected hint to run /update, got %q", got)
	}
}

func TestTasks(t *testing.T) {
	s, sender := newTestScheduler(t)

	s.watchlistTask()
	if len(sender.sent) != 0 {
		t.Fatal("empty watchlist must not send a digest")
	}

	if err := s.Watchlist.Add("000660.KS", "SK하이닉스"); err != nil {
		t.Fatal(err)
	}
	if err := s.Watchlist.Add("BROKEN", ""); err != nil {
		t.Fatal(err)
	}
	s.watchlistTask()
	s.RunReportNow()
	s.updateTask()

	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "SK하이닉스 159") || !strings.Contains(sender.sent[0], "BROKEN: ⚠️") {
		t.Errorf("unexpected digest:\n%s", sender.sent[0])
	}
	if !strings.Contains(sender.sent[1], "추천 순위") {
		t.Errorf("unexpected report:\n%s", sender.sent[1])
	}
	if !strings.Contains(sender.sent[2], "필터 통과: 2종목") {
		t.Errorf("unexpected update report:\n%s", sender.sent[2])
	}
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.RegisterAll("0 0 7 * * 1-5", "0 40 15 * * 1-5", "0 0 16 * * 1-5"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Cron.Entries()); n != 3 {
		t.Errorf("expected 3 cron entries, got %d", n)
	}
	if err := s.RegisterAll("bad", "0 0 0 * * *", "0 0 0 * * *"); err == nil {
		t.Error("expected invalid cron spec to fail")
	}
}

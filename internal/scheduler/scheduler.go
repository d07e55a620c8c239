package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/model"
	"StockScope/internal/news"
	"StockScope/internal/notifier"
	"StockScope/internal/service"
	"StockScope/internal/universe"
	"StockScope/internal/watchlist"

	"github.com/robfig/cron/v3"
)

// Sender delivers a report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Headliner looks up news headlines for a keyword.
type Headliner interface {
	Headlines(ctx context.Context, keyword string) ([]string, error)
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Analyzer     *service.Analyzer
	Updater      *universe.Updater
	Tickers      []string // update candidates
	News         Headliner
	Watchlist    *watchlist.Manager
	Notifier     Sender
	UniversePath string
	Style        model.Style
	TopN         int
	Ctx          context.Context
	Now          func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *service.Analyzer, u *universe.Updater, n Headliner,
	wl *watchlist.Manager, sender Sender, universePath string) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Analyzer:     a,
		Updater:      u,
		News:         n,
		Watchlist:    wl,
		Notifier:     sender,
		UniversePath: universePath,
		Style:        model.Aggressive,
		TopN:         10,
		Ctx:          ctx,
		Now:          time.Now,
	}
}

// RegisterAll registers the universe refresh, ranking report and watchlist digest.
func (s *Scheduler) RegisterAll(updateCron, reportCron, watchlistCron string) error {
	if _, err := s.Cron.AddFunc(updateCron, s.updateTask); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow executes the ranking report immediately (for RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) updateTask() {
	log.Println("[INFO] running universe update")
	s.trySend(s.update(s.Ctx))
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running ranking report")
	s.trySend(s.rank(s.Ctx, s.Style, s.TopN))
}

func (s *Scheduler) watchlistTask() {
	log.Println("[INFO] running watchlist digest")
	if len(s.Watchlist.List()) == 0 {
		return
	}
	s.trySend(s.digest(s.Ctx))
}

func (s *Scheduler) update(ctx context.Context) string {
	listings, err := s.Updater.Update(ctx, s.Tickers)
	if err != nil {
		log.Printf("[ERROR] universe update: %v", err)
		return fmt.Sprintf("❌ 종목 데이터 갱신 실패: %v", err)
	}
	return notifier.FormatUpdate(listings, s.Now())
}

func (s *Scheduler) rank(ctx context.Context, style model.Style, topN int) string {
	listings, err := universe.Load(s.UniversePath)
	if err != nil {
		log.Printf("[ERROR] load universe: %v", err)
		return "❌ 종목 목록을 불러오지 못했습니다. /update 로 먼저 갱신하세요."
	}
	return notifier.FormatRanking(s.Analyzer.Rank(ctx, listings, style, topN))
}

func (s *Scheduler) digest(ctx context.Context) string {
	var analyses []*model.Analysis
	failed := map[string]error{}
	for _, e := range s.Watchlist.List() {
		a, err := s.Analyzer.Analyze(ctx, e.Ticker, s.Style)
		if err != nil {
			failed[e.Ticker] = err
			continue
		}
		if e.Name != "" {
			a.Name = e.Name
		}
		analyses = append(analyses, a)
	}
	return notifier.FormatDigest(analyses, failed, s.Now())
}

// lookup resolves a ticker or company name against the universe snapshot.
func (s *Scheduler) lookup(query string) (ticker, name string) {
	if listings, err := universe.Load(s.UniversePath); err == nil {
		if l, ok := universe.Find(listings, query); ok {
			return l.Ticker, l.Name
		}
	}
	return strings.ToUpper(query), ""
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	cmd, args := fields[0], fields[1:]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i] // /rank@SomeBot
	}

	switch cmd {
	case "/analyze", "분석":
		return s.handleAnalyze(ctx, args)
	case "/rank", "순위":
		return s.handleRank(ctx, args)
	case "/update", "갱신":
		return s.update(ctx)
	case "/news", "뉴스":
		return s.handleNews(ctx, args)
	case "/watch":
		return s.handleWatch(args)
	case "/unwatch":
		return s.handleUnwatch(args)
	case "/watchlist", "관심":
		return notifier.FormatWatchlist(s.Watchlist.List())
	default:
		return notifier.FormatGlossary()
	}
}

func (s *Scheduler) handleAnalyze(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "사용법: /analyze &lt;티커|종목명&gt; [스타일]"
	}
	style := s.Style
	query := args
	if len(args) > 1 {
		if st, err := model.ParseStyle(args[len(args)-1]); err == nil {
			style = st
			query = args[:len(args)-1]
		}
	}
	ticker, name := s.lookup(strings.Join(query, " "))

	a, err := s.Analyzer.Analyze(ctx, ticker, style)
	if err != nil {
		log.Printf("[WARN] analyze %s: %v", ticker, err)
		if errors.Is(err, service.ErrNoData) {
			return fmt.Sprintf("⚠️ %s: 데이터를 불러올 수 없습니다.", ticker)
		}
		return fmt.Sprintf("❌ %s 분석 실패: %v", ticker, err)
	}
	if name != "" {
		a.Name = name
	}
	return notifier.FormatAnalysis(a)
}

func (s *Scheduler) handleRank(ctx context.Context, args []string) string {
	style, topN := s.Style, s.TopN
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			topN = n
			continue
		}
		st, err := model.ParseStyle(arg)
		if err != nil {
			return fmt.Sprintf("알 수 없는 스타일: %s (공격적/안정적/배당형)", arg)
		}
		style = st
	}
	return s.rank(ctx, style, topN)
}

func (s *Scheduler) handleNews(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "사용법: /news &lt;키워드&gt;"
	}
	keyword := strings.Join(args, " ")
	headlines, err := s.News.Headlines(ctx, keyword)
	if err != nil {
		log.Printf("[WARN] news %s: %v", keyword, err)
		return fmt.Sprintf("❌ 뉴스를 불러오지 못했습니다: %v", err)
	}
	return notifier.FormatNews(keyword, headlines, news.ExtractKeywords(headlines, 5))
}

func (s *Scheduler) handleWatch(args []string) string {
	if len(args) == 0 {
		return "사용법: /watch &lt;티커|종목명&gt;"
	}
	ticker, name := s.lookup(strings.Join(args, " "))
	if err := s.Watchlist.Add(ticker, name); err != nil {
		if errors.Is(err, watchlist.ErrAlreadyWatched) {
			return fmt.Sprintf("%s 은(는) 이미 관심 종목입니다.", ticker)
		}
		return fmt.Sprintf("❌ 관심 종목 저장 실패: %v", err)
	}
	return fmt.Sprintf("⭐ %s 을(를) 관심 종목에 추가했습니다.", ticker)
}

func (s *Scheduler) handleUnwatch(args []string) string {
	if len(args) == 0 {
		return "사용법: /unwatch &lt;티커|종목명&gt;"
	}
	ticker, _ := s.lookup(strings.Join(args, " "))
	if err := s.Watchlist.Remove(ticker); err != nil {
		if errors.Is(err, watchlist.ErrNotWatched) {
			return fmt.Sprintf("%s 은(는) 관심 종목이 아닙니다.", ticker)
		}
		return fmt.Sprintf("❌ 관심 종목 저장 실패: %v", err)
	}
	return fmt.Sprintf("%s 을(를) 관심 종목에서 제거했습니다.", ticker)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

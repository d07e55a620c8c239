package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"StockScope/internal/config"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/scheduler"
	"StockScope/internal/universe"
	"StockScope/internal/watchlist"

	"github.com/tidwall/pretty"
)

const usage = `usage: stockscope [command] [flags]

commands:
  serve                       run cron tasks, Telegram polling and metrics (default)
  analyze [-style S] [-json] TICKER
  rank [-style S] [-n N] [-json]
  update                      refresh the universe snapshot
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath, ".env")
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, a)
	case "analyze":
		err = runAnalyze(ctx, a, args)
	case "rank":
		err = runRank(ctx, a, args)
	case "update":
		err = runUpdate(ctx, a)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("[ERROR] %s: %v", cmd, err)
		a.Close()
		os.Exit(1)
	}
}

func serve(ctx context.Context, a *app) error {
	log.Println("[INFO] StockScope starting...")
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	wl, err := watchlist.NewManager(a.cfg.Watchlist.StateFile)
	if err != nil {
		return fmt.Errorf("init watchlist: %w", err)
	}
	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, a.analyzer, a.updater, a.news, wl, tn, a.cfg.Universe.Path)
	sched.Tickers = a.cfg.Universe.Tickers
	sched.Style = a.style
	sched.TopN = a.cfg.Ranking.TopN
	s := a.cfg.Schedule
	if err := sched.RegisterAll(s.UpdateCron, s.ReportCron, s.WatchlistCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.cfg.Metrics.Addr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, a.cfg.Metrics.Addr); err != nil {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
	}

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sending ranking report now")
		go sched.RunReportNow()
	}

	log.Println("[INFO] StockScope is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

func parseStyle(s string, def model.Style) (model.Style, error) {
	if s == "" {
		return def, nil
	}
	return model.ParseStyle(s)
}

func printJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(pretty.Pretty(data))
	return err
}

// stripTags turns the Telegram HTML into plain terminal text.
func stripTags(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")
	return r.Replace(s)
}

func runAnalyze(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	styleFlag := fs.String("style", "", "investment style (aggressive, stable, dividend)")
	asJSON := fs.Bool("json", false, "print JSON")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("analyze needs a ticker or company name")
	}
	style, err := parseStyle(*styleFlag, a.style)
	if err != nil {
		return err
	}

	query := strings.Join(fs.Args(), " ")
	ticker, name := query, ""
	if listings, err := universe.Load(a.cfg.Universe.Path); err == nil {
		if l, ok := universe.Find(listings, query); ok {
			ticker, name = l.Ticker, l.Name
		}
	}

	res, err := a.analyzer.Analyze(ctx, ticker, style)
	if err != nil {
		return err
	}
	if name != "" {
		res.Name = name
	}
	if *asJSON {
		return printJSON(newAnalysisView(res))
	}
	fmt.Println(stripTags(notifier.FormatAnalysis(res)))
	return nil
}

func runRank(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	styleFlag := fs.String("style", "", "investment style (aggressive, stable, dividend)")
	n := fs.Int("n", a.cfg.Ranking.TopN, "number of entries")
	asJSON := fs.Bool("json", false, "print JSON")
	_ = fs.Parse(args)
	style, err := parseStyle(*styleFlag, a.style)
	if err != nil {
		return err
	}

	listings, err := universe.Load(a.cfg.Universe.Path)
	if err != nil {
		return fmt.Errorf("load universe (run update first): %w", err)
	}
	r := a.analyzer.Rank(ctx, listings, style, *n)
	if *asJSON {
		return printJSON(newRankingView(r))
	}
	fmt.Println(stripTags(notifier.FormatRanking(r)))
	return nil
}

func runUpdate(ctx context.Context, a *app) error {
	listings, err := a.updater.Update(ctx, a.cfg.Universe.Tickers)
	if err != nil {
		return err
	}
	fmt.Println(stripTags(notifier.FormatUpdate(listings, time.Now())))
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"StockScope/internal/model"
	"StockScope/internal/strategy"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data providers accepted in data_source.provider.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderMock  = "mock"
)

// Cache backends accepted in cache.backend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Days     int    `yaml:"days"`
	} `yaml:"data_source"`
	Indicators model.IndicatorParams `yaml:"indicators"`
	Scoring    struct {
		Policy       string             `yaml:"policy"`
		RecentWindow int                `yaml:"recent_window"`
		Weights      strategy.WeightSet `yaml:"weights"`
	} `yaml:"scoring"`
	Ranking struct {
		Style        string        `yaml:"style"`
		TopN         int           `yaml:"top_n"`
		Workers      int           `yaml:"workers"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
	} `yaml:"ranking"`
	Cache struct {
		Backend  string        `yaml:"backend"`
		TTL      time.Duration `yaml:"ttl"`
		Addr     string        `yaml:"redis_addr"`
		Password string        `yaml:"redis_password"`
		DB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Universe struct {
		Path             string        `yaml:"path"`
		Tickers          []string      `yaml:"tickers"`
		MinVolume        float64       `yaml:"min_volume"`
		MinReturn3M      float64       `yaml:"min_return_3m"`
		Pacing           time.Duration `yaml:"pacing"`
		DividendSelector string        `yaml:"dividend_selector"`
	} `yaml:"universe"`
	News struct {
		ItemSelector  string `yaml:"item_selector"`
		TitleSelector string `yaml:"title_selector"`
	} `yaml:"news"`
	Watchlist struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"watchlist"`
	Schedule struct {
		UpdateCron    string `yaml:"update_cron"`
		ReportCron    string `yaml:"report_cron"`
		WatchlistCron string `yaml:"watchlist_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. envFiles are loaded into the environment first; missing files
// are ignored and variables already set win.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	cfg.Indicators = model.DefaultIndicatorParams()
	cfg.Scoring.Weights = strategy.DefaultWeightSet()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
		cfg.Cache.Backend = CacheRedis
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCORING_POLICY"); v != "" {
		cfg.Scoring.Policy = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("RANKING_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ranking.Workers = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.Days == 0 {
		c.DataSource.Days = 120
	}
	if c.Scoring.Policy == "" {
		c.Scoring.Policy = strategy.PolicyWeighted
	}
	if c.Scoring.RecentWindow == 0 {
		c.Scoring.RecentWindow = 5
	}
	if c.Ranking.Style == "" {
		c.Ranking.Style = string(model.Aggressive)
	}
	if c.Ranking.TopN == 0 {
		c.Ranking.TopN = 10
	}
	if c.Ranking.Workers == 0 {
		c.Ranking.Workers = 4
	}
	if c.Ranking.FetchTimeout == 0 {
		c.Ranking.FetchTimeout = 10 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Universe.Path == "" {
		c.Universe.Path = "data/filtered_stocks.csv"
	}
	if len(c.Universe.Tickers) == 0 {
		c.Universe.Tickers = []string{"005930.KS", "000660.KS", "035420.KQ"}
	}
	if c.Universe.MinVolume == 0 {
		c.Universe.MinVolume = 100000
	}
	if c.Universe.MinReturn3M == 0 {
		c.Universe.MinReturn3M = -50
	}
	if c.Universe.Pacing == 0 {
		c.Universe.Pacing = 500 * time.Millisecond
	}
	if c.Watchlist.StateFile == "" {
		c.Watchlist.StateFile = "data/watchlist.json"
	}
	if c.Schedule.UpdateCron == "" {
		c.Schedule.UpdateCron = "0 0 7 * * 1-5"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 40 15 * * 1-5"
	}
	if c.Schedule.WatchlistCron == "" {
		c.Schedule.WatchlistCron = "0 0 16 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockscope.db"
	}
}

// Validate checks values every mode depends on.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.Scoring.Policy != strategy.PolicySimple && c.Scoring.Policy != strategy.PolicyWeighted {
		return fmt.Errorf("scoring.policy %q is not one of simple, weighted", c.Scoring.Policy)
	}
	if _, err := model.ParseStyle(c.Ranking.Style); err != nil {
		return fmt.Errorf("ranking.style: %w", err)
	}
	if c.Ranking.Workers < 1 {
		return fmt.Errorf("ranking.workers must be positive")
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, redis, none", c.Cache.Backend)
	}
	p := c.Indicators
	for _, w := range []int{p.EMAShort, p.EMALong, p.RSI, p.MACDFast, p.MACDSlow, p.MACDSignal} {
		if w <= 0 {
			return fmt.Errorf("indicators: windows must be positive")
		}
	}
	return nil
}

// ValidateBot checks the fields the Telegram daemon needs.
func (c *Config) ValidateBot() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

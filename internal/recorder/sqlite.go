package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"StockScope/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			name        TEXT,
			style       TEXT,
			policy      TEXT,
			score       REAL,
			ready       INTEGER,
			as_of       INTEGER,
			last_close  REAL,
			ema_short   REAL,
			ema_long    REAL,
			rsi         REAL,
			macd        REAL,
			macd_signal REAL,
			rsi_zone    TEXT,
			buy_ref     REAL,
			sell_ref    REAL,
			range_pos   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker_ts ON analyses(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS ranking_runs (
			run_id    TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			style     TEXT,
			policy    TEXT,
			universe  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranking_runs_ts ON ranking_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ranking_entries (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES ranking_runs(run_id),
			rank_no INTEGER,
			ticker  TEXT,
			name    TEXT,
			score   REAL,
			status  TEXT,
			error   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranking_entries_run ON ranking_entries(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an undefined indicator to SQL NULL.
func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Float, Valid: v.Valid}
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var row model.IndicatorRow
	if n := a.Frame.Len(); n > 0 {
		row = a.Frame.Rows[n-1]
	}
	var score float64
	var policy string
	var asOf int64
	if a.Score != nil {
		score, policy = a.Score.Value, a.Score.Policy
		if !a.Score.AsOf.IsZero() {
			asOf = a.Score.AsOf.Unix()
		}
	}

	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, ticker, name, style, policy, score, ready, as_of, last_close,
		 ema_short, ema_long, rsi, macd, macd_signal,
		 rsi_zone, buy_ref, sell_ref, range_pos)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), a.Ticker, a.Name, string(a.Style), policy, score, a.Ready, asOf, a.LastClose,
		nullable(row.EMAShort), nullable(row.EMALong), nullable(row.RSI),
		nullable(row.MACD), nullable(row.MACDSignal),
		string(a.Advice.RSIZone), nullable(a.Advice.BuyRef), nullable(a.Advice.SellRef), a.RangePos,
	)
	return err
}

func (r *SQLiteRecorder) RecordRanking(rk *model.Ranking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO ranking_runs (run_id, timestamp, style, policy, universe)
		VALUES (?,?,?,?,?)`,
		rk.RunID, rk.GeneratedAt.Unix(), string(rk.Style), rk.Policy, rk.Universe,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, e := range rk.Entries {
		var msg sql.NullString
		if e.Err != nil {
			msg = sql.NullString{String: e.Err.Error(), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO ranking_entries
			(run_id, rank_no, ticker, name, score, status, error)
			VALUES (?,?,?,?,?,?,?)`,
			rk.RunID, e.Rank, e.Ticker, e.Name, e.Score, string(e.Status), msg,
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

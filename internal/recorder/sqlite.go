package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers do not block the scanner.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			bar_interval TEXT,
			bars         INTEGER,
			bar_time     INTEGER,
			close        REAL,
			volume       REAL,
			rsi          REAL,
			macd         REAL,
			macd_signal  REAL,
			levels       INTEGER,
			zones        INTEGER,
			signal_kinds TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON analysis_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      INTEGER NOT NULL REFERENCES analysis_runs(id),
			kind        TEXT NOT NULL,
			reason      TEXT,
			price       REAL,
			bar_time    INTEGER,
			rsi         REAL,
			macd        REAL,
			macd_signal REAL,
			volume      REAL,
			avg_volume  REAL,
			level_kind  TEXT,
			level_price REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id)`,

		`CREATE TABLE IF NOT EXISTS levels (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   INTEGER NOT NULL REFERENCES analysis_runs(id),
			kind     TEXT NOT NULL,
			price    REAL,
			bar_time INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_run ON levels(run_id)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			run_id    INTEGER,
			symbol    TEXT NOT NULL,
			kind      TEXT NOT NULL,
			price     REAL,
			reason    TEXT,
			delivered INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol_ts ON alerts(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run with its signals and levels, returning the run id.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := snap.Result
	bar, rsi, macd, macdSignal := res.Latest()
	ranAt := snap.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now()
	}
	kinds := make([]string, len(res.Signals))
	for i, s := range res.Signals {
		kinds[i] = string(s.Kind)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	out, err := tx.Exec(`INSERT INTO analysis_runs
		(timestamp, symbol, bar_interval, bars, bar_time, close, volume, rsi, macd, macd_signal, levels, zones, signal_kinds)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ranAt.Unix(), snap.Symbol, snap.Interval, res.Series.Len(), bar.Time.Unix(),
		bar.Close, bar.Volume, nullable(rsi), nullable(macd), nullable(macdSignal),
		len(res.Levels), len(res.Zones), strings.Join(kinds, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, s := range res.Signals {
		var levelKind, levelPrice any
		if s.Level != nil {
			levelKind, levelPrice = string(s.Level.Kind), s.Level.Price
		}
		if _, err := tx.Exec(`INSERT INTO signals
			(run_id, kind, reason, price, bar_time, rsi, macd, macd_signal, volume, avg_volume, level_kind, level_price)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			runID, string(s.Kind), s.Reason, s.Price, s.Time.Unix(),
			nullable(s.RSI), nullable(s.MACD), nullable(s.MACDSignal), s.Volume, nullable(s.AvgVolume),
			levelKind, levelPrice,
		); err != nil {
			return 0, fmt.Errorf("insert signal: %w", err)
		}
	}

	for _, l := range res.Levels {
		if _, err := tx.Exec(`INSERT INTO levels (run_id, kind, price, bar_time) VALUES (?,?,?,?)`,
			runID, string(l.Kind), l.Price, l.Time.Unix(),
		); err != nil {
			return 0, fmt.Errorf("insert level: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sentAt := evt.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	var runID any
	if evt.RunID > 0 {
		runID = evt.RunID
	}
	_, err := r.db.Exec(`INSERT INTO alerts
		(timestamp, run_id, symbol, kind, price, reason, delivered)
		VALUES (?,?,?,?,?,?,?)`,
		sentAt.Unix(), runID, evt.Symbol, evt.Kind, evt.Price, evt.Reason, evt.Delivered,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

// nullable maps undefined indicator values to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

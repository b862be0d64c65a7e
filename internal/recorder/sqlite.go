package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var _ Recorder = (*SQLiteRecorder)(nil)

// SQLiteRecorder persists runs to a SQLite database. Money is stored as
// decimal text so values read back exactly.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger calculation.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger calculation.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	return r.execAll(schema)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                   TEXT PRIMARY KEY,
		created_at           INTEGER NOT NULL,
		source               TEXT,
		seed                 INTEGER,
		iterations           INTEGER,
		requested_iterations INTEGER,
		years                INTEGER,
		success_rate         TEXT,
		median_ending        TEXT,
		strategies           TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,

	`CREATE TABLE IF NOT EXISTS iterations (
		run_id         TEXT NOT NULL REFERENCES runs(id),
		rank           INTEGER NOT NULL,
		iteration      INTEGER NOT NULL,
		success        INTEGER NOT NULL,
		survived_years INTEGER,
		ending_balance TEXT,
		failed_year    INTEGER,
		shortfall      TEXT,
		PRIMARY KEY (run_id, rank)
	)`,
}

// execAll runs stmts in order, stopping at the first failure.
func (r *SQLiteRecorder) execAll(stmts []string) error {
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:min(len(s), 40)], err)
		}
	}
	return nil
}

// RecordRun stores a run and its iterations in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord, iterations []IterationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, source, seed, iterations, requested_iterations, years,
		 success_rate, median_ending, strategies)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.Unix(), run.Source, run.Seed,
		run.Iterations, run.RequestedIterations, run.Years,
		run.SuccessRate.String(), run.MedianEnding.String(), run.Strategies,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO iterations
		(run_id, rank, iteration, success, survived_years, ending_balance, failed_year, shortfall)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare iterations: %w", err)
	}
	defer stmt.Close()

	for _, it := range iterations {
		if _, err := stmt.Exec(run.ID, it.Rank, it.Index, it.Success, it.SurvivedYears,
			it.EndingBalance.String(), it.FailedYear, it.Shortfall.String()); err != nil {
			return fmt.Errorf("insert iteration %d: %w", it.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debugf("recorded run %s with %d iterations", run.ID, len(iterations))
	return nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (r *SQLiteRecorder) Runs(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(`SELECT id, created_at, source, seed, iterations, requested_iterations,
		years, success_rate, median_ending, strategies
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			run                 RunRecord
			created             int64
			successRate, median string
		)
		if err := rows.Scan(&run.ID, &created, &run.Source, &run.Seed, &run.Iterations,
			&run.RequestedIterations, &run.Years, &successRate, &median, &run.Strategies); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(created, 0).UTC()
		if run.SuccessRate, err = decimal.NewFromString(successRate); err != nil {
			return nil, fmt.Errorf("run %s success rate: %w", run.ID, err)
		}
		if run.MedianEnding, err = decimal.NewFromString(median); err != nil {
			return nil, fmt.Errorf("run %s median ending: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Iterations returns the iterations of a run, worst first.
func (r *SQLiteRecorder) Iterations(runID string) ([]IterationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT rank, iteration, success, survived_years, ending_balance, failed_year, shortfall
		FROM iterations WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query iterations: %w", err)
	}
	defer rows.Close()

	var out []IterationRecord
	for rows.Next() {
		var (
			it                IterationRecord
			ending, shortfall string
		)
		if err := rows.Scan(&it.Rank, &it.Index, &it.Success, &it.SurvivedYears, &ending, &it.FailedYear, &shortfall); err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		if it.EndingBalance, err = decimal.NewFromString(ending); err != nil {
			return nil, fmt.Errorf("iteration %d ending balance: %w", it.Index, err)
		}
		if it.Shortfall, err = decimal.NewFromString(shortfall); err != nil {
			return nil, fmt.Errorf("iteration %d shortfall: %w", it.Index, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Infof("closing sqlite recorder")
	return r.db.Close()
}

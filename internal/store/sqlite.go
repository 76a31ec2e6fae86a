package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"bargain-hunt/internal/balance"
	apperrors "bargain-hunt/internal/errors"
	"bargain-hunt/internal/performance"
	"bargain-hunt/pkg/utils"
)

// rowBatchSize is the number of CSV rows written per multi-row insert.
const rowBatchSize = 200

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based run store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per balance batch
	CREATE TABLE IF NOT EXISTS balance_runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		seed INTEGER NOT NULL,
		runs INTEGER NOT NULL,
		pricing_style TEXT NOT NULL,
		mode TEXT NOT NULL,
		items_per_team INTEGER NOT NULL,
		team_profit_mean REAL NOT NULL,
		gavel_rate REAL NOT NULL,
		config_json TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	-- Per-team-per-episode export rows
	CREATE TABLE IF NOT EXISTS balance_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		seed INTEGER NOT NULL,
		run_index INTEGER NOT NULL,
		mood TEXT NOT NULL,
		gavel_awarded INTEGER NOT NULL,
		team_name TEXT NOT NULL,
		spent_total REAL NOT NULL,
		sold_total REAL NOT NULL,
		profit_total REAL NOT NULL,
		roi REAL NOT NULL,
		best_lot_name TEXT,
		best_lot_profit REAL,
		FOREIGN KEY (run_id) REFERENCES balance_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON balance_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_mode ON balance_runs(mode);
	CREATE INDEX IF NOT EXISTS idx_rows_run ON balance_rows(run_id, run_index);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isBusy reports a lock held by another connection or process.
func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// SaveRun stores a batch and its rows in one transaction, retrying while
// the database is locked by a concurrent writer.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord, rows []balance.Row) error {
	cfg := utils.DefaultRetryConfig()
	cfg.Retryable = isBusy
	return utils.Retry(ctx, cfg, func() error {
		return s.saveRun(ctx, run, rows)
	})
}

func (s *SQLiteStore) saveRun(ctx context.Context, run *RunRecord, rows []balance.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balance_runs (id, created_at, seed, runs, pricing_style, mode, items_per_team, team_profit_mean, gavel_rate, config_json, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt, run.Seed, run.Runs, run.PricingStyle, run.Mode, run.ItemsPerTeam, run.TeamProfitMean, run.GavelRate, run.ConfigJSON, run.ReportJSON)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := performance.NewBatchProcessor(rowBatchSize, func(chunk []balance.Row) error {
		return insertRows(ctx, tx, run.ID, chunk)
	})
	for _, r := range rows {
		if err := batch.Add(r); err != nil {
			return err
		}
	}
	if err := batch.Flush(); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, runID string, rows []balance.Row) error {
	const cols = 12
	placeholders := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*cols)
	for i, r := range rows {
		placeholders[i] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		gavel := 0
		if r.GavelAwarded {
			gavel = 1
		}
		args = append(args, runID, r.Seed, r.RunIndex, r.Mood, gavel, r.TeamName,
			r.SpentTotal, r.SoldTotal, r.ProfitTotal, r.ROI, r.BestLotName, r.BestLotProfit)
	}

	query := `INSERT INTO balance_rows (run_id, seed, run_index, mood, gavel_awarded, team_name, spent_total, sold_total, profit_total, roi, best_lot_name, best_lot_profit) VALUES ` +
		strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}
	return nil
}

const runColumns = "id, created_at, seed, runs, pricing_style, mode, items_per_team, team_profit_mean, gavel_rate, config_json, report_json"

func scanRun(sc interface{ Scan(...interface{}) error }) (*RunRecord, error) {
	var r RunRecord
	if err := sc.Scan(&r.ID, &r.CreatedAt, &r.Seed, &r.Runs, &r.PricingStyle, &r.Mode, &r.ItemsPerTeam,
		&r.TeamProfitMean, &r.GavelRate, &r.ConfigJSON, &r.ReportJSON); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun retrieves a run by id. A missing run matches ErrDataNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM balance_runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, apperrors.ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error) {
	query := "SELECT " + runColumns + " FROM balance_runs WHERE 1=1"
	args := []interface{}{}

	if filter.Mode != "" {
		query += " AND mode = ?"
		args = append(args, filter.Mode)
	}
	if filter.PricingStyle != "" {
		query += " AND pricing_style = ?"
		args = append(args, filter.PricingStyle)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunRows returns a run's export rows in run and team order.
func (s *SQLiteStore) GetRunRows(ctx context.Context, id string) ([]balance.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seed, run_index, mood, gavel_awarded, team_name, spent_total, sold_total, profit_total, roi, best_lot_name, best_lot_profit
		FROM balance_rows
		WHERE run_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []balance.Row
	for rows.Next() {
		var r balance.Row
		var gavel int
		if err := rows.Scan(&r.Seed, &r.RunIndex, &r.Mood, &gavel, &r.TeamName, &r.SpentTotal, &r.SoldTotal,
			&r.ProfitTotal, &r.ROI, &r.BestLotName, &r.BestLotProfit); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.GavelAwarded = gavel == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its rows.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM balance_rows WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM balance_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, apperrors.ErrDataNotFound)
	}
	return tx.Commit()
}

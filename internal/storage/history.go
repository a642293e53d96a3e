package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/go-sql-driver/mysql"

	"irverify/internal/domain"
)

const historySchema = "CREATE TABLE IF NOT EXISTS `ir_history` (" +
	"`id` BIGINT UNSIGNED NOT NULL AUTO_INCREMENT," +
	"`run_id` CHAR(36) NOT NULL," +
	"`test_case` VARCHAR(255) NOT NULL," +
	"`arch` VARCHAR(16) NOT NULL," +
	"`node_kind` VARCHAR(64) NOT NULL," +
	"`count` INT NOT NULL," +
	"`recorded_at` DATETIME NOT NULL," +
	"PRIMARY KEY (`id`)," +
	"KEY `idx_case_arch` (`test_case`, `arch`, `recorded_at`)" +
	")"

// History records per-case node counts in MySQL so runs can be compared with earlier ones
type History struct {
	db *sql.DB
}

// Drift is a node count that changed since the previous run of the same case on the same arch
type Drift struct {
	TestCase string
	NodeKind string
	Before   int
	After    int
}

// NormalizeDSN parses a MySQL DSN and sets the options the history store relies on
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid history DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("history DSN names no database")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// OpenHistory connects to the history database and creates its table when missing
func OpenHistory(ctx context.Context, dsn string) (*History, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &History{db: db}, nil
}

// Previous returns the counts recorded by the most recent other run of the case on arch.
// ok is false when the case has no earlier run.
func (h *History) Previous(ctx context.Context, runID, testCase string, arch domain.Arch) (map[string]int, bool, error) {
	const query = "SELECT `node_kind`, `count` FROM `ir_history` " +
		"WHERE `test_case` = ? AND `arch` = ? AND `run_id` = (" +
		"SELECT `run_id` FROM `ir_history` WHERE `test_case` = ? AND `arch` = ? AND `run_id` <> ? " +
		"ORDER BY `recorded_at` DESC, `id` DESC LIMIT 1)"
	rows, err := h.db.QueryContext(ctx, query, testCase, arch, testCase, arch, runID)
	if err != nil {
		return nil, false, fmt.Errorf("query history of %s: %w", testCase, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, false, fmt.Errorf("scan history of %s: %w", testCase, err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return counts, len(counts) > 0, nil
}

// Record stores the counts of every outcome that was matched, in one transaction
func (h *History) Record(ctx context.Context, runID string, arch domain.Arch, outcomes []domain.Outcome) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO `ir_history` "+
		"(`run_id`, `test_case`, `arch`, `node_kind`, `count`, `recorded_at`) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, o := range outcomes {
		for _, kind := range sortedKinds(o.Counts) {
			if _, err := stmt.ExecContext(ctx, runID, o.TestCase, arch, kind, o.Counts[kind], now); err != nil {
				return fmt.Errorf("record %s: %w", o.TestCase, err)
			}
		}
	}
	return tx.Commit()
}

// Drifts compares each outcome against its previous run and records the current counts
func (h *History) Drifts(ctx context.Context, runID string, arch domain.Arch, outcomes []domain.Outcome) ([]Drift, error) {
	var drifts []Drift
	for _, o := range outcomes {
		if len(o.Counts) == 0 {
			continue
		}
		previous, ok, err := h.Previous(ctx, runID, o.TestCase, arch)
		if err != nil {
			return nil, err
		}
		if ok {
			drifts = append(drifts, Compare(previous, o)...)
		}
	}
	if err := h.Record(ctx, runID, arch, outcomes); err != nil {
		return nil, err
	}
	return drifts, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

// Compare lists the node kinds whose count differs between a previous run and the current outcome.
// Kinds only one side counted are not compared.
func Compare(previous map[string]int, current domain.Outcome) []Drift {
	var drifts []Drift
	for _, kind := range sortedKinds(current.Counts) {
		before, ok := previous[kind]
		if !ok {
			continue
		}
		if after := current.Counts[kind]; after != before {
			drifts = append(drifts, Drift{TestCase: current.TestCase, NodeKind: kind, Before: before, After: after})
		}
	}
	return drifts
}

func sortedKinds(counts map[string]int) []string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

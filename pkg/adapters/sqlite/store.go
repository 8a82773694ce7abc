// Package sqlite stores reports in a single-file SQLite database.
//
// It uses the pure Go modernc.org/sqlite driver, so no cgo toolchain is needed.
// Pass ":memory:" as the path for a throwaway database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/turning/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS turning_reports (
		suite TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		passed INTEGER NOT NULL,
		body TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	)
`

// Store implements ports.ReportStore on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and migrates the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the report of suite.
func (s *Store) Save(ctx context.Context, suite string, report *domain.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turning_reports (suite, run_id, passed, body, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(suite) DO UPDATE SET
			run_id = excluded.run_id,
			passed = excluded.passed,
			body = excluded.body,
			saved_at = excluded.saved_at
	`, suite, report.RunID, report.Passed(), string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves the report of suite.
func (s *Store) Load(ctx context.Context, suite string) (*domain.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM turning_reports WHERE suite = ?`, suite).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// Delete removes the report of suite.
func (s *Store) Delete(ctx context.Context, suite string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turning_reports WHERE suite = ?`, suite); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// List returns the stored suites in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT suite FROM turning_reports ORDER BY suite`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	suites := []string{}
	for rows.Next() {
		var suite string
		if err := rows.Scan(&suite); err != nil {
			return nil, fmt.Errorf("failed to scan suite: %w", err)
		}
		suites = append(suites, suite)
	}
	return suites, rows.Err()
}

// Failing returns the suites whose latest report did not pass.
func (s *Store) Failing(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT suite FROM turning_reports WHERE passed = 0 ORDER BY suite`)
	if err != nil {
		return nil, fmt.Errorf("failed to list failing reports: %w", err)
	}
	defer rows.Close()

	var suites []string
	for rows.Next() {
		var suite string
		if err := rows.Scan(&suite); err != nil {
			return nil, fmt.Errorf("failed to scan suite: %w", err)
		}
		suites = append(suites, suite)
	}
	return suites, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// PackageRun is one package's outcome within a batch run. Err is empty for
// a successful package.
type PackageRun struct {
	Package     string
	OK          bool
	WeeksMerged int
	Err         string
}

// RunRecord summarizes one recorded batch run.
type RunRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
}

// RunStore records batch run outcomes in a SQLite database so that failed
// packages can be diagnosed after the fact.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the run-history database at dbPath and
// ensures the schema exists.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run history db %s: %w", dbPath, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_packages (
	run_id       INTEGER NOT NULL REFERENCES runs(id),
	package      TEXT    NOT NULL,
	ok           INTEGER NOT NULL,
	weeks_merged INTEGER NOT NULL,
	error        TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_run_packages_run ON run_packages(run_id);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating run history schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// RecordRun persists one batch run and its per-package outcomes in a single
// transaction. It returns the new run's id.
func (s *RunStore) RecordRun(ctx context.Context, startedAt, finishedAt time.Time, pkgs []PackageRun) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning run history tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at) VALUES (?, ?)`,
		startedAt.UnixMilli(), finishedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, p := range pkgs {
		ok := 0
		if p.OK {
			ok = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_packages (run_id, package, ok, weeks_merged, error) VALUES (?, ?, ?, ?, ?)`,
			runID, p.Package, ok, p.WeeksMerged, p.Err); err != nil {
			return 0, fmt.Errorf("inserting run package %s: %w", p.Package, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run history: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first, up to limit.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.started_at, r.finished_at,
       SUM(p.ok), COUNT(*) - SUM(p.ok)
FROM runs r
JOIN run_packages p ON p.run_id = r.id
GROUP BY r.id
ORDER BY r.id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished int64
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Succeeded, &rec.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunPackages returns the per-package outcomes of one run, in insertion
// order.
func (s *RunStore) RunPackages(ctx context.Context, runID int64) ([]PackageRun, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT package, ok, weeks_merged, error
FROM run_packages
WHERE run_id = ?
ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run %d packages: %w", runID, err)
	}
	defer rows.Close()

	var pkgs []PackageRun
	for rows.Next() {
		var p PackageRun
		var ok int
		if err := rows.Scan(&p.Package, &ok, &p.WeeksMerged, &p.Err); err != nil {
			return nil, fmt.Errorf("scanning run package: %w", err)
		}
		p.OK = ok == 1
		pkgs = append(pkgs, p)
	}
	return pkgs, rows.Err()
}

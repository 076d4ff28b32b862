// Package store persists npmstats data: per-package historical series as
// compact JSON files, columnar parquet exports for analytics, and a SQLite
// run-history log for batch diagnostics.
package store

import (
	"context"
	"errors"

	"npmstats/internal/domain"
)

// ErrSeriesNotFound reports that no persisted series exists for a package.
// The update pipeline only appends to pre-seeded series; bootstrapping a
// fresh one is the seeding process's job.
var ErrSeriesNotFound = errors.New("store: series not found")

// SeriesStore persists and retrieves per-package historical series.
type SeriesStore interface {
	// Load returns the series for pkg, or ErrSeriesNotFound.
	Load(ctx context.Context, pkg string) (*domain.Series, error)

	// Save persists the series in full, replacing any prior version.
	Save(ctx context.Context, s *domain.Series) error

	// List returns the names of all packages with a persisted series,
	// sorted ascending.
	List(ctx context.Context) ([]string, error)
}

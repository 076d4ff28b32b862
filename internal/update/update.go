// Package update drives the weekly merge: for each tracked package it folds
// newly available seed snapshots into the package's historical series, one
// representative day per calendar week.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"npmstats/internal/seed"
	"npmstats/internal/series"
	"npmstats/internal/store"
)

// Updater merges available seed weeks into one package's series at a time.
// Safe for concurrent use across packages: every Run call owns its own
// series instance and runs its internal steps strictly in order.
type Updater struct {
	seeds *seed.Dir
	store store.SeriesStore
	log   *slog.Logger
}

// NewUpdater creates an Updater reading snapshots from seeds and persisting
// series through st.
func NewUpdater(seeds *seed.Dir, st store.SeriesStore) *Updater {
	return &Updater{
		seeds: seeds,
		store: st,
		log:   slog.Default().With("component", "update"),
	}
}

// Run processes every available seed week for pkg and persists the updated
// series. It returns the number of weeks merged.
//
// Weeks are processed chronologically; within a week, the first date (sorted
// ascending) with data for pkg is merged and the rest of the week is
// discarded. npm's daily totals swing with day-of-week traffic, so one
// consistent sample per week beats mixing days. A date whose seed file is
// missing, or whose snapshot has no entry for pkg, is skipped silently. The
// series is saved even when zero weeks were merged; rewriting identical
// content is idempotent.
func (u *Updater) Run(ctx context.Context, pkg string) (int, error) {
	dates, err := u.seeds.List()
	if err != nil {
		return 0, fmt.Errorf("discovering seed dates: %w", err)
	}

	ser, err := u.store.Load(ctx, pkg)
	if err != nil {
		return 0, err
	}

	weeks, buckets, err := series.BucketWeeks(dates)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, week := range weeks {
		for _, date := range buckets[week] {
			counts, err := u.observation(date, pkg)
			if err != nil {
				return 0, err
			}
			if counts == nil {
				continue
			}

			ts, err := series.DateTimestamp(date)
			if err != nil {
				return 0, err
			}
			series.Merge(ser, ts, counts)
			merged++

			u.log.Debug("week merged", "package", pkg, "week", week, "date", date)
			break
		}
	}

	if err := u.store.Save(ctx, ser); err != nil {
		return 0, err
	}
	return merged, nil
}

// observation returns pkg's per-version counts for date, or nil when the
// date has no usable data for pkg (missing seed file, missing package entry,
// or an entry with no versions).
func (u *Updater) observation(date, pkg string) (map[string]int64, error) {
	snap, err := u.seeds.Read(date)
	if errors.Is(err, seed.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry, ok := snap[pkg]
	if !ok || len(entry.Downloads) == 0 {
		return nil, nil
	}
	return entry.Downloads, nil
}

package update

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"npmstats/internal/store"
)

// Result is one package's outcome within a batch run.
type Result struct {
	Package     string
	WeeksMerged int
	Err         error
}

// Summary aggregates a whole batch run.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Succeeded returns the number of packages that updated cleanly.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of packages whose update failed.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// Runner fans the Updater out across the tracked package list. Packages run
// concurrently and independently; one package's failure never aborts the
// others.
type Runner struct {
	updater  *Updater
	packages []string
	runs     *store.RunStore
	log      *slog.Logger
}

// NewRunner creates a Runner that updates the given packages in a batch.
func NewRunner(u *Updater, packages []string) *Runner {
	return &Runner{
		updater:  u,
		packages: packages,
		log:      slog.Default().With("component", "runner"),
	}
}

// SetRunStore makes the Runner record each batch outcome in rs. A recording
// failure is logged but does not fail the batch.
func (r *Runner) SetRunStore(rs *store.RunStore) {
	r.runs = rs
}

// Run launches one goroutine per package and waits for all of them. Every
// failure is captured in the returned Summary rather than propagated; Run
// itself only reports the batch outcome.
func (r *Runner) Run(ctx context.Context) *Summary {
	startedAt := time.Now().UTC()
	results := make([]Result, len(r.packages))

	var wg sync.WaitGroup
	for i, pkg := range r.packages {
		wg.Add(1)
		go func(i int, pkg string) {
			defer wg.Done()
			results[i] = r.runOne(ctx, pkg)
		}(i, pkg)
	}
	wg.Wait()

	sum := &Summary{
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Results:    results,
	}
	r.log.Info("batch finished",
		"succeeded", sum.Succeeded(),
		"failed", sum.Failed(),
		"elapsed", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond),
	)

	if r.runs != nil {
		if err := r.record(ctx, sum); err != nil {
			r.log.Warn("recording run history failed", "err", err)
		}
	}
	return sum
}

// runOne updates a single package, converting any panic into a recorded
// failure so it cannot take the rest of the batch down.
func (r *Runner) runOne(ctx context.Context, pkg string) (res Result) {
	res.Package = pkg
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic updating %s: %v", pkg, p)
			r.log.Error("package update panicked", "package", pkg, "panic", p)
		}
	}()

	weeks, err := r.updater.Run(ctx, pkg)
	if err != nil {
		r.log.Error("package update failed", "package", pkg, "err", err)
		res.Err = err
		return res
	}

	r.log.Info("package updated", "package", pkg, "weeksMerged", weeks)
	res.WeeksMerged = weeks
	return res
}

// record converts the summary into run-history rows.
func (r *Runner) record(ctx context.Context, sum *Summary) error {
	pkgs := make([]store.PackageRun, len(sum.Results))
	for i, res := range sum.Results {
		pkgs[i] = store.PackageRun{
			Package:     res.Package,
			OK:          res.Err == nil,
			WeeksMerged: res.WeeksMerged,
		}
		if res.Err != nil {
			pkgs[i].Err = res.Err.Error()
		}
	}
	_, err := r.runs.RecordRun(ctx, sum.StartedAt, sum.FinishedAt, pkgs)
	return err
}

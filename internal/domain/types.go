// Package domain defines the core data types shared across the npmstats
// pipeline: raw per-date download snapshots and the persisted per-package
// historical series.
package domain

import "fmt"

// Snapshot is one package's download counts per version at a single point in
// time, as captured by the seeding process.
type Snapshot struct {
	Package   string           `json:"package"`
	Downloads map[string]int64 `json:"downloads"`
}

// RawSnapshot maps package name to its Snapshot for a single sampled date.
// One seed file holds one RawSnapshot.
type RawSnapshot map[string]Snapshot

// Series is the persisted download history for one package. Timestamps are
// epoch milliseconds, strictly increasing. Every version's count slice is
// index-aligned with Timestamps: Downloads[v][i] is the count observed at
// Timestamps[i]. The JSON shape is served to browsers as-is.
type Series struct {
	Package    string             `json:"package"`
	Timestamps []int64            `json:"timestamps"`
	Downloads  map[string][]int64 `json:"downloads"`
}

// NewSeries returns an empty Series for pkg with non-nil fields, so that it
// marshals as {"timestamps":[],"downloads":{}} rather than nulls.
func NewSeries(pkg string) *Series {
	return &Series{
		Package:    pkg,
		Timestamps: []int64{},
		Downloads:  map[string][]int64{},
	}
}

// Validate checks the Series invariants: strictly increasing timestamps and
// one count per timestamp for every version.
func (s *Series) Validate() error {
	for i := 1; i < len(s.Timestamps); i++ {
		if s.Timestamps[i] <= s.Timestamps[i-1] {
			return fmt.Errorf("series %s: timestamps not strictly increasing at index %d", s.Package, i)
		}
	}
	for version, counts := range s.Downloads {
		if len(counts) != len(s.Timestamps) {
			return fmt.Errorf("series %s: version %s has %d counts for %d timestamps",
				s.Package, version, len(counts), len(s.Timestamps))
		}
	}
	return nil
}

// Package series implements the historical-merge algorithm and the calendar
// week bucketing used to fold daily download snapshots into per-package
// time series.
package series

import (
	"slices"
	"sort"

	"npmstats/internal/domain"
)

// Merge inserts one dated observation into s, keeping every version's count
// slice index-aligned with s.Timestamps:
//
//   - ts already present: no-op, so re-merging the same date is safe.
//   - versions in counts that are new to the series are backfilled with
//     zeros for all earlier timestamps.
//   - versions already in the series but absent from counts get a 0 at the
//     new position; a missing observation means zero downloads, not a gap.
//
// ts is epoch milliseconds. Merge is the only mutator of a Series.
func Merge(s *domain.Series, ts int64, counts map[string]int64) {
	pos := sort.Search(len(s.Timestamps), func(i int) bool {
		return s.Timestamps[i] >= ts
	})
	if pos < len(s.Timestamps) && s.Timestamps[pos] == ts {
		return
	}

	s.Timestamps = slices.Insert(s.Timestamps, pos, ts)
	if s.Downloads == nil {
		s.Downloads = make(map[string][]int64)
	}

	for version, count := range counts {
		existing, ok := s.Downloads[version]
		if !ok {
			backfilled := make([]int64, len(s.Timestamps))
			backfilled[pos] = count
			s.Downloads[version] = backfilled
			continue
		}
		s.Downloads[version] = slices.Insert(existing, pos, count)
	}

	for version, existing := range s.Downloads {
		if _, observed := counts[version]; observed {
			continue
		}
		s.Downloads[version] = slices.Insert(existing, pos, 0)
	}
}

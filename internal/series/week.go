package series

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the on-disk date identifier format for seed snapshots.
const DateLayout = "2006-01-02"

// WeekStart returns the UTC Sunday midnight that begins the calendar week
// containing t. All week math is UTC; mixing in local dates would silently
// shift week boundaries.
func WeekStart(t time.Time) time.Time {
	t = t.UTC().AddDate(0, 0, -int(t.Weekday()))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketWeeks groups date identifiers (YYYY-MM-DD) into Sunday-anchored
// calendar weeks. It returns the week keys sorted ascending and a map from
// week key to that week's dates, also sorted ascending. An unparseable
// identifier fails the whole call.
func BucketWeeks(dates []string) ([]string, map[string][]string, error) {
	buckets := make(map[string][]string)
	for _, d := range dates {
		t, err := time.ParseInLocation(DateLayout, d, time.UTC)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing seed date %q: %w", d, err)
		}
		key := WeekStart(t).Format(DateLayout)
		buckets[key] = append(buckets[key], d)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		sort.Strings(buckets[key])
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, buckets, nil
}

// DateTimestamp converts a date identifier to its epoch-millisecond
// timestamp at midnight UTC. The identifier must already have passed
// BucketWeeks parsing.
func DateTimestamp(date string) (int64, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parsing seed date %q: %w", date, err)
	}
	return t.UnixMilli(), nil
}

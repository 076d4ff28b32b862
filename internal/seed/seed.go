// Package seed reads and writes the dated raw snapshot files produced by the
// seeding process. Each file maps package name to that package's per-version
// download counts for a single date.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"npmstats/internal/domain"
)

// ErrSnapshotNotFound reports that no seed file exists for a date. Absence
// is an expected condition, distinct from a read or parse failure.
var ErrSnapshotNotFound = errors.New("seed: snapshot not found")

// Dir is a directory of seed snapshot files named <YYYY-MM-DD>.json. A bare
// <YYYY-MM-DD> file name is also accepted when reading.
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path. The directory is not required to
// exist until List or Read is called.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory the Dir reads from.
func (d *Dir) Path() string { return d.path }

// List returns the date identifier of every snapshot in the directory, with
// any .json suffix stripped. No ordering is guaranteed; callers sort when
// determinism matters. A missing directory is an error: the seed source
// itself is unavailable.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("reading seed dir %s: %w", d.path, err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	return dates, nil
}

// Read returns the RawSnapshot for date. It returns ErrSnapshotNotFound when
// no file exists for the date; any other read or parse failure is an error.
func (d *Dir) Read(date string) (domain.RawSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(d.path, date+".json"))
	if errors.Is(err, os.ErrNotExist) {
		data, err = os.ReadFile(filepath.Join(d.path, date))
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", date, err)
	}

	var snap domain.RawSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing seed %s: %w", date, err)
	}
	return snap, nil
}

// Write persists snap as the seed file for date, creating the directory if
// needed. Used by the seeding binary; the update pipeline only reads.
func (d *Dir) Write(date string, snap domain.RawSnapshot) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("creating seed dir %s: %w", d.path, err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding seed %s: %w", date, err)
	}

	path := filepath.Join(d.path, date+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing seed %s: %w", date, err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"npmstats/internal/domain"
)

// Compile-time interface check.
var _ SeriesStore = (*FileStore)(nil)

// FileStore implements SeriesStore with one compact JSON file per package.
// Scoped package names keep their slash as a directory level:
//
//	<SeriesDir>/react.json
//	<SeriesDir>/@mui/material.json
type FileStore struct {
	SeriesDir string
}

// NewFileStore creates a FileStore rooted at the given series directory.
func NewFileStore(seriesDir string) *FileStore {
	return &FileStore{SeriesDir: seriesDir}
}

// Load reads and validates the series for pkg. A missing file is
// ErrSeriesNotFound; a corrupt or invariant-breaking file is a hard error.
func (s *FileStore) Load(_ context.Context, pkg string) (*domain.Series, error) {
	path := s.seriesPath(pkg)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("series for %s: %w", pkg, ErrSeriesNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading series %s: %w", path, err)
	}

	ser := domain.NewSeries(pkg)
	if err := json.Unmarshal(data, ser); err != nil {
		return nil, fmt.Errorf("parsing series %s: %w", path, err)
	}
	if ser.Timestamps == nil {
		ser.Timestamps = []int64{}
	}
	if ser.Downloads == nil {
		ser.Downloads = map[string][]int64{}
	}
	if err := ser.Validate(); err != nil {
		return nil, fmt.Errorf("series %s: %w", path, err)
	}
	return ser, nil
}

// Save writes the series as a single compact JSON document. The write goes
// through a temp file and rename so readers never observe a partial series.
func (s *FileStore) Save(_ context.Context, ser *domain.Series) error {
	if err := ser.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(ser)
	if err != nil {
		return fmt.Errorf("encoding series %s: %w", ser.Package, err)
	}

	path := s.seriesPath(ser.Package)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating series dir for %s: %w", ser.Package, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing series %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing series %s: %w", path, err)
	}
	return nil
}

// List walks the series directory and returns every package that has a
// series file, sorted ascending. A missing directory yields an empty list.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	var pkgs []string
	err := filepath.WalkDir(s.SeriesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.SeriesDir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.SeriesDir, path)
		if err != nil {
			return err
		}
		pkgs = append(pkgs, strings.TrimSuffix(filepath.ToSlash(rel), ".json"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing series dir %s: %w", s.SeriesDir, err)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// seriesPath returns the JSON file path for a package. The slash in scoped
// names maps to a subdirectory.
func (s *FileStore) seriesPath(pkg string) string {
	return filepath.Join(s.SeriesDir, filepath.FromSlash(pkg)+".json")
}

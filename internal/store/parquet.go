package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"npmstats/internal/domain"
)

// ParquetStore exports historical series as flattened parquet files for
// offline analytics. One file per package:
//
//	<ExportDir>/react.parquet
//	<ExportDir>/@mui/material.parquet
type ParquetStore struct {
	ExportDir string
}

// NewParquetStore creates a ParquetStore rooted at the given export directory.
func NewParquetStore(exportDir string) *ParquetStore {
	return &ParquetStore{ExportDir: exportDir}
}

// SeriesRecord is the parquet schema for one (version, week) observation.
type SeriesRecord struct {
	Package   string `parquet:"package"`
	Version   string `parquet:"version"`
	Timestamp int64  `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Downloads int64  `parquet:"downloads"`
}

// ExportSeries flattens ser into one row per (version, timestamp) and writes
// the package's parquet file, replacing any previous export. Rows are ordered
// by version, then timestamp.
func (s *ParquetStore) ExportSeries(ser *domain.Series) error {
	versions := make([]string, 0, len(ser.Downloads))
	for v := range ser.Downloads {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	records := make([]SeriesRecord, 0, len(versions)*len(ser.Timestamps))
	for _, version := range versions {
		counts := ser.Downloads[version]
		for i, ts := range ser.Timestamps {
			records = append(records, SeriesRecord{
				Package:   ser.Package,
				Version:   version,
				Timestamp: ts,
				Downloads: counts[i],
			})
		}
	}

	path := s.exportPath(ser.Package)
	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("exporting series for %s: %w", ser.Package, err)
	}
	return nil
}

// ReadSeriesRecords reads a package's exported rows back.
func (s *ParquetStore) ReadSeriesRecords(pkg string) ([]SeriesRecord, error) {
	records, err := readParquetFile[SeriesRecord](s.exportPath(pkg))
	if err != nil {
		return nil, fmt.Errorf("reading export for %s: %w", pkg, err)
	}
	return records, nil
}

// exportPath returns the parquet file path for a package. The slash in
// scoped names maps to a subdirectory, mirroring FileStore.
func (s *ParquetStore) exportPath(pkg string) string {
	return filepath.Join(s.ExportDir, filepath.FromSlash(pkg)+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

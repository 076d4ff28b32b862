package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"npmstats/internal/domain"
)

func TestFileStoreLoadMissing(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	_, err := fs.Load(context.Background(), "react")
	if !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("Load of missing series = %v, want ErrSeriesNotFound", err)
	}
}

func TestFileStoreSaveLoadRoundtrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	ser := &domain.Series{
		Package:    "@mui/material",
		Timestamps: []int64{1704240000000, 1704844800000},
		Downloads: map[string][]int64{
			"5.14.0": {150000, 152000},
			"5.15.0": {0, 30000},
		},
	}
	if err := fs.Save(ctx, ser); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Load(ctx, "@mui/material")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, ser) {
		t.Errorf("roundtrip mismatch:\n  got  %+v\n  want %+v", got, ser)
	}

	// Scoped packages map the slash to a subdirectory.
	path := filepath.Join(fs.SeriesDir, "@mui", "material.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected series file at %s: %v", path, err)
	}
}

func TestFileStoreSaveCompact(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	ser := &domain.Series{
		Package:    "react",
		Timestamps: []int64{100},
		Downloads:  map[string][]int64{"18.2.0": {42}},
	}
	if err := fs.Save(ctx, ser); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(fs.SeriesDir, "react.json"))
	if err != nil {
		t.Fatalf("reading series file: %v", err)
	}
	if strings.ContainsAny(string(data), " \n\t") {
		t.Errorf("series file should be compact, got: %s", data)
	}
	if leftover, err := filepath.Glob(filepath.Join(fs.SeriesDir, "*.tmp")); err == nil && len(leftover) != 0 {
		t.Errorf("temp files left behind: %v", leftover)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "react.json"), []byte("{bad"), 0o644); err != nil {
		t.Fatalf("writing corrupt series: %v", err)
	}

	_, err := NewFileStore(dir).Load(context.Background(), "react")
	if err == nil {
		t.Fatal("Load of corrupt series should fail")
	}
	if errors.Is(err, ErrSeriesNotFound) {
		t.Error("parse failure must not be reported as ErrSeriesNotFound")
	}
}

func TestFileStoreLoadMisaligned(t *testing.T) {
	dir := t.TempDir()
	bad := []byte(`{"package":"react","timestamps":[1,2],"downloads":{"18.2.0":[5]}}`)
	if err := os.WriteFile(filepath.Join(dir, "react.json"), bad, 0o644); err != nil {
		t.Fatalf("writing series: %v", err)
	}

	if _, err := NewFileStore(dir).Load(context.Background(), "react"); err == nil {
		t.Error("Load should reject a series with misaligned version counts")
	}
}

func TestFileStoreList(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	for _, pkg := range []string{"react", "@mui/material", "@angular/core"} {
		ser := domain.NewSeries(pkg)
		if err := fs.Save(ctx, ser); err != nil {
			t.Fatalf("Save %s: %v", pkg, err)
		}
	}

	got, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"@angular/core", "@mui/material", "react"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestFileStoreListMissingDir(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope"))

	got, err := fs.List(context.Background())
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List on missing dir = %v, want empty", got)
	}
}

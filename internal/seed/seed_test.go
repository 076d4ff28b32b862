package seed

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"npmstats/internal/domain"
)

func TestListMissingDirFails(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := d.List(); err == nil {
		t.Error("List on a missing seed dir should return an error")
	}
}

func TestListStripsSuffixAndSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2024-01-07.json", "2024-01-08", ".last-completed"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	d := NewDir(dir)
	dates, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	sort.Strings(dates)
	if len(dates) != 2 || dates[0] != "2024-01-07" || dates[1] != "2024-01-08" {
		t.Errorf("List = %v, want [2024-01-07 2024-01-08]", dates)
	}
}

func TestReadNotFound(t *testing.T) {
	d := NewDir(t.TempDir())
	if _, err := d.Read("2024-01-07"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Read of missing date = %v, want ErrSnapshotNotFound", err)
	}
}

func TestReadParseFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2024-01-07.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing seed: %v", err)
	}

	d := NewDir(dir)
	_, err := d.Read("2024-01-07")
	if err == nil {
		t.Fatal("Read of malformed seed should fail")
	}
	if errors.Is(err, ErrSnapshotNotFound) {
		t.Error("parse failure must not be reported as ErrSnapshotNotFound")
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "seeds"))

	snap := domain.RawSnapshot{
		"@mui/material": {
			Package:   "@mui/material",
			Downloads: map[string]int64{"5.14.0": 150000},
		},
		"react": {
			Package:   "react",
			Downloads: map[string]int64{"18.2.0": 9000000, "17.0.2": 400000},
		},
	}
	if err := d.Write("2024-01-03", snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := d.Read("2024-01-03")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got["@mui/material"].Downloads["5.14.0"] != 150000 {
		t.Errorf("roundtrip lost @mui/material count: %+v", got["@mui/material"])
	}
	if len(got["react"].Downloads) != 2 {
		t.Errorf("roundtrip lost react versions: %+v", got["react"])
	}
}

func TestReadBareFileName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2024-01-07"), []byte(`{"react":{"package":"react","downloads":{"18.2.0":5}}}`), 0o644); err != nil {
		t.Fatalf("writing seed: %v", err)
	}

	got, err := NewDir(dir).Read("2024-01-07")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got["react"].Downloads["18.2.0"] != 5 {
		t.Errorf("Read bare file = %+v, want react 18.2.0 = 5", got)
	}
}

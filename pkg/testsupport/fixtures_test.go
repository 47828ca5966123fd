package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-hostel-admin/api"
)

func TestLoadFixtureJSON_DecodesMixedIDs(t *testing.T) {
	var hostels []api.Hostel
	LoadFixtureJSON(t, FixturePath("hostels.json"), &hostels)

	if len(hostels) != 2 {
		t.Fatalf("expected 2 hostels, got %d", len(hostels))
	}
	if hostels[0].ID != "1" || hostels[1].ID != "h-2" {
		t.Errorf("expected ids 1 and h-2, got %q and %q", hostels[0].ID, hostels[1].ID)
	}
	if hostels[0].RemainingCapacity != 5 {
		t.Errorf("expected remaining capacity 5, got %d", hostels[0].RemainingCapacity)
	}
}

func TestCompareWithGolden_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "out.txt")

	CompareWithGolden(t, path, []byte("first run"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected golden file to be created, got %v", err)
	}
	if string(data) != "first run" {
		t.Errorf("expected %q, got %q", "first run", data)
	}

	CompareWithGolden(t, path, []byte("first run"))
}

func TestPaths(t *testing.T) {
	if got := FixturePath("a.json"); got != filepath.Join("testdata", "a.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
	if got := GoldenPath("a.json"); got != filepath.Join("testdata", "golden", "a.json") {
		t.Errorf("unexpected golden path %q", got)
	}
}

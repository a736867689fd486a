package ops

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cosmic-utils/diskscan/scan"
)

func scanFixture(t *testing.T) *scan.Result {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "readme.md"), []byte("hello scan"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := scan.Run(context.Background(), []string{root}, scan.Config{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return res
}

func TestExportImportRoundTrip(t *testing.T) {
	res := scanFixture(t)

	path := filepath.Join(t.TempDir(), "result.json")
	if err := ExportJSON(res, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(res, back) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", back, res)
	}
}

func TestExportJSON_StableFieldNames(t *testing.T) {
	res := scanFixture(t)

	path := filepath.Join(t.TempDir(), "result.json")
	if err := ExportJSON(res, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, field := range []string{
		`"categories"`, `"total_bytes"`, `"files_scanned"`, `"dirs_scanned"`,
		`"skipped_errors"`, `"mounts_scanned"`, `"elapsed_ms"`, `"top_files_by_category"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("exported JSON missing field %s", field)
		}
	}
}

func TestExportJSON_OverwritesExisting(t *testing.T) {
	res := scanFixture(t)

	path := filepath.Join(t.TempDir(), "result.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ExportJSON(res, path); err != nil {
		t.Fatalf("export over existing file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatal("export did not replace existing file")
	}
}

func TestExportJSON_NoPartialFileOnBadDir(t *testing.T) {
	res := scanFixture(t)
	missing := filepath.Join(t.TempDir(), "nope", "out.json")
	if err := ExportJSON(res, missing); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

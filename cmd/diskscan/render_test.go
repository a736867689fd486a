package main

import (
	"strings"
	"testing"

	"github.com/cosmic-utils/diskscan/category"
	"github.com/cosmic-utils/diskscan/mounts"
	"github.com/cosmic-utils/diskscan/scan"
)

func sampleResult() *scan.Result {
	agg := scan.NewAggregator(5)
	agg.Dir()
	agg.File("/home/user/movie.mkv", 500, category.Video)
	agg.File("/home/user/main.go", 10, category.Code)
	return agg.Finalize(1, 0, false, 0)
}

func TestFormatSummary_ContainsAllCategories(t *testing.T) {
	out := formatSummary(sampleResult(), 100)

	for _, cat := range category.All {
		if !strings.Contains(out, cat.Name()) {
			t.Errorf("summary missing category %s", cat.Name())
		}
	}
	if !strings.Contains(out, "510 B") {
		t.Errorf("summary missing total size:\n%s", out)
	}
}

func TestFormatTopFiles_ListsPathsAndEmptyCategories(t *testing.T) {
	out := formatTopFiles(sampleResult(), 100)

	if !strings.Contains(out, "/home/user/movie.mkv") {
		t.Errorf("top files missing largest video:\n%s", out)
	}
	if !strings.Contains(out, "no files") {
		t.Errorf("empty categories must render a 'no files' line:\n%s", out)
	}
}

func TestFormatTopFiles_TruncatesLongPaths(t *testing.T) {
	agg := scan.NewAggregator(1)
	long := "/data/" + strings.Repeat("verylongsegment/", 20) + "file.txt"
	agg.File(long, 10, category.Documents)
	res := agg.Finalize(1, 0, false, 0)

	out := formatTopFiles(res, 60)
	if strings.Contains(out, long) {
		t.Error("long path should have been truncated")
	}
	if !strings.Contains(out, "…") {
		t.Error("truncated path should end with ellipsis")
	}
}

func TestFormatMounts_ScannedBeforeSkippedInNaturalOrder(t *testing.T) {
	entries := []mounts.Entry{
		{MountPoint: "/mnt/disk10", FSType: "ext4"},
		{MountPoint: "/mnt/disk2", FSType: "ext4"},
		{MountPoint: "/proc", FSType: "proc"},
	}
	out := formatMounts(entries, []string{"/mnt/disk2", "/mnt/disk10"})

	d2 := strings.Index(out, "/mnt/disk2")
	d10 := strings.Index(out, "/mnt/disk10")
	proc := strings.Index(out, "/proc")
	if d2 == -1 || d10 == -1 || proc == -1 {
		t.Fatalf("missing mount lines:\n%s", out)
	}
	if d2 > d10 {
		t.Error("disk2 must sort before disk10 under natural ordering")
	}
	if proc < d10 {
		t.Error("skipped mounts must follow scanned mounts")
	}
	if !strings.Contains(out, "skip") || !strings.Contains(out, "scan") {
		t.Errorf("missing scan/skip markers:\n%s", out)
	}
}

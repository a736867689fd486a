package scan

import (
	"sort"
	"time"

	"github.com/cosmic-utils/diskscan/category"
)

const topExtensionsPerCategory = 3

// CategoryUsage is the byte total for one category, with the heaviest
// extensions inside it.
type CategoryUsage struct {
	Category      category.Category `json:"category"`
	Bytes         uint64            `json:"bytes"`
	Files         uint64            `json:"files"`
	TopExtensions []ExtensionUsage  `json:"top_extensions,omitempty"`
}

// ExtensionUsage is the byte total attributed to one file extension.
type ExtensionUsage struct {
	Extension string `json:"extension"`
	Bytes     uint64 `json:"bytes"`
}

// CategoryTop holds the largest files retained for one category.
type CategoryTop struct {
	Category category.Category `json:"category"`
	Files    []TopFile         `json:"files"`
}

// Result is the immutable outcome of a scan. Field names are stable:
// the orchestration layer consumes the JSON form across processes.
type Result struct {
	Categories         []CategoryUsage `json:"categories"`
	TotalBytes         uint64          `json:"total_bytes"`
	FilesScanned       uint64          `json:"files_scanned"`
	DirsScanned        uint64          `json:"dirs_scanned"`
	SkippedErrors      uint64          `json:"skipped_errors"`
	MountsScanned      int             `json:"mounts_scanned"`
	ElapsedMs          int64           `json:"elapsed_ms"`
	Incomplete         bool            `json:"incomplete,omitempty"`
	TopFilesByCategory []CategoryTop   `json:"top_files_by_category"`
}

// Finalize freezes an aggregate into a Result. Every category appears
// in the output, zero-byte ones included; ordering is bytes descending
// with ties broken by category declaration order, so equal inputs
// always serialize identically.
func (a *Aggregator) Finalize(mountsScanned int, elapsed time.Duration, incomplete bool, extraErrors uint64) *Result {
	order := make([]category.Category, 0, category.Count)
	order = append(order, category.All[:]...)
	sort.SliceStable(order, func(i, j int) bool {
		return a.catBytes[order[i]] > a.catBytes[order[j]]
	})

	res := &Result{
		TotalBytes:    a.totalBytes,
		FilesScanned:  a.totalFiles,
		DirsScanned:   a.totalDirs,
		SkippedErrors: a.skipped + extraErrors,
		MountsScanned: mountsScanned,
		ElapsedMs:     elapsed.Milliseconds(),
		Incomplete:    incomplete,
	}

	for _, cat := range order {
		res.Categories = append(res.Categories, CategoryUsage{
			Category:      cat,
			Bytes:         a.catBytes[cat],
			Files:         a.catFiles[cat],
			TopExtensions: topExtensions(a.extBytes[cat], topExtensionsPerCategory),
		})
		res.TopFilesByCategory = append(res.TopFilesByCategory, CategoryTop{
			Category: cat,
			Files:    a.top[cat].Sorted(),
		})
	}
	return res
}

func topExtensions(exts map[string]uint64, n int) []ExtensionUsage {
	if len(exts) == 0 {
		return nil
	}
	out := make([]ExtensionUsage, 0, len(exts))
	for ext, bytes := range exts {
		out = append(out, ExtensionUsage{Extension: ext, Bytes: bytes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Extension < out[j].Extension
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

package scan

import "github.com/cosmic-utils/diskscan/category"

// Aggregator accumulates one worker's view of a scan: byte and entry
// totals, per-category breakdowns, and the bounded largest-file lists.
// It is owned exclusively by a single goroutine until handed to Merge,
// so none of its methods take locks.
type Aggregator struct {
	topN       int
	totalBytes uint64
	totalFiles uint64
	totalDirs  uint64
	skipped    uint64
	catBytes   [category.Count]uint64
	catFiles   [category.Count]uint64
	extBytes   [category.Count]map[string]uint64
	top        [category.Count]*topList
}

// NewAggregator creates an aggregator retaining at most topN files per
// category.
func NewAggregator(topN int) *Aggregator {
	a := &Aggregator{topN: topN}
	for i := range a.top {
		a.top[i] = newTopList(topN)
		a.extBytes[i] = make(map[string]uint64)
	}
	return a
}

// File records one regular-file observation. The observation is not
// retained unless it is a current top-N candidate.
func (a *Aggregator) File(path string, bytes uint64, cat category.Category) {
	a.totalBytes += bytes
	a.totalFiles++
	a.catBytes[cat] += bytes
	a.catFiles[cat]++
	if ext := category.Extension(path); ext != "" {
		a.extBytes[cat][ext] += bytes
	}
	a.top[cat].Insert(path, bytes)
}

// Dir records a visited directory.
func (a *Aggregator) Dir() {
	a.totalDirs++
}

// Skip records a recovered local error (unreadable entry or subtree).
func (a *Aggregator) Skip() {
	a.skipped++
}

// Merge folds the workers' aggregates into a single one. Worker top
// entries go through the same bounded insertion policy as live
// observations, so the combined result is identical to what a single
// worker scanning everything would have produced.
func Merge(aggs []*Aggregator, topN int) *Aggregator {
	merged := NewAggregator(topN)
	for _, a := range aggs {
		if a == nil {
			continue
		}
		merged.totalBytes += a.totalBytes
		merged.totalFiles += a.totalFiles
		merged.totalDirs += a.totalDirs
		merged.skipped += a.skipped
		for i := range a.catBytes {
			merged.catBytes[i] += a.catBytes[i]
			merged.catFiles[i] += a.catFiles[i]
			for ext, b := range a.extBytes[i] {
				merged.extBytes[i][ext] += b
			}
			for _, e := range a.top[i].entries {
				merged.top[i].Insert(e.Path, e.Bytes)
			}
		}
	}
	return merged
}

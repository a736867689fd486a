// Package scan is the single-pass categorization engine: it walks a
// set of scan roots in parallel, sizes and classifies every regular
// file, tracks the largest files per category in bounded memory, and
// merges the per-worker aggregates into one deterministic Result.
package scan

import "go.uber.org/zap"

// DefaultTopFiles is the per-category largest-file retention used when
// Config.TopFiles is zero.
const DefaultTopFiles = 20

// Config configures one scan invocation. Callers construct it per
// call; there is no global scan state.
type Config struct {
	// Workers bounds the traversal pool. Zero means one worker per
	// available CPU. The pool never grows with the number of roots or
	// files.
	Workers int

	// TopFiles is the per-category retention bound N (default 20).
	// It is fixed for the scan, not a post-hoc filter.
	TopFiles int

	// Progress, when set, receives throttled snapshots during the scan
	// and one final Done snapshot. Sends never block; a slow consumer
	// only misses intermediate updates.
	Progress chan<- ProgressSnapshot

	// EstimatedTotalBytes is the progress denominator, normally from
	// mounts.EstimateUsedBytes. Zero disables percent/ETA reporting
	// but affects nothing else.
	EstimatedTotalBytes uint64

	// PreflightErrors counts recovered errors from before traversal
	// (failed mount statistics queries); they are folded into the
	// result's skipped_errors so callers can judge completeness from
	// one number.
	PreflightErrors uint64

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Config) topFiles() int {
	if c.TopFiles <= 0 {
		return DefaultTopFiles
	}
	return c.TopFiles
}

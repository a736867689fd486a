package scan

import "time"

// ProgressSnapshot reports scan progress. Snapshots are consumed by a
// renderer and discarded; they never become part of a Result.
type ProgressSnapshot struct {
	BytesProcessed uint64
	// Percent is in [0,100]. It stays 0 for the whole scan when the
	// used-bytes denominator is zero or unavailable; the final Done
	// snapshot always reports 100.
	Percent float64
	// ETASeconds is valid only when ETAKnown is set, which requires a
	// denominator and a non-zero smoothed throughput.
	ETASeconds float64
	ETAKnown   bool
	Done       bool
}

// Snapshot interval and throughput smoothing factor. The exponential
// moving average keeps the ETA from jumping with every burst of small
// files.
const (
	snapshotInterval = 250 * time.Millisecond
	throughputAlpha  = 0.3
)

// progressTracker is the single consumer of worker byte deltas. It is
// only ever touched from the tracker goroutine (and from Run after
// that goroutine has exited), so it needs no locking.
type progressTracker struct {
	estimatedTotal uint64
	processed      uint64

	rate          float64 // EMA, bytes/sec
	lastTick      time.Time
	lastProcessed uint64
}

func newProgressTracker(estimatedTotal uint64, now time.Time) *progressTracker {
	return &progressTracker{
		estimatedTotal: estimatedTotal,
		lastTick:       now,
	}
}

func (t *progressTracker) add(n uint64) {
	t.processed += n
}

// tick folds the interval since the previous tick into the smoothed
// throughput and returns the current snapshot.
func (t *progressTracker) tick(now time.Time) ProgressSnapshot {
	dt := now.Sub(t.lastTick).Seconds()
	if dt > 0 {
		instant := float64(t.processed-t.lastProcessed) / dt
		if t.rate == 0 {
			t.rate = instant
		} else {
			t.rate = throughputAlpha*instant + (1-throughputAlpha)*t.rate
		}
		t.lastTick = now
		t.lastProcessed = t.processed
	}
	return t.snapshot()
}

func (t *progressTracker) snapshot() ProgressSnapshot {
	snap := ProgressSnapshot{BytesProcessed: t.processed}
	if t.estimatedTotal == 0 {
		return snap
	}

	ratio := float64(t.processed) / float64(t.estimatedTotal)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	snap.Percent = ratio * 100

	if t.rate > 0 {
		remaining := float64(0)
		if t.estimatedTotal > t.processed {
			remaining = float64(t.estimatedTotal - t.processed)
		}
		snap.ETASeconds = remaining / t.rate
		snap.ETAKnown = true
	}
	return snap
}

// final is the completion snapshot: always 100%, even when no
// denominator was available during the scan.
func (t *progressTracker) final() ProgressSnapshot {
	return ProgressSnapshot{
		BytesProcessed: t.processed,
		Percent:        100,
		ETASeconds:     0,
		ETAKnown:       t.estimatedTotal > 0,
		Done:           true,
	}
}

// Worker-side delta batching. Flushing per file would serialize the
// hot path on the channel; deltas are accumulated locally and flushed
// by size threshold, by elapsed interval at directory boundaries, and
// once when the worker finishes.
const (
	deltaFlushBytes    = 4 << 20
	deltaFlushInterval = snapshotInterval
)

type deltaEmitter struct {
	ch        chan<- uint64
	pending   uint64
	lastFlush time.Time
}

func newDeltaEmitter(ch chan<- uint64) *deltaEmitter {
	return &deltaEmitter{ch: ch, lastFlush: time.Now()}
}

func (e *deltaEmitter) add(n uint64) {
	if e.ch == nil {
		return
	}
	e.pending += n
	if e.pending >= deltaFlushBytes {
		e.flush()
	}
}

// maybeFlush is called between directories so slow trees still update
// progress at a human timescale.
func (e *deltaEmitter) maybeFlush() {
	if e.ch == nil || e.pending == 0 {
		return
	}
	if time.Since(e.lastFlush) >= deltaFlushInterval {
		e.flush()
	}
}

func (e *deltaEmitter) flush() {
	if e.ch == nil || e.pending == 0 {
		return
	}
	e.ch <- e.pending
	e.pending = 0
	e.lastFlush = time.Now()
}

package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cosmic-utils/diskscan/category"
)

// Run scans the given roots in one pass and returns the merged Result.
// Roots are fanned out over a bounded worker pool; each worker owns
// its aggregate until the single-threaded merge at the end, so the
// result is independent of scheduling.
//
// Local failures (unreadable directories, vanished entries) are
// counted and skipped, never fatal. Cancellation is cooperative:
// workers stop between directories and the partial result comes back
// annotated Incomplete with a nil error.
func Run(ctx context.Context, roots []string, cfg Config) (*Result, error) {
	log := cfg.logger()
	topN := cfg.topFiles()

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(roots) {
		workers = len(roots)
	}
	if workers < 1 {
		workers = 1
	}

	start := time.Now()

	rootSet := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		rootSet[filepath.Clean(r)] = struct{}{}
	}

	// Progress consumer: many workers feed byte deltas into one
	// buffered channel; a single goroutine aggregates and emits
	// throttled snapshots. Progress failures degrade the signal only.
	var deltas chan uint64
	tracker := newProgressTracker(cfg.EstimatedTotalBytes, start)
	trackerDone := make(chan struct{})
	if cfg.Progress != nil {
		deltas = make(chan uint64, 256)
		go func() {
			defer close(trackerDone)
			ticker := time.NewTicker(snapshotInterval)
			defer ticker.Stop()
			for {
				select {
				case d, ok := <-deltas:
					if !ok {
						return
					}
					tracker.add(d)
				case <-ticker.C:
					emit(cfg.Progress, tracker.tick(time.Now()))
				}
			}
		}()
	}

	var canceled atomic.Bool
	rootCh := make(chan string)
	aggs := make([]*Aggregator, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		agg := NewAggregator(topN)
		aggs[i] = agg
		wg.Add(1)
		go func() {
			defer wg.Done()
			em := newDeltaEmitter(deltas)
			for root := range rootCh {
				log.Debug("scanning root", zap.String("root", root))
				walkRoot(ctx, root, rootSet, agg, em, log, &canceled)
			}
			em.flush()
		}()
	}

	dispatched := 0
feed:
	for _, root := range roots {
		select {
		case rootCh <- root:
			dispatched++
		case <-ctx.Done():
			canceled.Store(true)
			break feed
		}
	}
	close(rootCh)
	wg.Wait()

	if deltas != nil {
		close(deltas)
		<-trackerDone
	}

	merged := Merge(aggs, topN)
	res := merged.Finalize(dispatched, time.Since(start), canceled.Load(), cfg.PreflightErrors)

	if cfg.Progress != nil {
		emit(cfg.Progress, tracker.final())
	}
	return res, nil
}

func emit(sink chan<- ProgressSnapshot, snap ProgressSnapshot) {
	select {
	case sink <- snap:
	default:
	}
}

// walkRoot traverses one scan root with an explicit directory stack;
// recursion would overflow on pathological tree depth. Directory
// entries carry lstat-style metadata, so symlinks are recognized
// without being followed and are neither descended into nor sized.
func walkRoot(ctx context.Context, root string, allRoots map[string]struct{}, agg *Aggregator, em *deltaEmitter, log *zap.Logger, canceled *atomic.Bool) {
	stack := []string{filepath.Clean(root)}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			canceled.Store(true)
			return
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			agg.Skip()
			log.Debug("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		agg.Dir()

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				// A nested mount point is a scan root of its own;
				// counting it here too would double it.
				if _, nested := allRoots[path]; nested {
					continue
				}
				stack = append(stack, path)
			case entry.Type().IsRegular():
				info, err := entry.Info()
				if err != nil {
					// Entry vanished between readdir and stat.
					agg.Skip()
					continue
				}
				size := info.Size()
				if size < 0 {
					size = 0
				}
				agg.File(path, uint64(size), category.Classify(entry.Name()))
				em.add(uint64(size))
			default:
				// Symlinks and special files carry no bytes here.
			}
		}
		em.maybeFlush()
	}
}

package scan

import (
	"testing"
	"time"
)

func TestProgressTracker_PercentClamped(t *testing.T) {
	now := time.Now()
	tr := newProgressTracker(1000, now)

	tr.add(500)
	snap := tr.tick(now.Add(time.Second))
	if snap.Percent != 50 {
		t.Fatalf("percent = %v, want 50", snap.Percent)
	}

	// Processed can legitimately exceed the estimate (it is only an
	// estimate); percent must stay clamped at 100.
	tr.add(2000)
	snap = tr.tick(now.Add(2 * time.Second))
	if snap.Percent != 100 {
		t.Fatalf("percent = %v, want clamped 100", snap.Percent)
	}
	if !snap.ETAKnown || snap.ETASeconds != 0 {
		t.Fatalf("ETA = %v (known=%v), want 0 once past the estimate", snap.ETASeconds, snap.ETAKnown)
	}
}

func TestProgressTracker_ZeroDenominator(t *testing.T) {
	now := time.Now()
	tr := newProgressTracker(0, now)

	tr.add(12345)
	snap := tr.tick(now.Add(time.Second))
	if snap.Percent != 0 {
		t.Fatalf("percent = %v, want 0 with no denominator", snap.Percent)
	}
	if snap.ETAKnown {
		t.Fatal("ETA should be unavailable with no denominator")
	}

	final := tr.final()
	if final.Percent != 100 || !final.Done {
		t.Fatalf("final = %+v, want Done at 100%%", final)
	}
}

func TestProgressTracker_ETAFromThroughput(t *testing.T) {
	now := time.Now()
	tr := newProgressTracker(2000, now)

	// Before any throughput sample the ETA is unknown.
	if snap := tr.snapshot(); snap.ETAKnown {
		t.Fatal("ETA known before any throughput measurement")
	}

	tr.add(1000)
	snap := tr.tick(now.Add(time.Second)) // ~1000 B/s
	if !snap.ETAKnown {
		t.Fatal("ETA unknown after throughput measurement")
	}
	if snap.ETASeconds <= 0 || snap.ETASeconds > 2 {
		t.Fatalf("ETA = %v s, want roughly 1s", snap.ETASeconds)
	}
}

func TestProgressTracker_SmoothedThroughput(t *testing.T) {
	now := time.Now()
	tr := newProgressTracker(1<<40, now)

	tr.add(1000)
	tr.tick(now.Add(time.Second))
	before := tr.rate

	// A silent interval decays the rate instead of zeroing it.
	tr.tick(now.Add(2 * time.Second))
	if tr.rate <= 0 || tr.rate >= before {
		t.Fatalf("rate = %v after idle tick, want decayed positive value below %v", tr.rate, before)
	}
}

func TestProgressTracker_ZeroIntervalTick(t *testing.T) {
	now := time.Now()
	tr := newProgressTracker(100, now)
	tr.add(10)
	// Same-instant tick must not divide by zero.
	snap := tr.tick(now)
	if snap.Percent != 10 {
		t.Fatalf("percent = %v, want 10", snap.Percent)
	}
}

func TestDeltaEmitter_NilChannelIsNoop(t *testing.T) {
	em := newDeltaEmitter(nil)
	em.add(1 << 30)
	em.maybeFlush()
	em.flush()
	if em.pending != 0 {
		t.Fatalf("pending = %d on nil channel, want 0", em.pending)
	}
}

func TestDeltaEmitter_FlushesOnThreshold(t *testing.T) {
	ch := make(chan uint64, 4)
	em := newDeltaEmitter(ch)

	em.add(deltaFlushBytes - 1)
	select {
	case d := <-ch:
		t.Fatalf("premature flush of %d bytes", d)
	default:
	}

	em.add(1)
	select {
	case d := <-ch:
		if d != deltaFlushBytes {
			t.Fatalf("flushed %d bytes, want %d", d, deltaFlushBytes)
		}
	default:
		t.Fatal("no flush after crossing threshold")
	}
}

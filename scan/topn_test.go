package scan

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func TestTopList_RetainsLargest(t *testing.T) {
	top := newTopList(20)
	for i := 1; i <= 25; i++ {
		top.Insert(fmt.Sprintf("/f%02d.txt", i), uint64(i))
	}

	got := top.Sorted()
	if len(got) != 20 {
		t.Fatalf("retained %d entries, want 20", len(got))
	}
	for i, e := range got {
		want := uint64(25 - i)
		if e.Bytes != want {
			t.Fatalf("entry %d has %d bytes, want %d", i, e.Bytes, want)
		}
	}
	// Every evicted size (1..5) is <= the smallest retained (6).
	if got[len(got)-1].Bytes != 6 {
		t.Fatalf("smallest retained = %d, want 6", got[len(got)-1].Bytes)
	}
}

func TestTopList_TieBreaksOnPath(t *testing.T) {
	// Both candidates for the single slot weigh the same; the
	// lexicographically smaller path must win regardless of order.
	for _, order := range [][]string{{"/b.txt", "/a.txt"}, {"/a.txt", "/b.txt"}} {
		top := newTopList(1)
		for _, p := range order {
			top.Insert(p, 100)
		}
		got := top.Sorted()
		if len(got) != 1 || got[0].Path != "/a.txt" {
			t.Fatalf("insert order %v retained %v, want /a.txt", order, got)
		}
	}
}

func TestTopList_OrderIndependent(t *testing.T) {
	entries := make([]TopFile, 40)
	for i := range entries {
		entries[i] = TopFile{Path: fmt.Sprintf("/p/%02d", i), Bytes: uint64(i % 7)}
	}

	var want []TopFile
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]TopFile, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		top := newTopList(10)
		for _, e := range shuffled {
			top.Insert(e.Path, e.Bytes)
		}
		got := top.Sorted()
		if want == nil {
			want = got
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: retained %v, want %v", trial, got, want)
		}
	}
}

func TestTopList_SortedOrdering(t *testing.T) {
	top := newTopList(5)
	top.Insert("/c", 10)
	top.Insert("/a", 10)
	top.Insert("/b", 30)

	got := top.Sorted()
	want := []TopFile{{Path: "/b", Bytes: 30}, {Path: "/a", Bytes: 10}, {Path: "/c", Bytes: 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}
}

func TestTopList_ZeroCapacity(t *testing.T) {
	top := newTopList(0)
	top.Insert("/a", 1)
	if got := top.Sorted(); len(got) != 0 {
		t.Fatalf("zero-capacity list retained %v", got)
	}
}

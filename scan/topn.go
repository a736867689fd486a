package scan

import "sort"

// TopFile is one retained largest-file entry.
type TopFile struct {
	Path  string `json:"path"`
	Bytes uint64 `json:"bytes"`
}

// topList retains the N largest files seen so far in a fixed-capacity
// array arranged as a min-heap, so memory stays bounded no matter how
// many files a scan visits. Insert is O(log N).
type topList struct {
	capacity int
	entries  []TopFile
}

func newTopList(capacity int) *topList {
	if capacity < 0 {
		capacity = 0
	}
	return &topList{
		capacity: capacity,
		entries:  make([]TopFile, 0, capacity),
	}
}

// outranks reports whether a beats b for a top slot: more bytes wins,
// equal bytes resolve toward the lexicographically smaller path. This
// is a total order over distinct paths, which is what makes the
// retained set independent of insertion order.
func outranks(a, b TopFile) bool {
	if a.Bytes != b.Bytes {
		return a.Bytes > b.Bytes
	}
	return a.Path < b.Path
}

// Insert offers a candidate. Below capacity it is always kept; at
// capacity it replaces the current minimum only when it outranks it.
func (t *topList) Insert(path string, bytes uint64) {
	if t.capacity == 0 {
		return
	}
	cand := TopFile{Path: path, Bytes: bytes}
	if len(t.entries) < t.capacity {
		t.entries = append(t.entries, cand)
		t.siftUp(len(t.entries) - 1)
		return
	}
	if !outranks(cand, t.entries[0]) {
		return
	}
	t.entries[0] = cand
	t.siftDown(0)
}

// siftUp restores the heap property after appending at index i.
// The heap minimum (worst retained entry) sits at index 0.
func (t *topList) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !outranks(t.entries[parent], t.entries[i]) {
			break
		}
		t.entries[parent], t.entries[i] = t.entries[i], t.entries[parent]
		i = parent
	}
}

// siftDown restores the heap property after replacing the minimum.
func (t *topList) siftDown(i int) {
	n := len(t.entries)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		min := left
		if right := left + 1; right < n && outranks(t.entries[left], t.entries[right]) {
			min = right
		}
		if !outranks(t.entries[i], t.entries[min]) {
			return
		}
		t.entries[i], t.entries[min] = t.entries[min], t.entries[i]
		i = min
	}
}

// Sorted returns the retained entries ordered by bytes descending,
// path ascending on ties.
func (t *topList) Sorted() []TopFile {
	out := make([]TopFile, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool {
		return outranks(out[i], out[j])
	})
	return out
}

// Package tt implements the engine's transposition table: a single-slot,
// depth-preferred cache keyed by Zobrist hash. A requested byte budget is
// rounded down to the nearest power-of-two entry count so the index can
// be masked instead of modded. Entries are written without atomics since
// only one goroutine ever touches the table during a search.
package tt

import (
	"math/bits"

	"github.com/corvidchess/corvid/move"
)

// Flag classifies how a stored score bounds the true value.
type Flag uint8

const (
	Exact Flag = iota
	LowerBound
	UpperBound
)

// Entry is one transposition-table slot. Zero value (Key == 0) means empty.
type Entry struct {
	Key   uint64
	Move  move.Move
	Depth int8
	Score int16
	Flag  Flag
	Age   uint8
}

const (
	minSizeMB     = 1
	maxSizeMB     = 1 << 16 // 64 GB, a generous cap rather than a realistic one
	bytesPerEntry = 24      // sizing divisor, above the 16-byte Entry so the table stays within budget
)

// Table is the transposition table. It is not safe for concurrent access —
// the engine's single-writer-TT contract means exactly one goroutine (the
// active search) ever calls Store, and Probe is only ever called from that
// same goroutine.
type Table struct {
	entries []Entry
	mask    uint64
	age     uint8
}

// NewTable allocates a table sized to approximately mb megabytes, rounded
// down to the nearest power-of-two entry count. Requests below minSizeMB
// or above maxSizeMB are clamped silently, per the resource-limit
// discipline: a zero request still yields a minimum viable table.
func NewTable(mb int) *Table {
	if mb < minSizeMB {
		mb = minSizeMB
	}
	if mb > maxSizeMB {
		mb = maxSizeMB
	}

	wantEntries := uint64(mb) * 1024 * 1024 / bytesPerEntry
	if wantEntries == 0 {
		wantEntries = 1
	}
	n := uint64(1) << (63 - bits.LeadingZeros64(wantEntries))

	return &Table{
		entries: make([]Entry, n),
		mask:    n - 1,
	}
}

// Resize reallocates the table, discarding all stored entries.
func (t *Table) Resize(mb int) {
	*t = *NewTable(mb)
}

// Clear empties every slot without reallocating.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.age = 0
}

// NewSearch advances the table's age, with wraparound. Entries from a
// previous search become eligible for replacement regardless of depth.
func (t *Table) NewSearch() {
	t.age++
}

// Probe returns the entry stored under hash, if the key matches exactly.
// No further verification is attempted beyond key equality: 64-bit
// Zobrist collisions are rare enough to accept the risk.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	e := &t.entries[hash&t.mask]
	if e.Key != hash {
		return Entry{}, false
	}
	return *e, true
}

// Store writes an entry, applying the depth-preferred replacement policy:
// an empty or stale (previous-age) slot is always replaced; a same-age
// slot is replaced only when the new entry is at least as deep.
func (t *Table) Store(hash uint64, m move.Move, depth int8, score int16, flag Flag) {
	slot := &t.entries[hash&t.mask]

	if slot.Key != 0 && slot.Age == t.age && depth < slot.Depth {
		return
	}

	slot.Key = hash
	slot.Move = m
	slot.Depth = depth
	slot.Score = score
	slot.Flag = flag
	slot.Age = t.age
}

// Hashfull reports the table's fill ratio in permille (parts per
// thousand), sampled over the first 1000 entries or the whole table when
// smaller, matching the UCI "hashfull" info field.
func (t *Table) Hashfull() int {
	sample := len(t.entries)
	if sample > 1000 {
		sample = 1000
	}
	if sample == 0 {
		return 0
	}

	filled := 0
	for i := 0; i < sample; i++ {
		if t.entries[i].Key != 0 {
			filled++
		}
	}
	return filled * 1000 / sample
}

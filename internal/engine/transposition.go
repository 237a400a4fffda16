package engine

import (
	"unsafe"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

// Bound indicates which side of the search window a stored score bounds.
type Bound uint8

const (
	Exact Bound = iota
	LowerBound
	UpperBound
)

// TTEntry is one slot of the transposition table. Field sizes follow the
// teacher's TTEntry: a truncated 32-bit verification key rather than the
// full 64-bit hash, so the key field takes 4 bytes instead of 8.
type TTEntry struct {
	Key      uint32
	BestMove tak.Move
	Score    int16
	Depth    int8
	Bound    Bound
	Age      uint8
}

// Table is a direct-mapped hash table for search results, sized to a power
// of two number of entries so probing is a mask instead of a modulo — the
// same layout the teacher's TranspositionTable uses.
type Table struct {
	entries []TTEntry
	mask    uint64
	age     uint8

	probes, hits uint64
}

// NewTable allocates a table sized to approximately sizeMB megabytes.
func NewTable(sizeMB int) *Table {
	const entrySize = uint64(unsafe.Sizeof(TTEntry{}))
	numEntries := roundDownPow2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if numEntries == 0 {
		numEntries = 1
	}
	return &Table{
		entries: make([]TTEntry, numEntries),
		mask:    numEntries - 1,
	}
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *Table) Probe(hash uint64) (TTEntry, bool) {
	t.probes++
	e := t.entries[hash&t.mask]
	if e.Depth > 0 && e.Key == uint32(hash>>32) {
		t.hits++
		return e, true
	}
	return TTEntry{}, false
}

// Store replaces the slot at hash's index when the new entry is from a
// newer search generation or is at least as deep as the incumbent.
func (t *Table) Store(hash uint64, depth int, score int, bound Bound, best tak.Move) {
	e := &t.entries[hash&t.mask]
	if e.Age != t.age || depth >= int(e.Depth) {
		e.Key = uint32(hash >> 32)
		e.BestMove = best
		e.Score = int16(score)
		e.Depth = int8(depth)
		e.Bound = bound
		e.Age = t.age
	}
}

func (t *Table) NewSearch() { t.age++ }

func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = TTEntry{}
	}
	t.age, t.hits, t.probes = 0, 0, 0
}

// HashFull samples the first 1000 entries and returns how full the table
// is, in permille, matching the TEI "hashfull" info field.
func (t *Table) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(t.entries)) {
		sample = len(t.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.entries[i].Depth > 0 && t.entries[i].Age == t.age {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}

// AdjustScoreFromTT converts a stored mate score (distance from the root
// of the search that stored it) into one relative to ply, the current
// search's distance from its own root.
func AdjustScoreFromTT(score, ply int) int {
	if score > ScoreMaxMate {
		return score - ply
	}
	if score < -ScoreMaxMate {
		return score + ply
	}
	return score
}

// AdjustScoreToTT reverses AdjustScoreFromTT for storage.
func AdjustScoreToTT(score, ply int) int {
	if score > ScoreMaxMate {
		return score + ply
	}
	if score < -ScoreMaxMate {
		return score - ply
	}
	return score
}

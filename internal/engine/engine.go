// Package engine implements the 6x6 Tak searcher: transposition table,
// butterfly/countermove/correction history, staged move picker, the
// static evaluator, and iterative-deepening PVS search built on top of
// internal/tak's position and move generation.
package engine

// DefaultHashMB is the transposition table size used until a TEI
// "setoption name Hash" command changes it.
const DefaultHashMB = 64

// Options holds the engine-wide settings a TEI session can change via
// setoption, playing the role the teacher's engine.Options plays for UCI.
type Options struct {
	HashMB int
	// HalfKomi is advertised to the TEI client as a fixed spin option
	// (min == max == default == 4); it is not actually adjustable because
	// 6x6 Tak's komi is a ruleset constant, not a tuning knob.
	HalfKomi int
}

func DefaultOptions() Options {
	return Options{HashMB: DefaultHashMB, HalfKomi: 2 * 2}
}

// Engine bundles one Searcher with its options, rebuilding the searcher's
// hash table whenever Hash changes.
type Engine struct {
	Options  Options
	Searcher *Searcher
}

func New() *Engine {
	opts := DefaultOptions()
	return &Engine{
		Options:  opts,
		Searcher: NewSearcher(opts.HashMB),
	}
}

// SetHashMB resizes the transposition table, discarding its contents —
// the same trade the teacher's engine makes on a UCI "setoption name
// Hash".
func (e *Engine) SetHashMB(mb int) {
	e.Options.HashMB = mb
	e.Searcher.TT = NewTable(mb)
}

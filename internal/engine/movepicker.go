package engine

import "github.com/ciekce-go/tak6tei/internal/tak"

// Killers holds, per ply, the two most recent quiet moves that caused a
// beta cutoff — cheap substitutes for history when a move hasn't been
// searched from this exact position before, following the teacher's
// MoveOrderer.killers slot-shifting scheme.
type Killers struct {
	slots [MaxPly][2]tak.Move
	set   [MaxPly][2]bool
}

func (k *Killers) Update(ply int, mv tak.Move) {
	if k.set[ply][0] && k.slots[ply][0] == mv {
		return
	}
	k.slots[ply][1], k.set[ply][1] = k.slots[ply][0], k.set[ply][0]
	k.slots[ply][0], k.set[ply][0] = mv, true
}

// Get returns the two killer slots for ply along with whether each was ever
// recorded — the zero Move is itself a legal move (placing a flat on a1),
// so "unset" has to be tracked explicitly rather than inferred from the
// zero value.
func (k *Killers) Get(ply int) (m1 tak.Move, ok1 bool, m2 tak.Move, ok2 bool) {
	return k.slots[ply][0], k.set[ply][0], k.slots[ply][1], k.set[ply][1]
}

type pickStage uint8

const (
	stageTT pickStage = iota
	stageKiller1
	stageKiller2
	stageGen
	stageMoves
	stageEnd
)

// MovePicker yields moves for one search node in best-first order without
// sorting the whole move list up front: the TT move and killers are tried
// first (cheaply, without generating anything), then the full list is
// generated, scored by history, and picked one at a time with a lazy
// selection sort — the same staged design as
// original_source/movepick.rs's Movepicker, extended with the killer
// stages the distilled specification calls for.
type MovePicker struct {
	pos     tak.Position
	history *History
	prev    *tak.Move
	ttMove  tak.Move
	hasTT   bool
	killer1 tak.Move
	killer2 tak.Move
	hasK1   bool
	hasK2   bool

	list   tak.MoveList
	scores [tak.MaxMoves]int
	idx    int
	stage  pickStage
}

func NewMovePicker(pos tak.Position, history *History, prev *tak.Move, ttMove tak.Move, hasTT bool, killers *Killers, ply int) *MovePicker {
	k1, ok1, k2, ok2 := killers.Get(ply)
	return &MovePicker{
		pos:     pos,
		history: history,
		prev:    prev,
		ttMove:  ttMove,
		hasTT:   hasTT,
		killer1: k1,
		hasK1:   ok1,
		killer2: k2,
		hasK2:   ok2,
		stage:   stageTT,
	}
}

func (mp *MovePicker) alreadyYielded(mv tak.Move) bool {
	if mp.hasTT && mv == mp.ttMove {
		return true
	}
	return false
}

// Next returns the next move to search, or false once exhausted.
func (mp *MovePicker) Next() (tak.Move, bool) {
	for mp.stage != stageEnd {
		switch mp.stage {
		case stageTT:
			mp.stage = stageKiller1
			if mp.hasTT && mp.pos.IsLegal(mp.ttMove) {
				return mp.ttMove, true
			}
		case stageKiller1:
			mp.stage = stageKiller2
			if mp.hasK1 && !mp.alreadyYielded(mp.killer1) && mp.pos.IsLegal(mp.killer1) {
				return mp.killer1, true
			}
		case stageKiller2:
			mp.stage = stageGen
			if mp.hasK2 && mp.killer2 != mp.killer1 && !mp.alreadyYielded(mp.killer2) && mp.pos.IsLegal(mp.killer2) {
				return mp.killer2, true
			}
		case stageGen:
			tak.GenerateMoves(&mp.list, mp.pos)
			for i := 0; i < mp.list.Len(); i++ {
				mp.scores[i] = mp.history.Score(mp.pos.Stm, mp.list.Get(i), mp.prev)
			}
			mp.stage = stageMoves
		case stageMoves:
			for mp.idx < mp.list.Len() {
				mv := mp.pickBest()
				mp.idx++
				if mp.alreadyYielded(mv) || (mp.hasK1 && mv == mp.killer1) || (mp.hasK2 && mv == mp.killer2) {
					continue
				}
				return mv, true
			}
			mp.stage = stageEnd
		}
	}
	return tak.Move{}, false
}

func (mp *MovePicker) pickBest() tak.Move {
	best := mp.idx
	for i := mp.idx + 1; i < mp.list.Len(); i++ {
		if mp.scores[i] > mp.scores[best] {
			best = i
		}
	}
	mp.list.Swap(mp.idx, best)
	mp.scores[mp.idx], mp.scores[best] = mp.scores[best], mp.scores[mp.idx]
	return mp.list.Get(mp.idx)
}

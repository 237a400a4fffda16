package engine

import "github.com/ciekce-go/tak6tei/internal/tak"

// historyLimit bounds a single entry's magnitude; the gravity update in
// bump keeps every entry inside [-historyLimit, historyLimit] without an
// explicit clamp, the same trick original_source/history.rs uses.
const historyLimit = 16384

// historyMaxBonus is the largest bonus/malus ever handed to bump, a
// quarter of the limit so no single update can saturate an entry outright.
const historyMaxBonus = historyLimit / 4

// moveKey indexes the butterfly table: enough to distinguish every
// placement type plus "any spread" at every destination square, matching
// original_source/history.rs's MOVE_TYPES*Square::COUNT sizing.
func moveKey(mv tak.Move) int {
	bucket := 0 // spread
	sq := mv.Sq
	if mv.Kind == tak.Place {
		bucket = 1 + int(mv.Piece)
		sq = mv.Sq
	}
	return bucket*36 + int(sq)
}

const moveKeys = 4 * 36

type historyEntry struct{ value int16 }

func (e *historyEntry) bump(bonus int) {
	v := int(e.value)
	v += bonus - v*abs(bonus)/historyLimit
	e.value = int16(v)
}

func (e historyEntry) get() int { return int(e.value) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// History is the per-player butterfly/countermove history used by the move
// picker to rank quiet moves that previously caused beta cutoffs,
// following original_source/history.rs's sided CombinedHist +
// CountermoveHistory tables.
type History struct {
	butterfly    [2][moveKeys]historyEntry
	countermove  [2][moveKeys][moveKeys]historyEntry
}

func clampBonus(bonus int) int {
	if bonus > historyMaxBonus {
		return historyMaxBonus
	}
	if bonus < -historyMaxBonus {
		return -historyMaxBonus
	}
	return bonus
}

// Update records that mv caused a cutoff (or was merely tried) at the
// given bonus, for the player to move, stm. prev, if present, is the
// move played immediately before mv in the search line, updating the
// countermove table as well.
func (h *History) Update(stm tak.Player, mv tak.Move, prev *tak.Move, bonus int) {
	bonus = clampBonus(bonus)
	k := moveKey(mv)
	h.butterfly[stm][k].bump(bonus)
	if prev != nil {
		h.countermove[stm][moveKey(*prev)][k].bump(bonus)
	}
}

// Score returns mv's history score for the player to move, stm, summing
// the butterfly and (if available) countermove contributions.
func (h *History) Score(stm tak.Player, mv tak.Move, prev *tak.Move) int {
	k := moveKey(mv)
	score := h.butterfly[stm][k].get()
	if prev != nil {
		score += h.countermove[stm][moveKey(*prev)][k].get()
	}
	return score
}

func (h *History) Clear() {
	*h = History{}
}

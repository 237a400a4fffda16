package engine

import (
	"github.com/ciekce-go/tak6tei/internal/bitset"
	"github.com/ciekce-go/tak6tei/internal/tak"
)

// Evaluation weights, following original_source/eval.rs's constants where
// that file covers a term, and the distilled specification's evaluator
// table for the stack support/captive terms eval.rs doesn't show.
const (
	flatWeight        = 75
	flatsInHandWeight = -13
	capsInHandWeight  = -25
	roadAdjWeight     = 9
	roadLineWeight    = 7
	tempoBonus        = 30

	supportFlatBonus     = 30
	supportWallBonus     = 35
	supportCapstoneBonus = 40
	captiveFlatMalus     = -40
	captiveWallMalus     = -15
	captiveCapstoneMalus = -20
	maxCaptiveDepth      = 7
)

var ringWeights = [5]int{2, 8, -5, -15, -40}

// rings holds the five concentric bitboards used for flat positional
// quality: ring 0 is the central four squares, each further ring is the
// previous one dilated outward by one step and masked off already-claimed
// squares, mirroring eval.rs's static RINGS initializer.
var rings [5]bitset.Board

func init() {
	covered := bitset.Empty()
	center := bitset.Empty().With(14).With(15).With(20).With(21)
	rings[0] = center
	covered = covered.Or(center)
	cur := center
	for i := 1; i < len(rings); i++ {
		grown := cur.Shift(bitset.North).Or(cur.Shift(bitset.South)).
			Or(cur.Shift(bitset.East)).Or(cur.Shift(bitset.West))
		grown = grown.And(covered.Not())
		rings[i] = grown
		covered = covered.Or(grown)
		cur = grown
	}
}

// Evaluate returns a score from the side-to-move's perspective: positive
// favors pos.Stm. It combines material/reserve differentials, flat ring
// position quality, road-shape adjacency, and stack support/captive terms,
// following original_source/eval.rs's structure.
func Evaluate(pos tak.Position) int {
	p1Flats := pos.Flats.And(pos.Owner[tak.P1]).Count()
	p2Flats := pos.Flats.And(pos.Owner[tak.P2]).Count() + tak.Komi

	flatDiff := (p1Flats - p2Flats) * flatWeight
	handDiff := (int(pos.FlatsInHand[tak.P1]) - int(pos.FlatsInHand[tak.P2])) * flatsInHandWeight
	capHandDiff := (int(pos.CapsInHand[tak.P1]) - int(pos.CapsInHand[tak.P2])) * capsInHandWeight

	positionDiff := 0
	for i, w := range ringWeights {
		p1 := pos.Flats.And(pos.Owner[tak.P1]).And(rings[i]).Count()
		p2 := pos.Flats.And(pos.Owner[tak.P2]).And(rings[i]).Count()
		positionDiff += (p1 - p2) * w
	}

	p1Road := pos.RoadPieces(tak.P1)
	p2Road := pos.RoadPieces(tak.P2)
	adjDiff := (roadAdjacency(p1Road) - roadAdjacency(p2Road)) * roadAdjWeight
	lineDiff := (roadLines(p1Road) - roadLines(p2Road)) * roadLineWeight

	supportCaptiveDiff := supportCaptiveTerm(pos, tak.P1) - supportCaptiveTerm(pos, tak.P2)

	total := flatDiff + handDiff + capHandDiff + positionDiff + adjDiff + lineDiff + supportCaptiveDiff
	return total*pos.Stm.Sign() + tempoBonus
}

// roadAdjacency counts pairs of orthogonally touching road-eligible
// squares for one player, following eval.rs's adj_horz/adj_vert terms.
func roadAdjacency(road bitset.Board) int {
	adjHorz := road.And(road.Shift(bitset.East))
	adjVert := road.And(road.Shift(bitset.North))
	return adjHorz.Count() + adjVert.Count()
}

// roadLines counts runs of three consecutive road-eligible squares in a
// row or column, the "line" term in eval.rs built atop adj_horz/adj_vert.
func roadLines(road bitset.Board) int {
	adjHorz := road.And(road.Shift(bitset.East))
	adjVert := road.And(road.Shift(bitset.North))
	lineHorz := adjHorz.And(adjHorz.Shift(bitset.East))
	lineVert := adjVert.And(adjVert.Shift(bitset.North))
	return lineHorz.Count() + lineVert.Count()
}

// supportCaptiveTerm values each of player's stacks by what sits beneath
// its top piece: an enemy piece directly under the top is a "supporter"
// (the owner stands to gain it on a later spread/smash), a friendly piece
// beneath the top is a "captive" (dead weight the owner must eventually
// move to free). Only the nearest maxCaptiveDepth pieces below the top are
// counted, since a deeply buried piece rarely affects the position soon.
func supportCaptiveTerm(pos tak.Position, player tak.Player) int {
	total := 0
	pos.Owner[player].ForEach(func(sqi int) {
		st := pos.Stacks[sqi]
		bonus, malus := topTermWeights(st.Top)

		depth := int(st.Height) - 1
		if depth > maxCaptiveDepth {
			depth = maxCaptiveDepth
		}
		for d := 1; d <= depth; d++ {
			owner := st.OwnerAt(int(st.Height) - 1 - d)
			if owner == player {
				total += malus
			} else {
				total += bonus
			}
		}
	})
	return total
}

func topTermWeights(top tak.PieceType) (supportBonus, captiveMalus int) {
	switch top {
	case tak.Wall:
		return supportWallBonus, captiveWallMalus
	case tak.Capstone:
		return supportCapstoneBonus, captiveCapstoneMalus
	default:
		return supportFlatBonus, captiveFlatMalus
	}
}

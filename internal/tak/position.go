package tak

import (
	"fmt"

	"github.com/ciekce-go/tak6tei/internal/bitset"
)

// Stack is the contents of one square, bottom to top. Owners packs one bit
// per height (bit i set means player P2 owns the piece at height i, clear
// means P1) so a stack of all 62 pieces — the theoretical maximum on a 6x6
// board — still fits in a single uint64, the same "struct of small fixed-width
// fields, no heap slice" discipline the teacher's Position keeps for its
// piece bitboards.
type Stack struct {
	Owners uint64
	Height uint8
	Top    PieceType
}

func (s Stack) OwnerAt(height int) Player {
	return Player((s.Owners >> uint(height)) & 1)
}

// Position is an immutable value: ApplyMove returns a new Position rather
// than mutating the receiver (the place/spread helpers mutate only the copy
// ApplyMove works on), so the searcher never needs an undo stack — only a
// stack of saved Positions, which a value type makes trivially cheap.
type Position struct {
	Stacks [36]Stack

	// Owner bitboards: every square whose top piece belongs to the player.
	Owner [2]bitset.Board
	Flats bitset.Board // squares whose top piece is a flat
	Walls bitset.Board // squares whose top piece is a wall
	Caps  bitset.Board // squares whose top piece is a capstone

	FlatsInHand [2]uint8
	CapsInHand  [2]uint8

	Stm Player
	Ply int

	Hash uint64
}

// StartPos returns the empty 6x6 starting position.
func StartPos() Position {
	var pos Position
	pos.FlatsInHand = [2]uint8{StartingFlats, StartingFlats}
	pos.CapsInHand = [2]uint8{StartingCapstones, StartingCapstones}
	pos.Stm = P1
	pos.Ply = 0
	pos.Hash = zobristSide // ply 0's side-to-move contribution; XORed off once stm flips
	return pos
}

func (p Position) IsEmpty(sq Square) bool { return p.Stacks[sq].Height == 0 }

// RoadPieces returns the squares carrying a road-eligible (flat or
// capstone) top piece owned by player.
func (p Position) RoadPieces(player Player) bitset.Board {
	return p.Owner[player] & (p.Flats | p.Caps)
}

// clone returns a deep-enough copy for copy-on-write mutation: Stacks is an
// array (value-copied already), everything else is a scalar or small array.
func (p Position) clone() Position { return p }

func (p *Position) setTop(sq Square, pc Piece) {
	old := p.Stacks[sq]
	if old.Height > 0 {
		p.Hash ^= zobristTop[old.OwnerAt(int(old.Height)-1)][old.Top][sq]
		p.clearTopBitboards(sq, old)
	}
	p.Stacks[sq].Top = pc.Type()
	p.Hash ^= zobristTop[pc.Player()][pc.Type()][sq]
	p.setTopBitboards(sq, pc)
}

func (p *Position) clearTopBitboards(sq Square, old Stack) {
	owner := old.OwnerAt(int(old.Height) - 1)
	p.Owner[owner] = p.Owner[owner].Without(int(sq))
	switch old.Top {
	case Flat:
		p.Flats = p.Flats.Without(int(sq))
	case Wall:
		p.Walls = p.Walls.Without(int(sq))
	case Capstone:
		p.Caps = p.Caps.Without(int(sq))
	}
}

func (p *Position) setTopBitboards(sq Square, pc Piece) {
	p.Owner[pc.Player()] = p.Owner[pc.Player()].With(int(sq))
	switch pc.Type() {
	case Flat:
		p.Flats = p.Flats.With(int(sq))
	case Wall:
		p.Walls = p.Walls.With(int(sq))
	case Capstone:
		p.Caps = p.Caps.With(int(sq))
	}
}

// place drops a single new reserve piece onto an empty square.
func (p *Position) place(sq Square, pt PieceType) {
	st := &p.Stacks[sq]
	st.Owners = uint64(p.Stm) // bit 0 = height 0's owner
	st.Height = 1
	st.Top = pt
	p.Hash ^= zobristOwner[p.Stm][sq][0]
	p.Hash ^= zobristTop[p.Stm][pt][sq]
	p.setTopBitboards(sq, NewPiece(pt, p.Stm))

	if pt == Capstone {
		p.CapsInHand[p.Stm]--
	} else {
		p.FlatsInHand[p.Stm]--
	}
}

// IsLegalPlace reports whether placing pt for the side to move on sq is
// legal: the square must be empty, walls/capstones aren't playable during
// either player's very first ply (the opening-swap rule — both players'
// first placements are flats of the *opponent's* color, handled by the
// caller choosing the placed piece's owner), and the mover must still have
// that reserve.
func (p Position) IsLegalPlace(sq Square, pt PieceType) bool {
	if !p.IsEmpty(sq) {
		return false
	}
	if p.Ply < 2 && pt != Flat {
		return false
	}
	if pt == Capstone {
		return p.CapsInHand[p.Stm] > 0
	}
	return p.FlatsInHand[p.Stm] > 0
}

// placementOwner is the player whose reserve is depleted and whose color
// the new piece takes — during the opening swap (ply 0 and 1) this is the
// opponent of the side to move.
func (p Position) placementOwner() Player {
	if p.Ply < 2 {
		return p.Stm.Flip()
	}
	return p.Stm
}

// ApplyMove returns the position reached after mv, without mutating p. The
// caller is responsible for having checked legality (via the move
// generator) first; ApplyMove itself does not re-validate.
func (p Position) ApplyMove(mv Move) Position {
	next := p.clone()

	switch mv.Kind {
	case Place:
		owner := p.placementOwner()
		savedStm := next.Stm
		next.Stm = owner
		next.place(mv.Sq, mv.Piece)
		next.Stm = savedStm
	case Spread:
		next.spread(mv)
	}

	next.Hash ^= zobristSide
	next.Stm = next.Stm.Flip()
	next.Ply++
	return next
}

// spread lifts the top CarryCount pieces from mv.Sq and drops them, in
// order, onto the squares stepped through in mv.Dir. A capstone landing
// alone atop a wall flattens it to a flat first (a smash); any other
// placement atop a wall or capstone is illegal and must have been rejected
// by the move generator.
func (p *Position) spread(mv Move) {
	src := p.Stacks[mv.Sq]
	carry := mv.CarryCount()

	// Remove the carried pieces' zobrist contribution and bitboard bits at
	// the source; the remaining bottom of the stack becomes the new top
	// (if any pieces remain).
	for h := int(src.Height) - carry; h < int(src.Height); h++ {
		p.Hash ^= zobristOwner[src.OwnerAt(h)][mv.Sq][h]
	}
	p.Hash ^= zobristTop[src.OwnerAt(int(src.Height)-1)][src.Top][mv.Sq]
	p.clearTopBitboards(mv.Sq, src)

	remaining := int(src.Height) - carry
	p.Stacks[mv.Sq].Height = uint8(remaining)
	if remaining > 0 {
		p.Stacks[mv.Sq].Owners = src.Owners & ((1 << uint(remaining)) - 1)
		newTop := src.OwnerAt(remaining - 1)
		// The bottom-of-stack's piece type must be recovered from however
		// the stack was built; Flat is always correct here because only a
		// flat can ever sit beneath another piece (walls/capstones are
		// always the top of whatever stack they're in when stationary).
		p.Stacks[mv.Sq].Top = Flat
		p.Hash ^= zobristTop[newTop][Flat][mv.Sq]
		p.setTopBitboards(mv.Sq, NewPiece(Flat, newTop))
	}

	sq := mv.Sq
	carriedOwners := (src.Owners >> uint(remaining)) & ((1 << uint(carry)) - 1)
	idx := 0 // index into carriedOwners, bottom of the carried sub-stack first
	for i := 0; i < mv.NDrops; i++ {
		sq = Square(int(sq) + directionOffset(mv.Dir))
		count := int(mv.Drops[i])

		dstOld := p.Stacks[sq]
		if dstOld.Height > 0 {
			if dstOld.Top == Wall && i == mv.NDrops-1 && count == 1 {
				// Smash: a lone capstone flattens the wall beneath it.
				topOwner := dstOld.OwnerAt(int(dstOld.Height) - 1)
				p.Hash ^= zobristTop[topOwner][Wall][sq]
				p.clearTopBitboards(sq, dstOld)
			} else if dstOld.Height > 0 {
				p.Hash ^= zobristTop[dstOld.OwnerAt(int(dstOld.Height)-1)][dstOld.Top][sq]
				p.clearTopBitboards(sq, dstOld)
			}
		}

		base := int(p.Stacks[sq].Height)
		for k := 0; k < count; k++ {
			owner := Player((carriedOwners >> uint(idx)) & 1)
			p.Hash ^= zobristOwner[owner][sq][base+k]
			if owner == P2 {
				p.Stacks[sq].Owners |= 1 << uint(base+k)
			} else {
				p.Stacks[sq].Owners &^= 1 << uint(base+k)
			}
			idx++
		}
		p.Stacks[sq].Height = uint8(base + count)

		lastOwner := Player((carriedOwners >> uint(idx-1)) & 1)
		var lastType PieceType
		if i == mv.NDrops-1 {
			lastType = p.carriedTopType(src)
		} else {
			lastType = Flat
		}
		p.Stacks[sq].Top = lastType
		p.Hash ^= zobristTop[lastOwner][lastType][sq]
		p.setTopBitboards(sq, NewPiece(lastType, lastOwner))
	}
}

// carriedTopType is the piece type that was on top of the source stack
// before the spread, which travels to the far end of the drop sequence.
func (p Position) carriedTopType(src Stack) PieceType { return src.Top }

func directionOffset(dir bitset.Direction) int {
	switch dir {
	case bitset.North:
		return bitset.Size
	case bitset.South:
		return -bitset.Size
	case bitset.East:
		return 1
	default:
		return -1
	}
}

// Correction-history keys: narrow summaries of shape used as indices into
// the five sided correction tables, following original_source/correction.rs.
func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (p Position) RoadKey() uint64 {
	k := uint64(0)
	p.RoadPieces(P1).ForEach(func(sq int) { k ^= zobristRoad[P1][sq] })
	p.RoadPieces(P2).ForEach(func(sq int) { k ^= zobristRoad[P2][sq] })
	return k
}

func (p Position) TopKey() uint64 {
	k := uint64(0)
	for sq := 0; sq < 36; sq++ {
		st := p.Stacks[sq]
		if st.Height == 0 {
			continue
		}
		k ^= zobristTop[st.OwnerAt(int(st.Height)-1)][st.Top][sq]
	}
	return k
}

func (p Position) CapKey() uint64 {
	k := uint64(0)
	p.Caps.ForEach(func(sq int) {
		k ^= zobristCapKey[boolIdx(p.Owner[P2].Has(sq))][sq]
	})
	return k
}

func (p Position) WallKey() uint64 {
	k := uint64(0)
	p.Walls.ForEach(func(sq int) {
		k ^= zobristWallKey[boolIdx(p.Owner[P2].Has(sq))][sq]
	})
	return k
}

func (p Position) BlockerKey() uint64 {
	k := uint64(0)
	(p.Walls | p.Caps).ForEach(func(sq int) {
		k ^= zobristBlocker[boolIdx(p.Owner[P2].Has(sq))][sq]
	})
	return k
}

func (p Position) Validate() error {
	if int(p.FlatsInHand[P1]) < 0 || int(p.FlatsInHand[P2]) < 0 {
		return fmt.Errorf("tak: negative flat reserve")
	}
	return nil
}

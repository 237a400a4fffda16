// Package tak implements the 6x6 Tak data model: players, pieces, squares,
// moves, positions, move generation, road detection, and the TPS/PTN text
// formats, following the struct-of-bitboards layout the teacher repository
// uses for its chess position.
package tak

import "fmt"

// Player identifies one of the two sides.
type Player uint8

const (
	P1 Player = iota
	P2
)

// Flip returns the other player.
func (p Player) Flip() Player { return p ^ 1 }

func (p Player) String() string {
	if p == P1 {
		return "1"
	}
	return "2"
}

// Sign returns +1 for P1 and -1 for P2, used by the evaluator to negate a
// P1-relative score into a side-to-move-relative one.
func (p Player) Sign() int {
	if p == P1 {
		return 1
	}
	return -1
}

// PieceType is the shape of a piece on top of or within a stack.
type PieceType uint8

const (
	Flat PieceType = iota
	Wall
	Capstone
)

func (pt PieceType) String() string {
	switch pt {
	case Wall:
		return "S"
	case Capstone:
		return "C"
	default:
		return ""
	}
}

// Piece packs a PieceType and a Player into a single small value, mirroring
// the teacher's Piece encoding (type plus a color bit).
type Piece uint8

func NewPiece(pt PieceType, p Player) Piece {
	return Piece(uint8(pt)<<1 | uint8(p))
}

func (pc Piece) Type() PieceType { return PieceType(pc >> 1) }
func (pc Piece) Player() Player  { return Player(pc & 1) }

func (pc Piece) String() string {
	s := pc.Type().String()
	if pc.Player() == P2 && s == "" {
		return ""
	}
	return s
}

// Square is a board index 0..35. File 0..5 is 'a'..'f', rank 0..5 is the
// row printed '1'..'6' in TPS (rank 0 is the bottom row).
type Square uint8

func NewSquare(file, rank int) Square { return Square(rank*6 + file) }

func (s Square) File() int { return int(s) % 6 }
func (s Square) Rank() int { return int(s) / 6 }

func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+s.File(), s.Rank()+1)
}

// ParseSquare parses an algebraic square such as "c4".
func ParseSquare(str string) (Square, error) {
	if len(str) < 2 {
		return 0, fmt.Errorf("tak: invalid square %q", str)
	}
	file := int(str[0] - 'a')
	if file < 0 || file >= 6 {
		return 0, fmt.Errorf("tak: invalid square file in %q", str)
	}
	rank := 0
	if _, err := fmt.Sscanf(str[1:], "%d", &rank); err != nil {
		return 0, fmt.Errorf("tak: invalid square rank in %q: %w", str, err)
	}
	rank--
	if rank < 0 || rank >= 6 {
		return 0, fmt.Errorf("tak: invalid square rank in %q", str)
	}
	return NewSquare(file, rank), nil
}

func (s Square) IsValid() bool { return s < 36 }

// StartingReserves is the per-player flat/capstone allotment for 6x6 Tak.
const (
	StartingFlats     = 30
	StartingCapstones = 1
)

// Komi is the whole-flat bonus added to P2's flat count when comparing flat
// counts at a flat-count terminal position. The TEI front end advertises
// this as the fixed HalfKomi option (HalfKomi = 2*Komi).
const Komi = 2

package tak

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ciekce-go/tak6tei/internal/bitset"
)

// Kind distinguishes a placement from a spread.
type Kind uint8

const (
	Place Kind = iota
	Spread
)

// MaxCarry is the largest number of pieces any spread may lift: the board's
// edge length on a 6x6 board.
const MaxCarry = bitset.Size

// Move is a single ply: either placing a reserve piece on an empty square,
// or picking up the top of a stack and dropping pieces, one or more per
// square, across a straight line of adjacent squares.
//
// The teacher packs a chess move into a 16-bit integer because a chess move
// only ever needs a from/to square plus a couple of flag bits. A Tak spread
// additionally carries a variable-length drop pattern, so this type favors
// an explicit struct over bit-packing — the drop counts are already no more
// than 6 bytes and this keeps move construction and inspection readable.
type Move struct {
	Kind  Kind
	Sq    Square    // destination square for Place, source square for Spread
	Piece PieceType // piece placed, only meaningful for Place
	Dir   bitset.Direction
	Drops [MaxCarry]uint8 // per-square drop counts, only the first NDrops entries are valid
	NDrops int
}

// NewPlace builds a placement move.
func NewPlace(sq Square, pt PieceType) Move {
	return Move{Kind: Place, Sq: sq, Piece: pt}
}

// NewSpread builds a spread move. drops is the ordered list of how many
// pieces are left on each square visited, starting with the first square
// stepped onto (never the source square itself).
func NewSpread(src Square, dir bitset.Direction, drops []uint8) Move {
	m := Move{Kind: Spread, Sq: src, Dir: dir, NDrops: len(drops)}
	copy(m.Drops[:], drops)
	return m
}

// CarryCount is the total number of pieces picked up by a spread.
func (m Move) CarryCount() int {
	total := 0
	for i := 0; i < m.NDrops; i++ {
		total += int(m.Drops[i])
	}
	return total
}

// String renders a move in PTN.
func (m Move) String() string {
	if m.Kind == Place {
		prefix := m.Piece.String()
		return prefix + m.Sq.String()
	}

	var b strings.Builder
	carry := m.CarryCount()
	if carry > 1 || m.NDrops > 1 {
		b.WriteString(strconv.Itoa(carry))
	}
	b.WriteString(m.Sq.String())
	switch m.Dir {
	case bitset.North:
		b.WriteByte('+')
	case bitset.South:
		b.WriteByte('-')
	case bitset.East:
		b.WriteByte('>')
	case bitset.West:
		b.WriteByte('<')
	}
	if m.NDrops > 1 {
		for i := 0; i < m.NDrops; i++ {
			b.WriteString(strconv.Itoa(int(m.Drops[i])))
		}
	}
	return b.String()
}

// ParseMove parses a PTN move string such as "Sc4", "Cd3", "a1", "3c2>21",
// or "c2+" (bare single-piece spread, no drop counts needed).
func ParseMove(str string) (Move, error) {
	if str == "" {
		return Move{}, fmt.Errorf("tak: empty move")
	}

	rest := str
	carry := 1
	if rest[0] >= '1' && rest[0] <= '9' {
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		var err error
		carry, err = strconv.Atoi(rest[:n])
		if err != nil {
			return Move{}, fmt.Errorf("tak: bad carry count in %q: %w", str, err)
		}
		rest = rest[n:]
	}

	pt := Flat
	switch {
	case strings.HasPrefix(rest, "S"):
		pt, rest = Wall, rest[1:]
	case strings.HasPrefix(rest, "C"):
		pt, rest = Capstone, rest[1:]
	}

	if len(rest) < 2 {
		return Move{}, fmt.Errorf("tak: malformed move %q", str)
	}
	sq, err := ParseSquare(rest[:2])
	if err != nil {
		return Move{}, fmt.Errorf("tak: malformed move %q: %w", str, err)
	}
	rest = rest[2:]

	if rest == "" {
		if carry != 1 {
			return Move{}, fmt.Errorf("tak: placement %q cannot carry a count", str)
		}
		return NewPlace(sq, pt), nil
	}

	if pt != Flat {
		return Move{}, fmt.Errorf("tak: spread %q cannot specify a piece letter", str)
	}

	var dir bitset.Direction
	switch rest[0] {
	case '+':
		dir = bitset.North
	case '-':
		dir = bitset.South
	case '>':
		dir = bitset.East
	case '<':
		dir = bitset.West
	default:
		return Move{}, fmt.Errorf("tak: unknown spread direction in %q", str)
	}
	rest = rest[1:]

	if rest == "" {
		return NewSpread(sq, dir, []uint8{uint8(carry)}), nil
	}

	drops := make([]uint8, 0, len(rest))
	sum := 0
	for _, c := range rest {
		if c < '1' || c > '9' {
			return Move{}, fmt.Errorf("tak: bad drop digit in %q", str)
		}
		d := uint8(c - '0')
		drops = append(drops, d)
		sum += int(d)
	}
	if sum != carry {
		return Move{}, fmt.Errorf("tak: drop counts in %q sum to %d, want %d", str, sum, carry)
	}
	return NewSpread(sq, dir, drops), nil
}

// MoveList is a fixed-capacity buffer of candidate moves, avoiding the
// per-node heap allocation a slice append would otherwise cost — the same
// reason the teacher keeps its MoveList as a fixed array.
const MaxMoves = 512

type MoveList struct {
	moves [MaxMoves]Move
	n     int
}

func (l *MoveList) Add(m Move) {
	if l.n < MaxMoves {
		l.moves[l.n] = m
		l.n++
	}
}

func (l *MoveList) Len() int       { return l.n }
func (l *MoveList) Get(i int) Move { return l.moves[i] }
func (l *MoveList) Set(i int, m Move) { l.moves[i] = m }
func (l *MoveList) Swap(i, j int) {
	l.moves[i], l.moves[j] = l.moves[j], l.moves[i]
}
func (l *MoveList) Clear() { l.n = 0 }
func (l *MoveList) Slice() []Move { return l.moves[:l.n] }

func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.n; i++ {
		if l.moves[i] == m {
			return true
		}
	}
	return false
}

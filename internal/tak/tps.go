package tak

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ciekce-go/tak6tei/internal/bitset"
)

// ToTPS serializes p in Tak Positional System notation: ranks from the top
// of the board down, squares within a rank separated by commas, empty runs
// collapsed as "x" or "xN", stacks written
// bottom-to-top as a digit per piece (1 for P1, 2 for P2) with a trailing
// S or C if the top piece is a wall or capstone, then the side to move and
// the move number.
func (p Position) ToTPS() string {
	var b strings.Builder
	for rank := bitset.Size - 1; rank >= 0; rank-- {
		if rank != bitset.Size-1 {
			b.WriteByte('/')
		}
		emptyRun := 0
		cells := 0
		sep := func() {
			if cells > 0 {
				b.WriteByte(',')
			}
			cells++
		}
		flushEmpty := func() {
			if emptyRun > 0 {
				sep()
				b.WriteByte('x')
				if emptyRun > 1 {
					b.WriteString(strconv.Itoa(emptyRun))
				}
				emptyRun = 0
			}
		}
		for file := 0; file < bitset.Size; file++ {
			sq := Square(rank*bitset.Size + file)
			st := p.Stacks[sq]
			if st.Height == 0 {
				emptyRun++
				continue
			}
			flushEmpty()
			sep()
			for h := 0; h < int(st.Height); h++ {
				if st.OwnerAt(h) == P1 {
					b.WriteByte('1')
				} else {
					b.WriteByte('2')
				}
			}
			switch st.Top {
			case Wall:
				b.WriteByte('S')
			case Capstone:
				b.WriteByte('C')
			}
		}
		flushEmpty()
	}

	moveNumber := p.Ply/2 + 1
	fmt.Fprintf(&b, " %s %d", p.Stm.String(), moveNumber)
	return b.String()
}

// ParseTPS parses a TPS string (without any trailing "moves ..." suffix)
// into a Position.
func ParseTPS(tps string) (Position, error) {
	fields := strings.Fields(tps)
	if len(fields) != 3 {
		return Position{}, fmt.Errorf("tak: malformed TPS %q", tps)
	}
	boardPart, stmPart, moveNoPart := fields[0], fields[1], fields[2]

	ranks := strings.Split(boardPart, "/")
	if len(ranks) != bitset.Size {
		return Position{}, fmt.Errorf("tak: TPS %q has %d ranks, want %d", tps, len(ranks), bitset.Size)
	}

	var pos Position
	pos.FlatsInHand = [2]uint8{StartingFlats, StartingFlats}
	pos.CapsInHand = [2]uint8{StartingCapstones, StartingCapstones}

	for i, rankStr := range ranks {
		rank := bitset.Size - 1 - i
		file := 0
		cells := splitRank(rankStr)
		for _, cell := range cells {
			if file >= bitset.Size {
				return Position{}, fmt.Errorf("tak: TPS %q rank %d overflows the board", tps, rank+1)
			}
			if cell.empty > 0 {
				file += cell.empty
				continue
			}
			sq := NewSquare(file, rank)
			if err := placeStackFromTPS(&pos, sq, cell.stack); err != nil {
				return Position{}, fmt.Errorf("tak: TPS %q: %w", tps, err)
			}
			file++
		}
	}

	switch stmPart {
	case "1":
		pos.Stm = P1
	case "2":
		pos.Stm = P2
	default:
		return Position{}, fmt.Errorf("tak: invalid side to move %q in TPS", stmPart)
	}

	moveNo, err := strconv.Atoi(moveNoPart)
	if err != nil || moveNo < 1 {
		return Position{}, fmt.Errorf("tak: invalid move number %q in TPS", moveNoPart)
	}
	pos.Ply = (moveNo - 1) * 2
	if pos.Stm == P2 {
		pos.Ply++
	}

	pos.recomputeHash()
	return pos, nil
}

type tpsCell struct {
	empty int
	stack string
}

func splitRank(rankStr string) []tpsCell {
	var cells []tpsCell
	i := 0
	for i < len(rankStr) {
		if rankStr[i] == 'x' {
			j := i + 1
			n := 0
			for j < len(rankStr) && rankStr[j] >= '0' && rankStr[j] <= '9' {
				n = n*10 + int(rankStr[j]-'0')
				j++
			}
			if n == 0 {
				n = 1
			}
			cells = append(cells, tpsCell{empty: n})
			i = j
			if i < len(rankStr) && rankStr[i] == ',' {
				i++
			}
			continue
		}
		j := i
		for j < len(rankStr) && rankStr[j] != ',' {
			j++
		}
		cells = append(cells, tpsCell{stack: rankStr[i:j]})
		i = j
		if i < len(rankStr) && rankStr[i] == ',' {
			i++
		}
	}
	return cells
}

func placeStackFromTPS(pos *Position, sq Square, stack string) error {
	if stack == "" {
		return nil
	}
	top := Flat
	digits := stack
	switch stack[len(stack)-1] {
	case 'S':
		top = Wall
		digits = stack[:len(stack)-1]
	case 'C':
		top = Capstone
		digits = stack[:len(stack)-1]
	}
	if digits == "" {
		return fmt.Errorf("empty stack at %s", sq)
	}

	var owners uint64
	for h, c := range digits {
		var pl Player
		switch c {
		case '1':
			pl = P1
		case '2':
			pl = P2
		default:
			return fmt.Errorf("invalid stack digit %q at %s", c, sq)
		}
		owners |= uint64(pl) << uint(h)
	}

	height := len(digits)
	pos.Stacks[sq] = Stack{Owners: owners, Height: uint8(height), Top: top}

	topOwner := Player((owners >> uint(height-1)) & 1)
	pos.setTopBitboards(sq, NewPiece(top, topOwner))

	// Account for reserves consumed by this stack: every piece below the
	// top is necessarily a flat (walls/capstones are always a stack's top
	// when stationary), the top is `top`.
	if top == Capstone {
		pos.CapsInHand[topOwner]--
	} else {
		pos.FlatsInHand[topOwner]--
	}
	for h := 0; h < height-1; h++ {
		owner := Player((owners >> uint(h)) & 1)
		pos.FlatsInHand[owner]--
	}

	return nil
}

// recomputeHash rebuilds the Zobrist hash from scratch; ParseTPS builds a
// position by direct field assignment rather than through place/spread, so
// it computes the hash once at the end instead of incrementally.
func (p *Position) recomputeHash() {
	var h uint64
	for sq := 0; sq < 36; sq++ {
		st := p.Stacks[sq]
		for height := 0; height < int(st.Height); height++ {
			h ^= zobristOwner[st.OwnerAt(height)][sq][height]
		}
		if st.Height > 0 {
			h ^= zobristTop[st.OwnerAt(int(st.Height)-1)][st.Top][sq]
		}
	}
	if p.Stm == P1 {
		h ^= zobristSide // same convention as StartPos: the key is present while P1 is to move
	}
	p.Hash = h
}

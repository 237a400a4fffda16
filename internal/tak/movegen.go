package tak

import "github.com/ciekce-go/tak6tei/internal/bitset"

var directions = [4]bitset.Direction{bitset.North, bitset.South, bitset.East, bitset.West}

// GenerateMoves fills list with every pseudo-legal move for the side to
// move: every empty-square placement the mover's reserves allow, and every
// spread of every friendly-topped stack in every direction, across every
// legal drop pattern.
func GenerateMoves(list *MoveList, pos Position) {
	generatePlacements(list, pos)
	generateSpreads(list, pos)
}

func generatePlacements(list *MoveList, pos Position) {
	openingSwap := pos.Ply < 2
	for sq := 0; sq < 36; sq++ {
		if !pos.IsEmpty(Square(sq)) {
			continue
		}
		if pos.FlatsInHand[pos.placementOwnerIfEmpty()] > 0 {
			list.Add(NewPlace(Square(sq), Flat))
		}
		if openingSwap {
			continue // walls and capstones are illegal during the opening swap
		}
		if pos.CapsInHand[pos.Stm] > 0 {
			list.Add(NewPlace(Square(sq), Capstone))
		}
		if pos.FlatsInHand[pos.Stm] > 0 {
			list.Add(NewPlace(Square(sq), Wall))
		}
	}
}

// placementOwnerIfEmpty mirrors placementOwner but is safe to call without
// knowing whether a flat reserve check should use the mover's or the
// opponent's count during the opening swap.
func (p Position) placementOwnerIfEmpty() Player { return p.placementOwner() }

func generateSpreads(list *MoveList, pos Position) {
	if pos.Ply < 2 {
		return // spreading requires a stack, and no stack exists during the opening swap
	}
	mine := pos.Owner[pos.Stm]
	mine.ForEach(func(sqi int) {
		sq := Square(sqi)
		st := pos.Stacks[sq]
		maxCarry := int(st.Height)
		if maxCarry > MaxCarry {
			maxCarry = MaxCarry
		}
		for _, dir := range directions {
			path := walkPath(pos, sq, dir, maxCarry)
			if len(path) == 0 {
				continue
			}
			for carry := 1; carry <= maxCarry; carry++ {
				maxK := carry
				if len(path) < maxK {
					maxK = len(path)
				}
				for k := 1; k <= maxK; k++ {
					for _, drops := range compositions(carry, k) {
						if !validDropPath(pos, path[:k], drops, st.Top) {
							continue
						}
						list.Add(NewSpread(sq, dir, drops))
					}
				}
			}
		}
	})
}

// walkPath returns the squares reachable from sq heading dir, stopping at
// the board edge, at the first capstone (which can never be passed or
// landed on), or just after the first wall (which can only ever be the
// final square of a path, and only for a capstone-led smash).
func walkPath(pos Position, sq Square, dir bitset.Direction, maxLen int) []Square {
	path := make([]Square, 0, maxLen)
	cur := sq
	for len(path) < maxLen {
		if atEdge(cur, dir) {
			break
		}
		cur = Square(int(cur) + directionOffset(dir))
		top := pos.Stacks[cur]
		if top.Height > 0 && top.Top == Capstone {
			break
		}
		path = append(path, cur)
		if top.Height > 0 && top.Top == Wall {
			break
		}
	}
	return path
}

func atEdge(sq Square, dir bitset.Direction) bool {
	switch dir {
	case bitset.North:
		return sq.Rank() == bitset.Size-1
	case bitset.South:
		return sq.Rank() == 0
	case bitset.East:
		return sq.File() == bitset.Size-1
	default:
		return sq.File() == 0
	}
}

// validDropPath checks the one rule a composition itself can violate: a
// wall may only receive pieces as the very last square of the spread, and
// only a single piece, and only when the spread is capstone-led.
func validDropPath(pos Position, path []Square, drops []uint8, srcTop PieceType) bool {
	last := len(path) - 1
	top := pos.Stacks[path[last]]
	if top.Height > 0 && top.Top == Wall {
		return srcTop == Capstone && drops[last] == 1
	}
	return true
}

// compositions returns every way to write total as an ordered sum of
// exactly k positive integers.
func compositions(total, k int) [][]uint8 {
	if k <= 0 || total < k {
		return nil
	}
	if k == 1 {
		return [][]uint8{{uint8(total)}}
	}
	var out [][]uint8
	for first := 1; first <= total-(k-1); first++ {
		for _, rest := range compositions(total-first, k-1) {
			comp := make([]uint8, 0, k)
			comp = append(comp, uint8(first))
			comp = append(comp, rest...)
			out = append(out, comp)
		}
	}
	return out
}

// IsLegal reports whether mv is legal in pos. Both placements and spreads
// are checked directly, without regenerating the full move list, so the
// search hot path (TT-move and killer validation) can call this cheaply on
// every node.
func (p Position) IsLegal(mv Move) bool {
	if mv.Kind == Place {
		return p.IsLegalPlace(mv.Sq, mv.Piece)
	}
	return p.isLegalSpread(mv)
}

// isLegalSpread checks a spread directly against the square it starts from
// and the path it walks, reusing walkPath/validDropPath (the same per-path
// checks GenerateMoves applies) instead of regenerating every move from sq.
func (p Position) isLegalSpread(mv Move) bool {
	if p.Ply < 2 {
		return false // no stack exists yet during the opening swap
	}
	if !p.Owner[p.Stm].Has(int(mv.Sq)) {
		return false
	}

	st := p.Stacks[mv.Sq]
	carry := mv.CarryCount()
	if carry < 1 || carry > int(st.Height) || carry > MaxCarry {
		return false
	}
	if mv.NDrops < 1 || mv.NDrops > carry {
		return false
	}
	for i := 0; i < mv.NDrops; i++ {
		if mv.Drops[i] < 1 {
			return false
		}
	}

	path := walkPath(p, mv.Sq, mv.Dir, mv.NDrops)
	if len(path) != mv.NDrops {
		return false // the board edge, a capstone, or a non-final wall cut the path short
	}
	return validDropPath(p, path, mv.Drops[:mv.NDrops], st.Top)
}

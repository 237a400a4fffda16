package tak

// Zobrist hashing follows the teacher's scheme: a fixed-seed xorshift64*
// generator fills static key tables once at package init, and Position
// maintains an incrementally-updated hash plus a handful of narrower
// "sub-hashes" the correction-history tables key off of.

type prng struct{ state uint64 }

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

var (
	// zobristTop[player][pieceType][square]: the top-of-stack piece.
	zobristTop [2][3][36]uint64
	// zobristOwner[player][square][height]: whether player owns the piece
	// at the given height within the square's stack (height 0 = bottom).
	zobristOwner [2][36][64]uint64
	zobristSide  uint64

	// Narrower keys used only by correction history, one per concern so a
	// bonus learned about (say) blocker shape doesn't bleed into the key
	// used for top-of-stack shape.
	zobristBlocker [2][36]uint64 // wall/capstone occupancy per square
	zobristRoad    [2][36]uint64 // road-color occupancy per square
	zobristCapKey  [2][36]uint64 // capstone location
	zobristWallKey [2][36]uint64 // wall location
)

func init() {
	p := prng{state: 0x98F107A2BEEF1234}
	for pl := 0; pl < 2; pl++ {
		for pt := 0; pt < 3; pt++ {
			for sq := 0; sq < 36; sq++ {
				zobristTop[pl][pt][sq] = p.next()
			}
		}
		for sq := 0; sq < 36; sq++ {
			for h := 0; h < 64; h++ {
				zobristOwner[pl][sq][h] = p.next()
			}
			zobristBlocker[pl][sq] = p.next()
			zobristRoad[pl][sq] = p.next()
			zobristCapKey[pl][sq] = p.next()
			zobristWallKey[pl][sq] = p.next()
		}
	}
	zobristSide = p.next()
}

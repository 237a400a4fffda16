package tak

import "github.com/ciekce-go/tak6tei/internal/bitset"

// HasRoad reports whether roadOcc — the set of squares carrying a
// road-eligible (flat or capstone) piece for one player — contains an
// unbroken path connecting two opposite edges of the board.
//
// original_source/road.rs computes this with an AVX2 kernel that grows a
// frontier from both edges of each axis simultaneously; its scalar
// fallback is an unimplemented stub. This is the scalar replacement: seed
// a frontier at one edge of each axis and flood-fill through roadOcc one
// shift at a time until either the opposite edge is reached (a road) or
// the frontier stops growing (no road on that axis), then try the other
// axis.
func HasRoad(roadOcc bitset.Board) bool {
	return hasRoadAxis(roadOcc, bitset.North, bitset.South) ||
		hasRoadAxis(roadOcc, bitset.East, bitset.West)
}

func hasRoadAxis(roadOcc bitset.Board, from, to bitset.Direction) bool {
	frontier := bitset.Edge(from) & roadOcc
	for frontier.Any() {
		if (frontier & bitset.Edge(to)).Any() {
			return true
		}
		grown := frontier | dilateOnce(frontier, roadOcc)
		if grown == frontier {
			return false
		}
		frontier = grown
	}
	return false
}

// dilateOnce grows frontier by one step in all four directions, restricted
// to roadOcc.
func dilateOnce(frontier, roadOcc bitset.Board) bitset.Board {
	grown := frontier.Shift(bitset.North) |
		frontier.Shift(bitset.South) |
		frontier.Shift(bitset.East) |
		frontier.Shift(bitset.West)
	return grown & roadOcc
}

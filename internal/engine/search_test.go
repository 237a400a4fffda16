package engine

import (
	"testing"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

func TestSearcherFindsImmediateRoadWin(t *testing.T) {
	// Build a position one move from a full bottom rank for P1. "a1" is
	// played at ply 1 so the opening swap hands it to P1 rather than P2;
	// every other bottom-rank square is placed on one of P1's later,
	// non-swapped turns, and the top-rank fillers keep P2 busy without
	// touching the road.
	pos := tak.StartPos()
	moves := []string{"f6", "a1", "b1", "c6", "c1", "d6", "d1", "e6", "e1", "b6"}
	for _, str := range moves {
		mv, err := tak.ParseMove(str)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", str, err)
		}
		if !pos.IsLegal(mv) {
			t.Fatalf("%q not legal at ply %d", str, pos.Ply)
		}
		pos = pos.ApplyMove(mv)
	}
	if pos.Stm != tak.P1 {
		t.Fatalf("expected P1 to move, got %v", pos.Stm)
	}

	s := NewSearcher(1)
	limits := Limits{Depth: 2}
	best := s.Run(pos, limits, nil)

	want, err := tak.ParseMove("f1")
	if err != nil {
		t.Fatal(err)
	}
	if best != want {
		t.Errorf("Run() chose %v, want the road-completing move %v", best, want)
	}
}

func TestSearcherReturnsALegalMoveAtAnEmptyBoard(t *testing.T) {
	pos := tak.StartPos()
	s := NewSearcher(1)
	best := s.Run(pos, Limits{Depth: 1}, nil)
	if !pos.IsLegal(best) {
		t.Errorf("Run() returned %v, which is not legal in the starting position", best)
	}
}

func TestSearcherReportsDeepeningInfoPerIteration(t *testing.T) {
	pos := tak.StartPos()
	s := NewSearcher(1)

	var depths []int
	s.Run(pos, Limits{Depth: 3}, func(info Info) {
		depths = append(depths, info.Depth)
	})

	if len(depths) == 0 {
		t.Fatal("onInfo was never called")
	}
	for i, d := range depths {
		if d != i+1 {
			t.Errorf("iteration %d reported Depth=%d, want %d", i, d, i+1)
		}
	}
}

func TestIsRepetitionDetectsMatchingAncestorSameSideToMove(t *testing.T) {
	s := &Searcher{}
	s.keyStack[0] = 0xAAAA
	s.keyStack[1] = 0xBBBB
	s.keyStack[2] = 0xAAAA // same side to move as ply 0

	if !s.isRepetition(0xAAAA, 2) {
		t.Error("isRepetition should detect a key repeated two plies back")
	}
	if s.isRepetition(0xCCCC, 2) {
		t.Error("isRepetition should not fire for a key that never occurred")
	}
}

// TestOscillatingSpreadRestoresTheSameHash grounds the repetition-draw rule
// in a real game line: each side shuttles its own stone out and back, and
// four plies later the position is byte-for-byte the one isRepetition is
// meant to catch — identical Hash and side to move, even though Ply has
// moved on.
func TestOscillatingSpreadRestoresTheSameHash(t *testing.T) {
	pos := tak.StartPos()
	moves := []string{"a1", "f6", "c3", "d4"}
	for _, str := range moves {
		mv, err := tak.ParseMove(str)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", str, err)
		}
		pos = pos.ApplyMove(mv)
	}
	before := pos // ply 4, P1 to move, P1's flat on c3 and P2's on d4

	oscillation := []string{"c3>", "d4>", "d3<", "e4<"}
	after := before
	for _, str := range oscillation {
		mv, err := tak.ParseMove(str)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", str, err)
		}
		if !after.IsLegal(mv) {
			t.Fatalf("%q not legal at ply %d", str, after.Ply)
		}
		after = after.ApplyMove(mv)
	}

	if after.Stm != before.Stm {
		t.Fatalf("Stm = %v after the round trip, want %v (same side to move as before)", after.Stm, before.Stm)
	}
	if after.Hash != before.Hash {
		t.Errorf("Hash = %#x after both stones shuttled out and back, want the original %#x", after.Hash, before.Hash)
	}
	if after.Ply == before.Ply {
		t.Error("test setup bug: four plies should have elapsed")
	}

	s := &Searcher{}
	s.keyStack[0] = before.Hash
	if !s.isRepetition(after.Hash, 4) {
		t.Error("isRepetition should flag the restored hash four plies into the search stack")
	}
}

func TestIsRepetitionIgnoresOppositeSideToMove(t *testing.T) {
	s := &Searcher{}
	s.keyStack[0] = 0x1234
	s.keyStack[1] = 0x1234 // one ply back: opposite side to move, not a real repeat

	if s.isRepetition(0x1234, 1) {
		t.Error("isRepetition should only compare against same-side-to-move ancestors (ply-2, ply-4, ...)")
	}
}

func TestSearchRootRecordsRootKeyForRepetitionTracking(t *testing.T) {
	pos := tak.StartPos()
	s := NewSearcher(1)
	s.tm = NewTimeManager()
	s.tm.Init(Limits{Depth: 1}, pos.Stm, pos.Ply)

	s.searchRoot(pos, 1)

	if s.keyStack[0] != pos.Hash {
		t.Errorf("keyStack[0] = %#x after searchRoot, want the root hash %#x", s.keyStack[0], pos.Hash)
	}
}

func TestIsMateScoreClassifiesScoresCorrectly(t *testing.T) {
	if !IsMateScore(ScoreMate - 1) {
		t.Error("a near-ScoreMate value should be classified as a mate score")
	}
	if !IsMateScore(-(ScoreMate - 1)) {
		t.Error("a near-negative-ScoreMate value should be classified as a mate score")
	}
	if IsMateScore(500) {
		t.Error("an ordinary positional score should not be classified as a mate score")
	}
	if IsMateScore(ScoreMaxMate) {
		t.Error("ScoreMaxMate itself is the boundary and should not count as a mate score")
	}
}

func TestTerminalScoreFavorsTheWinningSide(t *testing.T) {
	win := tak.Result{Outcome: tak.RoadWin, Winner: tak.P1}
	if got := terminalScore(win, tak.P1, 3); got <= 0 {
		t.Errorf("terminalScore() for the winner = %d, want positive", got)
	}
	if got := terminalScore(win, tak.P2, 3); got >= 0 {
		t.Errorf("terminalScore() for the loser = %d, want negative", got)
	}

	draw := tak.Result{Outcome: tak.Draw}
	if got := terminalScore(draw, tak.P1, 3); got != 0 {
		t.Errorf("terminalScore(draw) = %d, want 0", got)
	}
}

func TestLmrReductionGrowsWithDepthAndMoveCount(t *testing.T) {
	small := lmrReduction(2, 5)
	large := lmrReduction(10, 30)
	if large < small {
		t.Errorf("lmrReduction(10, 30) = %d, want at least lmrReduction(2, 5) = %d", large, small)
	}
	if r := lmrReduction(1, 1); r < 0 {
		t.Errorf("lmrReduction(1, 1) = %d, want non-negative", r)
	}
}

package engine

import (
	"testing"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

func collectAll(mp *MovePicker) []tak.Move {
	var out []tak.Move
	for {
		mv, ok := mp.Next()
		if !ok {
			break
		}
		out = append(out, mv)
	}
	return out
}

func TestKillersGetReportsUnsetSlotsOnAFreshTable(t *testing.T) {
	k := &Killers{}
	_, ok1, _, ok2 := k.Get(5)
	if ok1 || ok2 {
		t.Error("Get() on a fresh Killers table should report both slots unset")
	}
}

func TestKillersUpdateThenGetReportsPresence(t *testing.T) {
	k := &Killers{}
	mv := tak.NewPlace(tak.NewSquare(2, 2), tak.Flat)
	k.Update(3, mv)

	got1, ok1, _, ok2 := k.Get(3)
	if !ok1 || got1 != mv {
		t.Errorf("Get() slot 0 = %v, ok=%v, want %v, true", got1, ok1, mv)
	}
	if ok2 {
		t.Error("Get() slot 1 should still be unset after a single Update")
	}
}

func TestKillersUpdateShiftsOlderIntoSecondSlot(t *testing.T) {
	k := &Killers{}
	first := tak.NewPlace(tak.NewSquare(1, 1), tak.Flat)
	second := tak.NewPlace(tak.NewSquare(2, 2), tak.Flat)

	k.Update(0, first)
	k.Update(0, second)

	got1, ok1, got2, ok2 := k.Get(0)
	if !ok1 || got1 != second {
		t.Errorf("slot 0 = %v (ok=%v), want the most recent killer %v", got1, ok1, second)
	}
	if !ok2 || got2 != first {
		t.Errorf("slot 1 = %v (ok=%v), want the displaced killer %v", got2, ok2, first)
	}
}

func TestKillersUpdateIgnoresRepeatOfSameMove(t *testing.T) {
	k := &Killers{}
	mv := tak.NewPlace(tak.NewSquare(1, 1), tak.Flat)
	k.Update(0, mv)
	k.Update(0, mv)

	_, _, _, ok2 := k.Get(0)
	if ok2 {
		t.Error("repeating the same killer should not push a second entry into slot 1")
	}
}

// TestMovePickerYieldsZeroValueMoveWhenNoKillerIsSet is a regression test:
// tak.Move{} (placing a flat on a1) is a legal opening move, and the move
// picker used to mistake an unset killer slot (also the zero Move) for a
// killer that had already been yielded, silently dropping a1 from the
// ordinary move stage.
func TestMovePickerYieldsZeroValueMoveWhenNoKillerIsSet(t *testing.T) {
	pos := tak.StartPos()
	history := &History{}
	killers := &Killers{}

	mp := NewMovePicker(pos, history, nil, tak.Move{}, false, killers, 0)
	moves := collectAll(mp)

	if len(moves) != 36 {
		t.Fatalf("Next() yielded %d moves, want 36 (one per empty square)", len(moves))
	}

	count := 0
	zero := tak.Move{}
	for _, mv := range moves {
		if mv == zero {
			count++
		}
	}
	if count != 1 {
		t.Errorf("the zero-value move (a1) appeared %d times, want exactly 1", count)
	}
}

func TestMovePickerYieldsTTMoveFirst(t *testing.T) {
	pos := tak.StartPos()
	history := &History{}
	killers := &Killers{}
	ttMove := tak.NewPlace(tak.NewSquare(3, 3), tak.Flat)

	mp := NewMovePicker(pos, history, nil, ttMove, true, killers, 0)
	first, ok := mp.Next()
	if !ok || first != ttMove {
		t.Fatalf("first Next() = %v, ok=%v, want the TT move %v", first, ok, ttMove)
	}

	rest := collectAll(mp)
	for _, mv := range rest {
		if mv == ttMove {
			t.Error("the TT move should not be yielded a second time during the ordinary move stage")
		}
	}
	if len(rest)+1 != 36 {
		t.Errorf("total yielded moves = %d, want 36", len(rest)+1)
	}
}

func TestMovePickerYieldsKillersBeforeGeneratedStage(t *testing.T) {
	pos := tak.StartPos()
	history := &History{}
	killers := &Killers{}
	killer := tak.NewPlace(tak.NewSquare(4, 4), tak.Flat)
	killers.Update(0, killer)

	mp := NewMovePicker(pos, history, nil, tak.Move{}, false, killers, 0)
	first, ok := mp.Next()
	if !ok || first != killer {
		t.Fatalf("first Next() = %v, ok=%v, want the killer move %v", first, ok, killer)
	}

	moves := collectAll(mp)
	seen := 0
	for _, mv := range moves {
		if mv == killer {
			seen++
		}
	}
	if seen != 0 {
		t.Error("a killer already yielded should not reappear during the ordinary move stage")
	}
	if len(moves)+1 != 36 {
		t.Errorf("total yielded moves = %d, want 36", len(moves)+1)
	}
}

func TestMovePickerSkipsIllegalKiller(t *testing.T) {
	pos := tak.StartPos()
	history := &History{}
	killers := &Killers{}
	// A1 is empty at the opening, but a wall placement is illegal during
	// the swap — the picker should silently skip it rather than yield an
	// illegal move.
	illegalKiller := tak.NewPlace(0, tak.Wall)
	killers.Update(0, illegalKiller)

	mp := NewMovePicker(pos, history, nil, tak.Move{}, false, killers, 0)
	moves := collectAll(mp)
	for _, mv := range moves {
		if mv == illegalKiller {
			t.Error("an illegal killer move should never be yielded")
		}
	}
	if len(moves) != 36 {
		t.Errorf("total yielded moves = %d, want 36 (the illegal killer contributes none)", len(moves))
	}
}

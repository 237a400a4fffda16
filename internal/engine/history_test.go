package engine

import (
	"testing"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

func TestHistoryUpdateAndScore(t *testing.T) {
	h := &History{}
	mv := tak.NewPlace(tak.NewSquare(2, 2), tak.Flat)

	h.Update(tak.P1, mv, nil, 500)
	if got := h.Score(tak.P1, mv, nil); got != 500 {
		t.Errorf("Score() = %d, want 500", got)
	}
	if got := h.Score(tak.P2, mv, nil); got != 0 {
		t.Errorf("Score() for the other side = %d, want 0 (tables are sided)", got)
	}
}

func TestHistoryCountermoveAddsToButterfly(t *testing.T) {
	h := &History{}
	prev := tak.NewPlace(tak.NewSquare(0, 0), tak.Flat)
	mv := tak.NewPlace(tak.NewSquare(1, 1), tak.Flat)

	h.Update(tak.P1, mv, &prev, 100)
	withoutPrev := h.Score(tak.P1, mv, nil)

	h.Update(tak.P1, mv, &prev, 100)
	withPrev := h.Score(tak.P1, mv, &prev)

	if withPrev <= withoutPrev {
		t.Errorf("Score with a matching countermove entry (%d) should exceed butterfly alone (%d)", withPrev, withoutPrev)
	}
}

func TestHistoryBumpConvergesTowardLimitNeverExceedsIt(t *testing.T) {
	e := &historyEntry{}
	for i := 0; i < 1000; i++ {
		e.bump(historyMaxBonus)
		if e.get() > historyLimit {
			t.Fatalf("entry value %d exceeded historyLimit %d after %d bumps", e.get(), historyLimit, i)
		}
	}
	if e.get() <= 0 {
		t.Error("repeated positive bumps should leave a positive value")
	}
}

func TestHistoryClearResetsAllEntries(t *testing.T) {
	h := &History{}
	mv := tak.NewPlace(tak.NewSquare(3, 3), tak.Flat)
	h.Update(tak.P1, mv, nil, 1000)

	h.Clear()

	if got := h.Score(tak.P1, mv, nil); got != 0 {
		t.Errorf("Score() after Clear() = %d, want 0", got)
	}
}

func TestClampBonusCapsMagnitude(t *testing.T) {
	if got := clampBonus(historyMaxBonus * 10); got != historyMaxBonus {
		t.Errorf("clampBonus(large positive) = %d, want %d", got, historyMaxBonus)
	}
	if got := clampBonus(-historyMaxBonus * 10); got != -historyMaxBonus {
		t.Errorf("clampBonus(large negative) = %d, want %d", got, -historyMaxBonus)
	}
}

func TestMoveKeyDistinguishesPlacementTypesAndSpreads(t *testing.T) {
	flatA1 := tak.NewPlace(0, tak.Flat)
	wallA1 := tak.NewPlace(0, tak.Wall)
	capA1 := tak.NewPlace(0, tak.Capstone)
	spreadA1 := tak.NewSpread(0, 0, []uint8{1})

	keys := map[int]bool{}
	for _, mv := range []tak.Move{flatA1, wallA1, capA1, spreadA1} {
		k := moveKey(mv)
		if keys[k] {
			t.Errorf("moveKey(%v) = %d collides with an earlier move", mv, k)
		}
		keys[k] = true
		if k < 0 || k >= moveKeys {
			t.Errorf("moveKey(%v) = %d out of range [0, %d)", mv, k, moveKeys)
		}
	}
}

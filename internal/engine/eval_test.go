package engine

import (
	"testing"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

func TestEvaluateStartingPositionReflectsKomi(t *testing.T) {
	pos := tak.StartPos()
	// No flats on the board yet: Komi alone gives P2 a two-flat lead, so
	// the position is a small negative for P1 once the tempo bonus is
	// added back in: (0-2)*75 = -150, plus the flat +30 tempo bonus.
	want := -150 + tempoBonus
	if got := Evaluate(pos); got != want {
		t.Errorf("Evaluate(start) = %d, want %d", got, want)
	}
}

func TestEvaluateIsSymmetricUnderSideToMove(t *testing.T) {
	pos := tak.StartPos()
	mv, _ := tak.ParseMove("a1")
	after := pos.ApplyMove(mv)
	if after.Stm == pos.Stm {
		t.Fatal("test setup bug: applying a move should flip the side to move")
	}
	// Same board, other side to move: once the tempo bonus is taken off,
	// the two scores are exact negatives, since positive always favors Stm.
	flipped := after
	flipped.Stm = flipped.Stm.Flip()
	if got, want := Evaluate(after)-tempoBonus, -(Evaluate(flipped) - tempoBonus); got != want {
		t.Errorf("Evaluate() without tempo = %d, want %d (the negation for the other side to move)", got, want)
	}
}

func TestEvaluateRewardsExtraFlatsForTheSideToMove(t *testing.T) {
	var pos tak.Position
	pos.Stm = tak.P1
	pos.Owner[tak.P1] = pos.Owner[tak.P1].With(0).With(1).With(2)
	pos.Flats = pos.Flats.With(0).With(1).With(2)

	got := Evaluate(pos)
	var empty tak.Position
	empty.Stm = tak.P1
	baseline := Evaluate(empty)

	if got <= baseline {
		t.Errorf("Evaluate() with extra P1 flats = %d, want more than the empty baseline %d", got, baseline)
	}
}

func TestEvaluateRoadAdjacencyRewardsConnectedFlats(t *testing.T) {
	var connected tak.Position
	connected.Stm = tak.P1
	for _, sq := range []int{int(tak.NewSquare(2, 2)), int(tak.NewSquare(2, 3)), int(tak.NewSquare(2, 4))} {
		connected.Owner[tak.P1] = connected.Owner[tak.P1].With(sq)
		connected.Flats = connected.Flats.With(sq)
	}

	var scattered tak.Position
	scattered.Stm = tak.P1
	for _, sq := range []int{int(tak.NewSquare(0, 0)), int(tak.NewSquare(3, 1)), int(tak.NewSquare(5, 5))} {
		scattered.Owner[tak.P1] = scattered.Owner[tak.P1].With(sq)
		scattered.Flats = scattered.Flats.With(sq)
	}

	if got, want := Evaluate(connected), Evaluate(scattered); got <= want {
		t.Errorf("Evaluate(connected flats) = %d, want more than Evaluate(scattered flats) = %d", got, want)
	}
}

func TestSupportCaptiveTermRewardsCapturedEnemyBeneathTop(t *testing.T) {
	var withCapture tak.Position
	withCapture.Stm = tak.P1
	sq := int(tak.NewSquare(2, 2))
	// Only Owner[P1] gets the bit: Owner tracks who currently controls the
	// top of the stack, and P1 sits on top here — the captured P2 piece
	// is recorded solely in the stack's own Owners bitfield below.
	withCapture.Owner[tak.P1] = withCapture.Owner[tak.P1].With(sq)
	withCapture.Flats = withCapture.Flats.With(sq)
	withCapture.Stacks[sq] = tak.Stack{
		Height: 2,
		Top:    tak.Flat,
		Owners: 1, // bit 0 (height 0, the bottom) is P2; bit 1 (the top) is P1
	}

	var bare tak.Position
	bare.Stm = tak.P1
	bare.Owner[tak.P1] = bare.Owner[tak.P1].With(sq)
	bare.Flats = bare.Flats.With(sq)
	bare.Stacks[sq] = tak.Stack{Height: 1, Top: tak.Flat}

	if got, want := Evaluate(withCapture), Evaluate(bare); got <= want {
		t.Errorf("Evaluate(stack with a captured enemy piece) = %d, want more than Evaluate(bare flat) = %d", got, want)
	}
}

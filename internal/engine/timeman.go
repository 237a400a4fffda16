package engine

import (
	"time"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

// Limits carries the time-control and search-bound parameters parsed from
// a TEI "go" command, playing the role the teacher's UCILimits plays for
// "go wtime ... btime ...".
type Limits struct {
	Time      [2]time.Duration // time remaining for P1, P2
	Inc       [2]time.Duration
	MoveTime  time.Duration
	Depth     int
	Nodes     uint64
	Infinite  bool
}

// TimeManager allocates a soft and hard deadline for one search, the same
// two-tier scheme the teacher's TimeManager uses.
type TimeManager struct {
	optimum time.Duration
	maximum time.Duration
	start   time.Time
}

func NewTimeManager() *TimeManager { return &TimeManager{} }

// Init computes this search's deadlines for the side to move, us, at ply
// plies into the game.
func (tm *TimeManager) Init(limits Limits, us tak.Player, ply int) {
	tm.start = time.Now()

	if limits.MoveTime > 0 {
		tm.optimum, tm.maximum = limits.MoveTime, limits.MoveTime
		return
	}
	if limits.Infinite || (limits.Time[us] == 0 && limits.Depth == 0 && limits.Nodes == 0) {
		tm.optimum, tm.maximum = time.Hour, time.Hour
		return
	}
	if limits.Time[us] == 0 {
		// Depth- or node-limited search with no clock: let the search's
		// own stop conditions govern instead of time.
		tm.optimum, tm.maximum = time.Hour, time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	movesToGo := estimateMovesToGo(ply)
	share := timeLeft / time.Duration(movesToGo)

	tm.optimum = share + inc/2
	tm.maximum = share*3 + inc

	if tm.maximum > timeLeft-time.Millisecond*20 {
		tm.maximum = timeLeft - time.Millisecond*20
	}
	if tm.maximum < time.Millisecond {
		tm.maximum = time.Millisecond
	}
	if tm.optimum > tm.maximum {
		tm.optimum = tm.maximum
	}
}

// estimateMovesToGo guesses how many plies of this game remain for one
// side, tapering down as the game lengthens — Tak games on 6x6 commonly
// run 30-60 plies per side.
func estimateMovesToGo(ply int) int {
	remaining := 40 - ply/2
	if remaining < 10 {
		remaining = 10
	}
	return remaining
}

func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.start) }

// ShouldStopSoft reports whether iterative deepening should not begin
// another iteration.
func (tm *TimeManager) ShouldStopSoft() bool { return tm.Elapsed() >= tm.optimum }

// ShouldStopHard reports whether the in-progress search must abort now.
func (tm *TimeManager) ShouldStopHard() bool { return tm.Elapsed() >= tm.maximum }

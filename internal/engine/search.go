package engine

import (
	"math"
	"time"

	"github.com/ciekce-go/tak6tei/internal/tak"
)

// nodeType mirrors original_source/search.rs's NodeType trait. Go doesn't
// need a trait object for this — a small enum threaded through negamax's
// parameters gives the same dispatch with none of the generic machinery,
// an option the specification leaves open.
type nodeType uint8

const (
	nonPV nodeType = iota
	pvNode
	rootNode
)

// lmrTable[depth-1][moveCount-1] is the late-move reduction amount,
// precomputed once following original_source/search.rs's
// BASE=0.5, DIVISOR=2.5 formula.
var lmrTable [64][64]int

func init() {
	for d := 1; d <= 64; d++ {
		for m := 1; m <= 64; m++ {
			r := 0.5 + math.Log(float64(d))*math.Log(float64(m))/2.5
			lmrTable[d-1][m-1] = int(r)
		}
	}
}

func lmrReduction(depth, moveCount int) int {
	d := depth - 1
	if d > 63 {
		d = 63
	}
	m := moveCount - 1
	if m > 63 {
		m = 63
	}
	if d < 0 {
		d = 0
	}
	if m < 0 {
		m = 0
	}
	return lmrTable[d][m]
}

// Info is one iteration's reportable result, mirroring a TEI "info" line.
type Info struct {
	Depth, SelDepth int
	Nodes           uint64
	Elapsed         time.Duration
	Score           int
	Mate            bool
	PV              []tak.Move
	HashFull        int
}

// Searcher runs iterative deepening PVS over a single position. One
// Searcher is reused across a whole TEI session so its tables keep
// learning across successive "go" commands, matching how the teacher's
// Worker keeps its shared TranspositionTable/history alive across moves.
type Searcher struct {
	TT      *Table
	History *History
	Killers *Killers
	Corr    *CorrectionHistory

	tm       *TimeManager
	nodes    uint64
	seldepth int
	aborted  bool

	pvTable  [MaxPly + 1][MaxPly + 1]tak.Move
	pvLen    [MaxPly + 1]int
	stackMv  [MaxPly + 1]tak.Move
	hasStack [MaxPly + 1]bool
	keyStack [MaxPly + 1]uint64

	onInfo func(Info)
}

// isRepetition reports whether hash at ply has already occurred earlier in
// this search's line, at a position with the same side to move (so every
// other ancestor). original_source/search.rs's repetition check is marked
// "//TODO skip properly"; this implements the clean twofold rule the
// specification asks for instead: any repeat within the search stack is an
// immediate draw, not just a third occurrence, since the search stack alone
// can't see draws that resolved via moves made before the root.
func (s *Searcher) isRepetition(hash uint64, ply int) bool {
	for p := ply - 2; p >= 0; p -= 2 {
		if s.keyStack[p] == hash {
			return true
		}
	}
	return false
}

func NewSearcher(hashMB int) *Searcher {
	return &Searcher{
		TT:      NewTable(hashMB),
		History: &History{},
		Killers: &Killers{},
		Corr:    &CorrectionHistory{},
	}
}

// Run performs iterative deepening from pos under limits, invoking onInfo
// after every completed iteration, and returns the best move found.
func (s *Searcher) Run(pos tak.Position, limits Limits, onInfo func(Info)) tak.Move {
	s.tm = NewTimeManager()
	s.tm.Init(limits, pos.Stm, pos.Ply)
	s.onInfo = onInfo
	s.nodes = 0
	s.aborted = false
	s.TT.NewSearch()

	var list tak.MoveList
	tak.GenerateMoves(&list, pos)
	if list.Len() == 0 {
		return tak.Move{}
	}
	best := list.Get(0)
	bestScore := -ScoreInf

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	start := time.Now()
	for depth := 1; depth <= maxDepth; depth++ {
		s.seldepth = 0
		score, mv, ok := s.searchRoot(pos, depth)
		if !ok {
			break
		}
		best, bestScore = mv, score

		if s.onInfo != nil {
			pv := append([]tak.Move(nil), s.pvTable[0][:s.pvLen[0]]...)
			s.onInfo(Info{
				Depth:    depth,
				SelDepth: s.seldepth,
				Nodes:    s.nodes,
				Elapsed:  time.Since(start),
				Score:    bestScore,
				Mate:     IsMateScore(bestScore),
				PV:       pv,
				HashFull: s.TT.HashFull(),
			})
		}

		if limits.Nodes > 0 && s.nodes >= limits.Nodes {
			break
		}
		if IsMateScore(bestScore) {
			break
		}
		if s.tm.ShouldStopSoft() {
			break
		}
	}

	return best
}

func (s *Searcher) timeUp() bool {
	if s.nodes&1023 == 0 && s.tm.ShouldStopHard() {
		s.aborted = true
	}
	return s.aborted
}

func (s *Searcher) searchRoot(pos tak.Position, depth int) (int, tak.Move, bool) {
	var ttMove tak.Move
	hasTT := false
	if e, ok := s.TT.Probe(pos.Hash); ok {
		ttMove, hasTT = e.BestMove, true
	}

	picker := NewMovePicker(pos, s.History, nil, ttMove, hasTT, s.Killers, 0)

	s.keyStack[0] = pos.Hash

	alpha, beta := -ScoreInf, ScoreInf
	best := tak.Move{}
	bestScore := -ScoreInf
	moveCount := 0

	for {
		mv, ok := picker.Next()
		if !ok {
			break
		}
		moveCount++

		child := pos.ApplyMove(mv)
		s.nodes++
		s.stackMv[0], s.hasStack[0] = mv, true

		var score int
		if term := child.CheckTerminal(pos.Stm); term.Outcome != tak.NoOutcome {
			score = -terminalScore(term, child.Stm, 1)
		} else if moveCount == 1 {
			score = -s.negamax(child, depth-1, 1, -beta, -alpha, pvNode)
		} else {
			score = -s.negamax(child, depth-1, 1, -alpha-1, -alpha, nonPV)
			if score > alpha {
				score = -s.negamax(child, depth-1, 1, -beta, -alpha, pvNode)
			}
		}

		if s.aborted {
			if moveCount == 1 {
				return 0, mv, false
			}
			break
		}

		if score > bestScore {
			bestScore = score
			best = mv
			s.updatePV(0, mv, 1)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	if !s.aborted {
		bound := Exact
		if bestScore <= alpha && moveCount > 1 {
			bound = UpperBound
		}
		s.TT.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, 0), bound, best)
	}

	return bestScore, best, true
}

func terminalScore(result tak.Result, stm tak.Player, ply int) int {
	switch result.Outcome {
	case tak.RoadWin:
		if result.Winner == stm {
			return ScoreMate - ply
		}
		return -(ScoreMate - ply)
	case tak.FlatWin:
		if result.Winner == stm {
			return ScoreWin
		}
		return -ScoreWin
	default:
		return 0
	}
}

func (s *Searcher) updatePV(ply int, mv tak.Move, childPly int) {
	s.pvTable[ply][0] = mv
	n := s.pvLen[childPly]
	copy(s.pvTable[ply][1:], s.pvTable[childPly][:n])
	s.pvLen[ply] = n + 1
}

// negamax implements spec.md §4.10's search: no quiescence, a leaf at
// depth<=0 returns the corrected static evaluation directly, reverse
// futility pruning trims clearly-won non-PV nodes, and late move
// reductions with a PVS re-search shape handle the bulk of the move loop.
func (s *Searcher) negamax(pos tak.Position, depth, ply int, alpha, beta int, nt nodeType) int {
	s.pvLen[ply] = 0
	if ply > s.seldepth {
		s.seldepth = ply
	}

	if s.timeUp() {
		return 0
	}

	s.keyStack[ply] = pos.Hash
	if ply > 0 && s.isRepetition(pos.Hash, ply) {
		return 0
	}

	if depth <= 0 {
		return Evaluate(pos) + s.Corr.Correction(pos)
	}

	isPV := nt != nonPV

	var ttMove tak.Move
	hasTT := false
	if e, ok := s.TT.Probe(pos.Hash); ok {
		ttMove, hasTT = e.BestMove, true
		if !isPV && int(e.Depth) >= depth {
			score := AdjustScoreFromTT(int(e.Score), ply)
			switch e.Bound {
			case Exact:
				return score
			case LowerBound:
				if score >= beta {
					return score
				}
			case UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	staticEval := Evaluate(pos) + s.Corr.Correction(pos)

	if !isPV && depth <= 6 && staticEval-(100*depth+100) >= beta {
		return staticEval
	}

	var prevMv *tak.Move
	if ply > 0 && s.hasStack[ply-1] {
		prevMv = &s.stackMv[ply-1]
	}

	picker := NewMovePicker(pos, s.History, prevMv, ttMove, hasTT, s.Killers, ply)

	best := tak.Move{}
	bestScore := -ScoreInf
	moveCount := 0
	bound := UpperBound

	for {
		mv, ok := picker.Next()
		if !ok {
			break
		}
		moveCount++

		child := pos.ApplyMove(mv)
		s.nodes++
		s.stackMv[ply], s.hasStack[ply] = mv, true

		var score int
		if term := child.CheckTerminal(pos.Stm); term.Outcome != tak.NoOutcome {
			score = -terminalScore(term, child.Stm, ply+1)
		} else if depth >= 2 && moveCount >= 5 {
			r := lmrReduction(depth, moveCount)
			reduced := depth - 1 - r
			if reduced < 1 {
				reduced = 1
			}
			if reduced > depth-1 {
				reduced = depth - 1
			}
			score = -s.negamax(child, reduced, ply+1, -alpha-1, -alpha, nonPV)
			if score > alpha && reduced < depth-1 {
				score = -s.negamax(child, depth-1, ply+1, -alpha-1, -alpha, nonPV)
			}
		} else if !isPV || moveCount > 1 {
			score = -s.negamax(child, depth-1, ply+1, -alpha-1, -alpha, nonPV)
		}

		if isPV && (moveCount == 1 || score > alpha) {
			score = -s.negamax(child, depth-1, ply+1, -beta, -alpha, pvNode)
		}

		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			best = mv
			if isPV {
				s.updatePV(ply, mv, ply+1)
			}
		}
		if score > alpha {
			alpha = score
			bound = Exact
		}
		if alpha >= beta {
			bound = LowerBound
			s.Killers.Update(ply, mv)
			s.History.Update(pos.Stm, mv, prevMv, depth*depth)
			break
		}
	}

	if moveCount == 0 {
		// No legal moves exist only when reserves and board are both
		// exhausted in a way CheckTerminal should already have caught at
		// the parent; return a neutral score defensively.
		return 0
	}

	if !s.aborted {
		if bound == Exact || (bound == UpperBound && bestScore < staticEval) || (bound == LowerBound && bestScore > staticEval) {
			s.Corr.Update(pos, depth, bestScore, staticEval)
		}
		s.TT.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, ply), bound, best)
	}

	return bestScore
}

// Package tei implements the line-oriented Tak Engine Interface protocol
// front end, the same role internal/uci plays for the teacher's chess
// engine: read commands from stdin, drive internal/engine, write responses
// to stdout.
package tei

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/ciekce-go/tak6tei/internal/engine"
	"github.com/ciekce-go/tak6tei/internal/storage"
	"github.com/ciekce-go/tak6tei/internal/tak"
)

const (
	name    = "tak6tei"
	authors = "the tak6tei contributors"
	version = "0.1.0"
)

// Handler owns the engine's session state across a run of TEI commands.
type Handler struct {
	eng   *engine.Engine
	pos   tak.Position
	store *storage.Store

	out    *bufio.Writer
	errLog *log.Logger
}

func New(eng *engine.Engine, store *storage.Store, out io.Writer, errOut io.Writer) *Handler {
	return &Handler{
		eng:    eng,
		pos:    tak.StartPos(),
		store:  store,
		out:    bufio.NewWriter(out),
		errLog: log.New(errOut, "", 0),
	}
}

// Run reads commands from in until EOF or "quit".
func (h *Handler) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "tei":
			h.handleTei()
		case "teinewgame":
			h.handleNewGame(args)
		case "setoption":
			h.handleSetOption(args)
		case "isready":
			h.handleIsReady()
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "d":
			h.handleD()
		case "quit":
			h.out.Flush()
			return
		default:
			h.errLog.Printf("Unknown command %q", cmd)
		}
		h.out.Flush()
	}
}

func (h *Handler) println(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *Handler) handleTei() {
	h.println("id name %s %s", name, version)
	h.println("id author %s", authors)
	h.println("option name Hash type spin default %d min 1 max 4096", engine.DefaultHashMB)
	h.println("option name HalfKomi type spin default %d min %d max %d",
		h.eng.Options.HalfKomi, h.eng.Options.HalfKomi, h.eng.Options.HalfKomi)
	h.println("teiok")
}

func (h *Handler) handleNewGame(args []string) {
	if len(args) == 0 {
		h.println("Missing size, assuming 6x6")
	} else if size, err := strconv.Atoi(args[0]); err != nil {
		h.errLog.Printf("Invalid size %q", args[0])
	} else if size != 6 {
		h.errLog.Printf("Only 6x6 supported")
		return
	}
	h.pos = tak.StartPos()
}

func (h *Handler) handleSetOption(args []string) {
	name, value, ok := parseSetOption(args)
	if !ok {
		return
	}
	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb <= 0 {
			h.errLog.Printf("Invalid Hash value %q", value)
			return
		}
		h.eng.SetHashMB(mb)
	case "halfkomi":
		// Fixed at the ruleset constant; accepted and ignored so clients
		// that always send the advertised default don't get an error.
	default:
		h.errLog.Printf("Unknown option %q", name)
	}
}

func parseSetOption(args []string) (name, value string, ok bool) {
	var nameParts, valueParts []string
	mode := ""
	for _, a := range args {
		switch a {
		case "name":
			mode = "name"
			continue
		case "value":
			mode = "value"
			continue
		}
		switch mode {
		case "name":
			nameParts = append(nameParts, a)
		case "value":
			valueParts = append(valueParts, a)
		}
	}
	if len(nameParts) == 0 {
		return "", "", false
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), true
}

func (h *Handler) handleIsReady() {
	h.println("readyok")
}

// handlePosition validates the entire TPS-plus-moves command against a
// scratch copy before committing it to h.pos, so a command that fails
// partway through — an invalid move anywhere in the list — leaves the
// engine's position unchanged instead of applying a prefix of the moves,
// which is what original_source/tei.rs's simpler position-in-place
// handler would do.
func (h *Handler) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	kind, rest := args[0], args[1:]

	var scratch tak.Position
	switch kind {
	case "startpos":
		scratch = tak.StartPos()
	case "tps":
		movesAt := len(rest)
		for i, a := range rest {
			if a == "moves" {
				movesAt = i
				break
			}
		}
		if movesAt == 0 {
			h.errLog.Printf("Missing TPS")
			return
		}
		tps := strings.Join(rest[:movesAt], " ")
		pos, err := tak.ParseTPS(tps)
		if err != nil {
			h.errLog.Printf("Failed to parse TPS: %v", err)
			return
		}
		scratch = pos
		rest = rest[movesAt:]
	default:
		h.errLog.Printf("Invalid position type %q", kind)
		return
	}

	if len(rest) == 0 || rest[0] != "moves" {
		h.pos = scratch
		return
	}

	for _, moveStr := range rest[1:] {
		mv, err := tak.ParseMove(moveStr)
		if err != nil {
			h.errLog.Printf("Invalid move %q: %v", moveStr, err)
			return
		}
		if !scratch.IsLegal(mv) {
			h.errLog.Printf("Illegal move %q", moveStr)
			return
		}
		scratch = scratch.ApplyMove(mv)
	}

	h.pos = scratch
}

func (h *Handler) handleGo(args []string) {
	limits := parseGoLimits(args)

	start := time.Now()
	best := h.eng.Searcher.Run(h.pos, limits, func(info engine.Info) {
		h.printInfo(info)
	})

	if h.store != nil {
		h.store.RecordSearch(storage.SearchRecord{
			TPS:      h.pos.ToTPS(),
			BestMove: best.String(),
			Elapsed:  time.Since(start),
		})
	}

	h.println("bestmove %s", best.String())
}

func (h *Handler) printInfo(info engine.Info) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d seldepth %d time %d nodes %d",
		info.Depth, info.SelDepth, info.Elapsed.Milliseconds(), info.Nodes)

	nps := uint64(0)
	if info.Elapsed > 0 {
		nps = uint64(float64(info.Nodes) / info.Elapsed.Seconds())
	}
	fmt.Fprintf(&b, " nps %d score ", nps)

	if info.Mate {
		pliesToMate := (engine.ScoreMate - abs(info.Score) + 1) / 2
		if info.Score < 0 {
			pliesToMate = -pliesToMate
		}
		fmt.Fprintf(&b, "mate %d", pliesToMate)
	} else {
		fmt.Fprintf(&b, "cp %d", info.Score)
	}

	fmt.Fprintf(&b, " hashfull %d", info.HashFull)

	b.WriteString(" pv")
	for _, mv := range info.PV {
		b.WriteByte(' ')
		b.WriteString(mv.String())
	}

	h.println("%s", b.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (h *Handler) handleD() {
	tps := h.pos.ToTPS()
	h.println("TPS: %s", tps)
	if h.store != nil {
		h.store.RecordPosition(tps)
	}
}

func parseGoLimits(args []string) engine.Limits {
	var limits engine.Limits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			i++
			limits.Time[tak.P1] = parseMillis(args, i)
		case "btime":
			i++
			limits.Time[tak.P2] = parseMillis(args, i)
		case "winc":
			i++
			limits.Inc[tak.P1] = parseMillis(args, i)
		case "binc":
			i++
			limits.Inc[tak.P2] = parseMillis(args, i)
		case "movetime":
			i++
			limits.MoveTime = parseMillis(args, i)
		case "depth":
			i++
			limits.Depth = parseInt(args, i)
		case "nodes":
			i++
			limits.Nodes = uint64(parseInt(args, i))
		case "infinite":
			limits.Infinite = true
		}
	}
	return limits
}

func parseMillis(args []string, i int) time.Duration {
	if i >= len(args) {
		return 0
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

func parseInt(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	n, _ := strconv.Atoi(args[i])
	return n
}

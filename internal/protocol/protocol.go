// Package protocol implements a line-based text protocol for playing and
// analysing draughts positions, modelled on UCI.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/engine"
	"github.com/hailam/draughts/internal/game"
	"github.com/hailam/draughts/internal/storage"
)

// Protocol reads commands from in and writes replies to out.
type Protocol struct {
	in       io.Reader
	out      io.Writer
	settings *config.Settings
	game     *game.Game
	store    *storage.Storage
	gameID   string
	saved    bool

	// CPU profiling
	profileFile *os.File
}

// New creates a protocol handler with a fresh game.
func New(settings *config.Settings, in io.Reader, out io.Writer) (*Protocol, error) {
	g, err := game.New(settings)
	if err != nil {
		return nil, err
	}
	return &Protocol{
		in:       in,
		out:      out,
		settings: settings,
		game:     g,
	}, nil
}

// SetStorage enables saving finished games and changed settings.
func (p *Protocol) SetStorage(s *storage.Storage) {
	p.store = s
}

// Game returns the game being played.
func (p *Protocol) Game() *game.Game {
	return p.game
}

// Run processes commands until quit or end of input.
func (p *Protocol) Run() error {
	scanner := bufio.NewScanner(p.in)

	for scanner.Scan() {
		if !p.Execute(scanner.Text()) {
			break
		}
	}
	p.stopProfile()
	return scanner.Err()
}

// Execute handles one command line. It returns false after quit.
func (p *Protocol) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "new":
		p.handleNew()
	case "position":
		p.handlePosition(args)
	case "d":
		p.handleDisplay()
	case "moves":
		p.printf("moves %s\n", strings.Join(p.game.LegalMoves().Strings(), " "))
	case "play":
		p.handlePlay(args)
	case "go":
		p.handleGo(args)
	case "bot":
		p.handleBot()
	case "undo":
		if err := p.game.Undo(); err != nil {
			p.errorf("%v", err)
			return true
		}
		p.reopened()
		p.printf("ok\n")
	case "set":
		p.handleSet(args)
	case "eval":
		p.handleEval()
	case "perft":
		p.handlePerft(args)
	case "quit":
		p.saveGame()
		return false
	default:
		p.errorf("unknown command %q", cmd)
	}
	return true
}

func (p *Protocol) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Protocol) errorf(format string, args ...any) {
	fmt.Fprintf(p.out, "error "+format+"\n", args...)
}

func (p *Protocol) handleNew() {
	p.saveGame()
	g, err := game.New(p.settings)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	p.resetGame(g)
	p.printf("ok\n")
}

func (p *Protocol) resetGame(g *game.Game) {
	p.game = g
	p.gameID = ""
	p.saved = false
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves c3-d4 f6-e5
//   - position <encoded> [w|b]
//   - position <encoded> [w|b] moves c3:e5:g3
func (p *Protocol) handlePosition(args []string) {
	if len(args) == 0 {
		p.errorf("position needs startpos or a board")
		return
	}

	b := board.NewBoard()
	side := board.White
	rest := args[1:]

	if args[0] != "startpos" {
		var err error
		b, err = board.ParseBoard(args[0])
		if err != nil {
			p.errorf("%v", err)
			return
		}
		if len(rest) > 0 {
			if c, ok := board.ParseColor(rest[0]); ok {
				side = c
				rest = rest[1:]
			}
		}
	}

	g, err := game.NewFromBoard(p.settings, b, side)
	if err != nil {
		p.errorf("%v", err)
		return
	}

	if len(rest) > 0 {
		if rest[0] != "moves" {
			p.errorf("expected moves, got %q", rest[0])
			return
		}
		for _, s := range rest[1:] {
			t, err := board.ParseTurn(s)
			if err != nil {
				p.errorf("%v", err)
				return
			}
			if err := g.PlayTurn(t); err != nil {
				p.errorf("%v", err)
				return
			}
		}
	}

	p.resetGame(g)
	p.printf("ok\n")
}

func (p *Protocol) handleDisplay() {
	b := p.game.Board()
	p.printf("%s", b.String())
	p.printf("board %s\n", b.Encode())
	p.printf("turn %d side %s status %s\n", p.game.TurnNumber(), p.game.SideToMove(), p.game.Status())
	if sq, ok := p.game.Pinned(); ok {
		p.printf("pinned %s\n", sq)
	}
}

func (p *Protocol) handlePlay(args []string) {
	if len(args) != 1 {
		p.errorf("play needs one segment")
		return
	}
	m, err := board.ParseMove(args[0])
	if err != nil {
		p.errorf("%v", err)
		return
	}
	if err := p.game.Play(m); err != nil {
		p.errorf("%v", err)
		return
	}
	if sq, ok := p.game.Pinned(); ok {
		p.printf("continue %s\n", sq)
		return
	}
	p.printf("ok\n")
	p.reportEnd()
}

// handleGo searches the current position without playing the result.
// Format: go [depth N]
func (p *Protocol) handleGo(args []string) {
	if _, ok := p.game.Pinned(); ok {
		p.errorf("%v", game.ErrChainInProgress)
		return
	}

	side := p.game.SideToMove()
	opts, err := p.settings.EngineOptions(side)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == "depth" {
			if d, err := strconv.Atoi(args[i+1]); err == nil {
				opts.Depth = d
			}
		}
	}

	eng, err := engine.New(opts)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	eng.OnInfo = p.sendInfo

	turn := eng.FindBestTurn(p.game.Board(), side)
	if len(turn) == 0 {
		p.printf("bestturn none\n")
		return
	}
	p.printf("bestturn %s\n", turn)
}

func (p *Protocol) handleBot() {
	start := time.Now()
	info, err := p.game.PlayBot()
	if err != nil {
		p.errorf("%v", err)
		return
	}
	log.Printf("Bot turn time: %d millisec", time.Since(start).Milliseconds())

	p.sendInfo(info)
	p.printf("played %s\n", info.Turn)
	p.reportEnd()
}

func (p *Protocol) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		"score " + engine.ScoreToString(info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	p.printf("info %s\n", strings.Join(parts, " "))
}

// handleSet changes a setting for both engines.
// Format: set <name> <value>
func (p *Protocol) handleSet(args []string) {
	if len(args) != 2 {
		p.errorf("set needs a name and a value")
		return
	}
	name, value := strings.ToLower(args[0]), args[1]

	next := *p.settings
	switch name {
	case "depth":
		d, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("bad depth %q", value)
			return
		}
		next.Bot.WhiteBotLevel, next.Bot.BlackBotLevel = d, d
	case "scoring":
		next.Bot.BotScoringType = value
	case "pruning":
		next.Bot.Optimization = "O1"
		if !parseBool(value) {
			next.Bot.Optimization = config.OptimizationNone
		}
	case "norandom":
		next.Bot.NoRandom = parseBool(value)
	case "whitebot":
		next.Bot.IsWhiteBot = parseBool(value)
	case "blackbot":
		next.Bot.IsBlackBot = parseBool(value)
	case "maxturns":
		n, err := strconv.Atoi(value)
		if err != nil {
			p.errorf("bad turn count %q", value)
			return
		}
		next.Game.MaxNumTurns = n
	case "cpuprofile":
		p.handleProfile(value)
		return
	default:
		p.errorf("unknown setting %q", name)
		return
	}

	if err := p.game.Configure(&next); err != nil {
		p.errorf("%v", err)
		return
	}
	p.settings = &next
	p.reopened()
	if p.store != nil {
		if err := p.store.SaveSettings(p.settings); err != nil {
			log.Printf("save settings: %v", err)
		}
	}
	p.printf("ok\n")
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (p *Protocol) handleProfile(value string) {
	p.stopProfile()
	if value == "" || value == "stop" {
		p.printf("ok\n")
		return
	}
	f, err := os.Create(value)
	if err != nil {
		p.errorf("create profile: %v", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		p.errorf("start profile: %v", err)
		return
	}
	p.profileFile = f
	log.Printf("CPU profiling to %s", value)
	p.printf("ok\n")
}

func (p *Protocol) stopProfile() {
	if p.profileFile != nil {
		pprof.StopCPUProfile()
		p.profileFile.Close()
		p.profileFile = nil
		log.Printf("CPU profile saved")
	}
}

// handleEval prints the static evaluation for the side to move.
func (p *Protocol) handleEval() {
	side := p.game.SideToMove()
	score := p.game.Engine(side).Evaluate(p.game.Board(), side)
	p.printf("eval %s %s\n", side, engine.ScoreToString(score))
}

func (p *Protocol) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 0 {
			p.errorf("bad depth %q", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := engine.Perft(p.game.Board(), p.game.SideToMove(), depth)
	elapsed := time.Since(start)

	p.printf("nodes %d\n", nodes)
	log.Printf("perft %d: %d nodes in %v", depth, nodes, elapsed)
}

// reportEnd announces a finished game and stores it once.
func (p *Protocol) reportEnd() {
	st := p.game.Status()
	if st == game.Ongoing {
		return
	}
	p.printf("result %s\n", st)
	log.Printf("Game time: %d millisec", p.game.Duration().Milliseconds())
	p.saveGame()
}

// reopened lets a game that was finished and saved be saved again once
// undo or a new turn limit puts it back in play.
func (p *Protocol) reopened() {
	if p.game.Status() == game.Ongoing {
		p.saved = false
	}
}

// saveGame writes the game to storage if anything was played.
func (p *Protocol) saveGame() {
	if p.store == nil || p.saved || len(p.game.Turns()) == 0 {
		return
	}
	rec := storage.RecordFromGame(p.gameID, p.game)
	p.gameID = rec.ID
	if p.game.Status() == game.Ongoing {
		if err := p.store.SaveGame(rec); err != nil {
			log.Printf("save game: %v", err)
		}
		return
	}
	if err := p.store.RecordResult(rec); err != nil {
		log.Printf("record result: %v", err)
		return
	}
	p.saved = true
}

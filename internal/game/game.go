// Package game runs a draughts game between humans and bots: turn order,
// capture chains played segment by segment, undo and the end of the game.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/engine"
)

// Errors returned by Game methods.
var (
	// ErrIllegalMove is returned for a segment or turn that is not legal here.
	ErrIllegalMove = errors.New("illegal move")
	// ErrGameOver is returned when moving after the game has ended.
	ErrGameOver = errors.New("game is over")
	// ErrNotHumanTurn is returned when a human tries to move for a bot.
	ErrNotHumanTurn = errors.New("side to move is played by the bot")
	// ErrNotBotTurn is returned when the engine is asked to move for a human.
	ErrNotBotTurn = errors.New("side to move is played by a human")
	// ErrNothingToUndo is returned by Undo at the start of the game.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrChainInProgress is returned when the engine is asked to move while a
	// capture chain is half played.
	ErrChainInProgress = errors.New("capture chain in progress")
)

// Status is the outcome of the game so far.
type Status int

const (
	Ongoing Status = iota
	WhiteWon
	BlackWon
	Draw
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case WhiteWon:
		return "white won"
	case BlackWon:
		return "black won"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{Ongoing, WhiteWon, BlackWon, Draw} {
		if st.String() == s {
			return st, true
		}
	}
	return Ongoing, false
}

// Winner returns the winning color, if any.
func (s Status) Winner() (board.Color, bool) {
	switch s {
	case WhiteWon:
		return board.White, true
	case BlackWon:
		return board.Black, true
	}
	return board.White, false
}

// Record is one completed turn.
type Record struct {
	Color  board.Color
	Turn   board.Turn
	Bot    bool
	before board.Board
}

// Game tracks one game. It is not safe for concurrent use.
type Game struct {
	settings *config.Settings
	engines  [2]*engine.Engine

	initial   board.Board
	firstSide board.Color
	board     board.Board
	turnNum   int
	pin       board.Square
	current   board.Turn
	turnStart board.Board
	history   []Record
	status    Status

	startedAt time.Time
	endedAt   time.Time
}

// New starts a game from the initial position with White to move.
func New(settings *config.Settings) (*Game, error) {
	return NewFromBoard(settings, board.NewBoard(), board.White)
}

// NewFromBoard starts a game from b with side to move.
func NewFromBoard(settings *config.Settings, b board.Board, side board.Color) (*Game, error) {
	g := &Game{
		initial:   b,
		firstSide: side,
		board:     b,
		turnNum:   int(side),
		pin:       board.NoSquare,
		startedAt: time.Now(),
	}
	if err := g.Configure(settings); err != nil {
		return nil, err
	}
	return g, nil
}

// Configure replaces the settings and rebuilds both engines. The position
// is kept; a new turn limit may end or reopen the game.
func (g *Game) Configure(settings *config.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	var engines [2]*engine.Engine
	for _, c := range []board.Color{board.White, board.Black} {
		opts, err := settings.EngineOptions(c)
		if err != nil {
			return err
		}
		eng, err := engine.New(opts)
		if err != nil {
			return err
		}
		engines[c] = eng
	}
	g.settings = settings
	g.engines = engines
	g.updateStatus()
	return nil
}

// Settings returns the settings the game was last configured with.
func (g *Game) Settings() *config.Settings { return g.settings }

// Board returns a copy of the current position.
func (g *Game) Board() board.Board { return g.board }

// Initial returns the position the game started from and who moved first.
func (g *Game) Initial() (board.Board, board.Color) { return g.initial, g.firstSide }

// SideToMove returns the color whose turn it is.
func (g *Game) SideToMove() board.Color { return board.Color(g.turnNum % 2) }

// TurnNumber counts completed turns, starting at 0 for White's first turn.
func (g *Game) TurnNumber() int { return g.turnNum }

// Status returns the outcome so far.
func (g *Game) Status() Status { return g.status }

// Pinned returns the square of the piece that must continue a capture chain.
func (g *Game) Pinned() (board.Square, bool) {
	return g.pin, g.pin != board.NoSquare
}

// Current returns the segments already played in the unfinished turn.
func (g *Game) Current() board.Turn {
	return append(board.Turn(nil), g.current...)
}

// Turns returns the completed turns in order.
func (g *Game) Turns() []Record {
	return append([]Record(nil), g.history...)
}

// IsBot returns true if color c is played by the engine.
func (g *Game) IsBot(c board.Color) bool { return g.settings.IsBot(c) }

// IsBotTurn returns true if the side to move is played by the engine.
func (g *Game) IsBotTurn() bool { return g.IsBot(g.SideToMove()) }

// Engine returns the engine configured for color c.
func (g *Game) Engine(c board.Color) *engine.Engine { return g.engines[c] }

// StartedAt returns when the game was created.
func (g *Game) StartedAt() time.Time { return g.startedAt }

// Duration is the time from the start until the end of the game, or until now.
func (g *Game) Duration() time.Duration {
	if g.endedAt.IsZero() {
		return time.Since(g.startedAt)
	}
	return g.endedAt.Sub(g.startedAt)
}

// LegalMoves returns the segments the side to move may play next. During a
// capture chain only the pinned piece's captures are listed.
func (g *Game) LegalMoves() board.MoveList {
	if g.status != Ongoing {
		return board.MoveList{}
	}
	if sq, ok := g.Pinned(); ok {
		return g.board.PieceMoves(sq)
	}
	return g.board.ColorMoves(g.SideToMove())
}

// Play applies one segment for the side to move. After a capture the turn
// stays open while the same piece can capture again.
func (g *Game) Play(m board.Move) error {
	if g.status != Ongoing {
		return ErrGameOver
	}
	legal, ok := g.LegalMoves().Find(m)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	if len(g.current) == 0 {
		g.turnStart = g.board
	}
	g.board = g.board.Apply(legal)
	g.current = append(g.current, legal)

	if legal.IsCapture() && g.board.PieceMoves(legal.To).HasCaptures {
		g.pin = legal.To
		return nil
	}
	g.finishTurn(false)
	return nil
}

// PlayTurn plays every segment of t. The turn must be complete.
func (g *Game) PlayTurn(t board.Turn) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty turn", ErrIllegalMove)
	}
	start := g.turnNum
	for i, m := range t {
		if g.turnNum != start {
			return fmt.Errorf("%w: %s ends after %d segments", ErrIllegalMove, t, i)
		}
		if err := g.Play(m); err != nil {
			return err
		}
	}
	if g.turnNum == start {
		return fmt.Errorf("%w: %s leaves a capture unfinished", ErrIllegalMove, t)
	}
	return nil
}

// PlayBot lets the engine play the whole turn for the side to move.
func (g *Game) PlayBot() (engine.SearchInfo, error) {
	if g.status != Ongoing {
		return engine.SearchInfo{}, ErrGameOver
	}
	if _, ok := g.Pinned(); ok {
		return engine.SearchInfo{}, ErrChainInProgress
	}

	side := g.SideToMove()
	info := g.engines[side].Search(g.board, side)
	if len(info.Turn) == 0 {
		// updateStatus already ends the game when the side to move is stuck.
		return info, ErrGameOver
	}

	g.turnStart = g.board
	g.board = g.board.ApplyTurn(info.Turn)
	g.current = append(board.Turn(nil), info.Turn...)
	g.finishTurn(true)
	return info, nil
}

func (g *Game) finishTurn(bot bool) {
	g.history = append(g.history, Record{
		Color:  g.SideToMove(),
		Turn:   g.current,
		Bot:    bot,
		before: g.turnStart,
	})
	g.current = nil
	g.pin = board.NoSquare
	g.turnNum++
	g.updateStatus()
}

// updateStatus ends the game when the turn limit is reached or the side to
// move is stuck. The limit is checked first.
func (g *Game) updateStatus() {
	prev := g.status
	switch {
	case g.turnNum >= g.settings.Game.MaxNumTurns:
		g.status = Draw
	case !g.board.HasMoves(g.SideToMove()):
		if g.SideToMove() == board.White {
			g.status = BlackWon
		} else {
			g.status = WhiteWon
		}
	default:
		g.status = Ongoing
	}

	switch {
	case g.status == Ongoing:
		g.endedAt = time.Time{}
	case prev == Ongoing || g.endedAt.IsZero():
		g.endedAt = time.Now()
	}
}

// Undo takes back moves. In the middle of a capture chain it returns to the
// start of that turn. Otherwise it takes back the last turn, and when that
// hands the move to a bot playing against a human, the turn before it too,
// so the human is to move again.
func (g *Game) Undo() error {
	if len(g.current) > 0 {
		g.board = g.turnStart
		g.current = nil
		g.pin = board.NoSquare
		return nil
	}
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}

	g.popTurn()
	side := g.SideToMove()
	if g.IsBot(side) && !g.IsBot(side.Other()) && len(g.history) > 0 {
		g.popTurn()
	}
	g.updateStatus()
	return nil
}

func (g *Game) popTurn() {
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.board = last.before
	g.turnNum--
}

// Package engine selects turns for an automated draughts player with a
// fixed-depth minimax search over whole turns, capture chains included.
package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/hailam/draughts/internal/board"
)

// SearchInfo describes a finished search.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	Turn  board.Turn
}

// Engine is the draughts AI. It is not safe for concurrent use.
type Engine struct {
	opts     Options
	rng      *rand.Rand
	searcher *Searcher

	// Callbacks
	OnInfo func(SearchInfo)
}

// New creates an engine. It rejects a depth below one ply and unknown scoring modes.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}

	seed := time.Now().UnixNano()
	if opts.Deterministic {
		seed = 0
	}
	rng := rand.New(rand.NewSource(seed))

	return &Engine{
		opts:     opts,
		rng:      rng,
		searcher: NewSearcher(opts, rng),
	}, nil
}

// Options returns the options the engine was created with.
func (e *Engine) Options() Options {
	return e.opts
}

// FindBestTurn returns the full turn color should play on b: a single quiet
// move, or every segment of a capture chain in order. It returns nil when
// color has no legal move. b is not modified.
func (e *Engine) FindBestTurn(b board.Board, color board.Color) board.Turn {
	return e.Search(b, color).Turn
}

// Search is FindBestTurn with statistics.
func (e *Engine) Search(b board.Board, color board.Color) SearchInfo {
	start := time.Now()
	e.searcher.Reset()

	turn, score := e.searcher.Search(b, color)

	info := SearchInfo{
		Depth: e.opts.Depth,
		Score: score,
		Nodes: e.searcher.Nodes(),
		Time:  time.Since(start),
		Turn:  turn,
	}
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
	return info
}

// LegalMoves returns the first segments available to color, in the
// engine's random order.
func (e *Engine) LegalMoves(b board.Board, color board.Color) board.MoveList {
	return b.GenerateMoves(color, e.rng)
}

// PieceMoves returns the moves of the piece on sq.
func (e *Engine) PieceMoves(b board.Board, sq board.Square) board.MoveList {
	return b.PieceMoves(sq)
}

// Evaluate returns the static evaluation of b for perspective.
func (e *Engine) Evaluate(b board.Board, perspective board.Color) float64 {
	return Evaluate(&b, perspective, e.opts.Scoring)
}

// Perft counts the positions reachable in depth whole turns, capture
// chains expanded segment by segment. A depth below one counts only b.
func Perft(b board.Board, color board.Color, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	ml := b.ColorMoves(color)
	var nodes uint64
	for _, m := range ml.Moves {
		nodes += perftChain(b.Apply(m), color, m, ml.HasCaptures, depth)
	}
	return nodes
}

func perftChain(b board.Board, color board.Color, m board.Move, capture bool, depth int) uint64 {
	if capture {
		if next := b.PieceMoves(m.To); next.HasCaptures {
			var nodes uint64
			for _, n := range next.Moves {
				nodes += perftChain(b.Apply(n), color, n, true, depth)
			}
			return nodes
		}
	}
	return Perft(b, color.Other(), depth-1)
}

// ScoreToString formats a score for display.
func ScoreToString(score float64) string {
	switch {
	case score >= Inf:
		return "win"
	case score <= 0:
		return "loss"
	}
	return strconv.FormatFloat(score, 'f', 3, 64)
}

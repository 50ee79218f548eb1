package engine

import (
	"math/rand"

	"github.com/hailam/draughts/internal/board"
)

// Search bounds. Evaluations live in [0, Inf], so -1 and Inf+1 lie outside
// every reachable score.
const (
	initialAlpha = -1
	initialBeta  = Inf + 1
)

// Pin restricts move generation to the piece that is in the middle of a
// capture chain.
type Pin struct {
	sq     board.Square
	pinned bool
}

// NoPin lets every piece of the side to move play.
var NoPin = Pin{}

// PinnedAt pins the piece on sq.
func PinnedAt(sq board.Square) Pin {
	return Pin{sq: sq, pinned: true}
}

// Square returns the pinned square and whether a piece is pinned at all.
func (p Pin) Square() (board.Square, bool) {
	return p.sq, p.pinned
}

// Searcher runs one fixed-depth minimax search at a time.
type Searcher struct {
	maxDepth int
	scoring  ScoringMode
	pruning  bool
	rng      *rand.Rand
	nodes    uint64
}

// NewSearcher creates a searcher. rng decides the order of equally scored moves.
func NewSearcher(opts Options, rng *rand.Rand) *Searcher {
	return &Searcher{
		maxDepth: opts.Depth,
		scoring:  opts.Scoring,
		pruning:  opts.Pruning,
		rng:      rng,
	}
}

// Reset clears the node counter.
func (s *Searcher) Reset() {
	s.nodes = 0
}

// Nodes returns the number of nodes visited since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search returns the best turn for color on b and its score.
// The turn is nil when color has no legal move.
func (s *Searcher) Search(b board.Board, color board.Color) (board.Turn, float64) {
	score, turn := s.extendChain(b, color, NoPin, initialAlpha)
	return turn, score
}

// extendChain picks the best segment for color and, while the moved piece
// keeps capturing, the best continuation of its chain. Once the chain is
// over the opponent replies through minimax at depth 0. The first of
// several equally scored segments is kept.
func (s *Searcher) extendChain(b board.Board, color board.Color, pin Pin, alpha float64) (float64, board.Turn) {
	s.nodes++

	var ml board.MoveList
	if sq, ok := pin.Square(); ok {
		ml = b.PieceMoves(sq)
		if !ml.HasCaptures {
			return s.minimax(b, color.Other(), 0, alpha, initialBeta, NoPin), nil
		}
	} else {
		ml = b.GenerateMoves(color, s.rng)
	}

	best := float64(initialAlpha)
	var bestTurn board.Turn
	for _, m := range ml.Moves {
		next := b.Apply(m)

		var score float64
		var rest board.Turn
		if ml.HasCaptures {
			score, rest = s.extendChain(next, color, PinnedAt(m.To), best)
		} else {
			score = s.minimax(next, color.Other(), 0, best, initialBeta, NoPin)
		}

		if score > best {
			best = score
			bestTurn = append(board.Turn{m}, rest...)
		}
	}
	return best, bestTurn
}

// minimax scores b for the root side with color to move. Odd depths are
// the root side's turns and maximize; even depths minimize. A capture
// keeps the same color and depth with the landing square pinned; a quiet
// move or the end of a chain passes the turn and adds a ply.
func (s *Searcher) minimax(b board.Board, color board.Color, depth int, alpha, beta float64, pin Pin) float64 {
	s.nodes++

	if depth == s.maxDepth {
		return Evaluate(&b, perspective(depth, color), s.scoring)
	}

	var ml board.MoveList
	if sq, ok := pin.Square(); ok {
		ml = b.PieceMoves(sq)
		if !ml.HasCaptures {
			return s.minimax(b, color.Other(), depth+1, alpha, beta, NoPin)
		}
	} else {
		ml = b.GenerateMoves(color, s.rng)
	}

	maximizing := depth%2 == 1
	if ml.Len() == 0 {
		// The side to move has lost.
		if maximizing {
			return 0
		}
		return Inf
	}

	minScore, maxScore := float64(initialBeta), float64(initialAlpha)
	for _, m := range ml.Moves {
		next := b.Apply(m)

		var score float64
		if ml.HasCaptures {
			score = s.minimax(next, color, depth, alpha, beta, PinnedAt(m.To))
		} else {
			score = s.minimax(next, color.Other(), depth+1, alpha, beta, NoPin)
		}

		minScore = min(minScore, score)
		maxScore = max(maxScore, score)
		if maximizing {
			alpha = max(alpha, maxScore)
		} else {
			beta = min(beta, minScore)
		}

		if s.pruning && alpha >= beta {
			if maximizing {
				return maxScore + 1
			}
			return minScore - 1
		}
	}

	if maximizing {
		return maxScore
	}
	return minScore
}

package engine

import "github.com/hailam/draughts/internal/board"

// Inf is the score of a won position. Every other evaluation is a finite
// non-negative material ratio.
const Inf = 1e9

const (
	potentialPerRow = 0.05
	kingWeight      = 4
	kingWeightPot   = 5
)

// Evaluate scores b for the perspective side as own material divided by
// opposing material. It returns Inf when the opponent has nothing left and
// 0 when the perspective side has nothing left.
func Evaluate(b *board.Board, perspective board.Color, mode ScoringMode) float64 {
	var men, kings [2]float64
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			cell := b[row][col]
			if cell == board.Empty {
				continue
			}
			c := cell.Color()
			if cell.IsKing() {
				kings[c]++
				continue
			}
			men[c]++
			if mode == ScoreNumberAndPotential {
				men[c] += potentialPerRow * float64(advancement(c, row))
			}
		}
	}

	own, opp := perspective, perspective.Other()
	if men[opp]+kings[opp] == 0 {
		return Inf
	}
	if men[own]+kings[own] == 0 {
		return 0
	}

	weight := float64(kingWeight)
	if mode == ScoreNumberAndPotential {
		weight = kingWeightPot
	}
	return (men[own] + kings[own]*weight) / (men[opp] + kings[opp]*weight)
}

// advancement is how many rows a man has moved away from its own back rank.
func advancement(c board.Color, row int) int {
	if c == board.White {
		return board.Size - 1 - row
	}
	return row
}

// perspective returns the side the evaluator scores for at the given depth
// when color is to move. The opponent of the root moves at depth 0, so this
// always resolves to the root side.
func perspective(depth int, color board.Color) board.Color {
	if depth%2 == int(color) {
		return board.Black
	}
	return board.White
}

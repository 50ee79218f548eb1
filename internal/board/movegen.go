package board

import "math/rand"

// Diagonal directions in generation order: up-left, up-right, down-left, down-right.
var diagonals = [4][2]int8{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// PieceMoves returns the moves of the piece on sq. If the piece has any
// capture, only captures are returned and HasCaptures is set.
// An empty square yields an empty list.
func (b *Board) PieceMoves(sq Square) MoveList {
	piece := b.At(sq)
	if piece == Empty {
		return MoveList{}
	}

	var moves []Move
	if piece.IsKing() {
		moves = b.kingCaptures(sq, piece)
	} else {
		moves = b.manCaptures(sq, piece)
	}
	if len(moves) > 0 {
		return MoveList{Moves: moves, HasCaptures: true}
	}

	if piece.IsKing() {
		moves = b.kingSlides(sq)
	} else {
		moves = b.manSteps(sq, piece)
	}
	return MoveList{Moves: moves}
}

// manCaptures jumps over an adjacent opposing piece in any of the four
// diagonals, backward included, onto the empty square right behind it.
func (b *Board) manCaptures(sq Square, piece Cell) []Move {
	var moves []Move
	for _, d := range diagonals {
		over := sq.Offset(d[0], d[1])
		to := sq.Offset(2*d[0], 2*d[1])
		if !to.IsValid() || b.At(to) != Empty {
			continue
		}
		victim := b.At(over)
		if victim == Empty || victim.Color() == piece.Color() {
			continue
		}
		moves = append(moves, NewCapture(sq, to, over))
	}
	return moves
}

// kingCaptures scans each ray: the first opposing piece becomes the victim
// and every empty square behind it is a landing. A friendly piece, or a
// second opposing piece, ends the ray.
func (b *Board) kingCaptures(sq Square, piece Cell) []Move {
	var moves []Move
	for _, d := range diagonals {
		victim := NoSquare
		for cur := sq.Offset(d[0], d[1]); cur.IsValid(); cur = cur.Offset(d[0], d[1]) {
			cell := b.At(cur)
			if cell != Empty {
				if cell.Color() == piece.Color() || victim != NoSquare {
					break
				}
				victim = cur
				continue
			}
			if victim != NoSquare {
				moves = append(moves, NewCapture(sq, cur, victim))
			}
		}
	}
	return moves
}

func (b *Board) manSteps(sq Square, piece Cell) []Move {
	dr := int8(1)
	if piece.Color() == White {
		dr = -1
	}
	var moves []Move
	for _, dc := range [2]int8{-1, 1} {
		to := sq.Offset(dr, dc)
		if to.IsValid() && b.At(to) == Empty {
			moves = append(moves, NewMove(sq, to))
		}
	}
	return moves
}

func (b *Board) kingSlides(sq Square) []Move {
	var moves []Move
	for _, d := range diagonals {
		for cur := sq.Offset(d[0], d[1]); cur.IsValid() && b.At(cur) == Empty; cur = cur.Offset(d[0], d[1]) {
			moves = append(moves, NewMove(sq, cur))
		}
	}
	return moves
}

// ColorMoves returns every legal first segment for color c, scanning
// squares row by row. Capturing is mandatory: once any piece can capture,
// quiet moves are dropped and only captures are collected.
func (b *Board) ColorMoves(c Color) MoveList {
	var ml MoveList
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			cell := b[row][col]
			if cell == Empty || cell.Color() != c {
				continue
			}
			pm := b.PieceMoves(NewSquare(row, col))
			switch {
			case pm.HasCaptures && !ml.HasCaptures:
				ml.Moves = append(ml.Moves[:0], pm.Moves...)
				ml.HasCaptures = true
			case pm.HasCaptures == ml.HasCaptures:
				ml.Moves = append(ml.Moves, pm.Moves...)
			}
		}
	}
	return ml
}

// GenerateMoves is ColorMoves followed by a shuffle of the whole list.
// A nil rng leaves the scan order untouched.
func (b *Board) GenerateMoves(c Color, rng *rand.Rand) MoveList {
	ml := b.ColorMoves(c)
	if rng != nil {
		rng.Shuffle(len(ml.Moves), func(i, j int) {
			ml.Moves[i], ml.Moves[j] = ml.Moves[j], ml.Moves[i]
		})
	}
	return ml
}

// HasMoves returns true if color c has at least one legal move.
func (b *Board) HasMoves(c Color) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			cell := b[row][col]
			if cell == Empty || cell.Color() != c {
				continue
			}
			if b.PieceMoves(NewSquare(row, col)).Len() > 0 {
				return true
			}
		}
	}
	return false
}

// Package board implements the Russian draughts board, its notation and legal move generation.
package board

import "fmt"

// Size is the number of rows and columns on the board.
const Size = 8

// Square addresses a cell by row and column (0-7).
// Row 0 is the far side for White: white men move toward row 0, black men toward row 7.
type Square struct {
	Row int8
	Col int8
}

// NoSquare is the sentinel for "no square", e.g. the captured square of a quiet move.
var NoSquare = Square{Row: -1, Col: -1}

// NewSquare creates a square from row and column.
func NewSquare(row, col int) Square {
	return Square{Row: int8(row), Col: int8(col)}
}

// IsValid returns true if the square lies on the board.
func (sq Square) IsValid() bool {
	return sq.Row >= 0 && sq.Row < Size && sq.Col >= 0 && sq.Col < Size
}

// IsDark returns true for the playing squares.
func (sq Square) IsDark() bool {
	return (sq.Row+sq.Col)%2 == 1
}

// Offset returns the square dr rows and dc columns away. The result may be off the board.
func (sq Square) Offset(dr, dc int8) Square {
	return Square{Row: sq.Row + dr, Col: sq.Col + dc}
}

// File returns the column as a letter index (0 = a).
func (sq Square) File() int {
	return int(sq.Col)
}

// Rank returns the rank number (1-8) as seen from White's side.
func (sq Square) Rank() int {
	return Size - int(sq.Row)
}

// String returns the algebraic notation for the square (e.g., "c3").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.File(), sq.Rank())
}

// ParseSquare parses algebraic notation (e.g., "c3") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '0')

	if file < 0 || file >= Size || rank < 1 || rank > Size {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(Size-rank, file), nil
}

// PromotionRow returns the row on which a man of color c becomes a king.
func PromotionRow(c Color) int8 {
	if c == White {
		return 0
	}
	return Size - 1
}

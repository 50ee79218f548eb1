package board

import "strings"

// Board is the 8x8 grid indexed as [row][col]. It is a value type:
// assigning or passing a Board copies it, which is what the search relies on.
type Board [Size][Size]Cell

// NewBoard returns the starting position: black men on the dark squares of
// rows 0-2, white men on rows 5-7.
func NewBoard() Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if (row+col)%2 == 0 {
				continue
			}
			switch {
			case row < 3:
				b[row][col] = BlackMan
			case row > 4:
				b[row][col] = WhiteMan
			}
		}
	}
	return b
}

// At returns the cell on sq, or Empty if sq is off the board.
func (b *Board) At(sq Square) Cell {
	if !sq.IsValid() {
		return Empty
	}
	return b[sq.Row][sq.Col]
}

// Set places c on sq. Off-board squares are ignored.
func (b *Board) Set(sq Square, c Cell) {
	if !sq.IsValid() {
		return
	}
	b[sq.Row][sq.Col] = c
}

// Apply returns the board after m. The captured piece is removed and a man
// landing on its promotion row becomes a king in the same step.
// The receiver is a copy, so the caller's board is never changed.
func (b Board) Apply(m Move) Board {
	if m.IsCapture() {
		b.Set(m.Captured, Empty)
	}
	piece := b.At(m.From)
	if piece.IsMan() && m.To.Row == PromotionRow(piece.Color()) {
		piece = piece.Promoted()
	}
	b.Set(m.To, piece)
	b.Set(m.From, Empty)
	return b
}

// ApplyTurn applies every segment of t in order.
func (b Board) ApplyTurn(t Turn) Board {
	for _, m := range t {
		b = b.Apply(m)
	}
	return b
}

// Count returns how many squares hold c.
func (b *Board) Count(c Cell) int {
	n := 0
	for row := range b {
		for col := range b[row] {
			if b[row][col] == c {
				n++
			}
		}
	}
	return n
}

// Pieces returns the number of men and kings of color c.
func (b *Board) Pieces(c Color) (men, kings int) {
	return b.Count(NewCell(c, false)), b.Count(NewCell(c, true))
}

// HasPieces returns true if color c has anything left on the board.
func (b *Board) HasPieces(c Color) bool {
	men, kings := b.Pieces(c)
	return men+kings > 0
}

// String renders a diagram with rank numbers on the left and files below,
// White at the bottom.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		sb.WriteByte(byte('0' + Size - row))
		sb.WriteByte(' ')
		for col := 0; col < Size; col++ {
			cell := b[row][col]
			ch := cell.Char()
			if cell == Empty && (row+col)%2 == 0 {
				ch = ' '
			}
			sb.WriteByte(ch)
			if col < Size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

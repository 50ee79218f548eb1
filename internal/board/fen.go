package board

import (
	"errors"
	"fmt"
	"strings"
)

// StartPosition is the encoding of the starting position.
const StartPosition = "1b1b1b1b/b1b1b1b1/1b1b1b1b/8/8/w1w1w1w1/1w1w1w1w/w1w1w1w1"

// ErrInvalidBoard is returned when a board encoding cannot be parsed.
var ErrInvalidBoard = errors.New("invalid board")

// ParseBoard parses the compact encoding: eight rows from row 0 to row 7
// separated by '/', with w/b for men, W/B for kings, '.' or a digit 1-8 for
// empty squares. Pieces must stand on dark squares and a man may not stand
// on the row where it would already have been crowned.
func ParseBoard(s string) (Board, error) {
	var b Board

	rows := strings.Split(strings.TrimSpace(s), "/")
	if len(rows) != Size {
		return b, fmt.Errorf("%w: need %d rows, got %d", ErrInvalidBoard, Size, len(rows))
	}

	for row, text := range rows {
		col := 0
		for i := 0; i < len(text); i++ {
			ch := text[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				if col > Size {
					return b, fmt.Errorf("%w: row %d is too long", ErrInvalidBoard, row)
				}
				continue
			}
			cell, ok := CellFromChar(ch)
			if !ok {
				return b, fmt.Errorf("%w: unexpected %q in row %d", ErrInvalidBoard, ch, row)
			}
			if col >= Size {
				return b, fmt.Errorf("%w: row %d is too long", ErrInvalidBoard, row)
			}
			if cell != Empty {
				sq := NewSquare(row, col)
				if !sq.IsDark() {
					return b, fmt.Errorf("%w: piece on light square %s", ErrInvalidBoard, sq)
				}
				if cell.IsMan() && sq.Row == PromotionRow(cell.Color()) {
					return b, fmt.Errorf("%w: uncrowned man on %s", ErrInvalidBoard, sq)
				}
			}
			b[row][col] = cell
			col++
		}
		if col != Size {
			return b, fmt.Errorf("%w: row %d has %d squares", ErrInvalidBoard, row, col)
		}
	}

	return b, nil
}

// Encode returns the compact encoding understood by ParseBoard.
func (b *Board) Encode() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < Size; col++ {
			cell := b[row][col]
			if cell == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(cell.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

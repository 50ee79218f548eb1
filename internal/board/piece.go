package board

// Color represents the side a piece or player belongs to.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// ParseColor accepts "w", "white", "b" or "black" in any case.
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "W", "white", "White", "WHITE":
		return White, true
	case "b", "B", "black", "Black", "BLACK":
		return Black, true
	}
	return White, false
}

// Cell is the content of a single square.
// Odd values are white, even non-zero values are black; values above 2 are kings.
type Cell int8

const (
	Empty Cell = iota
	WhiteMan
	BlackMan
	WhiteKing
	BlackKing
)

// NewCell builds the cell for a piece of the given color.
func NewCell(c Color, king bool) Cell {
	cell := WhiteMan
	if c == Black {
		cell = BlackMan
	}
	if king {
		cell += 2
	}
	return cell
}

// IsValid reports whether the cell holds one of the five legal values.
func (c Cell) IsValid() bool {
	return c >= Empty && c <= BlackKing
}

// IsEmpty returns true for an unoccupied square.
func (c Cell) IsEmpty() bool {
	return c == Empty
}

// IsKing returns true for promoted pieces.
func (c Cell) IsKing() bool {
	return c >= WhiteKing
}

// IsMan returns true for unpromoted pieces.
func (c Cell) IsMan() bool {
	return c == WhiteMan || c == BlackMan
}

// Color returns the owner of the piece. The result is meaningless for Empty.
func (c Cell) Color() Color {
	if c%2 == 1 {
		return White
	}
	return Black
}

// Promoted returns the king of the same color for a man, the cell itself otherwise.
func (c Cell) Promoted() Cell {
	if c.IsMan() {
		return c + 2
	}
	return c
}

// Char returns the encoding character: '.', 'w', 'b', 'W' or 'B'.
func (c Cell) Char() byte {
	switch c {
	case WhiteMan:
		return 'w'
	case BlackMan:
		return 'b'
	case WhiteKing:
		return 'W'
	case BlackKing:
		return 'B'
	default:
		return '.'
	}
}

// String returns the encoding character as a string.
func (c Cell) String() string {
	return string(c.Char())
}

// CellFromChar converts an encoding character to a Cell.
func CellFromChar(ch byte) (Cell, bool) {
	switch ch {
	case '.':
		return Empty, true
	case 'w':
		return WhiteMan, true
	case 'b':
		return BlackMan, true
	case 'W':
		return WhiteKing, true
	case 'B':
		return BlackKing, true
	}
	return Empty, false
}

package board

import (
	"fmt"
	"strings"
)

// Move is a single segment of a turn: one piece goes from From to To,
// optionally removing the piece on Captured.
type Move struct {
	From     Square
	To       Square
	Captured Square // NoSquare for a quiet move
}

// NewMove creates a quiet move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Captured: NoSquare}
}

// NewCapture creates a capturing move.
func NewCapture(from, to, captured Square) Move {
	return Move{From: from, To: to, Captured: captured}
}

// IsCapture returns true if the move removes an opposing piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoSquare
}

// Equal compares origin and destination only. The captured square follows
// from the board, so two moves between the same squares are the same move.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// String returns "c3-d4" for quiet moves and "c3:e5" for captures.
func (m Move) String() string {
	sep := "-"
	if m.IsCapture() {
		sep = ":"
	}
	return m.From.String() + sep + m.To.String()
}

// ParseMove parses "c3-d4", "c3:e5" or "c3d4". The captured square is left
// unset; callers resolve it against a MoveList with Find.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	var from, to string
	switch {
	case len(s) == 5 && (s[2] == '-' || s[2] == ':' || s[2] == 'x'):
		from, to = s[:2], s[3:]
	case len(s) == 4:
		from, to = s[:2], s[2:]
	default:
		return Move{}, fmt.Errorf("invalid move string: %s", s)
	}

	f, err := ParseSquare(from)
	if err != nil {
		return Move{}, err
	}
	t, err := ParseSquare(to)
	if err != nil {
		return Move{}, err
	}
	return NewMove(f, t), nil
}

// Turn is a player's complete play: one quiet move, or one or more chained captures.
type Turn []Move

// Captures returns the number of pieces removed by the turn.
func (t Turn) Captures() int {
	n := 0
	for _, m := range t {
		if m.IsCapture() {
			n++
		}
	}
	return n
}

// String renders a quiet turn as "c3-d4" and a chain as "c3:e5:g3".
func (t Turn) String() string {
	if len(t) == 0 {
		return "-"
	}
	var sb strings.Builder
	sb.WriteString(t[0].String())
	for _, m := range t[1:] {
		sb.WriteByte(':')
		sb.WriteString(m.To.String())
	}
	return sb.String()
}

// ParseTurn parses "c3-d4" or a capture chain such as "c3:e5:g3". As with
// ParseMove, captured squares are left unset.
func ParseTurn(s string) (Turn, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		m, err := ParseMove(s)
		if err != nil {
			return nil, err
		}
		return Turn{m}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == 'x' })
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid turn string: %s", s)
	}
	squares := make([]Square, len(parts))
	for i, p := range parts {
		sq, err := ParseSquare(p)
		if err != nil {
			return nil, err
		}
		squares[i] = sq
	}
	t := make(Turn, 0, len(squares)-1)
	for i := 1; i < len(squares); i++ {
		t = append(t, NewMove(squares[i-1], squares[i]))
	}
	return t, nil
}

// MoveList is the result of a generator query: the legal moves and whether they are captures.
type MoveList struct {
	Moves       []Move
	HasCaptures bool
}

// Len returns the number of moves in the list.
func (ml MoveList) Len() int {
	return len(ml.Moves)
}

// Find returns the listed move with the same origin and destination as m.
func (ml MoveList) Find(m Move) (Move, bool) {
	for _, cand := range ml.Moves {
		if cand.Equal(m) {
			return cand, true
		}
	}
	return Move{}, false
}

// From returns the moves that start on sq.
func (ml MoveList) From(sq Square) []Move {
	var out []Move
	for _, m := range ml.Moves {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// Origins returns the distinct squares that have at least one move, in list order.
func (ml MoveList) Origins() []Square {
	var out []Square
	seen := make(map[Square]bool, len(ml.Moves))
	for _, m := range ml.Moves {
		if !seen[m.From] {
			seen[m.From] = true
			out = append(out, m.From)
		}
	}
	return out
}

// Strings returns the moves in notation, in list order.
func (ml MoveList) Strings() []string {
	out := make([]string, len(ml.Moves))
	for i, m := range ml.Moves {
		out[i] = m.String()
	}
	return out
}

package board

import (
	"errors"
	"testing"
)

func TestNewBoardMatchesStartPosition(t *testing.T) {
	b := NewBoard()
	if got := b.Encode(); got != StartPosition {
		t.Errorf("Encode() = %s, want %s", got, StartPosition)
	}
	if b.Count(WhiteMan) != 12 || b.Count(BlackMan) != 12 {
		t.Errorf("got %d white, %d black men", b.Count(WhiteMan), b.Count(BlackMan))
	}

	parsed, err := ParseBoard(StartPosition)
	if err != nil {
		t.Fatal("Error parsing start position:", err)
	}
	if parsed != b {
		t.Error("parsed start position differs from NewBoard")
	}
}

func TestParseBoardRoundTrip(t *testing.T) {
	positions := []string{
		"8/8/8/8/8/8/8/8",
		"1B6/8/3w4/8/8/2b5/8/W7",
		"..b.....//8/8/8/8/8/8",
	}
	for _, s := range positions[:2] {
		b, err := ParseBoard(s)
		if err != nil {
			t.Fatalf("ParseBoard(%q): %v", s, err)
		}
		if got := b.Encode(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}

	if _, err := ParseBoard(positions[2]); !errors.Is(err, ErrInvalidBoard) {
		t.Errorf("expected ErrInvalidBoard, got %v", err)
	}
}

func TestParseBoardDots(t *testing.T) {
	b, err := ParseBoard("........" + "/8/8/8/8/8/8/" + ".w......")
	if err != nil {
		t.Fatal(err)
	}
	if b.At(sq("b1")) != WhiteMan {
		t.Errorf("b1 = %v, want w", b.At(sq("b1")))
	}
}

func TestParseBoardErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8",
		"8/8/8/8/8/8/8/9",
		"8/8/8/8/8/8/8/7",
		"8/8/8/8/8/8/8/8w",
		"8/8/8/8/8/8/8/7x",
		"w7/8/8/8/8/8/8/8",  // light square
		"1w6/8/8/8/8/8/8/8", // white man on its crowning row
		"8/8/8/8/8/8/8/b7",  // black man on its crowning row
	}
	for _, s := range bad {
		if _, err := ParseBoard(s); !errors.Is(err, ErrInvalidBoard) {
			t.Errorf("ParseBoard(%q) err = %v, want ErrInvalidBoard", s, err)
		}
	}
}

func TestApplyQuiet(t *testing.T) {
	b := NewBoard()
	next := b.Apply(NewMove(sq("c3"), sq("d4")))

	if next.At(sq("c3")) != Empty || next.At(sq("d4")) != WhiteMan {
		t.Errorf("move not applied:\n%s", next.String())
	}
	if b.At(sq("c3")) != WhiteMan {
		t.Error("Apply modified the original board")
	}
}

func TestApplyCaptureRemovesVictim(t *testing.T) {
	b := place(t, map[string]Cell{
		"c3": WhiteMan,
		"d4": BlackMan,
	})
	next := b.Apply(NewCapture(sq("c3"), sq("e5"), sq("d4")))

	if next.At(sq("d4")) != Empty {
		t.Error("captured piece still on board")
	}
	if next.At(sq("e5")) != WhiteMan {
		t.Errorf("e5 = %v, want w", next.At(sq("e5")))
	}
	if next.HasPieces(Black) {
		t.Error("black should have no pieces left")
	}
}

func TestApplyPromotes(t *testing.T) {
	tests := []struct {
		name  string
		piece Cell
		move  Move
		want  Cell
	}{
		{"white man to row 0", WhiteMan, NewMove(sq("c7"), sq("d8")), WhiteKing},
		{"black man to row 7", BlackMan, NewMove(sq("d2"), sq("c1")), BlackKing},
		{"white man not on last row", WhiteMan, NewMove(sq("c3"), sq("d4")), WhiteMan},
		{"king stays king", BlackKing, NewMove(sq("c7"), sq("d8")), BlackKing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			b.Set(tt.move.From, tt.piece)
			next := b.Apply(tt.move)
			if got := next.At(tt.move.To); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyCapturePromotesMidChain(t *testing.T) {
	// A white man reaching row 0 by capture is crowned before the next segment,
	// so the continuation from d8 is generated with king rules.
	b := place(t, map[string]Cell{
		"b6": WhiteMan,
		"c7": BlackMan,
		"f6": BlackMan,
	})
	next := b.Apply(NewCapture(sq("b6"), sq("d8"), sq("c7")))
	if next.At(sq("d8")) != WhiteKing {
		t.Fatalf("d8 = %v, want W", next.At(sq("d8")))
	}
	ml := next.PieceMoves(sq("d8"))
	if !ml.HasCaptures {
		t.Fatal("expected the new king to continue capturing")
	}
	for _, m := range ml.Moves {
		if m.Captured != sq("f6") {
			t.Errorf("%v captured %v, want f6", m, m.Captured)
		}
	}
	if ml.Len() != 2 {
		t.Errorf("got %v, want landings g5 and h4", ml.Strings())
	}
}

func TestApplyTurn(t *testing.T) {
	b := place(t, map[string]Cell{
		"a1": WhiteMan,
		"b2": BlackMan,
		"d4": BlackMan,
	})
	turn := Turn{
		NewCapture(sq("a1"), sq("c3"), sq("b2")),
		NewCapture(sq("c3"), sq("e5"), sq("d4")),
	}
	next := b.ApplyTurn(turn)
	if next.At(sq("e5")) != WhiteMan || next.HasPieces(Black) {
		t.Errorf("unexpected board after %v:\n%s", turn, next.String())
	}
	if turn.String() != "a1:c3:e5" {
		t.Errorf("Turn.String() = %s", turn.String())
	}
	if turn.Captures() != 2 {
		t.Errorf("Captures() = %d, want 2", turn.Captures())
	}
}

func TestOffBoardAccess(t *testing.T) {
	var b Board
	off := NewSquare(8, 0)
	b.Set(off, WhiteKing)
	if b.At(off) != Empty {
		t.Error("off-board square should read as empty")
	}
}

func TestParseSquareAndMove(t *testing.T) {
	s, err := ParseSquare("a1")
	if err != nil || s.Row != 7 || s.Col != 0 {
		t.Errorf("a1 -> %+v, %v", s, err)
	}
	if _, err := ParseSquare("i9"); err == nil {
		t.Error("expected error for i9")
	}

	for _, in := range []string{"c3-d4", "c3:d4", "c3xd4", "c3d4"} {
		m, err := ParseMove(in)
		if err != nil {
			t.Errorf("ParseMove(%q): %v", in, err)
			continue
		}
		if !m.Equal(NewMove(sq("c3"), sq("d4"))) {
			t.Errorf("ParseMove(%q) = %v", in, m)
		}
	}
	if _, err := ParseMove("c3--d4"); err == nil {
		t.Error("expected error for malformed move")
	}
}

func TestParseTurn(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"c3-d4", []string{"c3-d4"}},
		{"c3:e5", []string{"c3-e5"}},
		{"a1:c3:e5", []string{"a1-c3", "c3-e5"}},
		{"a1xc3xe5", []string{"a1-c3", "c3-e5"}},
	}
	for _, tt := range tests {
		turn, err := ParseTurn(tt.in)
		if err != nil {
			t.Errorf("ParseTurn(%q): %v", tt.in, err)
			continue
		}
		if len(turn) != len(tt.want) {
			t.Errorf("ParseTurn(%q) = %v", tt.in, turn)
			continue
		}
		for i, m := range turn {
			// Captured squares are unresolved, so segments print as quiet moves.
			if m.String() != tt.want[i] {
				t.Errorf("ParseTurn(%q)[%d] = %v, want %s", tt.in, i, m, tt.want[i])
			}
		}
	}

	for _, bad := range []string{"", "c3", "c3:z9", "c3-d4-e5"} {
		if _, err := ParseTurn(bad); err == nil {
			t.Errorf("ParseTurn(%q) should fail", bad)
		}
	}
}

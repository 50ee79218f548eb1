package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/hailam/draughts/internal/board"
)

func sq(s string) board.Square {
	v, err := board.ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return v
}

func place(pieces map[string]board.Cell) board.Board {
	var b board.Board
	for s, c := range pieces {
		b.Set(sq(s), c)
	}
	return b
}

func newTestEngine(t *testing.T, depth int, scoring ScoringMode, pruning bool) *Engine {
	t.Helper()
	eng, err := New(Options{Depth: depth, Scoring: scoring, Pruning: pruning, Deterministic: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero depth", Options{Depth: 0}, ErrInvalidDepth},
		{"negative depth", Options{Depth: -3}, ErrInvalidDepth},
		{"unknown scoring", Options{Depth: 2, Scoring: ScoringMode(9)}, ErrUnknownScoring},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if eng != nil {
				t.Error("expected nil engine")
			}
		})
	}

	if _, err := ParseScoringMode("Material"); !errors.Is(err, ErrUnknownScoring) {
		t.Errorf("ParseScoringMode: err = %v", err)
	}
	for _, name := range []string{"Number", "NumberAndPotential"} {
		m, err := ParseScoringMode(name)
		if err != nil || m.String() != name {
			t.Errorf("ParseScoringMode(%q) = %v, %v", name, m, err)
		}
	}
}

func TestSearchBasic(t *testing.T) {
	b := board.NewBoard()
	eng := newTestEngine(t, 1, ScoreNumber, true)

	turn := eng.FindBestTurn(b, board.White)
	if len(turn) != 1 {
		t.Fatalf("expected a single segment, got %v", turn)
	}
	if _, ok := b.ColorMoves(board.White).Find(turn[0]); !ok {
		t.Errorf("%v is not a legal opening move", turn)
	}
	if turn[0].IsCapture() {
		t.Errorf("%v should be quiet", turn)
	}
	if b != board.NewBoard() {
		t.Error("FindBestTurn modified the board")
	}
	t.Logf("Best turn: %s", turn)
}

func TestSingleLegalMove(t *testing.T) {
	b := place(map[string]board.Cell{"a1": board.WhiteMan})
	eng := newTestEngine(t, 3, ScoreNumberAndPotential, true)

	turn := eng.FindBestTurn(b, board.White)
	if len(turn) != 1 || !turn[0].Equal(board.NewMove(sq("a1"), sq("b2"))) {
		t.Errorf("got %v, want a1-b2", turn)
	}
}

func TestForcedDoubleCapture(t *testing.T) {
	b := place(map[string]board.Cell{
		"a1": board.WhiteMan,
		"b2": board.BlackMan,
		"d4": board.BlackMan,
		"h8": board.BlackKing,
	})
	eng := newTestEngine(t, 2, ScoreNumber, true)

	turn := eng.FindBestTurn(b, board.White)
	if turn.String() != "a1:c3:e5" {
		t.Fatalf("got %v, want a1:c3:e5", turn)
	}
	for i, m := range turn {
		if !m.IsCapture() {
			t.Errorf("segment %d (%v) is not a capture", i, m)
		}
	}
	if turn[1].From != turn[0].To {
		t.Errorf("chain is not continuous: %v", turn)
	}
}

func TestChainPicksLongerBranch(t *testing.T) {
	// From c3 the white man can take d4 and stop on e5, or take b4 and
	// continue through a5 over b6 to c7. Depth 1 compares material right
	// after the turn, so the two-piece branch wins.
	b := place(map[string]board.Cell{
		"c3": board.WhiteMan,
		"d4": board.BlackMan,
		"b4": board.BlackMan,
		"b6": board.BlackMan,
		"h8": board.BlackMan,
	})
	eng := newTestEngine(t, 1, ScoreNumber, true)

	turn := eng.FindBestTurn(b, board.White)
	if turn.String() != "c3:a5:c7" {
		t.Errorf("got %v, want c3:a5:c7", turn)
	}
}

func TestNoLegalMoveReturnsEmptyTurn(t *testing.T) {
	b := place(map[string]board.Cell{
		"a1": board.WhiteMan,
		"b2": board.BlackMan,
		"c3": board.BlackMan,
	})
	eng := newTestEngine(t, 2, ScoreNumber, true)

	if turn := eng.FindBestTurn(b, board.White); len(turn) != 0 {
		t.Errorf("got %v, want empty turn", turn)
	}
}

func TestEvaluateSentinels(t *testing.T) {
	onlyWhite := place(map[string]board.Cell{"c3": board.WhiteMan, "e1": board.WhiteKing})

	for _, mode := range []ScoringMode{ScoreNumber, ScoreNumberAndPotential} {
		if got := Evaluate(&onlyWhite, board.White, mode); got != Inf {
			t.Errorf("%v: white perspective = %v, want Inf", mode, got)
		}
		if got := Evaluate(&onlyWhite, board.Black, mode); got != 0 {
			t.Errorf("%v: black perspective = %v, want 0", mode, got)
		}
	}
}

func TestEvaluateRatio(t *testing.T) {
	tests := []struct {
		name        string
		pieces      map[string]board.Cell
		perspective board.Color
		mode        ScoringMode
		want        float64
	}{
		{
			name:        "number kings weigh four",
			pieces:      map[string]board.Cell{"a1": board.WhiteMan, "c1": board.WhiteMan, "h8": board.BlackKing},
			perspective: board.White,
			mode:        ScoreNumber,
			want:        0.5,
		},
		{
			name:        "number other side",
			pieces:      map[string]board.Cell{"a1": board.WhiteMan, "c1": board.WhiteMan, "h8": board.BlackKing},
			perspective: board.Black,
			mode:        ScoreNumber,
			want:        2,
		},
		{
			name:        "potential kings weigh five",
			pieces:      map[string]board.Cell{"a1": board.WhiteKing, "b8": board.BlackMan},
			perspective: board.White,
			mode:        ScoreNumberAndPotential,
			want:        5,
		},
		{
			name:        "potential counts advancement",
			pieces:      map[string]board.Cell{"c5": board.WhiteMan, "b8": board.BlackMan},
			perspective: board.White,
			mode:        ScoreNumberAndPotential,
			want:        1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := place(tt.pieces)
			got := Evaluate(&b, tt.perspective, tt.mode)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerspectiveIsRootSide(t *testing.T) {
	for _, root := range []board.Color{board.White, board.Black} {
		toMove := root.Other()
		for depth := 0; depth < 6; depth++ {
			if got := perspective(depth, toMove); got != root {
				t.Errorf("root %v depth %d: perspective %v", root, depth, got)
			}
			toMove = toMove.Other()
		}
	}
}

// randomBoard places a few men and kings on dark squares. Men never start
// on their own promotion row.
func randomBoard(rng *rand.Rand) board.Board {
	var b board.Board
	for _, c := range []board.Color{board.White, board.Black} {
		n := 1 + rng.Intn(3)
		for placed := 0; placed < n; {
			row, col := rng.Intn(board.Size), rng.Intn(board.Size)
			s := board.NewSquare(row, col)
			if !s.IsDark() || b.At(s) != board.Empty {
				continue
			}
			king := rng.Intn(5) == 0
			if !king && s.Row == board.PromotionRow(c) {
				continue
			}
			b.Set(s, board.NewCell(c, king))
			placed++
		}
	}
	return b
}

func TestPruningDoesNotChangeResult(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 60; i++ {
		b := randomBoard(rng)
		depth := 1 + rng.Intn(3)
		mode := ScoringMode(rng.Intn(2))
		color := board.Color(rng.Intn(2))

		pruned := newTestEngine(t, depth, mode, true).Search(b, color)
		full := newTestEngine(t, depth, mode, false).Search(b, color)

		if pruned.Turn.String() != full.Turn.String() {
			t.Errorf("board %s depth %d %v %v: pruned %v, full %v",
				b.Encode(), depth, mode, color, pruned.Turn, full.Turn)
		}
		if len(full.Turn) > 0 && pruned.Score != full.Score {
			t.Errorf("board %s: pruned score %v, full score %v", b.Encode(), pruned.Score, full.Score)
		}
	}
}

func TestDeterministicEnginesAgree(t *testing.T) {
	b := board.NewBoard()
	a := newTestEngine(t, 3, ScoreNumberAndPotential, true).FindBestTurn(b, board.White)
	c := newTestEngine(t, 3, ScoreNumberAndPotential, true).FindBestTurn(b, board.White)
	if a.String() != c.String() {
		t.Errorf("same seed gave %v and %v", a, c)
	}
}

func TestOnInfo(t *testing.T) {
	eng := newTestEngine(t, 2, ScoreNumber, true)
	var got SearchInfo
	calls := 0
	eng.OnInfo = func(info SearchInfo) {
		got = info
		calls++
	}

	eng.Search(board.NewBoard(), board.Black)
	if calls != 1 {
		t.Fatalf("OnInfo called %d times", calls)
	}
	if got.Depth != 2 || got.Nodes == 0 || len(got.Turn) != 1 {
		t.Errorf("unexpected info %+v", got)
	}
}

func TestPerft(t *testing.T) {
	if got := Perft(board.NewBoard(), board.White, 2); got != 49 {
		t.Errorf("Perft(2) = %d, want 49", got)
	}

	// One turn made of two chained captures counts once.
	b := place(map[string]board.Cell{
		"a1": board.WhiteMan,
		"b2": board.BlackMan,
		"d4": board.BlackMan,
	})
	if got := Perft(b, board.White, 1); got != 1 {
		t.Errorf("chain Perft(1) = %d, want 1", got)
	}
}

func TestScoreToString(t *testing.T) {
	if s := ScoreToString(Inf); s != "win" {
		t.Errorf("Inf -> %s", s)
	}
	if s := ScoreToString(0); s != "loss" {
		t.Errorf("0 -> %s", s)
	}
	if s := ScoreToString(1.25); s != "1.250" {
		t.Errorf("1.25 -> %s", s)
	}
}

package server

import (
	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/engine"
	"github.com/hailam/draughts/internal/game"
)

// NewGameRequest is the optional body of POST /api/games. An empty position
// means the standard start. Settings are merged onto the server defaults.
type NewGameRequest struct {
	Position   string           `json:"position"`
	SideToMove string           `json:"side_to_move"`
	Settings   *config.Settings `json:"settings"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

type TurnDTO struct {
	Color string `json:"color"`
	Turn  string `json:"turn"`
	Bot   bool   `json:"bot"`
}

// StateResponse is the full state of a session as sent to clients.
type StateResponse struct {
	ID         string    `json:"id"`
	Board      string    `json:"board"`
	SideToMove string    `json:"side_to_move"`
	Turn       int       `json:"turn"`
	Status     string    `json:"status"`
	BotToMove  bool      `json:"bot_to_move"`
	Pinned     string    `json:"pinned,omitempty"`
	Current    string    `json:"current,omitempty"`
	Movable    []string  `json:"movable"`
	LegalMoves []string  `json:"legal_moves"`
	History    []TurnDTO `json:"history"`
}

type MovesResponse struct {
	Captures bool     `json:"captures"`
	Moves    []string `json:"moves"`
}

type BotResponse struct {
	Turn   string        `json:"turn"`
	Score  string        `json:"score"`
	Depth  int           `json:"depth"`
	Nodes  uint64        `json:"nodes"`
	TimeMs int64         `json:"time_ms"`
	State  StateResponse `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func stateFromGame(id string, g *game.Game) StateResponse {
	b := g.Board()
	legal := g.LegalMoves()
	st := StateResponse{
		ID:         id,
		Board:      b.Encode(),
		SideToMove: g.SideToMove().String(),
		Turn:       g.TurnNumber(),
		Status:     g.Status().String(),
		BotToMove:  g.Status() == game.Ongoing && g.IsBotTurn(),
		Movable:    []string{},
		LegalMoves: legal.Strings(),
		History:    []TurnDTO{},
	}
	for _, sq := range legal.Origins() {
		st.Movable = append(st.Movable, sq.String())
	}
	if sq, ok := g.Pinned(); ok {
		st.Pinned = sq.String()
		st.Current = g.Current().String()
	}
	for _, r := range g.Turns() {
		st.History = append(st.History, TurnDTO{
			Color: r.Color.String(),
			Turn:  r.Turn.String(),
			Bot:   r.Bot,
		})
	}
	return st
}

func movesToDTO(ml board.MoveList) MovesResponse {
	return MovesResponse{Captures: ml.HasCaptures, Moves: ml.Strings()}
}

func botToDTO(info engine.SearchInfo, state StateResponse) BotResponse {
	return BotResponse{
		Turn:   info.Turn.String(),
		Score:  engine.ScoreToString(info.Score),
		Depth:  info.Depth,
		Nodes:  info.Nodes,
		TimeMs: info.Time.Milliseconds(),
		State:  state,
	}
}

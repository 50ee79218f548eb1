// Package server exposes draughts games over HTTP with a websocket stream
// of state changes for each game.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/game"
	"github.com/hailam/draughts/internal/storage"
)

// Server routes /api requests to the session manager.
type Server struct {
	manager  *Manager
	router   chi.Router
	upgrader websocket.Upgrader
}

// New creates a server. store may be nil, in which case finished games are
// not recorded.
func New(settings *config.Settings, store *storage.Storage) *Server {
	s := &Server{
		manager: NewManager(settings, store),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Get("/moves", s.handleMoves)
			r.Post("/moves", s.handlePlay)
			r.Post("/bot", s.handleBot)
			r.Post("/undo", s.handleUndo)
			r.Get("/ws", s.handleWS)
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	// Settings missing from the body keep the server's values.
	base := *s.manager.settings
	req := NewGameRequest{Settings: &base}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}

	side := board.White
	if req.SideToMove != "" {
		c, ok := board.ParseColor(req.SideToMove)
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New("invalid side_to_move"))
			return
		}
		side = c
	}

	sess, err := s.manager.NewGame(req.Settings, req.Position, side)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.State())
}

// session looks up the {id} route parameter and writes 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	ml := sess.game.LegalMoves()
	sess.mu.Unlock()

	// ?from=c3 narrows the list to one piece.
	if from := r.URL.Query().Get("from"); from != "" {
		sq, err := board.ParseSquare(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ml.Moves = ml.From(sq)
	}
	writeJSON(w, http.StatusOK, movesToDTO(ml))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}
	m, err := board.ParseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	state, err := sess.Play(m)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	info, state, err := sess.PlayBot()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, botToDTO(info, state))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Undo()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleWS streams "state" messages for the session. Clients may send
// {"type":"request_state"} to get the current state again.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{send: make(chan []byte, 16)}
	sess.hub.Register(client)
	client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(sess.State())})

	go func() {
		defer conn.Close()
		_ = writeWSWithHeartbeat(conn, client.send)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			sess.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "request_state" {
			client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(sess.State())})
		}
	}
}

// statusFor maps game and input errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, board.ErrInvalidBoard),
		errors.Is(err, config.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotHumanTurn),
		errors.Is(err, game.ErrNotBotTurn),
		errors.Is(err, game.ErrChainInProgress),
		errors.Is(err, game.ErrNothingToUndo):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

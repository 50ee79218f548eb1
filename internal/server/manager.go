package server

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/engine"
	"github.com/hailam/draughts/internal/game"
	"github.com/hailam/draughts/internal/storage"
)

// ErrSessionNotFound is returned for an unknown game id.
var ErrSessionNotFound = errors.New("game not found")

// MaxBotLevel is the deepest search a game created over HTTP may ask for.
// PlayBot holds the session lock for the whole search.
const MaxBotLevel = 8

// Session is one game being played over HTTP. All access to the game goes
// through the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	game  *game.Game
	saved bool
	hub   *Hub
	store *storage.Storage
}

// State returns a snapshot of the game.
func (s *Session) State() StateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateFromGame(s.ID, s.game)
}

// Play applies one segment for a human player.
func (s *Session) Play(m board.Move) (StateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Status() != game.Ongoing {
		return StateResponse{}, game.ErrGameOver
	}
	if s.game.IsBotTurn() {
		return StateResponse{}, game.ErrNotHumanTurn
	}
	if err := s.game.Play(m); err != nil {
		return StateResponse{}, err
	}
	return s.changed(), nil
}

// PlayBot lets the engine play the side to move, which must be a bot.
func (s *Session) PlayBot() (engine.SearchInfo, StateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.Status() != game.Ongoing {
		return engine.SearchInfo{}, StateResponse{}, game.ErrGameOver
	}
	if !s.game.IsBotTurn() {
		return engine.SearchInfo{}, StateResponse{}, game.ErrNotBotTurn
	}

	start := time.Now()
	info, err := s.game.PlayBot()
	if err != nil {
		return info, StateResponse{}, err
	}
	log.Printf("[server] game %s: bot turn time: %d millisec", s.ID, time.Since(start).Milliseconds())
	return info, s.changed(), nil
}

// Undo takes back the current chain or the last turn.
func (s *Session) Undo() (StateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.Undo(); err != nil {
		return StateResponse{}, err
	}
	return s.changed(), nil
}

// changed stores a finished game once and pushes the new state to
// websocket clients. A game reopened by undo is stored again when it ends.
// The caller holds s.mu.
func (s *Session) changed() StateResponse {
	if s.game.Status() == game.Ongoing {
		s.saved = false
	} else {
		s.save()
	}
	state := stateFromGame(s.ID, s.game)
	if s.hub.HasClients() {
		s.hub.Publish(wsMessage{Type: "state", Payload: mustMarshal(state)})
	}
	return state
}

func (s *Session) save() {
	if s.store == nil || s.saved {
		return
	}
	rec := storage.RecordFromGame(s.ID, s.game)
	if err := s.store.RecordResult(rec); err != nil {
		log.Printf("[server] record result %s: %v", s.ID, err)
		return
	}
	s.saved = true
	log.Printf("[server] game %s finished: %s, game time: %d millisec", s.ID, s.game.Status(), s.game.Duration().Milliseconds())
}

// Manager keeps the sessions of this process in memory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	settings *config.Settings
	store    *storage.Storage
}

// NewManager creates a manager. New games use settings unless the request
// carries its own. store may be nil.
func NewManager(settings *config.Settings, store *storage.Storage) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		settings: settings,
		store:    store,
	}
}

// NewGame starts a session from the standard position, or from position
// with side to move when position is not empty.
func (m *Manager) NewGame(settings *config.Settings, position string, side board.Color) (*Session, error) {
	if settings == nil {
		settings = m.settings
	}
	if settings.Bot.WhiteBotLevel > MaxBotLevel || settings.Bot.BlackBotLevel > MaxBotLevel {
		return nil, fmt.Errorf("%w: bot level above %d", config.ErrInvalidSettings, MaxBotLevel)
	}

	var (
		g   *game.Game
		err error
	)
	if position == "" {
		g, err = game.New(settings)
	} else {
		var b board.Board
		b, err = board.ParseBoard(position)
		if err != nil {
			return nil, err
		}
		g, err = game.NewFromBoard(settings, b, side)
	}
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		game:      g,
		hub:       NewHub(),
		store:     m.store,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

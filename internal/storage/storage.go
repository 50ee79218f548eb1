package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/config"
	"github.com/hailam/draughts/internal/game"
)

// Storage keys
const (
	keySettings    = "settings"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixGame     = "game/"
)

// ErrNotFound is returned when a game record does not exist.
var ErrNotFound = errors.New("not found")

// GameRecord is a stored game: where it started, every turn in notation and how it ended.
type GameRecord struct {
	ID            string          `json:"id"`
	StartedAt     time.Time       `json:"started_at"`
	Duration      time.Duration   `json:"duration"`
	Result        string          `json:"result"`
	StartPosition string          `json:"start_position"`
	FirstToMove   string          `json:"first_to_move"`
	Turns         []string        `json:"turns"`
	Settings      config.Settings `json:"settings"`

	// Counted is set once the result is part of the statistics.
	Counted bool `json:"counted,omitempty"`
}

// RecordFromGame snapshots g. An empty id gets a fresh uuid.
func RecordFromGame(id string, g *game.Game) *GameRecord {
	if id == "" {
		id = uuid.NewString()
	}
	initial, first := g.Initial()
	rec := &GameRecord{
		ID:            id,
		StartedAt:     g.StartedAt(),
		Duration:      g.Duration(),
		Result:        g.Status().String(),
		StartPosition: initial.Encode(),
		FirstToMove:   first.String(),
		Settings:      *g.Settings(),
	}
	for _, r := range g.Turns() {
		rec.Turns = append(rec.Turns, r.Turn.String())
	}
	return rec
}

// Status returns the stored result.
func (r *GameRecord) Status() game.Status {
	st, _ := game.ParseStatus(r.Result)
	return st
}

// Replay rebuilds the game by playing every stored turn from the start position.
func (r *GameRecord) Replay() (*game.Game, error) {
	b, err := board.ParseBoard(r.StartPosition)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", r.ID, err)
	}
	first, ok := board.ParseColor(r.FirstToMove)
	if !ok {
		return nil, fmt.Errorf("game %s: bad first side %q", r.ID, r.FirstToMove)
	}
	settings := r.Settings
	g, err := game.NewFromBoard(&settings, b, first)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", r.ID, err)
	}
	for i, s := range r.Turns {
		t, err := board.ParseTurn(s)
		if err != nil {
			return nil, fmt.Errorf("game %s turn %d: %w", r.ID, i, err)
		}
		if err := g.PlayTurn(t); err != nil {
			return nil, fmt.Errorf("game %s turn %d: %w", r.ID, i, err)
		}
	}
	return g, nil
}

// GameStats stores aggregate results
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Draws         int           `json:"draws"`
	Unfinished    int           `json:"unfinished"`
	BotWins       int           `json:"bot_wins"`
	HumanWins     int           `json:"human_wins"`
	TotalPlayTime time.Duration `json:"total_play_time"`
	LongestGame   int           `json:"longest_game"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{}
}

// GetWinRate returns the share of finished games won by color c as a percentage (0-100).
func (s *GameStats) GetWinRate(c board.Color) float64 {
	finished := s.GamesPlayed - s.Unfinished
	if finished == 0 {
		return 0
	}
	wins := s.WhiteWins
	if c == board.Black {
		wins = s.BlackWins
	}
	return float64(wins) / float64(finished) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	var firstLaunch bool = true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			firstLaunch = true
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

func (s *Storage) put(key string, v any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txnSet(txn, key, v)
	})
}

// get decodes the value under key into v. found is false when the key is absent.
func (s *Storage) get(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		found, err = txnGet(txn, key, v)
		return err
	})
	return found, err
}

// SaveSettings saves the settings
func (s *Storage) SaveSettings(settings *config.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.put(keySettings, settings)
}

// LoadSettings loads the settings, returns defaults if not found
func (s *Storage) LoadSettings() (*config.Settings, error) {
	settings := config.Default()
	if _, err := s.get(keySettings, settings); err != nil {
		return config.Default(), err
	}
	return settings, nil
}

// SaveGame stores rec under its id, replacing any earlier version. A
// replaced version that was counted is taken out of the statistics.
func (s *Storage) SaveGame(rec *GameRecord) error {
	return s.storeGame(rec, false)
}

// LoadGame returns the record with the given id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	found, err := s.get(prefixGame+id, rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// DeleteGame removes a stored game.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixGame + id))
	})
}

// ListGames returns every stored game, most recent first.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].StartedAt.After(games[j].StartedAt)
	})
	return games, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if _, err := s.get(keyStats, stats); err != nil {
		return NewGameStats(), err
	}
	return stats, nil
}

// RecordResult stores rec and counts its result in the statistics. An
// earlier counted version with the same id is taken out first, so a game
// that is reopened and finished again is counted once.
func (s *Storage) RecordResult(rec *GameRecord) error {
	return s.storeGame(rec, true)
}

func (s *Storage) storeGame(rec *GameRecord, count bool) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if _, err := txnGet(txn, keyStats, stats); err != nil {
			return err
		}
		prev := &GameRecord{}
		found, err := txnGet(txn, prefixGame+rec.ID, prev)
		if err != nil {
			return err
		}

		changed := false
		if found && prev.Counted {
			stats.remove(prev)
			changed = true
		}
		rec.Counted = count
		if count {
			stats.add(rec)
			changed = true
		}

		if err := txnSet(txn, prefixGame+rec.ID, rec); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return txnSet(txn, keyStats, stats)
	})
}

func txnGet(txn *badger.Txn, key string, v any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func txnSet(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// add counts rec in the statistics.
func (s *GameStats) add(rec *GameRecord) {
	s.tally(rec, 1)
	if len(rec.Turns) > s.LongestGame {
		s.LongestGame = len(rec.Turns)
	}
}

// remove takes rec back out. LongestGame is a maximum and is left alone.
func (s *GameStats) remove(rec *GameRecord) {
	s.tally(rec, -1)
}

func (s *GameStats) tally(rec *GameRecord, n int) {
	s.GamesPlayed += n
	s.TotalPlayTime += time.Duration(n) * rec.Duration

	status := rec.Status()
	switch status {
	case game.WhiteWon:
		s.WhiteWins += n
	case game.BlackWon:
		s.BlackWins += n
	case game.Draw:
		s.Draws += n
	default:
		s.Unfinished += n
	}

	if winner, ok := status.Winner(); ok {
		bot := rec.Settings.Bot.IsWhiteBot
		if winner == board.Black {
			bot = rec.Settings.Bot.IsBlackBot
		}
		if bot {
			s.BotWins += n
		} else {
			s.HumanWins += n
		}
	}
}

// ResolveSettings returns the settings file at path when path is set,
// otherwise the settings stored in s, otherwise the defaults. s may be nil.
func ResolveSettings(path string, s *Storage) (*config.Settings, error) {
	if path != "" {
		return config.Load(path)
	}
	if s == nil {
		return config.Default(), nil
	}
	return s.LoadSettings()
}

// Package config holds the player and game settings shared by the commands.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/engine"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// OptimizationNone disables alpha-beta cutoffs.
const OptimizationNone = "O0"

// Bot configures the automated players.
type Bot struct {
	IsWhiteBot     bool   `json:"IsWhiteBot"`
	IsBlackBot     bool   `json:"IsBlackBot"`
	WhiteBotLevel  int    `json:"WhiteBotLevel"`
	BlackBotLevel  int    `json:"BlackBotLevel"`
	BotScoringType string `json:"BotScoringType"`
	Optimization   string `json:"Optimization"`
	NoRandom       bool   `json:"NoRandom"`
	BotDelayMS     int    `json:"BotDelayMS"`
}

// Game configures the game loop.
type Game struct {
	MaxNumTurns int `json:"MaxNumTurns"`
}

// Settings is the settings file layout.
type Settings struct {
	Bot  Bot  `json:"Bot"`
	Game Game `json:"Game"`
}

// Default returns human White against a depth 4 bot playing Black.
func Default() *Settings {
	opts := engine.DefaultOptions()
	return &Settings{
		Bot: Bot{
			IsWhiteBot:     false,
			IsBlackBot:     true,
			WhiteBotLevel:  opts.Depth,
			BlackBotLevel:  opts.Depth,
			BotScoringType: opts.Scoring.String(),
			Optimization:   "O1",
		},
		Game: Game{
			MaxNumTurns: 120,
		},
	}
}

// Load reads settings from a JSON file. Missing keys keep their defaults.
func Load(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates settings from r.
func Parse(r io.Reader) (*Settings, error) {
	s := Default()
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings as indented JSON.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate checks bot levels, the scoring mode and the turn limit.
func (s *Settings) Validate() error {
	if s.Bot.WhiteBotLevel <= 0 || s.Bot.BlackBotLevel <= 0 {
		return fmt.Errorf("%w: bot levels must be positive (white %d, black %d)",
			ErrInvalidSettings, s.Bot.WhiteBotLevel, s.Bot.BlackBotLevel)
	}
	if _, err := engine.ParseScoringMode(s.Bot.BotScoringType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if s.Game.MaxNumTurns <= 0 {
		return fmt.Errorf("%w: MaxNumTurns must be positive, got %d", ErrInvalidSettings, s.Game.MaxNumTurns)
	}
	if s.Bot.BotDelayMS < 0 {
		return fmt.Errorf("%w: BotDelayMS must not be negative", ErrInvalidSettings)
	}
	return nil
}

// IsBot returns true if color c is played by the engine.
func (s *Settings) IsBot(c board.Color) bool {
	if c == board.White {
		return s.Bot.IsWhiteBot
	}
	return s.Bot.IsBlackBot
}

// Level returns the search depth configured for color c.
func (s *Settings) Level(c board.Color) int {
	if c == board.White {
		return s.Bot.WhiteBotLevel
	}
	return s.Bot.BlackBotLevel
}

// BotDelay returns the pause callers insert before showing a bot turn.
func (s *Settings) BotDelay() time.Duration {
	return time.Duration(s.Bot.BotDelayMS) * time.Millisecond
}

// EngineOptions builds the search options for color c.
func (s *Settings) EngineOptions(c board.Color) (engine.Options, error) {
	scoring, err := engine.ParseScoringMode(s.Bot.BotScoringType)
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.Options{
		Depth:         s.Level(c),
		Scoring:       scoring,
		Pruning:       s.Bot.Optimization != OptimizationNone,
		Deterministic: s.Bot.NoRandom,
	}
	if err := opts.Validate(); err != nil {
		return engine.Options{}, err
	}
	return opts, nil
}

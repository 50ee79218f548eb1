package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDepth is returned for a search depth below one ply.
	ErrInvalidDepth = errors.New("search depth must be at least 1")
	// ErrUnknownScoring is returned for an evaluator mode other than Number or NumberAndPotential.
	ErrUnknownScoring = errors.New("unknown scoring mode")
)

// ScoringMode selects the static evaluator.
type ScoringMode int

const (
	// ScoreNumber counts material only, kings worth 4 men.
	ScoreNumber ScoringMode = iota
	// ScoreNumberAndPotential adds 0.05 per row of advancement for each man, kings worth 5.
	ScoreNumberAndPotential
)

func (m ScoringMode) String() string {
	switch m {
	case ScoreNumber:
		return "Number"
	case ScoreNumberAndPotential:
		return "NumberAndPotential"
	default:
		return fmt.Sprintf("ScoringMode(%d)", int(m))
	}
}

// ParseScoringMode accepts the names used in settings files.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch s {
	case "Number":
		return ScoreNumber, nil
	case "NumberAndPotential":
		return ScoreNumberAndPotential, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScoring, s)
}

// Options configures an Engine.
type Options struct {
	Depth         int         // search depth in plies; a capture chain is one ply
	Scoring       ScoringMode // static evaluator
	Pruning       bool        // alpha-beta cutoffs
	Deterministic bool        // seed the tie-order rng with 0 instead of the clock
}

// DefaultOptions returns a depth 4 search with pruning and the potential evaluator.
func DefaultOptions() Options {
	return Options{
		Depth:   4,
		Scoring: ScoreNumberAndPotential,
		Pruning: true,
	}
}

// Validate checks depth and scoring mode.
func (o Options) Validate() error {
	if o.Depth <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, o.Depth)
	}
	if o.Scoring != ScoreNumber && o.Scoring != ScoreNumberAndPotential {
		return fmt.Errorf("%w: %v", ErrUnknownScoring, o.Scoring)
	}
	return nil
}

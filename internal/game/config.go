package game

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid table config")

// Config holds the static settings of one table.
type Config struct {
	Variant    string
	MaxSeats   int
	MinSeats   int // seats required to start a hand
	SmallBlind int
	BigBlind   int

	TurnTimeout  time.Duration
	Tick         time.Duration // countdown granularity, 0 disables ticks
	CollectPause time.Duration // pause after chips move into the pot
	ResultsDelay time.Duration // pause between results and the next hand

	// Seats whose stack is at or below this are removed at hand reset.
	EliminationThreshold int
}

// DefaultConfig returns a six seat hold'em table with 5/10 blinds.
func DefaultConfig() Config {
	return Config{
		Variant:      Holdem.Name,
		MaxSeats:     6,
		MinSeats:     2,
		SmallBlind:   5,
		BigBlind:     10,
		TurnTimeout:  30 * time.Second,
		Tick:         time.Second,
		CollectPause: 500 * time.Millisecond,
		ResultsDelay: 5 * time.Second,
	}
}

// Validate checks the config for values the engine cannot run with.
func (c Config) Validate() error {
	v, ok := LookupVariant(c.Variant)
	if !ok {
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, c.Variant)
	}
	switch {
	case c.MaxSeats < 2:
		return fmt.Errorf("%w: max_seats must be at least 2", ErrInvalidConfig)
	case c.MaxSeats > v.MaxSeats():
		return fmt.Errorf("%w: %s supports at most %d seats", ErrInvalidConfig, v.Name, v.MaxSeats())
	case c.MinSeats < 2 || c.MinSeats > c.MaxSeats:
		return fmt.Errorf("%w: min_seats must be between 2 and max_seats", ErrInvalidConfig)
	case c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind:
		return fmt.Errorf("%w: blinds must satisfy 0 < small <= big", ErrInvalidConfig)
	case c.TurnTimeout <= 0:
		return fmt.Errorf("%w: turn_timeout must be positive", ErrInvalidConfig)
	case c.Tick < 0 || c.CollectPause < 0 || c.ResultsDelay < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	case c.EliminationThreshold < 0:
		return fmt.Errorf("%w: elimination_threshold must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Package phh reads and writes hands in the Poker Hand History format
// (https://phh.readthedocs.io), one TOML document per hand.
package phh

import (
	"errors"
	"time"
)

// ErrInvalidHistory is returned when a decoded history cannot be turned back
// into a hand record.
var ErrInvalidHistory = errors.New("phh: invalid hand history")

// variantCode is the PHH code for no-limit Texas hold'em. The table's own
// variant goes into the metadata.
const variantCode = "NT"

// Metadata keys carrying what PHH has no field for.
const (
	metaGame       = "game"
	metaDeck       = "deck"
	metaDealer     = "dealer"
	metaHandNumber = "hand_number"
	metaBots       = "bots"
)

// HandHistory represents a single poker hand encoded in PHH format.
type HandHistory struct {
	Variant           string         `toml:"variant"`
	Table             string         `toml:"table,omitempty"`
	SeatCount         int            `toml:"seat_count,omitempty"`
	Seats             []int          `toml:"seats,omitempty"`
	Antes             []int          `toml:"antes"`
	BlindsOrStraddles []int          `toml:"blinds_or_straddles"`
	MinBet            int            `toml:"min_bet"`
	StartingStacks    []int          `toml:"starting_stacks"`
	FinishingStacks   []int          `toml:"finishing_stacks,omitempty"`
	Winnings          []int          `toml:"winnings,omitempty"`
	Actions           []string       `toml:"actions"`
	Players           []string       `toml:"players,omitempty"`
	HandID            string         `toml:"hand"`
	Time              string         `toml:"time,omitempty"`
	TimeZone          string         `toml:"time_zone,omitempty"`
	Day               int            `toml:"day,omitempty"`
	Month             int            `toml:"month,omitempty"`
	Year              int            `toml:"year,omitempty"`
	Metadata          map[string]any `toml:"metadata,omitempty"`

	Board     []string  `toml:"-"`
	Timestamp time.Time `toml:"-"`
}

func populateTimeFields(h *HandHistory) {
	if h.Timestamp.IsZero() {
		return
	}
	ts := h.Timestamp.UTC()
	h.Time = ts.Format(time.TimeOnly)
	h.TimeZone = "UTC"
	h.Day = ts.Day()
	h.Month = int(ts.Month())
	h.Year = ts.Year()
}

// parseTimeFields is the inverse of populateTimeFields for UTC histories.
func parseTimeFields(h *HandHistory) {
	if h.Year == 0 || h.Time == "" {
		return
	}
	clock, err := time.Parse(time.TimeOnly, h.Time)
	if err != nil {
		return
	}
	loc := time.UTC
	if h.TimeZone != "" && h.TimeZone != "UTC" {
		if l, err := time.LoadLocation(h.TimeZone); err == nil {
			loc = l
		}
	}
	h.Timestamp = time.Date(h.Year, time.Month(h.Month), h.Day,
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
}

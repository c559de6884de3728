// Package poker holds the card and deck primitives shared by the table engine,
// the hand-rank evaluator and the bots.
package poker

import (
	"fmt"
	"strings"
)

// Card is a playing card identified by an integer id in 1..52.
//
// The id layout is 4*rank + suit + 1, so 2c=1, 2d=2, 2h=3, 2s=4 ... As=52.
// The zero value is not a valid card.
type Card uint8

// Suit constants (0-3)
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

// NumCards is the size of a full deck.
const NumCards = 52

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(rank*4 + suit + 1)
}

// Valid reports whether the card id is within 1..52.
func (c Card) Valid() bool {
	return c >= 1 && c <= NumCards
}

// Rank returns the rank of the card (0-12)
func (c Card) Rank() uint8 {
	return uint8(c-1) >> 2
}

// Suit returns the suit of the card (0-3)
func (c Card) Suit() uint8 {
	return uint8(c-1) & 3
}

// String returns the two character form, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// MarshalText encodes the card in its two character form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card id %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its two character form.
func (c *Card) UnmarshalText(b []byte) error {
	card, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses a string like "As" into a Card
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}

	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses card notation such as "AsKsQsJsTs" or "As Ks Qs".
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i/2, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// FormatCards renders cards back to back, e.g. "AsKd".
func FormatCards(cards []Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// CardStrings renders each card individually.
func CardStrings(cards []Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

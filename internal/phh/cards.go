package phh

import (
	"fmt"
	"strings"

	"github.com/lox/pokertables/poker"
)

// NormalizeCard rewrites loose notation such as "10h" or "ah" as "Th" and
// "Ah". Hidden cards stay "??".
func NormalizeCard(card string) string {
	card = strings.ToLower(strings.TrimSpace(card))
	switch {
	case card == "", card == "??":
		return card
	case len(card) < 2:
		return strings.ToUpper(card)
	}
	rank, suit := card[:len(card)-1], card[len(card)-1:]
	if rank == "10" {
		rank = "t"
	}
	return strings.ToUpper(rank[:1]) + suit
}

// formatCards renders cards the way PHH deal lines expect; unknown cards are
// written as ??.
func formatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "????"
	}
	return poker.FormatCards(cards)
}

// parseCards reads a run of PHH cards such as "AsKd" or "10hJc". It returns
// nil for hidden cards ("????").
func parseCards(s string) ([]poker.Card, error) {
	var cards []poker.Card
	hidden := false
	for len(s) > 0 {
		n := 2
		if strings.HasPrefix(s, "10") {
			n = 3
		}
		if len(s) < n {
			return nil, fmt.Errorf("%w: truncated card %q", ErrInvalidHistory, s)
		}
		token := NormalizeCard(s[:n])
		s = s[n:]
		if token == "??" {
			hidden = true
			continue
		}
		c, err := poker.ParseCard(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
		}
		cards = append(cards, c)
	}
	if hidden {
		return nil, nil
	}
	return cards, nil
}

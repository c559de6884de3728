package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// Deck is an ordered sequence of unique cards drawn front to back.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a full deck shuffled with the given RNG.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, NumCards)}
	for id := Card(1); id <= NumCards; id++ {
		d.cards = append(d.cards, id)
	}
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// NewOrderedDeck creates a deck that deals cards in exactly the given order.
// It rejects invalid and duplicate cards.
func NewOrderedDeck(cards []Card) (*Deck, error) {
	var seen [NumCards + 1]bool
	for i, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("card %d: invalid id %d", i, uint8(c))
		}
		if seen[c] {
			return nil, fmt.Errorf("card %d: duplicate %s", i, c)
		}
		seen[c] = true
	}
	return &Deck{cards: append([]Card(nil), cards...)}, nil
}

// Draw deals n cards from the front of the deck. It returns nil when fewer
// than n cards remain.
func (d *Deck) Draw(n int) []Card {
	if n < 0 || d.next+n > len(d.cards) {
		return nil
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out
}

// Burn discards the top card.
func (d *Deck) Burn() bool {
	if d.next >= len(d.cards) {
		return false
	}
	d.next++
	return true
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Order returns the full deal order, including cards already dealt.
func (d *Deck) Order() []Card {
	return append([]Card(nil), d.cards...)
}

// Clone returns an independent copy positioned at the same card.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return &Deck{cards: append([]Card(nil), d.cards...), next: d.next}
}

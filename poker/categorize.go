package poker

// HoleCardCategory represents the strength category of a starting hand
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards provides a simple starting-hand categorization for two
// or three hole cards.
// Two cards: Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77+, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
// Three cards: trips are Premium, pairs of sevens or better Strong, any pair or
// a three-card flush Medium, queen high or better Weak.
func CategorizeHoleCards(cards []Card) HoleCardCategory {
	for _, c := range cards {
		if !c.Valid() {
			return CategoryUnknown
		}
	}
	switch len(cards) {
	case 2:
		return categorizeTwo(cards[0], cards[1])
	case 3:
		return categorizeThree(cards)
	default:
		return CategoryUnknown
	}
}

func categorizeTwo(card1, card2 Card) HoleCardCategory {
	small, big := rankToValue(card1.Rank()), rankToValue(card2.Rank())
	if small > big {
		small, big = big, small
	}
	suited := card1.Suit() == card2.Suit()
	isPair := small == big

	switch {
	case isPair && small >= 11, small == 13 && big == 14:
		return CategoryPremium
	case isPair && small == 10, big == 14 && (small == 12 || small == 11):
		return CategoryStrong
	case isPair && small >= 7, suited && small >= 10:
		return CategoryMedium
	case isPair, suited && big-small <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}

func categorizeThree(cards []Card) HoleCardCategory {
	var counts [13]int
	high, pair := 0, 0
	for _, c := range cards {
		counts[c.Rank()]++
		high = max(high, rankToValue(c.Rank()))
	}
	for r, n := range counts {
		if n == 3 {
			return CategoryPremium
		}
		if n == 2 {
			pair = rankToValue(uint8(r))
		}
	}
	flush := cards[0].Suit() == cards[1].Suit() && cards[1].Suit() == cards[2].Suit()

	switch {
	case pair >= 7:
		return CategoryStrong
	case pair > 0, flush:
		return CategoryMedium
	case high >= 12:
		return CategoryWeak
	}
	return CategoryTrash
}

// rankToValue converts our 0-12 rank system to 2-14
func rankToValue(rank uint8) int {
	return int(rank) + 2
}

package bot

import (
	"context"
	rand "math/rand/v2"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/poker"
)

// BoardTexture represents how coordinated the board is
type BoardTexture int

const (
	DryBoard BoardTexture = iota
	SemiWetBoard
	WetBoard
	VeryWetBoard
)

func (bt BoardTexture) String() string {
	switch bt {
	case DryBoard:
		return "dry"
	case SemiWetBoard:
		return "semi-coordinated"
	case WetBoard:
		return "coordinated"
	case VeryWetBoard:
		return "very wet"
	}
	return "unknown"
}

// RuleBot plays a fixed chart: starting hands by category, made hands by
// evaluator category, adjusted for board texture and pot odds.
type RuleBot struct {
	eval   *evaluator.Table
	mu     sync.Mutex
	rng    *rand.Rand
	logger *log.Logger
}

// NewRuleBot creates a new RuleBot instance
func NewRuleBot(eval *evaluator.Table, rng *rand.Rand, logger *log.Logger) *RuleBot {
	return &RuleBot{eval: eval, rng: rng, logger: logger}
}

func (b *RuleBot) Decide(_ context.Context, v game.SeatView) (game.Decision, error) {
	tc := &ThinkingContext{}
	strength := b.handStrength(v, tc)
	odds := potOdds(v)
	if odds > 0 {
		tc.AddThought("Pot odds %.1f:1 (risk %d to win %d)", odds, v.ToCall, v.Pot)
	}

	d := b.choose(v, strength, odds, tc)
	b.logger.Debug("Bot decision made",
		"seat", v.Seat,
		"stage", v.Stage,
		"hole_cards", poker.FormatCards(v.HoleCards),
		"strength", strength,
		"decision", d.Kind,
		"amount", d.Amount)
	return d, nil
}

func (b *RuleBot) choose(v game.SeatView, strength HandStrength, odds float64, tc *ThinkingContext) game.Decision {
	b.mu.Lock()
	bluff := b.rng.Float64() < 0.1
	b.mu.Unlock()

	switch strength {
	case VeryStrong:
		if v.CanSpecial() {
			tc.AddThought("Premium hand, showing down now")
			return tc.decide(game.Special, 0)
		}
		if v.CanRaise() {
			tc.AddThought("Premium hand, aggressive value betting")
			return tc.decide(game.Raise, raiseSize(v, 0.75))
		}
		return tc.decide(game.CheckOrCall, 0)
	case Strong:
		if v.ToCall == 0 && v.CanRaise() {
			tc.AddThought("Strong hand, want to build pot")
			return tc.decide(game.Raise, raiseSize(v, 0.5))
		}
		tc.AddThought("Strong hand, calling")
		return tc.decide(game.CheckOrCall, 0)
	case Medium:
		if v.ToCall <= v.BigBlind || odds >= 2 {
			tc.AddThought("Playable hand, looking to see more cards")
			return tc.decide(game.CheckOrCall, 0)
		}
	case Weak:
		if v.ToCall == 0 && bluff && v.CanRaise() && !isPreflop(v) {
			tc.AddThought("Nobody has shown strength, taking a stab")
			return tc.decide(game.Raise, raiseSize(v, 0.5))
		}
		if odds >= 4 {
			tc.AddThought("Price is too good to fold")
			return tc.decide(game.CheckOrCall, 0)
		}
	}
	return passive(v, tc)
}

// handStrength rates starting hands by category and made hands by what the
// hole cards add to the board.
func (b *RuleBot) handStrength(v game.SeatView, tc *ThinkingContext) HandStrength {
	if len(v.Community) == 0 {
		category := poker.CategorizeHoleCards(v.HoleCards)
		tc.AddThought("I have %s (%s)", poker.FormatCards(v.HoleCards), category)
		return preflopStrength(category)
	}

	cards := slices.Concat(v.HoleCards, v.Community)
	eval, err := b.eval.Evaluate(cards)
	if err != nil {
		tc.AddThought("Cannot evaluate %s, assuming very weak", poker.FormatCards(cards))
		return VeryWeak
	}
	texture := analyzeBoardTexture(v.Community)
	tc.AddThought("Board %s (%s), I have %s", poker.FormatCards(v.Community), texture, eval.Category)

	strength := categoryStrength(eval.Category)
	if eval.Category == evaluator.OnePair && topPair(v.HoleCards, v.Community) {
		tc.AddThought("Top pair")
		strength = Medium
	}
	// A five card board that plays for everyone adds nothing.
	if len(v.Community) == 5 {
		if board, err := b.eval.Evaluate(v.Community); err == nil && board.Category == eval.Category {
			tc.AddThought("Playing the board")
			strength = min(strength, Weak)
		}
	}
	if texture >= WetBoard && eval.Category < evaluator.Straight && strength > VeryWeak {
		tc.AddThought("Wet board, slowing down")
		strength--
	}
	return strength
}

func preflopStrength(c poker.HoleCardCategory) HandStrength {
	switch c {
	case poker.CategoryPremium:
		return VeryStrong
	case poker.CategoryStrong:
		return Strong
	case poker.CategoryMedium:
		return Medium
	case poker.CategoryWeak:
		return Weak
	}
	return VeryWeak
}

func categoryStrength(c evaluator.Category) HandStrength {
	switch {
	case c >= evaluator.Straight:
		return VeryStrong
	case c >= evaluator.TwoPair:
		return Strong
	case c == evaluator.OnePair:
		return Weak
	}
	return VeryWeak
}

// topPair reports whether a hole card pairs the highest board card.
func topPair(hole, board []poker.Card) bool {
	var high uint8
	for _, c := range board {
		high = max(high, c.Rank())
	}
	return slices.ContainsFunc(hole, func(c poker.Card) bool { return c.Rank() == high })
}

// analyzeBoardTexture analyzes how coordinated the board is
func analyzeBoardTexture(board []poker.Card) BoardTexture {
	if len(board) < 3 {
		return DryBoard
	}

	wetness := 0

	// Check for flush possibilities
	var suits [4]int
	for _, c := range board {
		suits[c.Suit()]++
	}
	switch maxSuit := slices.Max(suits[:]); {
	case maxSuit >= 3:
		wetness += 2 // Flush draw possible
	case maxSuit == 2:
		wetness++ // Two-suited
	}

	// Check connectivity
	ranks := make([]int, len(board))
	for i, c := range board {
		ranks[i] = int(c.Rank())
	}
	slices.Sort(ranks)
	connected := 1
	for i := 1; i < len(ranks); i++ {
		if ranks[i]-ranks[i-1] <= 2 {
			connected++
		}
	}
	if connected >= 3 {
		wetness += 2 // Straight draws possible
	}

	// Check for pairs
	if len(slices.Compact(ranks)) < len(board) {
		wetness++
	}

	switch {
	case wetness >= 5:
		return VeryWetBoard
	case wetness >= 3:
		return WetBoard
	case wetness >= 1:
		return SemiWetBoard
	default:
		return DryBoard
	}
}

package game

import "github.com/lox/pokertables/poker"

// StageKind is the entry action a stage performs.
type StageKind uint8

const (
	StageDeal      StageKind = iota // deal hole cards to every seat in the hand
	StageReveal                     // reveal community cards
	StageBetting                    // run one betting round
	StageRevealAll                  // turn live hands face up
	StageResults                    // resolve winners and schedule the next hand
)

func (k StageKind) String() string {
	switch k {
	case StageDeal:
		return "deal"
	case StageReveal:
		return "reveal"
	case StageBetting:
		return "betting"
	case StageRevealAll:
		return "reveal-all"
	case StageResults:
		return "results"
	default:
		return "unknown"
	}
}

// StageSpec describes one stage of a variant.
type StageSpec struct {
	Name   string
	Kind   StageKind
	Cards  int  // cards dealt per seat, or community cards revealed
	Burn   bool // burn one card before revealing
	Blinds bool // blinds are posted in this betting round
}

// Variant is an ordered stage list plus the per-variant rules the engine
// needs.
type Variant struct {
	Name      string
	HoleCards int
	Board     int // community cards at showdown

	// Special names the variant-specific terminal action, if any.
	Special string

	Stages []StageSpec
}

// StageWaiting is the stage index of a table that is not playing a hand.
const StageWaiting = -1

const maxTableSeats = 10

var (
	Holdem = Variant{
		Name:      "holdem",
		HoleCards: 2,
		Board:     5,
		Stages: []StageSpec{
			{Name: "hole-cards", Kind: StageDeal, Cards: 2},
			{Name: "pre-flop", Kind: StageBetting, Blinds: true},
			{Name: "flop", Kind: StageReveal, Cards: 3, Burn: true},
			{Name: "post-flop", Kind: StageBetting},
			{Name: "turn", Kind: StageReveal, Cards: 1, Burn: true},
			{Name: "post-turn", Kind: StageBetting},
			{Name: "river", Kind: StageReveal, Cards: 1, Burn: true},
			{Name: "showdown", Kind: StageBetting},
			{Name: "reveal-all", Kind: StageRevealAll},
			{Name: "results", Kind: StageResults},
		},
	}

	// Shorthand plays hold'em without a river; hands are ranked on six cards.
	Shorthand = Variant{
		Name:      "shorthand",
		HoleCards: 2,
		Board:     4,
		Stages: []StageSpec{
			{Name: "hole-cards", Kind: StageDeal, Cards: 2},
			{Name: "pre-flop", Kind: StageBetting, Blinds: true},
			{Name: "flop", Kind: StageReveal, Cards: 3, Burn: true},
			{Name: "post-flop", Kind: StageBetting},
			{Name: "turn", Kind: StageReveal, Cards: 1, Burn: true},
			{Name: "showdown", Kind: StageBetting},
			{Name: "reveal-all", Kind: StageRevealAll},
			{Name: "results", Kind: StageResults},
		},
	}

	// ThreeCard deals three hole cards and no board. Heads-up, a seat may
	// "show": it pays the call and forces an immediate showdown.
	ThreeCard = Variant{
		Name:      "threecard",
		HoleCards: 3,
		Special:   "show",
		Stages: []StageSpec{
			{Name: "hole-cards", Kind: StageDeal, Cards: 3},
			{Name: "pre-flop", Kind: StageBetting, Blinds: true},
			{Name: "showdown", Kind: StageBetting},
			{Name: "reveal-all", Kind: StageRevealAll},
			{Name: "results", Kind: StageResults},
		},
	}
)

var variants = map[string]Variant{
	Holdem.Name:    Holdem,
	Shorthand.Name: Shorthand,
	ThreeCard.Name: ThreeCard,
}

// LookupVariant returns the built-in variant with the given name.
func LookupVariant(name string) (Variant, bool) {
	v, ok := variants[name]
	return v, ok
}

// VariantNames lists the built-in variants.
func VariantNames() []string {
	return []string{Holdem.Name, Shorthand.Name, ThreeCard.Name}
}

// MaxSeats is the largest table the deck can deal a full hand to.
func (v Variant) MaxSeats() int {
	burns := 0
	for _, s := range v.Stages {
		if s.Burn {
			burns++
		}
	}
	return min(maxTableSeats, (poker.NumCards-v.Board-burns)/v.HoleCards)
}

// StageName returns the name of stage i, or "waiting".
func (v Variant) StageName(i int) string {
	if i < 0 || i >= len(v.Stages) {
		return "waiting"
	}
	return v.Stages[i].Name
}

func (v Variant) indexOf(kind StageKind) int {
	for i, s := range v.Stages {
		if s.Kind == kind {
			return i
		}
	}
	panic("variant " + v.Name + " has no " + kind.String() + " stage")
}

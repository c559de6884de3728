// Package bot provides decision providers for bot seats. Every strategy
// implements game.BotDecisionProvider and only ever sees a game.SeatView;
// the engine clamps whatever it returns like any human action.
package bot

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/randutil"
)

// Strategy names accepted by New.
const (
	StrategyFold   = "fold"
	StrategyCall   = "call"
	StrategyRandom = "random"
	StrategyManiac = "maniac"
	StrategyRule   = "rule"
	StrategyEquity = "equity"
	StrategyRemote = "remote"
)

// ErrUnknownStrategy is returned by New for names it does not know.
var ErrUnknownStrategy = errors.New("unknown bot strategy")

// Spec describes one configured bot.
type Spec struct {
	Name     string
	Strategy string
	Seed     int64
	Endpoint string // remote only
}

// Deps are the shared collaborators some strategies need.
type Deps struct {
	Evaluator *evaluator.Table
	Logger    *log.Logger
}

// Strategies lists every name New accepts.
func Strategies() []string {
	return []string{StrategyFold, StrategyCall, StrategyRandom, StrategyManiac, StrategyRule, StrategyEquity, StrategyRemote}
}

// New builds the decision provider for spec. Seeded strategies derive their
// random stream from the seed and the bot's name, so two bots sharing a seed
// still play differently.
func New(spec Spec, deps Deps) (game.BotDecisionProvider, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("bot", spec.Name)
	rng := randutil.Derive(spec.Seed, "bot/"+spec.Name)

	switch spec.Strategy {
	case StrategyFold:
		return NewFoldBot(), nil
	case StrategyCall:
		return NewCallBot(logger), nil
	case StrategyRandom:
		return NewRandBot(rng, logger), nil
	case StrategyManiac:
		return NewManiacBot(rng, logger), nil
	case StrategyRule, StrategyEquity:
		if deps.Evaluator == nil {
			return nil, fmt.Errorf("bot %q: strategy %s needs a hand rank table", spec.Name, spec.Strategy)
		}
		if spec.Strategy == StrategyRule {
			return NewRuleBot(deps.Evaluator, rng, logger), nil
		}
		return NewEquityBot(deps.Evaluator, rng, logger), nil
	case StrategyRemote:
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("bot %q: remote strategy needs an endpoint", spec.Name)
		}
		return NewRemoteBot(spec.Endpoint, WithRemoteLogger(logger)), nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, spec.Strategy, strings.Join(Strategies(), ", "))
}

// HandStrength represents the relative strength of a hand
type HandStrength int

const (
	VeryWeak HandStrength = iota
	Weak
	Medium
	Strong
	VeryStrong
)

// String returns the string representation of hand strength
func (hs HandStrength) String() string {
	switch hs {
	case VeryWeak:
		return "Very Weak"
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "Unknown"
	}
}

// ThinkingContext accumulates a bot's reasoning while it decides.
type ThinkingContext struct {
	thoughts []string
}

// AddThought adds a thought to the thinking process
func (tc *ThinkingContext) AddThought(format string, args ...any) {
	tc.thoughts = append(tc.thoughts, fmt.Sprintf(format, args...))
}

// GetThoughts returns the complete stream of thoughts
func (tc *ThinkingContext) GetThoughts() string {
	if len(tc.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(tc.thoughts, ". ")
}

func (tc *ThinkingContext) decide(kind game.ActionKind, amount int) game.Decision {
	return game.Decision{Kind: kind, Amount: amount, Reason: tc.GetThoughts()}
}

// potOdds is the pot divided by the cost of calling, or 0 with nothing to
// call.
func potOdds(v game.SeatView) float64 {
	if v.ToCall <= 0 {
		return 0
	}
	return float64(v.Pot) / float64(v.ToCall)
}

// isPreflop reports whether no community cards are out yet in a game that
// deals some.
func isPreflop(v game.SeatView) bool {
	return v.BoardSize > 0 && len(v.Community) == 0
}

// raiseSize picks an additional amount over the call. Before the flop it is a
// multiple of the big blind, afterwards a fraction of the pot. The engine
// clamps it to the stack.
func raiseSize(v game.SeatView, potFraction float64) int {
	size := int(float64(v.Pot) * potFraction)
	if isPreflop(v) || v.BoardSize == 0 {
		size = int(float64(v.BigBlind) * (1 + potFraction*2))
	}
	return max(size, v.BigBlind)
}

// passive checks when free, otherwise folds.
func passive(v game.SeatView, tc *ThinkingContext) game.Decision {
	if v.ToCall == 0 {
		tc.AddThought("Free to check")
		return tc.decide(game.CheckOrCall, 0)
	}
	tc.AddThought("Not worth %d to continue", v.ToCall)
	return tc.decide(game.Fold, 0)
}

func has(v game.SeatView, option string) bool {
	return slices.Contains(v.Available, option)
}

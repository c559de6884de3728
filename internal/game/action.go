package game

import "fmt"

// ActionKind is what a seat does on its turn.
type ActionKind uint8

const (
	Fold ActionKind = iota
	CheckOrCall
	Raise
	Special // variant specific, e.g. "show" in three card
)

func (k ActionKind) String() string {
	if k > Special {
		return "unknown"
	}
	return [...]string{"fold", "check-or-call", "raise", "special"}[k]
}

// Option names granted to a seat on its turn.
const (
	OptionFold  = "fold"
	OptionCheck = "check"
	OptionCall  = "call"
	OptionRaise = "raise"
	OptionBlind = "blind"
)

// Action is a seat's request. For Raise, Amount is chips on top of the call,
// not a raise-to total.
type Action struct {
	Seat   int
	Kind   ActionKind
	Amount int
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("seat %d %s %d", a.Seat, a.Kind, a.Amount)
	}
	return fmt.Sprintf("seat %d %s", a.Seat, a.Kind)
}

// Decision is what a BotDecisionProvider returns. The engine clamps it the
// same way as a human action.
type Decision struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// ParseActionKind accepts the wire names used by the websocket protocol and
// hand histories.
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "fold", "f":
		return Fold, nil
	case "check", "call", "check-or-call", "cc":
		return CheckOrCall, nil
	case "raise", "bet", "cbr":
		return Raise, nil
	case "special", "show", "sm":
		return Special, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) {
	if k > Special {
		return nil, fmt.Errorf("invalid action kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(b []byte) error {
	parsed, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

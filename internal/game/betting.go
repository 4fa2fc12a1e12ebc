package game

import (
	"fmt"
	"time"
)

// Street represents the betting street of a hand
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if int(s) < len(streetNames) {
		return streetNames[s]
	}
	return fmt.Sprintf("street(%d)", s)
}

// MarshalText renders the street by name in persisted state
func (s Street) MarshalText() ([]byte, error) {
	if int(s) >= len(streetNames) {
		return nil, fmt.Errorf("invalid street %d", s)
	}
	return []byte(streetNames[s]), nil
}

func (s *Street) UnmarshalText(text []byte) error {
	for i, name := range streetNames {
		if name == string(text) {
			*s = Street(i)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", text)
}

// cardsDealt is how many community cards are revealed on each street
func (s Street) cardsDealt() int {
	switch s {
	case Flop:
		return 3
	case Turn, River:
		return 1
	default:
		return 0
	}
}

// ActionKind represents a player action
type ActionKind uint8

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
	PostSmallBlind
	PostBigBlind
)

var actionNames = [...]string{"fold", "check", "call", "raise", "small-blind", "big-blind"}

func (a ActionKind) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", a)
}

func (a ActionKind) MarshalText() ([]byte, error) {
	if int(a) >= len(actionNames) {
		return nil, fmt.Errorf("invalid action %d", a)
	}
	return []byte(actionNames[a]), nil
}

func (a *ActionKind) UnmarshalText(text []byte) error {
	for i, name := range actionNames {
		if name == string(text) {
			*a = ActionKind(i)
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownAction, text)
}

// ParseActionKind accepts the player-facing action names
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "fold", "f":
		return Fold, nil
	case "check", "k":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "raise", "r", "bet", "b":
		return Raise, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAction, s)
}

// Action is a decision a player can submit. Amount is only used for raises,
// where it is the increment over the current bet.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Kind.String()
}

// HandAction is one entry of the append-only action log of a hand
type HandAction struct {
	PlayerID  string     `json:"player_id"`
	Kind      ActionKind `json:"kind"`
	Amount    int        `json:"amount"` // chips moved into the pot
	Street    Street     `json:"street"`
	Timestamp time.Time  `json:"timestamp"`
}

// Rules holds table policy that varies between games
type Rules struct {
	// AllowShortCall lets a player call for less than the full amount owed
	// by going all-in. When false such a call is rejected.
	AllowShortCall bool `json:"allow_short_call"`
}

// DefaultRules returns the standard table policy
func DefaultRules() Rules {
	return Rules{AllowShortCall: true}
}

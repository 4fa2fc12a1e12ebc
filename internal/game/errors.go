package game

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalCheck      = errors.New("cannot check facing a bet")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrRaiseTooSmall     = errors.New("raise below minimum")
	ErrRaiseExceedsStack = errors.New("raise exceeds stack")
	ErrNotPlayersTurn    = errors.New("not player's turn")
	ErrPlayerFolded      = errors.New("player has folded")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNothingToCall     = errors.New("nothing to call")
	ErrNoOneToRaise      = errors.New("every opponent is all-in")
	ErrHandComplete      = errors.New("hand is complete")
	ErrUnknownAction     = errors.New("unknown action")
	ErrGameOver          = errors.New("game over")
	ErrNoActiveGame      = errors.New("no active game")
	ErrInvalidSetup      = errors.New("invalid game setup")
)

// ActionError is returned when an action is rejected. The state is unchanged.
type ActionError struct {
	Kind     ActionKind
	PlayerID string
	Amount   int
	Err      error
}

func (e *ActionError) Error() string {
	if e.Kind == Raise {
		return fmt.Sprintf("%s %s %d: %v", e.PlayerID, e.Kind, e.Amount, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.PlayerID, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func actionErr(kind ActionKind, playerID string, amount int, err error) error {
	return &ActionError{Kind: kind, PlayerID: playerID, Amount: amount, Err: err}
}

// InvariantError reports a broken table invariant. Play cannot safely
// continue in the hand that produced it.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated during %s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// IsInvariantError reports whether err signals a corrupted hand
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Package store persists the current game between sessions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/holdem/internal/game"
)

// ErrNotFound is returned by Load when there is no saved game
var ErrNotFound = errors.New("no saved game")

// Store saves and restores the single current game
type Store interface {
	Load(ctx context.Context) (*game.HandState, error)
	Save(ctx context.Context, h *game.HandState) error
	Delete(ctx context.Context) error
}

// Error is a failed store operation
type Error struct {
	Op        string
	Path      string
	Err       error
	retryable bool
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same operation might succeed if repeated.
// Corrupt data is not retryable; I/O failures are.
func (e *Error) Retryable() bool {
	return e.retryable
}

// IsRetryable reports whether err is a retryable store error
func IsRetryable(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Retryable()
}

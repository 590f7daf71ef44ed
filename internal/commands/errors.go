package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned for actions that reference something that does not exist
	// or that arrive from a client that cannot act.
	ErrInvalidAction = errors.New("invalid action")

	ErrNotLoggedIn    = fmt.Errorf("%w: not logged in", ErrInvalidAction)
	ErrNoTarget       = fmt.Errorf("%w: nothing targeted", ErrInvalidAction)
	ErrUnknownItem    = fmt.Errorf("%w: unknown item", ErrInvalidAction)
	ErrUnknownAction  = fmt.Errorf("%w: unknown action", ErrInvalidAction)
	ErrUnknownUpgrade = fmt.Errorf("%w: unknown upgrade", ErrInvalidAction)
)

// UserError represents an error that should be displayed to the player.
// These are not system failures - just things the player cannot do right now.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a player-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

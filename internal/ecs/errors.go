package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind      = errors.New("unknown component kind")
	ErrMissingComponent = errors.New("missing component")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidComponent = errors.New("invalid component")
	ErrItemNotFound     = errors.New("item not found")
	ErrNoSize           = errors.New("entity has no size")

	ErrInventoryFull = fmt.Errorf("inventory is full: %w", ErrCapacityExceeded)
	ErrTooHeavy      = fmt.Errorf("item is too heavy: %w", ErrCapacityExceeded)
)

package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidTemplate = errors.New("invalid level template")
	ErrCellOccupied    = errors.New("cell is occupied")
	ErrBombLimit       = errors.New("bomb allowance exhausted")
	ErrPlayerDead      = errors.New("player is dead")
)

// WrapActionError adds action context to an error
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("action %s: %w", action, err)
}

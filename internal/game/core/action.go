package core

import "fmt"

// Action is a discrete action index consumed once per tick.
type Action int

const (
	ActionLeft Action = iota
	ActionUp
	ActionRight
	ActionDown
	ActionPlaceBomb
)

// NumActions is the size of the action space
const NumActions = 5

// AllActions lists every valid action in index order
var AllActions = [NumActions]Action{ActionLeft, ActionUp, ActionRight, ActionDown, ActionPlaceBomb}

func (a Action) IsValid() bool { return a >= 0 && a < NumActions }

// IsMove reports whether the action moves the player
func (a Action) IsMove() bool { return a >= ActionLeft && a <= ActionDown }

// Direction returns the movement vector for a move action, DirNone otherwise
func (a Action) Direction() Direction {
	switch a {
	case ActionLeft:
		return DirLeft
	case ActionUp:
		return DirUp
	case ActionRight:
		return DirRight
	case ActionDown:
		return DirDown
	default:
		return DirNone
	}
}

func (a Action) String() string {
	switch a {
	case ActionLeft:
		return "left"
	case ActionUp:
		return "up"
	case ActionRight:
		return "right"
	case ActionDown:
		return "down"
	case ActionPlaceBomb:
		return "place_bomb"
	default:
		return fmt.Sprintf("invalid(%d)", int(a))
	}
}

// ParseAction converts an action index into an Action, rejecting unknown indexes
func ParseAction(idx int) (Action, error) {
	a := Action(idx)
	if !a.IsValid() {
		return a, fmt.Errorf("action %d: %w", idx, ErrInvalidAction)
	}
	return a, nil
}

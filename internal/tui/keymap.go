package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// Command is a viewer control derived from a key press
type Command int

const (
	CommandNone Command = iota
	CommandAction
	CommandPause
	CommandFaster
	CommandSlower
	CommandQuit
)

// MapKey translates a key message into a viewer command. For CommandAction
// the returned action is the player action to inject.
func MapKey(msg tea.KeyMsg) (Command, core.Action) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return CommandQuit, 0
	case "left", "a", "h":
		return CommandAction, core.ActionLeft
	case "up", "w", "k":
		return CommandAction, core.ActionUp
	case "right", "d", "l":
		return CommandAction, core.ActionRight
	case "down", "s", "j":
		return CommandAction, core.ActionDown
	case " ":
		return CommandAction, core.ActionPlaceBomb
	case "p":
		return CommandPause, 0
	case "+", "=":
		return CommandFaster, 0
	case "-", "_":
		return CommandSlower, 0
	}
	return CommandNone, 0
}

package states

import "fmt"

// EpisodePhase represents the current phase of an episode
type EpisodePhase int

const (
	// PhaseResetting - Level regeneration between episodes
	PhaseResetting EpisodePhase = iota

	// PhaseRunning - Player alive, actions are applied
	PhaseRunning

	// PhaseDying - Player killed, waiting out the death grace period
	PhaseDying

	// PhaseWon - Every breakable wall destroyed
	PhaseWon
)

// String returns the string representation of an EpisodePhase
func (p EpisodePhase) String() string {
	switch p {
	case PhaseResetting:
		return "Resetting"
	case PhaseRunning:
		return "Running"
	case PhaseDying:
		return "Dying"
	case PhaseWon:
		return "Won"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the episode is over in this phase
func (p EpisodePhase) IsTerminal() bool {
	return p == PhaseDying || p == PhaseWon
}

// CanReceiveActions returns true if player actions are applied in this phase
func (p EpisodePhase) CanReceiveActions() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p EpisodePhase) AllowedTransitions() []EpisodePhase {
	switch p {
	case PhaseResetting:
		return []EpisodePhase{PhaseRunning}
	case PhaseRunning:
		return []EpisodePhase{PhaseDying, PhaseWon, PhaseResetting}
	case PhaseDying:
		return []EpisodePhase{PhaseResetting}
	case PhaseWon:
		return []EpisodePhase{PhaseResetting}
	default:
		return []EpisodePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p EpisodePhase) CanTransitionTo(target EpisodePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to an EpisodePhase
func ParsePhase(s string) (EpisodePhase, error) {
	switch s {
	case "Resetting":
		return PhaseResetting, nil
	case "Running":
		return PhaseRunning, nil
	case "Dying":
		return PhaseDying, nil
	case "Won":
		return PhaseWon, nil
	default:
		return PhaseResetting, fmt.Errorf("unknown episode phase %q", s)
	}
}

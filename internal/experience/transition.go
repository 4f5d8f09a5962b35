package experience

import (
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// Transition is one step of experience: the state the agent saw, the action
// it took, the reward it received and the state that followed.
type Transition struct {
	State     []float64
	Action    core.Action
	Reward    float64
	NextState []float64
	Done      bool
}

// NewTransition copies both state vectors so the transition owns its data
// independently of any pooled buffers the caller reuses.
func NewTransition(state []float64, action core.Action, reward float64, next []float64, done bool) Transition {
	return Transition{
		State:     cloneVector(state),
		Action:    action,
		Reward:    reward,
		NextState: cloneVector(next),
		Done:      done,
	}
}

func cloneVector(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

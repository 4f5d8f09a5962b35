package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
)

// State represents an episode phase with lifecycle callbacks
type State interface {
	// Phase returns the EpisodePhase this state represents
	Phase() EpisodePhase

	// Enter is called when transitioning into this state
	Enter(ctx *EpisodeContext) error

	// Exit is called when transitioning out of this state
	Exit(ctx *EpisodeContext) error

	// Validate checks if the state can be entered given the context
	Validate(ctx *EpisodeContext) error
}

// Transition represents a state transition in the history
type Transition struct {
	From      EpisodePhase
	To        EpisodePhase
	Timestamp time.Time
	Reason    string
}

// DefaultMaxHistory bounds the transition history kept by a StateMachine
const DefaultMaxHistory = 256

// StateMachine manages episode phase transitions and history
type StateMachine struct {
	mu             sync.RWMutex
	currentPhase   EpisodePhase
	states         map[EpisodePhase]State
	context        *EpisodeContext
	history        []Transition
	maxHistorySize int
	publisher      events.Publisher
}

// NewStateMachine creates a state machine in PhaseResetting. publisher may be nil.
func NewStateMachine(ctx *EpisodeContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		currentPhase:   PhaseResetting,
		states:         make(map[EpisodePhase]State),
		context:        ctx,
		history:        make([]Transition, 0, 16),
		maxHistorySize: DefaultMaxHistory,
		publisher:      publisher,
	}

	sm.RegisterState(NewResettingState())
	sm.RegisterState(NewRunningState())
	sm.RegisterState(NewDyingState())
	sm.RegisterState(NewWonState())

	return sm
}

// RegisterState registers a state implementation, replacing any previous one for its phase
func (sm *StateMachine) RegisterState(state State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[state.Phase()] = state
}

// SetMaxHistory changes how many transitions are retained
func (sm *StateMachine) SetMaxHistory(n int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if n < 1 {
		n = 1
	}
	sm.maxHistorySize = n
	sm.trimHistory()
}

// CurrentPhase returns the current episode phase
func (sm *StateMachine) CurrentPhase() EpisodePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase EpisodePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		return fmt.Errorf("invalid transition from %s to %s", sm.currentPhase, targetPhase)
	}

	currentState, hasCurrentState := sm.states[sm.currentPhase]
	targetState, hasTargetState := sm.states[targetPhase]

	if !hasTargetState {
		return fmt.Errorf("no state implementation for phase %s", targetPhase)
	}

	if err := targetState.Validate(sm.context); err != nil {
		return fmt.Errorf("target state validation failed: %w", err)
	}

	if hasCurrentState {
		if err := currentState.Exit(sm.context); err != nil {
			// Continue with transition despite exit error
			sm.context.Logger.Error().
				Err(err).
				Str("from_phase", sm.currentPhase.String()).
				Str("to_phase", targetPhase.String()).
				Msg("Error exiting state")
		}
	}

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase

	if err := targetState.Enter(sm.context); err != nil {
		sm.currentPhase = previousPhase
		return fmt.Errorf("failed to enter state %s: %w", targetPhase, err)
	}

	sm.history = append(sm.history, Transition{
		From:      previousPhase,
		To:        targetPhase,
		Timestamp: time.Now(),
		Reason:    reason,
	})
	sm.trimHistory()

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(
			sm.context.SessionID,
			previousPhase.String(),
			targetPhase.String(),
			reason,
		))
	}

	sm.context.Logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("State transition completed")

	return nil
}

// trimHistory keeps the most recent entries; caller holds the lock
func (sm *StateMachine) trimHistory() {
	if len(sm.history) > sm.maxHistorySize {
		sm.history = append(sm.history[:0], sm.history[len(sm.history)-sm.maxHistorySize:]...)
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// GetContext returns the episode context
func (sm *StateMachine) GetContext() *EpisodeContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.context
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase EpisodePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}

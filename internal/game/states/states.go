package states

import (
	"fmt"
	"time"
)

// ResettingState is entered while the level is regenerated
type ResettingState struct{}

func NewResettingState() State { return &ResettingState{} }

func (s *ResettingState) Phase() EpisodePhase { return PhaseResetting }

func (s *ResettingState) Enter(ctx *EpisodeContext) error {
	ctx.Logger.Debug().Int("episode", ctx.Episode).Msg("Resetting level")
	return nil
}

func (s *ResettingState) Exit(ctx *EpisodeContext) error { return nil }

func (s *ResettingState) Validate(ctx *EpisodeContext) error { return nil }

// RunningState is active play
type RunningState struct{}

func NewRunningState() State { return &RunningState{} }

func (s *RunningState) Phase() EpisodePhase { return PhaseRunning }

func (s *RunningState) Enter(ctx *EpisodeContext) error {
	ctx.Episode++
	ctx.StartTime = time.Now()
	ctx.GraceElapsed = 0
	ctx.Logger.Debug().Int("episode", ctx.Episode).Msg("Episode started")
	return nil
}

func (s *RunningState) Exit(ctx *EpisodeContext) error { return nil }

func (s *RunningState) Validate(ctx *EpisodeContext) error { return nil }

// DyingState holds the level on screen for the death grace period
type DyingState struct{}

func NewDyingState() State { return &DyingState{} }

func (s *DyingState) Phase() EpisodePhase { return PhaseDying }

func (s *DyingState) Enter(ctx *EpisodeContext) error {
	ctx.GraceElapsed = 0
	ctx.Logger.Debug().
		Int("episode", ctx.Episode).
		Dur("grace", ctx.DeathGrace).
		Msg("Player died")
	return nil
}

func (s *DyingState) Exit(ctx *EpisodeContext) error { return nil }

func (s *DyingState) Validate(ctx *EpisodeContext) error {
	if ctx.DeathGrace < 0 {
		return fmt.Errorf("death grace must not be negative, got %s", ctx.DeathGrace)
	}
	return nil
}

// WonState marks a cleared level
type WonState struct{}

func NewWonState() State { return &WonState{} }

func (s *WonState) Phase() EpisodePhase { return PhaseWon }

func (s *WonState) Enter(ctx *EpisodeContext) error {
	ctx.Logger.Info().
		Int("episode", ctx.Episode).
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Level cleared")
	return nil
}

func (s *WonState) Exit(ctx *EpisodeContext) error { return nil }

func (s *WonState) Validate(ctx *EpisodeContext) error { return nil }

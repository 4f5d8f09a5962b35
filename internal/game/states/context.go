package states

import (
	"time"

	"github.com/rs/zerolog"
)

// EpisodeContext carries the per-session data states read and update
type EpisodeContext struct {
	// SessionID identifies the owning session in events and logs
	SessionID string

	Logger zerolog.Logger

	// Episode is the 1-based number of the current episode
	Episode int

	// StartTime is when the current episode entered PhaseRunning
	StartTime time.Time

	// DeathGrace is how long the level stays up after the player dies
	DeathGrace time.Duration

	// GraceElapsed accumulates simulated time spent in PhaseDying
	GraceElapsed time.Duration
}

// NewEpisodeContext creates a new episode context
func NewEpisodeContext(sessionID string, deathGrace time.Duration, logger zerolog.Logger) *EpisodeContext {
	return &EpisodeContext{
		SessionID:  sessionID,
		DeathGrace: deathGrace,
		Logger:     logger.With().Str("session_id", sessionID).Logger(),
	}
}

// AddGrace accumulates dt into the death grace timer and reports whether it has elapsed
func (ec *EpisodeContext) AddGrace(dt time.Duration) bool {
	ec.GraceElapsed += dt
	return ec.GraceElapsed >= ec.DeathGrace
}

// GetElapsedTime returns the wall-clock time since the episode started
func (ec *EpisodeContext) GetElapsedTime() time.Duration {
	if ec.StartTime.IsZero() {
		return 0
	}
	return time.Since(ec.StartTime)
}

package subscribers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
)

// EpisodeStore persists finished episode summaries
type EpisodeStore interface {
	SaveEpisode(ctx context.Context, summary events.EpisodeSummary) error
}

// EpisodeRecorder writes every episode.ended summary to a store. Store
// failures are logged and never reach the game loop.
type EpisodeRecorder struct {
	id      string
	store   EpisodeStore
	logger  zerolog.Logger
	timeout time.Duration
	saved   int
	failed  int
}

// NewEpisodeRecorder creates a recorder writing to store
func NewEpisodeRecorder(id string, store EpisodeStore, logger zerolog.Logger) *EpisodeRecorder {
	return &EpisodeRecorder{
		id:      id,
		store:   store,
		logger:  logger.With().Str("subscriber", "episode_recorder").Logger(),
		timeout: 5 * time.Second,
	}
}

func (r *EpisodeRecorder) ID() string { return r.id }

func (r *EpisodeRecorder) InterestedIn(eventType string) bool {
	return eventType == events.TypeEpisodeEnded
}

// HandleEvent saves the summary carried by an episode.ended event
func (r *EpisodeRecorder) HandleEvent(event events.Event) {
	e, ok := event.(*events.EpisodeEndedEvent)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.SaveEpisode(ctx, e.Summary); err != nil {
		r.failed++
		r.logger.Error().
			Err(err).
			Int("episode", e.Summary.Episode).
			Msg("Failed to record episode")
		return
	}
	r.saved++
}

// Saved returns how many summaries were stored successfully
func (r *EpisodeRecorder) Saved() int { return r.saved }

// Failed returns how many summaries could not be stored
func (r *EpisodeRecorder) Failed() int { return r.failed }

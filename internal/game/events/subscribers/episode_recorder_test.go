package subscribers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events/subscribers"
)

type memoryStore struct {
	saved []events.EpisodeSummary
	err   error
}

func (m *memoryStore) SaveEpisode(_ context.Context, s events.EpisodeSummary) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func TestEpisodeRecorder(t *testing.T) {
	store := &memoryStore{}
	rec := subscribers.NewEpisodeRecorder("recorder", store, zerolog.Nop())

	bus := events.NewEventBus(zerolog.Nop())
	bus.Subscribe(rec)

	assert.True(t, rec.InterestedIn(events.TypeEpisodeEnded))
	assert.False(t, rec.InterestedIn(events.TypeBombPlaced))

	bus.Publish(events.NewBombPlacedEvent("s", 1, core.NewCoordinate(1, 1)))
	bus.Publish(events.NewEpisodeEndedEvent("s", events.EpisodeSummary{Episode: 1, Outcome: events.OutcomeWon, Score: 60}))
	bus.Publish(events.NewEpisodeEndedEvent("s", events.EpisodeSummary{Episode: 2, Outcome: events.OutcomeDied}))

	require.Len(t, store.saved, 2)
	assert.Equal(t, 60, store.saved[0].Score)
	assert.Equal(t, events.OutcomeDied, store.saved[1].Outcome)
	assert.Equal(t, 2, rec.Saved())
	assert.Zero(t, rec.Failed())
}

func TestEpisodeRecorder_StoreFailure(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	rec := subscribers.NewEpisodeRecorder("recorder", store, zerolog.Nop())

	assert.NotPanics(t, func() {
		rec.HandleEvent(events.NewEpisodeEndedEvent("s", events.EpisodeSummary{Episode: 1}))
	})
	assert.Equal(t, 1, rec.Failed())
	assert.Zero(t, rec.Saved())
}

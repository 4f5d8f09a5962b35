package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events/subscribers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "episodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func summary(id, session string, episode, score, steps int, outcome events.Outcome, ended time.Time) events.EpisodeSummary {
	return events.EpisodeSummary{
		ID:          id,
		SessionID:   session,
		Episode:     episode,
		Outcome:     outcome,
		Score:       score,
		Steps:       steps,
		TotalReward: float64(steps),
		TrainSteps:  steps,
		MeanLoss:    0.25,
		Epsilon:     0.5,
		Duration:    1500 * time.Millisecond,
		EndedAt:     ended,
	}
}

func TestOpen_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "episodes.db")

	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/bomberman/episodes.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bomberman", "episodes.db"), got)

	got, err = ExpandPath("relative/episodes.db")
	require.NoError(t, err)
	assert.Equal(t, "relative/episodes.db", got)
}

func TestStore_SaveAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.SaveEpisode(ctx, summary("e1", "s1", 1, 2, 10, events.OutcomeDied, base)))
	require.NoError(t, store.SaveEpisode(ctx, summary("e2", "s1", 2, 5, 30, events.OutcomeWon, base.Add(time.Minute))))
	require.NoError(t, store.SaveEpisode(ctx, summary("e3", "s2", 1, 1, 4, events.OutcomeDied, base.Add(2*time.Minute))))

	recent, err := store.RecentEpisodes(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].ID)
	assert.Equal(t, events.OutcomeWon, recent[0].Outcome)
	assert.Equal(t, 1500*time.Millisecond, recent[0].Duration)
	assert.True(t, base.Add(time.Minute).Equal(recent[0].EndedAt))

	all, err := store.RecentEpisodes(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e3", all[0].ID)
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveEpisode(ctx, summary("e1", "s1", 1, 2, 10, events.OutcomeDied, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("e1", "s1", 1, 3, 10, events.OutcomeDied, now)))

	stats, err := store.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Episodes)
	assert.Equal(t, 3, stats.BestScore)

	assert.Error(t, store.SaveEpisode(ctx, events.EpisodeSummary{}))
}

func TestStore_TopEpisodes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.SaveEpisode(ctx, summary("slow", "s1", 1, 7, 90, events.OutcomeWon, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("fast", "s1", 2, 7, 40, events.OutcomeWon, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("low", "s1", 3, 1, 5, events.OutcomeDied, now)))

	top, err := store.TopEpisodes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "fast", top[0].ID)
	assert.Equal(t, "slow", top[1].ID)
}

func TestStore_Summary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	empty, err := store.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Episodes)
	assert.True(t, empty.LastEnded.IsZero())
	assert.Equal(t, 0.0, empty.WinRate())

	require.NoError(t, store.SaveEpisode(ctx, summary("e1", "s1", 1, 4, 10, events.OutcomeWon, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("e2", "s1", 2, 2, 20, events.OutcomeDied, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("e3", "s1", 3, 0, 30, events.OutcomeTruncated, now)))
	require.NoError(t, store.SaveEpisode(ctx, summary("e4", "s2", 1, 9, 5, events.OutcomeWon, now)))

	stats, err := store.Summary(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Episodes)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Deaths)
	assert.Equal(t, 1, stats.Truncated)
	assert.Equal(t, 4, stats.BestScore)
	assert.InDelta(t, 2.0, stats.AvgScore, 1e-9)
	assert.InDelta(t, 20.0, stats.AvgReward, 1e-9)
	assert.InDelta(t, 1.0/3.0, stats.WinRate(), 1e-9)
	assert.True(t, now.Equal(stats.LastEnded))

	require.NoError(t, store.Clear(ctx, "s1"))
	stats, err = store.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Episodes)
}

func TestStore_WithEpisodeRecorder(t *testing.T) {
	store := openTestStore(t)
	bus := events.NewEventBus(zerolog.Nop())
	recorder := subscribers.NewEpisodeRecorder("recorder", store, zerolog.Nop())
	bus.Subscribe(recorder)

	bus.Publish(events.NewEpisodeEndedEvent("s1", summary("e1", "s1", 1, 3, 12, events.OutcomeDied, time.Now().UTC())))

	assert.Equal(t, 1, recorder.Saved())
	recent, err := store.RecentEpisodes(context.Background(), "s1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, strings.HasPrefix(recent[0].ID, "e"))
}

package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events/subscribers"
)

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Timestamp().Logger()

	logSub := subscribers.NewLoggerSubscriber("test-logger", logger, zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeEpisodeStarted))
	assert.True(t, logSub.InterestedIn(events.TypeBombPlaced))
	assert.True(t, logSub.InterestedIn("any.event.type"))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("event-logger", logger, zerolog.InfoLevel)

	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name: "EpisodeEndedEvent",
			event: events.NewEpisodeEndedEvent("session-1", events.EpisodeSummary{
				Episode: 3,
				Outcome: events.OutcomeDied,
				Score:   4,
				Steps:   57,
			}),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "died", logLine["outcome"])
				assert.Equal(t, float64(3), logLine["episode"])
				assert.Equal(t, float64(4), logLine["score"])
				assert.Equal(t, float64(57), logLine["steps"])
			},
		},
		{
			name:  "BombDetonatedEvent",
			event: events.NewBombDetonatedEvent("session-1", 7, core.NewCoordinate(4, 5), 9, true),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(7), logLine["bomb_id"])
				assert.Equal(t, float64(4), logLine["row"])
				assert.Equal(t, float64(5), logLine["col"])
				assert.Equal(t, float64(9), logLine["fragments"])
				assert.Equal(t, true, logLine["chained"])
			},
		},
		{
			name:  "WallDestroyedEvent",
			event: events.NewWallDestroyedEvent("session-1", core.NewCoordinate(2, 3), 7, 12),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(12), logLine["score"])
			},
		},
		{
			name:  "StateTransitionEvent",
			event: events.NewStateTransitionEvent("session-1", "Running", "Dying", "player killed"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "Running", logLine["from_phase"])
				assert.Equal(t, "Dying", logLine["to_phase"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			logSub.HandleEvent(tc.event)

			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))

			assert.Equal(t, "Game event", logLine["message"])
			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			assert.Equal(t, "session-1", logLine["game_id"])
			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberWithFilter(t *testing.T) {
	logSub := subscribers.NewLoggerSubscriber("filtered-logger", zerolog.Nop(), zerolog.InfoLevel)
	logSub.SetEventFilter([]string{events.TypeEpisodeStarted, events.TypeEpisodeEnded})

	assert.True(t, logSub.InterestedIn(events.TypeEpisodeStarted))
	assert.True(t, logSub.InterestedIn(events.TypeEpisodeEnded))
	assert.False(t, logSub.InterestedIn(events.TypeBombPlaced))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeBombPlaced))
}

func TestLoggerSubscriberLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel zerolog.Level
		expected string
	}{
		{"Debug", zerolog.DebugLevel, "debug"},
		{"Info", zerolog.InfoLevel, "info"},
		{"Warn", zerolog.WarnLevel, "warn"},
		{"Error", zerolog.ErrorLevel, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			logSub := subscribers.NewLoggerSubscriber("level-logger", logger, tc.logLevel)
			logSub.HandleEvent(events.NewBombPlacedEvent("s", 1, core.NewCoordinate(1, 1)))

			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))
			assert.Equal(t, tc.expected, logLine["level"])
		})
	}
}

func TestLoggerSubscriberDevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("dev-logger", logger, zerolog.InfoLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(&events.PlayerKilledEvent{
		BaseEvent: events.BaseEvent{
			EventType: events.TypePlayerKilled,
			Time:      time.Now(),
			Game:      "dev-session",
		},
		Position: core.NewCoordinate(5, 5),
		KillerID: 2,
	})

	var logLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))

	eventData, ok := logLine["event_data"]
	require.True(t, ok, "event_data should be present")

	raw, err := json.Marshal(eventData)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "player.killed")
	assert.Contains(t, string(raw), "KillerID")
}

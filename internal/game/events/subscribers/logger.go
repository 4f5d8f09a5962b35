package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)
	if ls.logLevel == zerolog.NoLevel || ls.logLevel == zerolog.Disabled {
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.EpisodeStartedEvent:
		logEvent.
			Str("episode_id", e.EpisodeID).
			Int("episode", e.Metadata.Episode).
			Int("soft_walls", e.SoftWalls)

	case *events.EpisodeEndedEvent:
		logEvent.
			Int("episode", e.Summary.Episode).
			Str("outcome", string(e.Summary.Outcome)).
			Int("score", e.Summary.Score).
			Int("steps", e.Summary.Steps).
			Float64("total_reward", e.Summary.TotalReward).
			Float64("epsilon", e.Summary.Epsilon)

	case *events.BombPlacedEvent:
		logEvent.
			Int("bomb_id", e.BombID).
			Int("row", e.Position.Row).
			Int("col", e.Position.Col)

	case *events.BombDetonatedEvent:
		logEvent.
			Int("bomb_id", e.BombID).
			Int("row", e.Position.Row).
			Int("col", e.Position.Col).
			Int("fragments", e.Fragments).
			Bool("chained", e.Chained)

	case *events.WallDestroyedEvent:
		logEvent.
			Int("row", e.Position.Row).
			Int("col", e.Position.Col).
			Int("score", e.Score)

	case *events.PlayerKilledEvent:
		logEvent.
			Int("row", e.Position.Row).
			Int("col", e.Position.Col).
			Int("killer_id", e.KillerID)

	case *events.AgentTrainedEvent:
		logEvent.
			Float64("loss", e.Loss).
			Float64("epsilon", e.Epsilon).
			Int("train_step", e.TrainStep)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}

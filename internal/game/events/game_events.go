package events

import (
	"time"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// Event type constants
const (
	TypeEpisodeStarted  = "episode.started"
	TypeEpisodeEnded    = "episode.ended"
	TypeBombPlaced      = "bomb.placed"
	TypeBombDetonated   = "bomb.detonated"
	TypeWallDestroyed   = "wall.destroyed"
	TypePlayerKilled    = "player.killed"
	TypeAgentTrained    = "agent.trained"
	TypeStateTransition = "state.transition"
)

// Outcome is how an episode finished
type Outcome string

const (
	OutcomeWon       Outcome = "won"
	OutcomeDied      Outcome = "died"
	OutcomeTruncated Outcome = "truncated"
)

// EpisodeSummary describes a finished episode
type EpisodeSummary struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	Episode     int           `json:"episode"`
	Outcome     Outcome       `json:"outcome"`
	Score       int           `json:"score"`
	Steps       int           `json:"steps"`
	TotalReward float64       `json:"total_reward"`
	TrainSteps  int           `json:"train_steps"`
	MeanLoss    float64       `json:"mean_loss"`
	Epsilon     float64       `json:"epsilon"`
	Duration    time.Duration `json:"duration"`
	EndedAt     time.Time     `json:"ended_at"`
}

// EpisodeStartedEvent is published when a fresh level is ready
type EpisodeStartedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	EpisodeID string
	Rows      int
	Cols      int
	SoftWalls int
}

// NewEpisodeStartedEvent creates a new EpisodeStartedEvent
func NewEpisodeStartedEvent(gameID, episodeID string, episode, rows, cols, softWalls int) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent: newBase(TypeEpisodeStarted, gameID),
		Metadata:  EventMetadata{Episode: episode},
		EpisodeID: episodeID,
		Rows:      rows,
		Cols:      cols,
		SoftWalls: softWalls,
	}
}

// EpisodeEndedEvent is published once per finished episode, before the level resets
type EpisodeEndedEvent struct {
	BaseEvent
	Summary EpisodeSummary
}

// NewEpisodeEndedEvent creates a new EpisodeEndedEvent
func NewEpisodeEndedEvent(gameID string, summary EpisodeSummary) *EpisodeEndedEvent {
	return &EpisodeEndedEvent{
		BaseEvent: newBase(TypeEpisodeEnded, gameID),
		Summary:   summary,
	}
}

// BombPlacedEvent is published when the player drops a bomb
type BombPlacedEvent struct {
	BaseEvent
	BombID   int
	Position core.Coordinate
}

// NewBombPlacedEvent creates a new BombPlacedEvent
func NewBombPlacedEvent(gameID string, bombID int, pos core.Coordinate) *BombPlacedEvent {
	return &BombPlacedEvent{
		BaseEvent: newBase(TypeBombPlaced, gameID),
		BombID:    bombID,
		Position:  pos,
	}
}

// BombDetonatedEvent is published for every bomb processed in a detonation,
// including bombs set off by another blast.
type BombDetonatedEvent struct {
	BaseEvent
	BombID    int
	Position  core.Coordinate
	Fragments int
	Chained   bool
}

// NewBombDetonatedEvent creates a new BombDetonatedEvent
func NewBombDetonatedEvent(gameID string, bombID int, pos core.Coordinate, fragments int, chained bool) *BombDetonatedEvent {
	return &BombDetonatedEvent{
		BaseEvent: newBase(TypeBombDetonated, gameID),
		BombID:    bombID,
		Position:  pos,
		Fragments: fragments,
		Chained:   chained,
	}
}

// WallDestroyedEvent is published when a blast clears a breakable wall
type WallDestroyedEvent struct {
	BaseEvent
	Position core.Coordinate
	BombID   int
	Score    int
}

// NewWallDestroyedEvent creates a new WallDestroyedEvent
func NewWallDestroyedEvent(gameID string, pos core.Coordinate, bombID, score int) *WallDestroyedEvent {
	return &WallDestroyedEvent{
		BaseEvent: newBase(TypeWallDestroyed, gameID),
		Position:  pos,
		BombID:    bombID,
		Score:     score,
	}
}

// PlayerKilledEvent is published when a blast reaches the player
type PlayerKilledEvent struct {
	BaseEvent
	Position core.Coordinate
	KillerID int
}

// NewPlayerKilledEvent creates a new PlayerKilledEvent
func NewPlayerKilledEvent(gameID string, pos core.Coordinate, killerID int) *PlayerKilledEvent {
	return &PlayerKilledEvent{
		BaseEvent: newBase(TypePlayerKilled, gameID),
		Position:  pos,
		KillerID:  killerID,
	}
}

// AgentTrainedEvent is published after each gradient step
type AgentTrainedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	Loss      float64
	Epsilon   float64
	BufferLen int
	TrainStep int
}

// NewAgentTrainedEvent creates a new AgentTrainedEvent
func NewAgentTrainedEvent(gameID string, meta EventMetadata, loss, epsilon float64, bufferLen, trainStep int) *AgentTrainedEvent {
	return &AgentTrainedEvent{
		BaseEvent: newBase(TypeAgentTrained, gameID),
		Metadata:  meta,
		Loss:      loss,
		Epsilon:   epsilon,
		BufferLen: bufferLen,
		TrainStep: trainStep,
	}
}

// StateTransitionEvent is published when the episode phase machine changes phase
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}

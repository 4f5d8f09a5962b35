// Package session runs the tick loop that couples the game engine to the
// learning agent. One Session owns all per-run state and is driven from a
// single goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/states"
)

// ErrNoSoftWalls is returned for a level that generates zero breakable walls,
// either because none were requested or no cell is eligible.
var ErrNoSoftWalls = errors.New("no breakable walls")

// DefaultDeathGrace is how long a dead player's level stays up before reset
const DefaultDeathGrace = 350 * time.Millisecond

// Config holds the episode rules applied by a Session
type Config struct {
	DeathGrace      time.Duration
	Rewards         experience.RewardConfig
	MaxEpisodeSteps int // 0 means episodes only end on death or win
}

// DefaultConfig returns the standard episode rules
func DefaultConfig() Config {
	return Config{
		DeathGrace: DefaultDeathGrace,
		Rewards:    experience.DefaultRewardConfig(),
	}
}

// Options wires a Session to its collaborators
type Options struct {
	ID        string
	Engine    *game.Engine
	Agent     *agent.Agent
	Config    Config
	Publisher events.Publisher
	Logger    zerolog.Logger
}

// Stats are cumulative counters over the session lifetime
type Stats struct {
	Ticks      int
	Episodes   int // finished episodes
	Wins       int
	Deaths     int
	Truncated  int
	BestScore  int
	TrainSteps int
}

// Session is the explicit context of one training run
type Session struct {
	id        string
	cfg       Config
	engine    *game.Engine
	agent     *agent.Agent
	encoder   *experience.Encoder
	pool      *experience.VectorPool
	machine   *states.StateMachine
	publisher events.Publisher
	logger    zerolog.Logger

	// pending (state, action) waiting for its outcome
	havePrev   bool
	prevState  []float64
	prevAction core.Action

	episodeID   string
	steps       int
	totalReward float64
	lossSum     float64
	trainCount  int
	simTime     time.Duration

	stats Stats
}

// New validates the wiring and starts the first episode
func New(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Engine == nil || opts.Agent == nil {
		return nil, errors.New("session needs an engine and an agent")
	}
	if opts.Config.DeathGrace < 0 {
		return nil, fmt.Errorf("death grace must not be negative, got %s", opts.Config.DeathGrace)
	}
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}

	// A level without breakable walls is won before the first action.
	if opts.Engine.SoftWallsLeft() == 0 {
		return nil, fmt.Errorf("%w: level has no breakable walls", ErrNoSoftWalls)
	}

	encoder := experience.NewEncoder(opts.Engine.Rows(), opts.Engine.Cols())
	if want := opts.Agent.Config().StateSize; want != encoder.Size() {
		return nil, fmt.Errorf("%w: level encodes to %d values, agent expects %d",
			experience.ErrInvalidState, encoder.Size(), want)
	}

	logger := opts.Logger.With().Str("component", "Session").Str("session_id", opts.ID).Logger()
	s := &Session{
		id:        opts.ID,
		cfg:       opts.Config,
		engine:    opts.Engine,
		agent:     opts.Agent,
		encoder:   encoder,
		pool:      experience.NewVectorPool(encoder.Size()),
		publisher: opts.Publisher,
		logger:    logger,
		prevState: make([]float64, encoder.Size()),
	}
	s.machine = states.NewStateMachine(
		states.NewEpisodeContext(opts.ID, opts.Config.DeathGrace, opts.Logger),
		opts.Publisher,
	)

	if err := s.startEpisode(); err != nil {
		return nil, err
	}
	return s, nil
}

// TickResult is what collaborators need to render one tick. Grid and entity
// data are copies owned by the caller.
type TickResult struct {
	Grid     *core.Grid
	Entities []game.EntityView
	Player   game.Player
	Score    int
	Phase    states.EpisodePhase
	Episode  int

	Action core.Action
	Acted  bool // an action was applied this tick
	Human  bool // the action came from input rather than the policy

	Trained bool
	Loss    float64
	Epsilon float64

	EpisodeEnded bool
	Summary      *events.EpisodeSummary
}

// Tick advances the simulation by dt, records and learns from the outcome of
// the previous action, then chooses and applies the next one. input, when
// non-nil, replaces the policy's choice for this tick.
func (s *Session) Tick(ctx context.Context, dt time.Duration, input *core.Action) (TickResult, error) {
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	scope := s.pool.Scope()
	defer scope.Release()

	s.stats.Ticks++
	s.simTime += dt
	var res TickResult

	if s.machine.CurrentPhase() == states.PhaseDying {
		s.engine.Advance(dt)
		if s.machine.GetContext().AddGrace(dt) {
			if err := s.endEpisode(events.OutcomeDied, "death grace elapsed", &res); err != nil {
				return s.fill(res), err
			}
		}
		return s.fill(res), nil
	}

	s.engine.Advance(dt)
	won := s.engine.Won()
	alive := s.engine.Player().Alive

	if s.havePrev {
		next, err := s.encoder.Encode(s.engine.Grid(), scope.Get())
		if err != nil {
			return s.fill(res), fmt.Errorf("encode next state: %w", err)
		}
		reward := experience.CalculateReward(alive, won, s.cfg.Rewards)
		done := experience.IsTerminal(alive, won)

		s.agent.Remember(experience.NewTransition(s.prevState, s.prevAction, reward, next, done))
		s.havePrev = false
		s.totalReward += reward

		if err := s.train(ctx, &res); err != nil {
			return s.fill(res), err
		}
	}

	switch {
	case !alive:
		if err := s.machine.TransitionTo(states.PhaseDying, "player killed"); err != nil {
			return s.fill(res), err
		}
		s.stats.Deaths++
		if s.cfg.DeathGrace <= 0 {
			if err := s.endEpisode(events.OutcomeDied, "player killed", &res); err != nil {
				return s.fill(res), err
			}
		}
		return s.fill(res), nil

	case won:
		if err := s.machine.TransitionTo(states.PhaseWon, "all breakable walls destroyed"); err != nil {
			return s.fill(res), err
		}
		s.stats.Wins++
		if err := s.endEpisode(events.OutcomeWon, "level cleared", &res); err != nil {
			return s.fill(res), err
		}
		return s.fill(res), nil

	case s.cfg.MaxEpisodeSteps > 0 && s.steps >= s.cfg.MaxEpisodeSteps:
		s.stats.Truncated++
		if err := s.endEpisode(events.OutcomeTruncated, "step limit reached", &res); err != nil {
			return s.fill(res), err
		}
		return s.fill(res), nil
	}

	state, err := s.encoder.Encode(s.engine.Grid(), scope.Get())
	if err != nil {
		return s.fill(res), fmt.Errorf("encode state: %w", err)
	}

	var action core.Action
	if input != nil {
		if !input.IsValid() {
			s.logger.Warn().
				Err(core.WrapActionError(*input, core.ErrInvalidAction)).
				Msg("Ignoring invalid input")
			return s.fill(res), nil
		}
		action = *input
		res.Human = true
	} else {
		action = s.agent.SelectAction(state)
	}

	if err := s.engine.Apply(action); err != nil {
		s.logger.Warn().Err(err).Msg("Action rejected by engine")
		return s.fill(res), nil
	}
	copy(s.prevState, state)
	s.prevAction = action
	s.havePrev = true
	s.steps++

	res.Action = action
	res.Acted = true
	return s.fill(res), nil
}

// train runs one learning step. A non-finite loss is logged and skipped.
func (s *Session) train(ctx context.Context, res *TickResult) error {
	tr, err := s.agent.Train(ctx)
	switch {
	case errors.Is(err, agent.ErrNonFiniteLoss):
		s.logger.Warn().Err(err).Int("episode", s.Episode()).Msg("Training step discarded")
		return nil
	case err != nil:
		return fmt.Errorf("train: %w", err)
	}
	if !tr.Trained {
		return nil
	}

	res.Trained = true
	res.Loss = tr.Loss
	s.lossSum += tr.Loss
	s.trainCount++
	s.stats.TrainSteps++

	s.publisher.Publish(events.NewAgentTrainedEvent(
		s.id,
		events.EventMetadata{Episode: s.Episode(), Step: s.steps},
		tr.Loss,
		tr.Epsilon,
		s.agent.Memory().Len(),
		s.agent.TrainSteps(),
	))
	return nil
}

// endEpisode publishes the summary, resets the level and starts the next episode
func (s *Session) endEpisode(outcome events.Outcome, reason string, res *TickResult) error {
	summary := events.EpisodeSummary{
		ID:          s.episodeID,
		SessionID:   s.id,
		Episode:     s.Episode(),
		Outcome:     outcome,
		Score:       s.engine.Score(),
		Steps:       s.steps,
		TotalReward: s.totalReward,
		TrainSteps:  s.trainCount,
		Epsilon:     s.agent.Epsilon(),
		Duration:    s.simTime,
		EndedAt:     time.Now().UTC(),
	}
	if s.trainCount > 0 {
		summary.MeanLoss = s.lossSum / float64(s.trainCount)
	}

	s.stats.Episodes++
	s.stats.BestScore = max(s.stats.BestScore, summary.Score)
	s.publisher.Publish(events.NewEpisodeEndedEvent(s.id, summary))

	s.logger.Debug().
		Int("episode", summary.Episode).
		Str("outcome", string(outcome)).
		Int("score", summary.Score).
		Int("steps", summary.Steps).
		Msg("Episode ended")

	if err := s.machine.TransitionTo(states.PhaseResetting, reason); err != nil {
		return err
	}
	s.engine.Reset()
	if err := s.startEpisode(); err != nil {
		return err
	}

	res.EpisodeEnded = true
	res.Summary = &summary
	return nil
}

func (s *Session) startEpisode() error {
	s.havePrev = false
	s.episodeID = uuid.New().String()
	s.steps = 0
	s.totalReward = 0
	s.lossSum = 0
	s.trainCount = 0
	s.simTime = 0

	if err := s.machine.TransitionTo(states.PhaseRunning, "episode started"); err != nil {
		return err
	}
	s.publisher.Publish(events.NewEpisodeStartedEvent(
		s.id,
		s.episodeID,
		s.Episode(),
		s.engine.Rows(),
		s.engine.Cols(),
		s.engine.SoftWallsLeft(),
	))
	return nil
}

func (s *Session) fill(res TickResult) TickResult {
	res.Grid = s.engine.Grid().Clone()
	res.Entities = s.engine.Entities()
	res.Player = s.engine.Player()
	res.Score = s.engine.Score()
	res.Phase = s.machine.CurrentPhase()
	res.Episode = s.Episode()
	res.Epsilon = s.agent.Epsilon()
	return res
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) Engine() *game.Engine       { return s.engine }
func (s *Session) Agent() *agent.Agent        { return s.agent }
func (s *Session) Phase() states.EpisodePhase { return s.machine.CurrentPhase() }
func (s *Session) Stats() Stats               { return s.stats }

// Episode returns the 1-based number of the running episode
func (s *Session) Episode() int { return s.machine.GetContext().Episode }

// History returns the recorded phase transitions
func (s *Session) History() []states.Transition { return s.machine.GetHistory() }

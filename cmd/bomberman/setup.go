package main

import (
	"context"
	"errors"
	"io/fs"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/mapgen"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/storage"
)

// runtime bundles everything one command needs to drive a session
type runtime struct {
	cfg      config.Config
	bus      *events.EventBus
	engine   *game.Engine
	agent    *agent.Agent
	session  *session.Session
	store    *storage.Store
	recorder *subscribers.EpisodeRecorder
	logger   zerolog.Logger

	// ticks is read by the runtime monitor while the loop runs
	ticks atomic.Int64
}

// buildRuntime wires the event bus, engine, agent and session from config.
// An existing checkpoint at agent.checkpoint_path is restored.
func buildRuntime(ctx context.Context, cfg config.Config, seed int64, logger zerolog.Logger) (*runtime, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sessionID := uuid.New().String()
	logger = logger.With().Str("session_id", sessionID).Logger()

	bus := events.NewEventBus(logger)
	if cfg.Logging.LogEvents {
		sub := subscribers.NewLoggerSubscriber("event-logger", logger, parseLevel(cfg.Logging.EventLevel))
		sub.SetDevMode(cfg.Logging.Development)
		bus.Subscribe(sub)
	}

	level := mapgen.DefaultLevelConfig()
	level.SoftWalls = cfg.Game.SoftWalls
	if cfg.Game.TemplateFile != "" {
		tpl, err := mapgen.LoadTemplateFile(cfg.Game.TemplateFile)
		if err != nil {
			return nil, err
		}
		level.Template = tpl
	}

	engine, err := game.NewEngine(ctx, game.GameConfig{
		GameID: sessionID,
		Level:  level,
		Player: game.PlayerConfig{
			Start:         core.NewCoordinate(cfg.Game.StartRow, cfg.Game.StartCol),
			BombAllowance: cfg.Game.BombAllowance,
			BlastSize:     cfg.Game.BlastSize,
		},
		BombTimer:         cfg.Game.BombTimer(),
		ExplosionDuration: cfg.Game.Explosion(),
		Rng:               rand.New(rand.NewSource(seed)),
		Logger:            logger,
		Publisher:         bus,
	})
	if err != nil {
		return nil, err
	}

	agentCfg, err := agentConfig(cfg.Agent, engine.Rows()*engine.Cols())
	if err != nil {
		return nil, err
	}
	ag, err := agent.NewAgent(agentCfg, rand.New(rand.NewSource(seed+1)), logger)
	if err != nil {
		return nil, err
	}
	if path := cfg.Agent.CheckpointPath; path != "" {
		if err := ag.LoadCheckpoint(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			logger.Info().Str("path", path).Msg("No checkpoint yet, starting fresh")
		}
	}

	sess, err := session.New(ctx, session.Options{
		ID:     sessionID,
		Engine: engine,
		Agent:  ag,
		Config: session.Config{
			DeathGrace: cfg.Game.DeathGrace(),
			Rewards: experience.RewardConfig{
				Alive: cfg.Rewards.Alive,
				Death: cfg.Rewards.Death,
				Win:   cfg.Rewards.Win,
			},
			MaxEpisodeSteps: cfg.Game.MaxEpisodeSteps,
		},
		Publisher: bus,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("seed", seed).
		Int("rows", engine.Rows()).
		Int("cols", engine.Cols()).
		Int("state_size", agentCfg.StateSize).
		Msg("Session ready")

	return &runtime{
		cfg:     cfg,
		bus:     bus,
		engine:  engine,
		agent:   ag,
		session: sess,
		logger:  logger,
	}, nil
}

func agentConfig(c config.AgentConfig, stateSize int) (agent.Config, error) {
	act, err := agent.ParseActivation(c.Activation)
	if err != nil {
		return agent.Config{}, err
	}
	return agent.Config{
		StateSize:    stateSize,
		HiddenUnits:  append([]int(nil), c.HiddenUnits...),
		Activation:   act,
		LearningRate: c.LearningRate,
		MemorySize:   c.MemorySize,
		BatchSize:    c.BatchSize,
		Gamma:        c.Gamma,
		EpsilonStart: c.EpsilonStart,
		EpsilonMin:   c.EpsilonMin,
		EpsilonDecay: c.EpsilonDecay,
	}, nil
}

// attachStore opens the episode database and subscribes a recorder to the bus
func (rt *runtime) attachStore(ctx context.Context) error {
	if !rt.cfg.Storage.Enabled {
		return nil
	}
	store, err := storage.Open(ctx, rt.cfg.Storage.Path)
	if err != nil {
		return err
	}
	rt.store = store
	rt.recorder = subscribers.NewEpisodeRecorder("episode-recorder", store, rt.logger)
	rt.bus.Subscribe(rt.recorder)
	return nil
}

// saveCheckpoint writes the agent to agent.checkpoint_path when one is set
func (rt *runtime) saveCheckpoint() {
	path := rt.cfg.Agent.CheckpointPath
	if path == "" {
		return
	}
	if err := rt.agent.SaveCheckpoint(path); err != nil {
		rt.logger.Error().Err(err).Str("path", path).Msg("Failed to save checkpoint")
	}
}

func (rt *runtime) Close() error {
	if rt.recorder != nil {
		rt.bus.Unsubscribe(rt.recorder.ID())
	}
	if rt.store != nil {
		return rt.store.Close()
	}
	return nil
}

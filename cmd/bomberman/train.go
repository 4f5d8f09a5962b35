package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/monitoring"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
)

var (
	flagMaxEpisodes int
	flagMaxTicks    int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the headless training loop",
	Long: `Runs the session as fast as possible with a fixed simulated tick.
Finished episodes are recorded to the episode database, checkpoints are
written every agent.checkpoint_every episodes and on shutdown.

Stops on SIGINT/SIGTERM or when a configured limit is reached.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagMaxEpisodes, "episodes", -1, "Stop after this many episodes (-1 to use config, 0 for no limit)")
	trainCmd.Flags().IntVar(&flagMaxTicks, "ticks", -1, "Stop after this many ticks (-1 to use config, 0 for no limit)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if flagMaxEpisodes >= 0 {
		cfg.Training.MaxEpisodes = flagMaxEpisodes
	}
	if flagMaxTicks >= 0 {
		cfg.Training.MaxTicks = flagMaxTicks
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg, flagSeed, log.Logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.attachStore(ctx); err != nil {
		return err
	}

	if cfg.Server.Health.Enabled {
		hs, err := startHealthServer(cfg.Server.Health, rt.logger)
		if err != nil {
			return err
		}
		defer hs.Stop()
	}

	if cfg.Training.MonitorSec > 0 {
		monitor := monitoring.NewRuntimeMonitor(time.Duration(cfg.Training.MonitorSec)*time.Second, rt.logger)
		monitor.Track("ticks", func() int { return int(rt.ticks.Load()) })
		monitor.Start(ctx)
	}

	config.WatchConfig(func(c config.Config) {
		zerolog.SetGlobalLevel(parseLevel(c.Logging.Level))
		log.Info().Str("level", c.Logging.Level).Msg("Configuration reloaded")
	}, func(err error) {
		log.Warn().Err(err).Msg("Ignoring invalid configuration change")
	})

	stats, err := trainLoop(ctx, rt, cfg.Training, cfg.Agent.CheckpointEvery)
	rt.saveCheckpoint()

	rt.logger.Info().
		Int("episodes", stats.Episodes).
		Int("ticks", stats.Ticks).
		Int("wins", stats.Wins).
		Int("best_score", stats.BestScore).
		Float64("epsilon", rt.agent.Epsilon()).
		Dur("elapsed", stats.Elapsed).
		Msg("Training stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// trainStats summarizes one trainLoop run
type trainStats struct {
	Ticks     int
	Episodes  int
	Wins      int
	BestScore int
	Elapsed   time.Duration
}

// trainLoop ticks the session until ctx is done or a training limit is hit
func trainLoop(ctx context.Context, rt *runtime, tc config.TrainingConfig, checkpointEvery int) (stats trainStats, err error) {
	var (
		start  = time.Now()
		window []events.EpisodeSummary
		dt     = tc.Tick()
	)
	defer func() { stats.Elapsed = time.Since(start) }()

	for {
		if tc.MaxTicks > 0 && stats.Ticks >= tc.MaxTicks {
			return stats, nil
		}

		var res session.TickResult
		res, err = rt.session.Tick(ctx, dt, nil)
		if err != nil && !errors.Is(err, experience.ErrInvalidState) {
			return stats, err
		}
		stats.Ticks++
		rt.ticks.Add(1)
		if err != nil {
			rt.logger.Error().Err(err).Int("tick", stats.Ticks).Msg("Tick aborted")
			continue
		}

		if !res.EpisodeEnded || res.Summary == nil {
			continue
		}

		summary := *res.Summary
		stats.Episodes++
		stats.BestScore = max(stats.BestScore, summary.Score)
		if summary.Outcome == events.OutcomeWon {
			stats.Wins++
		}
		window = append(window, summary)

		if tc.ProgressEvery > 0 && stats.Episodes%tc.ProgressEvery == 0 {
			logProgress(rt.logger, stats, window)
			window = window[:0]
		}
		if checkpointEvery > 0 && stats.Episodes%checkpointEvery == 0 {
			rt.saveCheckpoint()
		}
		if tc.MaxEpisodes > 0 && stats.Episodes >= tc.MaxEpisodes {
			return stats, nil
		}
	}
}

func logProgress(logger zerolog.Logger, stats trainStats, window []events.EpisodeSummary) {
	if len(window) == 0 {
		return
	}
	var score, reward, loss float64
	wins := 0
	for _, e := range window {
		score += float64(e.Score)
		reward += e.TotalReward
		loss += e.MeanLoss
		if e.Outcome == events.OutcomeWon {
			wins++
		}
	}
	n := float64(len(window))
	last := window[len(window)-1]

	logger.Info().
		Int("episode", last.Episode).
		Int("ticks", stats.Ticks).
		Float64("avg_score", score/n).
		Float64("avg_reward", reward/n).
		Float64("avg_loss", loss/n).
		Int("wins", wins).
		Float64("epsilon", last.Epsilon).
		Msg("Training progress")
}

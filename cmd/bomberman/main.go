// bomberman trains and displays a DQN agent playing a single-player
// Bomberman arena.
//
// Usage:
//
//	bomberman train    - Headless training loop
//	bomberman play     - Window view; the agent acts, the keyboard overrides
//	bomberman watch    - Terminal view of a training session
//	bomberman scores   - Show recorded episode history
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagEnv      string
	flagLogLevel string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bomberman",
	Short: "Bomberman arena with an online Q-learning agent",
	Long: `Runs a single-player Bomberman level in which a small Q-network
learns online, one gradient step per tick, from its own replay memory.

Examples:
  bomberman train --config config.yaml
  bomberman play --seed 42
  bomberman watch
  bomberman scores --limit 20`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(flagConfig); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if err := config.LoadEnvironmentConfig(flagEnv); err != nil {
			return err
		}
		cfg := config.Get()
		level := cfg.Logging.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		setupLogging(level, cfg.Logging.Format)
		log.Debug().Str("config_file", config.ConfigFilePath()).Msg("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", os.Getenv("APP_ENV"), "Environment overlay (merges config.<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (trace, debug, info, warn, error) (empty to use config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scoresCmd)
}

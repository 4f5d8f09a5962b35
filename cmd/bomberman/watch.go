package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Train in the terminal with a live view of the level",
	Long: `Runs the session inside a terminal UI. Several ticks run per frame;
+ and - change the speed, p pauses, arrows/WASD and space inject actions,
q quits.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the terminal belongs to the viewer; only errors go to stderr
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.ErrorLevel).With().Timestamp().Logger()

	rt, err := buildRuntime(ctx, cfg, flagSeed, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.attachStore(ctx); err != nil {
		return err
	}

	err = tui.Run(ctx, rt.session, tui.OptionsFromConfig(cfg), logger)
	rt.saveCheckpoint()
	return err
}

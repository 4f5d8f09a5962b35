package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open a window and watch the agent learn",
	Long: `Opens an ebiten window that advances the session once per frame.
The agent chooses actions; arrow keys (or WASD) and space override it for
the tick they are pressed. P pauses, Esc or Q quits.`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	ctx := cmd.Context()

	rt, err := buildRuntime(ctx, cfg, flagSeed, log.Logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.attachStore(ctx); err != nil {
		return err
	}

	g, err := ui.NewUIGame(ctx, rt.session, cfg.UI, rt.logger)
	if err != nil {
		return err
	}

	w, h := g.WindowSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(cfg.UI.Window.Title)
	ebiten.SetTPS(cfg.UI.TPS)

	err = ebiten.RunGame(g)
	rt.saveCheckpoint()
	return err
}

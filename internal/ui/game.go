// Package ui is the ebiten window collaborator: it paces ticks, feeds
// keyboard input into the session and draws each TickResult.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/ui/input"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/ui/palette"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/ui/renderer"
)

const hudHeight = 44

// UIGame drives a session from ebiten's update loop
type UIGame struct {
	ctx           context.Context
	session       *session.Session
	boardRenderer *renderer.BoardRenderer
	inputHandler  *input.Handler
	defaultFont   font.Face
	logger        zerolog.Logger

	dt         time.Duration
	background color.RGBA
	last       session.TickResult
	paused     bool
}

// NewUIGame creates a new Ebitengine game instance.
func NewUIGame(ctx context.Context, s *session.Session, cfg config.UIConfig, logger zerolog.Logger) (*UIGame, error) {
	if cfg.TPS <= 0 {
		return nil, fmt.Errorf("ticks per second must be positive, got %d", cfg.TPS)
	}
	g := &UIGame{
		ctx:          ctx,
		session:      s,
		inputHandler: input.NewHandler(),
		defaultFont:  basicfont.Face7x13,
		logger:       logger.With().Str("component", "UIGame").Logger(),
		dt:           time.Second / time.Duration(cfg.TPS),
	}
	pal := palette.New(cfg.Colors)
	g.background = pal.Background
	g.boardRenderer = renderer.NewBoardRenderer(cfg.Window.TileSize, g.defaultFont, pal)

	// first frame: show the level before any tick
	eng := s.Engine()
	g.last = session.TickResult{
		Grid:     eng.Grid().Clone(),
		Entities: eng.Entities(),
		Player:   eng.Player(),
		Phase:    s.Phase(),
		Episode:  s.Episode(),
		Epsilon:  s.Agent().Epsilon(),
	}
	return g, nil
}

// WindowSize returns the window size needed for the session's level
func (g *UIGame) WindowSize() (int, int) {
	w, h := g.boardRenderer.Size(g.last.Grid)
	return w, h + hudHeight
}

// Update advances the session by one tick per frame.
func (g *UIGame) Update() error {
	g.inputHandler.Update()
	if g.inputHandler.QuitRequested() || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if g.inputHandler.PauseRequested() {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}

	res, err := g.session.Tick(g.ctx, g.dt, g.inputHandler.Take())
	switch {
	case errors.Is(err, context.Canceled):
		return ebiten.Termination
	case errors.Is(err, experience.ErrInvalidState):
		g.logger.Error().Err(err).Msg("Tick aborted")
		return nil
	case err != nil:
		return err
	}

	g.last = res
	if res.EpisodeEnded && res.Summary != nil {
		g.logger.Info().
			Int("episode", res.Summary.Episode).
			Str("outcome", string(res.Summary.Outcome)).
			Int("score", res.Summary.Score).
			Float64("epsilon", res.Summary.Epsilon).
			Msg("Episode finished")
	}
	return nil
}

// Draw renders the game screen.
func (g *UIGame) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	g.boardRenderer.Draw(screen, 0, hudHeight, g.last.Grid, g.last.Entities, g.last.Player)

	status := fmt.Sprintf("Episode %d  Score %d  Phase %s", g.last.Episode, g.last.Score, g.last.Phase)
	g.boardRenderer.DrawText(screen, status, 5, 16)

	learn := fmt.Sprintf("eps %.3f  loss %.4f  memory %d", g.last.Epsilon, g.last.Loss, g.session.Agent().Memory().Len())
	if g.paused {
		learn += "  [paused]"
	}
	ebitenutil.DebugPrintAt(screen, learn, 5, 22)
}

// Layout defines the Ebitengine screen size.
func (g *UIGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.WindowSize()
}

package renderer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/ui/palette"
)

// BoardRenderer draws a level grid, its entities and the player
type BoardRenderer struct {
	tileSize    int
	defaultFont font.Face
	palette     palette.Palette
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(tileSize int, f font.Face, p palette.Palette) *BoardRenderer {
	return &BoardRenderer{tileSize: tileSize, defaultFont: f, palette: p}
}

func (br *BoardRenderer) TileSize() int { return br.tileSize }

// Size returns the pixel size of a grid
func (br *BoardRenderer) Size(g *core.Grid) (int, int) {
	return g.Cols * br.tileSize, g.Rows * br.tileSize
}

// Draw renders the grid, then entities, then the player at offset (ox, oy).
func (br *BoardRenderer) Draw(screen *ebiten.Image, ox, oy int, g *core.Grid, entities []game.EntityView, player game.Player) {
	if g == nil {
		return
	}

	ts := float32(br.tileSize)
	for idx, kind := range g.C {
		c := g.Coord(idx)
		x, y := br.origin(ox, oy, c)

		switch kind {
		case core.CellOutline:
			vector.DrawFilledRect(screen, x, y, ts, ts, br.palette.Outline, false)
		case core.CellWall:
			vector.DrawFilledRect(screen, x, y, ts, ts, br.palette.Wall, false)
		case core.CellSoftWall:
			vector.DrawFilledRect(screen, x, y, ts, ts, br.palette.SoftWall, false)
			// mortar line
			vector.StrokeLine(screen, x, y+ts/2, x+ts, y+ts/2, 1, br.palette.Background, false)
		}
	}

	for _, e := range entities {
		x, y := br.origin(ox, oy, e.Pos)
		switch e.Kind {
		case game.EntityBomb:
			// the fuse shortens as the timer runs out
			r := ts * 0.35
			vector.DrawFilledCircle(screen, x+ts/2, y+ts/2, r, br.palette.Bomb, true)
			fuse := ts * 0.4 * float32(1-e.Progress)
			vector.StrokeLine(screen, x+ts/2, y+ts/2-r, x+ts/2+fuse, y+ts/2-r-fuse, 2, br.palette.Explosion, true)
		case game.EntityExplosion:
			c := br.palette.FragmentColor(e.Progress)
			inset := ts * 0.15
			if e.Center {
				inset = 0
			}
			vector.DrawFilledRect(screen, x+inset, y+inset, ts-2*inset, ts-2*inset, c, false)
		}
	}

	px, py := br.origin(ox, oy, player.Pos)
	pc := br.palette.Player
	if !player.Alive {
		pc = br.palette.Dead
	}
	vector.DrawFilledRect(screen, px+ts*0.2, py+ts*0.2, ts*0.6, ts*0.6, pc, true)
}

// DrawText writes a line of HUD text with its baseline at (x, y)
func (br *BoardRenderer) DrawText(screen *ebiten.Image, s string, x, y int) {
	if br.defaultFont == nil {
		return
	}
	text.Draw(screen, s, br.defaultFont, x, y, br.palette.Text)
}

func (br *BoardRenderer) origin(ox, oy int, c core.Coordinate) (float32, float32) {
	return float32(ox + c.Col*br.tileSize), float32(oy + c.Row*br.tileSize)
}

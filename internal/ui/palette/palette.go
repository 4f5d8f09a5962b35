// Package palette turns configured RGB triples into the colors the window
// renderer draws with.
package palette

import (
	"image/color"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
)

// Palette holds the colors used for each cell kind and entity
type Palette struct {
	Background color.RGBA
	Outline    color.RGBA
	Wall       color.RGBA
	SoftWall   color.RGBA
	Bomb       color.RGBA
	Explosion  color.RGBA
	Player     color.RGBA
	Dead       color.RGBA
	Text       color.Color
}

// New builds a palette from configured RGB triples
func New(c config.ColorsConfig) Palette {
	return Palette{
		Background: rgb(c.Background),
		Outline:    rgb(c.Outline),
		Wall:       rgb(c.Wall),
		SoftWall:   rgb(c.SoftWall),
		Bomb:       rgb(c.Bomb),
		Explosion:  rgb(c.Explosion),
		Player:     rgb(c.Player),
		Dead:       color.RGBA{140, 30, 30, 255},
		Text:       color.White,
	}
}

func rgb(v [3]int) color.RGBA {
	return color.RGBA{uint8(v[0]), uint8(v[1]), uint8(v[2]), 255}
}

// Fade scales c to the given opacity in [0, 1]. color.RGBA is
// alpha-premultiplied, so every channel is scaled, not only A.
func Fade(c color.RGBA, opacity float64) color.RGBA {
	opacity = min(max(opacity, 0), 1)
	scale := func(v uint8) uint8 { return uint8(float64(v)*opacity + 0.5) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: scale(c.A)}
}

// FragmentColor is the explosion color for a fragment that has run through
// progress (0 fresh, 1 expired) of its lifetime.
func (p Palette) FragmentColor(progress float64) color.RGBA {
	return Fade(p.Explosion, 1-0.6*progress)
}

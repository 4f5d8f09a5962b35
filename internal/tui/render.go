package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
)

// Glyph is what occupies one rendered cell
type Glyph int

const (
	GlyphEmpty Glyph = iota
	GlyphOutline
	GlyphWall
	GlyphSoftWall
	GlyphBomb
	GlyphExplosion
	GlyphPlayer
	GlyphDeadPlayer
)

// each cell is two columns wide so the board keeps its aspect ratio
var glyphText = map[Glyph]string{
	GlyphEmpty:      "  ",
	GlyphOutline:    "██",
	GlyphWall:       "▓▓",
	GlyphSoftWall:   "░░",
	GlyphBomb:       "()",
	GlyphExplosion:  "**",
	GlyphPlayer:     "@@",
	GlyphDeadPlayer: "xx",
}

var glyphStyles = map[Glyph]lipgloss.Style{
	GlyphEmpty:      lipgloss.NewStyle(),
	GlyphOutline:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	GlyphWall:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	GlyphSoftWall:   lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
	GlyphBomb:       lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	GlyphExplosion:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	GlyphPlayer:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	GlyphDeadPlayer: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boardStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// Glyphs resolves what to draw in every cell: grid first, then entities in
// creation order, then the player on top.
func Glyphs(g *core.Grid, entities []game.EntityView, player game.Player) [][]Glyph {
	out := make([][]Glyph, g.Rows)
	for r := range out {
		out[r] = make([]Glyph, g.Cols)
		for c, kind := range g.Row(r) {
			switch kind {
			case core.CellOutline:
				out[r][c] = GlyphOutline
			case core.CellWall:
				out[r][c] = GlyphWall
			case core.CellSoftWall:
				out[r][c] = GlyphSoftWall
			case core.CellBomb:
				out[r][c] = GlyphBomb
			}
		}
	}
	for _, e := range entities {
		if !g.InBounds(e.Pos) {
			continue
		}
		switch e.Kind {
		case game.EntityBomb:
			out[e.Pos.Row][e.Pos.Col] = GlyphBomb
		case game.EntityExplosion:
			out[e.Pos.Row][e.Pos.Col] = GlyphExplosion
		}
	}
	if g.InBounds(player.Pos) {
		if player.Alive {
			out[player.Pos.Row][player.Pos.Col] = GlyphPlayer
		} else {
			out[player.Pos.Row][player.Pos.Col] = GlyphDeadPlayer
		}
	}
	return out
}

// PlainBoard renders a tick result without styling
func PlainBoard(res session.TickResult) string {
	return renderBoard(res, func(g Glyph) string { return glyphText[g] })
}

// StyledBoard renders a tick result with lipgloss colors
func StyledBoard(res session.TickResult) string {
	return boardStyle.Render(renderBoard(res, func(g Glyph) string {
		return glyphStyles[g].Render(glyphText[g])
	}))
}

func renderBoard(res session.TickResult, cell func(Glyph) string) string {
	if res.Grid == nil {
		return ""
	}
	var sb strings.Builder
	for r, row := range Glyphs(res.Grid, res.Entities, res.Player) {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, g := range row {
			sb.WriteString(cell(g))
		}
	}
	return sb.String()
}

// StatusLine summarizes the session state under the board
func StatusLine(res session.TickResult, memory int, stepsPerFrame int, paused bool) string {
	s := fmt.Sprintf("episode %d  score %d  phase %s  eps %.3f  loss %.4f  memory %d  speed x%d",
		res.Episode, res.Score, res.Phase, res.Epsilon, res.Loss, memory, stepsPerFrame)
	if paused {
		s += "  [paused]"
	}
	return s
}

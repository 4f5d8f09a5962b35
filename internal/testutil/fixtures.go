package testutil

import (
	"strings"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// OpenArenaRows returns template rows for a rows x cols arena with an outline
// border and nothing inside
func OpenArenaRows(rows, cols int) []string {
	out := make([]string, rows)
	border := strings.Repeat("#", cols)
	inner := "#" + strings.Repeat(".", cols-2) + "#"
	for r := range out {
		if r == 0 || r == rows-1 {
			out[r] = border
		} else {
			out[r] = inner
		}
	}
	return out
}

// OpenArena returns the template for OpenArenaRows
func OpenArena(rows, cols int) *core.Template {
	return core.MustParseTemplate(OpenArenaRows(rows, cols))
}

// WithCell returns a copy of rows with the symbol at c replaced
func WithCell(rows []string, c core.Coordinate, symbol byte) []string {
	out := make([]string, len(rows))
	copy(out, rows)
	line := []byte(out[c.Row])
	line[c.Col] = symbol
	out[c.Row] = string(line)
	return out
}

// GridFromRows builds a grid from CellKind symbols ('#', 'W', 'S', 'B', '.')
func GridFromRows(rows []string) *core.Grid {
	g := core.NewGrid(len(rows), len(rows[0]))
	for r, line := range rows {
		for c := 0; c < len(line); c++ {
			var k core.CellKind
			switch line[c] {
			case '#':
				k = core.CellOutline
			case 'W':
				k = core.CellWall
			case 'S':
				k = core.CellSoftWall
			case 'B':
				k = core.CellBomb
			}
			g.Set(core.NewCoordinate(r, c), k)
		}
	}
	return g
}

package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/states"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/session"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/testutil"
)

func TestGlyphs_Layering(t *testing.T) {
	g := testutil.GridFromRows([]string{
		"#####",
		"#.SW#",
		"#B..#",
		"#####",
	})
	entities := []game.EntityView{
		{Kind: game.EntityBomb, Pos: core.NewCoordinate(2, 1)},
		{Kind: game.EntityExplosion, Pos: core.NewCoordinate(2, 2)},
		{Kind: game.EntityExplosion, Pos: core.NewCoordinate(2, 3)},
	}
	player := game.Player{Pos: core.NewCoordinate(2, 3), Alive: true}

	glyphs := Glyphs(g, entities, player)

	require.Len(t, glyphs, 4)
	assert.Equal(t, GlyphOutline, glyphs[0][0])
	assert.Equal(t, GlyphEmpty, glyphs[1][1])
	assert.Equal(t, GlyphSoftWall, glyphs[1][2])
	assert.Equal(t, GlyphWall, glyphs[1][3])
	assert.Equal(t, GlyphBomb, glyphs[2][1])
	assert.Equal(t, GlyphExplosion, glyphs[2][2])
	assert.Equal(t, GlyphPlayer, glyphs[2][3], "the player is drawn over explosions")

	player.Alive = false
	assert.Equal(t, GlyphDeadPlayer, Glyphs(g, entities, player)[2][3])
}

func TestPlainBoard(t *testing.T) {
	res := session.TickResult{
		Grid:   testutil.GridFromRows([]string{"###", "#.#", "###"}),
		Player: game.Player{Pos: core.NewCoordinate(1, 1), Alive: true},
	}

	lines := strings.Split(PlainBoard(res), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "██████", lines[0])
	assert.Equal(t, "██@@██", lines[1])

	assert.Empty(t, PlainBoard(session.TickResult{}))
}

func TestStatusLine(t *testing.T) {
	res := session.TickResult{Episode: 4, Score: 7, Phase: states.PhaseDying, Epsilon: 0.5, Loss: 0.125}

	line := StatusLine(res, 42, 2, true)
	assert.Contains(t, line, "episode 4")
	assert.Contains(t, line, "score 7")
	assert.Contains(t, line, "phase Dying")
	assert.Contains(t, line, "memory 42")
	assert.Contains(t, line, "[paused]")
}

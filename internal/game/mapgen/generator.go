package mapgen

import (
	"math/rand"
	"slices"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// LevelConfig holds configuration for level generation
type LevelConfig struct {
	Template  *core.Template
	SoftWalls int               // requested number of breakable walls
	Clear     []core.Coordinate // open cells that never get a breakable wall, e.g. the player start
}

// DefaultLevelConfig returns the classic arena with 60 breakable walls
func DefaultLevelConfig() LevelConfig {
	return LevelConfig{
		Template:  core.DefaultTemplate(),
		SoftWalls: 60,
	}
}

// Generator handles level generation with deterministic RNG
type Generator struct {
	config   LevelConfig
	rng      *rand.Rand
	eligible []int
}

// NewGenerator creates a new level generator. The eligible cell pool is
// computed once since the template never changes.
func NewGenerator(config LevelConfig, rng *rand.Rand) *Generator {
	if config.Template == nil {
		config.Template = core.DefaultTemplate()
	}
	g := &Generator{
		config: config,
		rng:    rng,
	}
	t := config.Template
	for idx := 0; idx < t.Rows()*t.Cols(); idx++ {
		c := core.FromIndex(idx, t.Cols())
		if t.IsSpawnable(c) && !slices.Contains(config.Clear, c) {
			g.eligible = append(g.eligible, idx)
		}
	}
	return g
}

// Template returns the template levels are generated from
func (g *Generator) Template() *core.Template { return g.config.Template }

// EligibleCells returns the coordinates where breakable walls may spawn
func (g *Generator) EligibleCells() []core.Coordinate {
	out := make([]core.Coordinate, len(g.eligible))
	for i, idx := range g.eligible {
		out[i] = core.FromIndex(idx, g.config.Template.Cols())
	}
	return out
}

// SoftWallTarget is the number of breakable walls every generated level holds
func (g *Generator) SoftWallTarget() int {
	return min(max(g.config.SoftWalls, 0), len(g.eligible))
}

// GenerateLevel creates a new grid with permanent walls from the template and
// breakable walls scattered uniformly over the eligible cells.
func (g *Generator) GenerateLevel() *core.Grid {
	grid := g.config.Template.BaseGrid()
	g.placeSoftWalls(grid)
	return grid
}

func (g *Generator) placeSoftWalls(grid *core.Grid) {
	pool := make([]int, len(g.eligible))
	copy(pool, g.eligible)

	want := g.SoftWallTarget()
	// Partial Fisher-Yates: the first want entries end up a uniform sample.
	for i := 0; i < want; i++ {
		j := i + g.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		grid.C[pool[i]] = core.CellSoftWall
	}
}

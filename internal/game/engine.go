package game

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/mapgen"
)

// AdvanceResult summarizes what happened during one Advance call
type AdvanceResult struct {
	Detonations    int
	Fragments      int
	WallsDestroyed int
	PlayerKilled   bool
}

// Engine owns the grid, the timed entities, the player and the score
type Engine struct {
	config     GameConfig
	gameID     string
	generator  *mapgen.Generator
	grid       *core.Grid
	player     Player
	entities   []Entity
	score      int
	softWalls  int
	nextBombID int
	logger     zerolog.Logger
	publisher  events.Publisher
}

// NewEngine validates the configuration and generates the first level
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if cfg.Level.Template == nil {
		cfg.Level.Template = core.DefaultTemplate()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	cfg.Level.Clear = append(slices.Clone(cfg.Level.Clear), cfg.Player.Start)
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.NopPublisher{}
	}
	if cfg.GameID == "" {
		cfg.GameID = fmt.Sprintf("game_%d", time.Now().UnixNano())
	}

	e := &Engine{
		config:    cfg,
		gameID:    cfg.GameID,
		generator: mapgen.NewGenerator(cfg.Level, cfg.Rng),
		logger:    cfg.Logger.With().Str("component", "GameEngine").Logger(),
		publisher: cfg.Publisher,
	}
	e.Reset()

	e.logger.Info().
		Int("rows", e.grid.Rows).
		Int("cols", e.grid.Cols).
		Int("soft_walls", e.softWalls).
		Msg("Engine created successfully")

	return e, nil
}

// Reset regenerates the level, restores the player and clears score and entities
func (e *Engine) Reset() {
	e.grid = e.generator.GenerateLevel()
	e.softWalls = e.grid.Count(core.CellSoftWall)
	e.player = newPlayer(e.config.Player)
	clear(e.entities)
	e.entities = e.entities[:0]
	e.score = 0
}

// Advance moves simulated time forward by dt. Only entities that existed when
// the call started are updated; anything spawned during the call waits for
// the next one. Dead entities are purged afterwards.
func (e *Engine) Advance(dt time.Duration) AdvanceResult {
	var res AdvanceResult
	n := len(e.entities)
	for i := 0; i < n; i++ {
		e.entities[i].update(e, dt, &res)
	}

	alive := e.entities[:0]
	for _, ent := range e.entities {
		if ent.Alive() {
			alive = append(alive, ent)
		}
	}
	clear(e.entities[len(alive):])
	e.entities = alive

	return res
}

// Apply performs one player action. Blocked moves and refused bomb placements
// are no-ops; only unknown actions and actions of a dead player are errors.
func (e *Engine) Apply(action core.Action) error {
	if !action.IsValid() {
		return core.WrapActionError(action, core.ErrInvalidAction)
	}
	if !e.player.Alive {
		return core.WrapActionError(action, core.ErrPlayerDead)
	}

	if action == core.ActionPlaceBomb {
		if _, err := e.PlaceBomb(); err != nil {
			e.logger.Trace().Err(err).Msg("Bomb placement refused")
		}
		return nil
	}

	target := e.player.Pos.Add(action.Direction())
	if e.grid.InBounds(target) && e.grid.At(target).IsEmpty() {
		e.player.Pos = target
	}
	return nil
}

// PlaceBomb drops a bomb on the player's cell
func (e *Engine) PlaceBomb() (*Bomb, error) {
	if !e.player.Alive {
		return nil, core.ErrPlayerDead
	}
	if e.LiveBombs() >= e.player.BombAllowance {
		return nil, core.ErrBombLimit
	}
	pos := e.player.Pos
	if !e.grid.At(pos).IsEmpty() {
		return nil, fmt.Errorf("place bomb at %s: %w", pos, core.ErrCellOccupied)
	}

	e.nextBombID++
	b := &Bomb{
		ID:        e.nextBombID,
		Pos:       pos,
		BlastSize: e.player.BlastSize,
		Timer:     e.config.BombTimer,
		Remaining: e.config.BombTimer,
		State:     BombArmed,
	}
	e.grid.Set(pos, core.CellBomb)
	e.entities = append(e.entities, b)
	e.publisher.Publish(events.NewBombPlacedEvent(e.gameID, b.ID, pos))
	return b, nil
}

// LiveBombs counts bombs that have not finished exploding
func (e *Engine) LiveBombs() int {
	n := 0
	for _, ent := range e.entities {
		if ent.Kind() == EntityBomb && ent.Alive() {
			n++
		}
	}
	return n
}

// Won reports whether every breakable wall has been destroyed
func (e *Engine) Won() bool { return e.softWalls == 0 }

func (e *Engine) GameID() string     { return e.gameID }
func (e *Engine) Score() int         { return e.score }
func (e *Engine) Player() Player     { return e.player }
func (e *Engine) SoftWallsLeft() int { return e.softWalls }
func (e *Engine) Rows() int          { return e.grid.Rows }
func (e *Engine) Cols() int          { return e.grid.Cols }
func (e *Engine) Config() GameConfig { return e.config }
func (e *Engine) EntityCount() int   { return len(e.entities) }

// Grid returns the live grid. Callers must not modify it.
func (e *Engine) Grid() *core.Grid { return e.grid }

// Entities returns copies of the current entities in creation order
func (e *Engine) Entities() []EntityView {
	out := make([]EntityView, 0, len(e.entities))
	for _, ent := range e.entities {
		switch v := ent.(type) {
		case *Bomb:
			out = append(out, v.view())
		case *Explosion:
			out = append(out, v.view())
		}
	}
	return out
}

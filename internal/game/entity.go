package game

import (
	"time"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// EntityKind distinguishes the timed entities living on the grid
type EntityKind uint8

const (
	EntityBomb EntityKind = iota
	EntityExplosion
)

func (k EntityKind) String() string {
	switch k {
	case EntityBomb:
		return "bomb"
	case EntityExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// Entity is a timed object owned by the engine. The set of implementations is
// closed: only *Bomb and *Explosion satisfy it.
type Entity interface {
	Kind() EntityKind
	Position() core.Coordinate
	Alive() bool
	update(e *Engine, dt time.Duration, res *AdvanceResult)
}

// EntityView is a read-only copy of an entity for renderers
type EntityView struct {
	Kind      EntityKind
	Pos       core.Coordinate
	Dir       core.Direction // explosions only
	Center    bool           // explosions only
	Remaining time.Duration
	// Progress runs from 0 when the entity appears to 1 when it expires
	Progress float64
}

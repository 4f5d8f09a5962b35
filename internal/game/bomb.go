package game

import (
	"time"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// BombState is the lifecycle stage of a bomb
type BombState uint8

const (
	BombArmed BombState = iota
	BombExploding
	BombRemoved
)

func (s BombState) String() string {
	switch s {
	case BombArmed:
		return "armed"
	case BombExploding:
		return "exploding"
	case BombRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Bomb is a placed bomb counting down to detonation
type Bomb struct {
	ID        int
	Pos       core.Coordinate
	BlastSize int
	Timer     time.Duration
	Remaining time.Duration
	State     BombState
}

func (b *Bomb) Kind() EntityKind          { return EntityBomb }
func (b *Bomb) Position() core.Coordinate { return b.Pos }

// Alive is true while the bomb is armed or queued for detonation
func (b *Bomb) Alive() bool { return b.State != BombRemoved }

func (b *Bomb) update(e *Engine, dt time.Duration, res *AdvanceResult) {
	if b.State != BombArmed {
		return
	}
	b.Remaining -= dt
	if b.Remaining <= 0 {
		e.detonate(b, res)
	}
}

func (b *Bomb) view() EntityView {
	v := EntityView{Kind: EntityBomb, Pos: b.Pos, Remaining: max(b.Remaining, 0)}
	if b.Timer > 0 {
		v.Progress = 1 - float64(v.Remaining)/float64(b.Timer)
	}
	return v
}

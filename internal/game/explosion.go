package game

import (
	"fmt"
	"time"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
)

// Explosion is one blast fragment. Fragments are purely visual and expire
// after a fixed duration.
type Explosion struct {
	Pos       core.Coordinate
	Dir       core.Direction
	Center    bool
	Duration  time.Duration
	Remaining time.Duration
}

func (x *Explosion) Kind() EntityKind          { return EntityExplosion }
func (x *Explosion) Position() core.Coordinate { return x.Pos }
func (x *Explosion) Alive() bool               { return x.Remaining > 0 }

func (x *Explosion) update(_ *Engine, dt time.Duration, _ *AdvanceResult) {
	x.Remaining -= dt
}

func (x *Explosion) view() EntityView {
	v := EntityView{
		Kind:      EntityExplosion,
		Pos:       x.Pos,
		Dir:       x.Dir,
		Center:    x.Center,
		Remaining: max(x.Remaining, 0),
	}
	if x.Duration > 0 {
		v.Progress = 1 - float64(v.Remaining)/float64(x.Duration)
	}
	return v
}

// detonate explodes b and every bomb its blast reaches. Chained bombs are
// processed from a FIFO worklist within the same call.
func (e *Engine) detonate(b *Bomb, res *AdvanceResult) {
	b.State = BombExploding
	queue := []*Bomb{b}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		queue = e.explode(cur, cur != b, queue, res)
	}
}

func (e *Engine) explode(b *Bomb, chained bool, queue []*Bomb, res *AdvanceResult) []*Bomb {
	b.State = BombRemoved
	if e.grid.At(b.Pos) == core.CellBomb {
		e.grid.Set(b.Pos, core.CellEmpty)
	}
	res.Detonations++

	fragments := 1
	e.spawnFragment(b.Pos, core.DirNone, true)

	if e.player.Pos == b.Pos {
		e.killPlayer(b, res)
	} else {
		for _, dir := range core.BlastDirections {
			n, q := e.walkRay(b, dir, queue, res)
			fragments += n
			queue = q
		}
	}

	res.Fragments += fragments
	e.publisher.Publish(events.NewBombDetonatedEvent(e.gameID, b.ID, b.Pos, fragments, chained))
	e.logger.Debug().
		Int("bomb_id", b.ID).
		Str("pos", b.Pos.String()).
		Int("fragments", fragments).
		Bool("chained", chained).
		Msg("Bomb detonated")
	return queue
}

// walkRay extends one blast ray and returns how many fragments it emitted.
// The bomb's own cell counts as the first of BlastSize cells, so a ray
// reaches at most BlastSize-1 cells past the center.
func (e *Engine) walkRay(b *Bomb, dir core.Direction, queue []*Bomb, res *AdvanceResult) (int, []*Bomb) {
	emitted := 0
	for step := 1; step < b.BlastSize; step++ {
		c := b.Pos.Step(dir, step)
		if !e.grid.InBounds(c) {
			panic(fmt.Sprintf("blast ray of bomb %d left the grid at %s", b.ID, c))
		}
		kind := e.grid.At(c)
		if kind.IsPermanent() {
			break
		}

		e.spawnFragment(c, dir, false)
		emitted++

		if kind == core.CellBomb {
			if other := e.bombAt(c); other != nil && other.State == BombArmed {
				other.State = BombExploding
				queue = append(queue, other)
			}
		}
		if e.player.Pos == c {
			e.killPlayer(b, res)
			break
		}
		if kind == core.CellSoftWall {
			e.destroyWall(c, b, res)
			break
		}
		if !kind.IsEmpty() {
			break
		}
	}
	return emitted, queue
}

func (e *Engine) spawnFragment(c core.Coordinate, dir core.Direction, center bool) {
	e.entities = append(e.entities, &Explosion{
		Pos:       c,
		Dir:       dir,
		Center:    center,
		Duration:  e.config.ExplosionDuration,
		Remaining: e.config.ExplosionDuration,
	})
}

func (e *Engine) destroyWall(c core.Coordinate, b *Bomb, res *AdvanceResult) {
	e.grid.Set(c, core.CellEmpty)
	e.softWalls--
	e.score++
	res.WallsDestroyed++
	e.publisher.Publish(events.NewWallDestroyedEvent(e.gameID, c, b.ID, e.score))
}

// killPlayer records the first bomb that reached the player
func (e *Engine) killPlayer(b *Bomb, res *AdvanceResult) {
	if !e.player.Alive {
		return
	}
	e.player.Alive = false
	e.player.KillerID = b.ID
	res.PlayerKilled = true
	e.publisher.Publish(events.NewPlayerKilledEvent(e.gameID, e.player.Pos, b.ID))
	e.logger.Debug().
		Int("killer_id", b.ID).
		Str("pos", e.player.Pos.String()).
		Msg("Player killed")
}

func (e *Engine) bombAt(c core.Coordinate) *Bomb {
	for _, ent := range e.entities {
		if b, ok := ent.(*Bomb); ok && b.Pos == c && b.State != BombRemoved {
			return b
		}
	}
	return nil
}

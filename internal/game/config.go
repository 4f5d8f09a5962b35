package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/mapgen"
)

const (
	DefaultBombTimer         = 3000 * time.Millisecond
	DefaultExplosionDuration = 300 * time.Millisecond
	DefaultBlastSize         = 3
	DefaultBombAllowance     = 1
)

// GameConfig holds everything needed to build an Engine
type GameConfig struct {
	GameID            string
	Level             mapgen.LevelConfig
	Player            PlayerConfig
	BombTimer         time.Duration
	ExplosionDuration time.Duration
	Rng               *rand.Rand
	Logger            zerolog.Logger
	Publisher         events.Publisher
}

// DefaultGameConfig returns the classic arena with a player in the top-left corner
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Level: mapgen.DefaultLevelConfig(),
		Player: PlayerConfig{
			Start:         core.NewCoordinate(1, 1),
			BombAllowance: DefaultBombAllowance,
			BlastSize:     DefaultBlastSize,
		},
		BombTimer:         DefaultBombTimer,
		ExplosionDuration: DefaultExplosionDuration,
		Logger:            zerolog.Nop(),
	}
}

// Validate checks the configuration against its level template
func (c GameConfig) Validate() error {
	if c.BombTimer <= 0 {
		return fmt.Errorf("bomb timer must be positive, got %s", c.BombTimer)
	}
	if c.ExplosionDuration <= 0 {
		return fmt.Errorf("explosion duration must be positive, got %s", c.ExplosionDuration)
	}
	if c.Player.BlastSize < 0 {
		return fmt.Errorf("blast size must not be negative, got %d", c.Player.BlastSize)
	}
	if c.Player.BombAllowance < 0 {
		return fmt.Errorf("bomb allowance must not be negative, got %d", c.Player.BombAllowance)
	}
	if c.Level.Template != nil {
		t := c.Level.Template
		if !t.InBounds(c.Player.Start) {
			return fmt.Errorf("player start %s outside %dx%d level", c.Player.Start, t.Rows(), t.Cols())
		}
		if m := t.Mark(c.Player.Start); m == core.MarkOutline || m == core.MarkWall {
			return fmt.Errorf("player start %s is a permanent wall", c.Player.Start)
		}
	}
	return nil
}

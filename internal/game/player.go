package game

import "github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"

// PlayerConfig describes the player at the start of every episode
type PlayerConfig struct {
	Start         core.Coordinate
	BombAllowance int
	BlastSize     int
}

// Player is the single agent-controlled character
type Player struct {
	Pos           core.Coordinate
	Alive         bool
	BombAllowance int
	BlastSize     int
	KillerID      int // ID of the bomb that killed the player, 0 while alive
}

func newPlayer(cfg PlayerConfig) Player {
	return Player{
		Pos:           cfg.Start,
		Alive:         true,
		BombAllowance: cfg.BombAllowance,
		BlastSize:     cfg.BlastSize,
	}
}

package experience

// RewardConfig holds configurable reward values
type RewardConfig struct {
	Alive float64 // per step while the player survives
	Death float64 // on the step the player dies
	Win   float64 // added on the step the last breakable wall falls
}

// DefaultRewardConfig returns the default reward configuration
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Alive: 1.0,
		Death: -10.0,
	}
}

// CalculateReward computes the reward for one step
func CalculateReward(alive, won bool, config RewardConfig) float64 {
	if !alive {
		return config.Death
	}
	if won {
		return config.Alive + config.Win
	}
	return config.Alive
}

// IsTerminal reports whether a step ends the episode
func IsTerminal(alive, won bool) bool {
	return !alive || won
}

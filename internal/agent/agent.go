package agent

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// Config holds the learner hyperparameters
type Config struct {
	StateSize    int
	HiddenUnits  []int
	Activation   Activation
	LearningRate float64
	MemorySize   int
	BatchSize    int
	Gamma        float64
	EpsilonStart float64
	EpsilonMin   float64
	EpsilonDecay float64
}

// DefaultConfig returns the standard hyperparameters for a state of the given size
func DefaultConfig(stateSize int) Config {
	return Config{
		StateSize:    stateSize,
		HiddenUnits:  []int{24, 24},
		Activation:   ActivationTanh,
		LearningRate: 0.01,
		MemorySize:   experience.DefaultCapacity,
		BatchSize:    32,
		Gamma:        0.95,
		EpsilonStart: 1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.995,
	}
}

// Validate checks the hyperparameters for consistency
func (c Config) Validate() error {
	if c.StateSize <= 0 {
		return fmt.Errorf("state size must be positive, got %d", c.StateSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MemorySize < c.BatchSize {
		return fmt.Errorf("memory size %d is smaller than batch size %d", c.MemorySize, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0,1], got %g", c.Gamma)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.EpsilonStart || c.EpsilonStart > 1 {
		return fmt.Errorf("epsilon bounds invalid: start %g min %g", c.EpsilonStart, c.EpsilonMin)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0,1], got %g", c.EpsilonDecay)
	}
	return nil
}

// layerSizes returns input, hidden and output widths
func (c Config) layerSizes() []int {
	sizes := make([]int, 0, len(c.HiddenUnits)+2)
	sizes = append(sizes, c.StateSize)
	sizes = append(sizes, c.HiddenUnits...)
	return append(sizes, core.NumActions)
}

// TrainResult describes one call to Train
type TrainResult struct {
	Trained   bool
	Loss      float64
	Epsilon   float64
	BatchSize int
}

// Agent is an epsilon-greedy deep Q-learner with its own replay memory. It is
// used from a single goroutine.
type Agent struct {
	config     Config
	net        *Network
	opt        Optimizer
	memory     *experience.ReplayBuffer
	epsilon    float64
	rng        *rand.Rand
	trainSteps int
	logger     zerolog.Logger
}

// NewAgent creates an agent with a freshly initialised network
func NewAgent(cfg Config, rng *rand.Rand, logger zerolog.Logger) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}
	if cfg.Activation == "" {
		cfg.Activation = ActivationTanh
	}

	net, err := NewNetwork(cfg.layerSizes(), cfg.Activation, rng)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		config:  cfg,
		net:     net,
		opt:     SGD{LearningRate: cfg.LearningRate},
		memory:  experience.NewReplayBuffer(cfg.MemorySize, logger),
		epsilon: cfg.EpsilonStart,
		rng:     rng,
		logger:  logger.With().Str("component", "Agent").Logger(),
	}

	a.logger.Info().
		Ints("layers", cfg.layerSizes()).
		Str("activation", string(cfg.Activation)).
		Float64("learning_rate", cfg.LearningRate).
		Msg("Agent created")

	return a, nil
}

// SelectAction picks a uniformly random action with probability epsilon and
// the greedy action otherwise
func (a *Agent) SelectAction(state []float64) core.Action {
	if a.rng.Float64() < a.epsilon {
		return core.Action(a.rng.Intn(core.NumActions))
	}
	return a.Greedy(state)
}

// Greedy returns the action with the highest Q-value; ties go to the lowest index
func (a *Agent) Greedy(state []float64) core.Action {
	return core.Action(argmax(a.net.Predict(state)))
}

// QValues returns the network output for state
func (a *Agent) QValues(state []float64) []float64 {
	return a.net.Predict(state)
}

// Remember stores a transition in replay memory
func (a *Agent) Remember(t experience.Transition) {
	a.memory.Add(t)
}

// Train samples a batch from replay memory and performs one gradient step.
// It does nothing until memory holds at least one batch.
func (a *Agent) Train(ctx context.Context) (TrainResult, error) {
	if err := ctx.Err(); err != nil {
		return TrainResult{Epsilon: a.epsilon}, err
	}
	if a.memory.Len() < a.config.BatchSize {
		return TrainResult{Epsilon: a.epsilon}, nil
	}

	batch := a.memory.Sample(a.config.BatchSize, a.rng)
	x, targets := a.buildTargets(batch)

	loss, err := a.net.TrainBatch(x, targets, a.opt)
	if err != nil {
		a.logger.Warn().Err(err).Float64("loss", loss).Msg("Skipping epsilon decay after failed fit")
		return TrainResult{Loss: loss, Epsilon: a.epsilon, BatchSize: len(batch)}, err
	}

	a.trainSteps++
	a.epsilon = max(a.epsilon*a.config.EpsilonDecay, a.config.EpsilonMin)

	return TrainResult{
		Trained:   true,
		Loss:      loss,
		Epsilon:   a.epsilon,
		BatchSize: len(batch),
	}, nil
}

// buildTargets returns the batch states and their regression targets: the
// current Q-values with the taken action replaced by its bootstrapped return.
func (a *Agent) buildTargets(batch []experience.Transition) (*mat.Dense, *mat.Dense) {
	n, size := len(batch), a.config.StateSize
	x := mat.NewDense(n, size, nil)
	next := mat.NewDense(n, size, nil)
	for i, t := range batch {
		x.SetRow(i, t.State)
		next.SetRow(i, t.NextState)
	}

	targets := mat.DenseCopyOf(a.net.PredictBatch(x))
	nextQ := a.net.PredictBatch(next)

	row := make([]float64, core.NumActions)
	for i, t := range batch {
		y := t.Reward
		if !t.Done {
			mat.Row(row, i, nextQ)
			y += a.config.Gamma * row[argmax(row)]
		}
		targets.Set(i, int(t.Action), y)
	}
	return x, targets
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func (a *Agent) Epsilon() float64                 { return a.epsilon }
func (a *Agent) TrainSteps() int                  { return a.trainSteps }
func (a *Agent) Memory() *experience.ReplayBuffer { return a.memory }
func (a *Agent) Config() Config                   { return a.config }

// SetEpsilon overrides the exploration rate, clamped to [EpsilonMin, 1]
func (a *Agent) SetEpsilon(eps float64) {
	a.epsilon = min(max(eps, a.config.EpsilonMin), 1)
}

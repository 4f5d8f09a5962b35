package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ErrCheckpointMismatch is returned when a checkpoint was written for a
// network of a different shape
var ErrCheckpointMismatch = errors.New("checkpoint does not match network")

const checkpointVersion = 1

// Checkpoint is the on-disk form of a trained agent
type Checkpoint struct {
	Version    int         `json:"version"`
	LayerSizes []int       `json:"layer_sizes"`
	Activation Activation  `json:"activation"`
	Weights    [][]float64 `json:"weights"` // row-major, one entry per layer
	Biases     [][]float64 `json:"biases"`
	Epsilon    float64     `json:"epsilon"`
	TrainSteps int         `json:"train_steps"`
	SavedAt    time.Time   `json:"saved_at"`
}

// Checkpoint captures the agent's current parameters
func (a *Agent) Checkpoint() Checkpoint {
	cp := Checkpoint{
		Version:    checkpointVersion,
		LayerSizes: a.net.Sizes(),
		Activation: a.net.Activation(),
		Epsilon:    a.epsilon,
		TrainSteps: a.trainSteps,
		SavedAt:    time.Now().UTC(),
	}
	for l := range a.net.weights {
		cp.Weights = append(cp.Weights, slices.Clone(a.net.weights[l].RawMatrix().Data))
		cp.Biases = append(cp.Biases, slices.Clone(a.net.biases[l].RawVector().Data))
	}
	return cp
}

// Restore replaces the agent's parameters with those of cp
func (a *Agent) Restore(cp Checkpoint) error {
	if !slices.Equal(cp.LayerSizes, a.net.sizes) {
		return fmt.Errorf("%w: layers %v, network %v", ErrCheckpointMismatch, cp.LayerSizes, a.net.sizes)
	}
	if cp.Activation != a.net.activation {
		return fmt.Errorf("%w: activation %s, network %s", ErrCheckpointMismatch, cp.Activation, a.net.activation)
	}
	if len(cp.Weights) != len(a.net.weights) || len(cp.Biases) != len(a.net.biases) {
		return fmt.Errorf("%w: %d weight layers", ErrCheckpointMismatch, len(cp.Weights))
	}

	weights := make([]*mat.Dense, len(cp.Weights))
	biases := make([]*mat.VecDense, len(cp.Biases))
	for l := range cp.Weights {
		in, out := cp.LayerSizes[l], cp.LayerSizes[l+1]
		if len(cp.Weights[l]) != in*out || len(cp.Biases[l]) != out {
			return fmt.Errorf("%w: layer %d has wrong parameter count", ErrCheckpointMismatch, l)
		}
		weights[l] = mat.NewDense(in, out, slices.Clone(cp.Weights[l]))
		biases[l] = mat.NewVecDense(out, slices.Clone(cp.Biases[l]))
	}

	a.net.weights = weights
	a.net.biases = biases
	a.SetEpsilon(cp.Epsilon)
	a.trainSteps = cp.TrainSteps
	return nil
}

// SaveCheckpoint writes the agent to path as JSON, replacing any previous file atomically
func (a *Agent) SaveCheckpoint(path string) error {
	data, err := json.Marshal(a.Checkpoint())
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}

	a.logger.Info().
		Str("path", path).
		Int("train_steps", a.trainSteps).
		Float64("epsilon", a.epsilon).
		Msg("Checkpoint saved")
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint
func (a *Agent) LoadCheckpoint(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	if cp.Version != checkpointVersion {
		return fmt.Errorf("%w: version %d", ErrCheckpointMismatch, cp.Version)
	}
	if err := a.Restore(cp); err != nil {
		return err
	}

	a.logger.Info().
		Str("path", path).
		Int("train_steps", a.trainSteps).
		Msg("Checkpoint loaded")
	return nil
}

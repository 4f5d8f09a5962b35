package experience

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

// ErrInvalidState is returned when an encoded state does not have the size the
// network was built for
var ErrInvalidState = errors.New("invalid state vector")

// Encoder turns a grid into the flat occupancy vector fed to the network:
// row-major, 1 for any occupied cell and 0 for an empty one.
type Encoder struct {
	rows, cols int
}

// NewEncoder creates an encoder for grids of the given size
func NewEncoder(rows, cols int) *Encoder {
	return &Encoder{rows: rows, cols: cols}
}

// Size returns the length of every encoded state
func (e *Encoder) Size() int { return e.rows * e.cols }

// Encode writes the occupancy vector of g into dst, growing it when it is too
// short, and returns the filled slice.
func (e *Encoder) Encode(g *core.Grid, dst []float64) ([]float64, error) {
	n := len(g.C)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	for i, kind := range g.C {
		if kind.IsEmpty() {
			dst[i] = 0
		} else {
			dst[i] = 1
		}
	}

	if err := e.Validate(dst); err != nil {
		return nil, fmt.Errorf("encode %dx%d grid: %w", g.Rows, g.Cols, err)
	}
	return dst, nil
}

// Validate checks that v has the encoder's fixed size
func (e *Encoder) Validate(v []float64) error {
	if len(v) != e.Size() {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidState, len(v), e.Size())
	}
	return nil
}

// Features returns simple aggregate statistics of an encoded state for logging
func (e *Encoder) Features(v []float64) map[string]float64 {
	occupied := 0.0
	for _, x := range v {
		occupied += x
	}
	features := map[string]float64{"occupied": occupied}
	if len(v) > 0 {
		features["density"] = occupied / float64(len(v))
	}
	return features
}

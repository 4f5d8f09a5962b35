package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrNonFiniteLoss is returned when a training step produces NaN or Inf
var ErrNonFiniteLoss = errors.New("non-finite training loss")

// Network is a fully connected Q-network. Hidden layers use the configured
// activation; the output layer is linear, one unit per action.
type Network struct {
	sizes      []int
	activation Activation
	weights    []*mat.Dense // layer l maps sizes[l] -> sizes[l+1]
	biases     []*mat.VecDense
}

// NewNetwork creates a network with Glorot-uniform weights and zero biases
func NewNetwork(sizes []int, activation Activation, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("network needs at least an input and an output layer, got %v", sizes)
	}
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("layer sizes must be positive, got %v", sizes)
		}
	}

	n := &Network{
		sizes:      append([]int(nil), sizes...),
		activation: activation,
	}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		limit := math.Sqrt(6.0 / float64(in+out))
		data := make([]float64, in*out)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * limit
		}
		n.weights = append(n.weights, mat.NewDense(in, out, data))
		n.biases = append(n.biases, mat.NewVecDense(out, nil))
	}
	return n, nil
}

// Sizes returns the layer widths from input to output
func (n *Network) Sizes() []int { return append([]int(nil), n.sizes...) }

func (n *Network) Activation() Activation { return n.activation }

func (n *Network) InputSize() int  { return n.sizes[0] }
func (n *Network) OutputSize() int { return n.sizes[len(n.sizes)-1] }

// Predict returns the Q-values for a single state
func (n *Network) Predict(state []float64) []float64 {
	x := mat.NewDense(1, len(state), append([]float64(nil), state...))
	out := n.PredictBatch(x)
	return mat.Row(nil, 0, out)
}

// PredictBatch returns one row of Q-values per row of x
func (n *Network) PredictBatch(x *mat.Dense) *mat.Dense {
	acts := n.forward(x)
	return acts[len(acts)-1]
}

// forward returns the activations of every layer, input included
func (n *Network) forward(x *mat.Dense) []*mat.Dense {
	acts := make([]*mat.Dense, 0, len(n.weights)+1)
	acts = append(acts, x)
	last := len(n.weights) - 1
	for l, w := range n.weights {
		var z mat.Dense
		z.Mul(acts[l], w)
		b := n.biases[l]
		hidden := l != last
		z.Apply(func(_, j int, v float64) float64 {
			v += b.AtVec(j)
			if hidden {
				return n.activation.apply(v)
			}
			return v
		}, &z)
		acts = append(acts, &z)
	}
	return acts
}

// TrainBatch performs one gradient step on the mean squared error between the
// network output for x and target. Parameters are left untouched when the
// loss is not finite.
func (n *Network) TrainBatch(x, target *mat.Dense, opt Optimizer) (float64, error) {
	acts := n.forward(x)
	out := acts[len(acts)-1]

	rows, cols := out.Dims()
	var diff mat.Dense
	diff.Sub(out, target)

	count := float64(rows * cols)
	loss := mat.Sum(applyElem(&diff, func(v float64) float64 { return v * v })) / count
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, ErrNonFiniteLoss
	}

	// dL/dY for the mean over every output element
	delta := mat.DenseCopyOf(&diff)
	delta.Scale(2/count, delta)

	gradW := make([]*mat.Dense, len(n.weights))
	gradB := make([]*mat.VecDense, len(n.weights))
	for l := len(n.weights) - 1; l >= 0; l-- {
		if l != len(n.weights)-1 {
			a := acts[l+1]
			delta.Apply(func(i, j int, v float64) float64 {
				return v * n.activation.derivative(a.At(i, j))
			}, delta)
		}

		var gw mat.Dense
		gw.Mul(acts[l].T(), delta)
		gradW[l] = &gw

		_, outs := delta.Dims()
		gb := mat.NewVecDense(outs, nil)
		for j := 0; j < outs; j++ {
			gb.SetVec(j, mat.Sum(delta.ColView(j)))
		}
		gradB[l] = gb

		if l > 0 {
			var prev mat.Dense
			prev.Mul(delta, n.weights[l].T())
			delta = &prev
		}
	}

	for l := range n.weights {
		opt.Step(n.weights[l].RawMatrix().Data, gradW[l].RawMatrix().Data)
		opt.Step(n.biases[l].RawVector().Data, gradB[l].RawVector().Data)
	}
	return loss, nil
}

func applyElem(m *mat.Dense, f func(float64) float64) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return f(v) }, m)
	return &out
}

// Clone returns a deep copy of the network
func (n *Network) Clone() *Network {
	c := &Network{sizes: n.Sizes(), activation: n.activation}
	for l := range n.weights {
		c.weights = append(c.weights, mat.DenseCopyOf(n.weights[l]))
		c.biases = append(c.biases, mat.VecDenseCopyOf(n.biases[l]))
	}
	return c
}

package agent

import (
	"fmt"
	"math"
)

// Activation names the nonlinearity applied to hidden layers
type Activation string

const (
	ActivationTanh Activation = "tanh"
	ActivationReLU Activation = "relu"
)

// ParseActivation validates an activation name from configuration
func ParseActivation(s string) (Activation, error) {
	switch Activation(s) {
	case ActivationTanh, "":
		return ActivationTanh, nil
	case ActivationReLU:
		return ActivationReLU, nil
	default:
		return "", fmt.Errorf("unknown activation %q", s)
	}
}

func (a Activation) apply(x float64) float64 {
	switch a {
	case ActivationReLU:
		if x > 0 {
			return x
		}
		return 0
	default:
		return math.Tanh(x)
	}
}

// derivative is expressed in terms of the activation output y
func (a Activation) derivative(y float64) float64 {
	switch a {
	case ActivationReLU:
		if y > 0 {
			return 1
		}
		return 0
	default:
		return 1 - y*y
	}
}

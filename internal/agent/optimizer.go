package agent

// Optimizer applies a gradient to a flat parameter slice in place
type Optimizer interface {
	Step(param, grad []float64)
	Name() string
}

// SGD is plain stochastic gradient descent with a fixed step size
type SGD struct {
	LearningRate float64
}

func (o SGD) Name() string { return "sgd" }

func (o SGD) Step(param, grad []float64) {
	for i := range param {
		param[i] -= o.LearningRate * grad[i]
	}
}

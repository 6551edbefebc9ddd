package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/distribution"
	"sfneuman.com/gorollout/environment"
)

// LinearBernoulli implements a stateless binary-action policy using
// linear function approximation: the logit of each sub-environment is
// the inner product of a learned weight vector with its observation
// row.
type LinearBernoulli struct {
	weights *mat.VecDense
}

// NewLinearBernoulli creates a new LinearBernoulli policy for an
// environment, with weights initialized to zero (a uniform policy)
func NewLinearBernoulli(env environment.Environment) *LinearBernoulli {
	features := env.ObservationSpec().Dims()
	return &LinearBernoulli{mat.NewVecDense(features, nil)}
}

// Weights returns the weight vector of the policy. The returned
// vector backs the policy: learners update it in place.
func (l *LinearBernoulli) Weights() *mat.VecDense {
	return l.weights
}

// Distribution implements the Policy interface. LinearBernoulli is
// stateless, so the state baton is returned unchanged.
func (l *LinearBernoulli) Distribution(obs *mat.Dense,
	state State) (distribution.Distribution, State, error) {
	rows, cols := obs.Dims()
	if cols != l.weights.Len() {
		return nil, state, fmt.Errorf("distribution: observation has %d "+
			"features, want %d", cols, l.weights.Len())
	}

	logits := mat.NewVecDense(rows, nil)
	logits.MulVec(obs, l.weights)

	dist, err := distribution.NewBernoulli(logits)
	if err != nil {
		return nil, state, fmt.Errorf("distribution: %v", err)
	}
	return dist, state, nil
}

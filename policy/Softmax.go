package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/distribution"
	"sfneuman.com/gorollout/environment"
)

// LinearSoftmax implements a stateless discrete-action policy using
// linear function approximation: the logits of each sub-environment
// are the product of a learned weight matrix with its observation
// row, one logit per action.
type LinearSoftmax struct {
	weights *mat.Dense // actions x features
	actions int
}

// NewLinearSoftmax creates a new LinearSoftmax policy for an
// environment, with weights initialized to zero (a uniform policy).
// The environment must have a single discrete action dimension; the
// number of actions is taken from the action spec's upper bound.
func NewLinearSoftmax(env environment.Environment) (*LinearSoftmax, error) {
	if env.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("newLinearSoftmax: softmax policy " +
			"requires discrete actions")
	}
	if env.ActionSpec().Dims() != 1 {
		return nil, fmt.Errorf("newLinearSoftmax: softmax policy "+
			"requires 1-dimensional actions, got %d", env.ActionSpec().Dims())
	}

	actions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	features := env.ObservationSpec().Dims()
	return &LinearSoftmax{mat.NewDense(actions, features, nil), actions}, nil
}

// Weights returns the weight matrix of the policy, one row per
// action. The returned matrix backs the policy: learners update it in
// place.
func (l *LinearSoftmax) Weights() *mat.Dense {
	return l.weights
}

// Distribution implements the Policy interface. LinearSoftmax is
// stateless, so the state baton is returned unchanged.
func (l *LinearSoftmax) Distribution(obs *mat.Dense,
	state State) (distribution.Distribution, State, error) {
	rows, cols := obs.Dims()
	_, features := l.weights.Dims()
	if cols != features {
		return nil, state, fmt.Errorf("distribution: observation has %d "+
			"features, want %d", cols, features)
	}

	logits := mat.NewDense(rows, l.actions, nil)
	logits.Mul(obs, l.weights.T())

	dist, err := distribution.NewCategorical(logits)
	if err != nil {
		return nil, state, fmt.Errorf("distribution: %v", err)
	}
	return dist, state, nil
}

package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/distribution"
)

// ConstantBernoulli implements a policy that ignores observations and
// always produces a Bernoulli distribution with a fixed logit,
// replicated over the batch. Useful as a baseline and for exercising
// rollout machinery with known statistics.
type ConstantBernoulli struct {
	logit float64
}

// NewConstantBernoulli creates a policy with a fixed logit. A logit
// of 0 is the uniform binary policy.
func NewConstantBernoulli(logit float64) *ConstantBernoulli {
	return &ConstantBernoulli{logit}
}

// Distribution implements the Policy interface
func (c *ConstantBernoulli) Distribution(obs *mat.Dense,
	state State) (distribution.Distribution, State, error) {
	rows, _ := obs.Dims()

	logits := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		logits.SetVec(i, c.logit)
	}

	dist, err := distribution.NewBernoulli(logits)
	if err != nil {
		return nil, state, fmt.Errorf("distribution: %v", err)
	}
	return dist, state, nil
}

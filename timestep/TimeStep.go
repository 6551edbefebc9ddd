// Package timestep implements timesteps of the agent-environment
// interaction. Timesteps are batched: a single EnvStep records one
// step for each of the sub-environments that share a Step() call, and
// step kinds are tracked per sub-environment.
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/utils/matutils"
)

// Kind denotes the kind of step a sub-environment produced: the first
// step of an episode, a step in the middle of an episode, or the last
// step of an episode.
type Kind int

const (
	First Kind = iota
	Transition
	Last
)

func (k Kind) String() string {
	switch k {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Transition"
	}
}

// Kinds holds one Kind per sub-environment in a batch. Elements are
// independent: there is no data dependency between batch elements.
type Kinds []Kind

// IsFirst returns a mask with one entry per batch element, indicating
// which sub-environments produced the first step of an episode.
func (k Kinds) IsFirst() []bool {
	return k.mask(First)
}

// IsTransition returns a mask with one entry per batch element,
// indicating which sub-environments produced a mid-episode step.
func (k Kinds) IsTransition() []bool {
	return k.mask(Transition)
}

// IsLast returns a mask with one entry per batch element, indicating
// which sub-environments produced the final step of an episode.
func (k Kinds) IsLast() []bool {
	return k.mask(Last)
}

// All returns whether every element of k is target
func (k Kinds) All(target Kind) bool {
	for _, kind := range k {
		if kind != target {
			return false
		}
	}
	return true
}

// Count returns the number of elements of k equal to target
func (k Kinds) Count(target Kind) int {
	n := 0
	for _, kind := range k {
		if kind == target {
			n++
		}
	}
	return n
}

// Uniform returns a Kinds of size batch with every element set to kind
func Uniform(kind Kind, batch int) Kinds {
	kinds := make(Kinds, batch)
	for i := range kinds {
		kinds[i] = kind
	}
	return kinds
}

func (k Kinds) mask(target Kind) []bool {
	mask := make([]bool, len(k))
	for i, kind := range k {
		mask[i] = kind == target
	}
	return mask
}

func (k Kinds) clone() Kinds {
	kinds := make(Kinds, len(k))
	copy(kinds, k)
	return kinds
}

// EnvStep packages together a single batched timestep in an
// environment. The observation matrix holds one row per
// sub-environment, and the reward vector holds one entry per
// sub-environment.
//
// An EnvStep is immutable once constructed. Functional updates through
// the With* methods return a new EnvStep and leave the receiver
// untouched.
type EnvStep struct {
	kinds       Kinds
	observation *mat.Dense
	reward      *mat.VecDense
}

// New creates a new EnvStep. The number of kinds, observation rows,
// and reward entries must agree.
func New(kinds Kinds, observation *mat.Dense, reward *mat.VecDense) (EnvStep,
	error) {
	rows, _ := observation.Dims()
	if len(kinds) != rows {
		return EnvStep{}, fmt.Errorf("new: have %d kinds but %d "+
			"observation rows", len(kinds), rows)
	}
	if reward.Len() != rows {
		return EnvStep{}, fmt.Errorf("new: have %d rewards but %d "+
			"observation rows", reward.Len(), rows)
	}

	return EnvStep{kinds.clone(), mat.DenseCopyOf(observation),
		mat.VecDenseCopyOf(reward)}, nil
}

// Kinds returns the per-sub-environment step kinds
func (e EnvStep) Kinds() Kinds {
	return e.kinds.clone()
}

// Observation returns the batched observation, one row per
// sub-environment. The returned matrix must not be modified.
func (e EnvStep) Observation() *mat.Dense {
	return e.observation
}

// Reward returns the batched reward, one entry per sub-environment.
// The returned vector must not be modified.
func (e EnvStep) Reward() *mat.VecDense {
	return e.reward
}

// BatchSize returns the number of sub-environments recorded in the step
func (e EnvStep) BatchSize() int {
	return len(e.kinds)
}

// ObsDims returns the number of observation features per
// sub-environment
func (e EnvStep) ObsDims() int {
	_, cols := e.observation.Dims()
	return cols
}

// WithKinds returns a copy of the EnvStep with the step kinds replaced
func (e EnvStep) WithKinds(kinds Kinds) (EnvStep, error) {
	return New(kinds, e.observation, e.reward)
}

// WithObservation returns a copy of the EnvStep with the observation
// replaced
func (e EnvStep) WithObservation(observation *mat.Dense) (EnvStep, error) {
	return New(e.kinds, observation, e.reward)
}

// WithReward returns a copy of the EnvStep with the reward replaced
func (e EnvStep) WithReward(reward *mat.VecDense) (EnvStep, error) {
	return New(e.kinds, e.observation, reward)
}

func (e EnvStep) String() string {
	return fmt.Sprintf("EnvStep | Batch: %d | Kinds: %v | Observation:\n%v",
		e.BatchSize(), e.kinds, matutils.Format(e.observation))
}

// Stack combines the argument steps into a single EnvStep whose batch
// dimension is the concatenation of the argument batch dimensions, in
// argument order. All steps must have the same number of observation
// features. Stack is purely structural: no data is recomputed.
func Stack(steps []EnvStep) (EnvStep, error) {
	if len(steps) == 0 {
		return EnvStep{}, fmt.Errorf("stack: no steps to stack")
	}

	obsDims := steps[0].ObsDims()
	batch := 0
	for i, step := range steps {
		if step.ObsDims() != obsDims {
			return EnvStep{}, fmt.Errorf("stack: step %d has %d "+
				"observation features, but step 0 has %d", i, step.ObsDims(),
				obsDims)
		}
		batch += step.BatchSize()
	}

	kinds := make(Kinds, 0, batch)
	observation := mat.NewDense(batch, obsDims, nil)
	reward := mat.NewVecDense(batch, nil)

	row := 0
	for _, step := range steps {
		kinds = append(kinds, step.kinds...)
		for i := 0; i < step.BatchSize(); i++ {
			observation.SetRow(row, mat.Row(nil, i, step.observation))
			reward.SetVec(row, step.reward.AtVec(i))
			row++
		}
	}

	return EnvStep{kinds, observation, reward}, nil
}

// Unstack splits the EnvStep into n steps of equal batch size, undoing
// a Stack of n equally-sized steps. The batch size must be divisible
// by n.
func (e EnvStep) Unstack(n int) ([]EnvStep, error) {
	if n <= 0 {
		return nil, fmt.Errorf("unstack: n must be positive, got %d", n)
	}
	if e.BatchSize()%n != 0 {
		return nil, fmt.Errorf("unstack: batch size %d is not divisible "+
			"by %d", e.BatchSize(), n)
	}

	size := e.BatchSize() / n
	steps := make([]EnvStep, n)
	for i := range steps {
		kinds := e.kinds[i*size : (i+1)*size]
		observation := mat.NewDense(size, e.ObsDims(), nil)
		reward := mat.NewVecDense(size, nil)
		for j := 0; j < size; j++ {
			observation.SetRow(j, mat.Row(nil, i*size+j, e.observation))
			reward.SetVec(j, e.reward.AtVec(i*size+j))
		}

		step, err := New(kinds, observation, reward)
		if err != nil {
			return nil, fmt.Errorf("unstack: %v", err)
		}
		steps[i] = step
	}

	return steps, nil
}

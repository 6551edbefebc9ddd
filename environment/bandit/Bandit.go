// Package bandit implements a multi-armed Bernoulli bandit
// environment. Every episode is a single pull: Reset produces a
// constant observation, and stepping with an arm index immediately
// ends the episode with a reward of 0 or 1 drawn from the chosen
// arm's payout probability.
package bandit

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"sfneuman.com/gorollout/environment"
	"sfneuman.com/gorollout/timestep"
)

// Bandit implements the bandit environment. The payout probabilities
// are fixed at construction, and reward noise is drawn from a seeded
// source so that runs are reproducible.
type Bandit struct {
	payouts []float64
	seed    uint64
	src     rand.Source
	pulled  bool
}

// New creates a bandit with one arm per payout probability
func New(payouts []float64, seed uint64) (*Bandit, error) {
	if len(payouts) == 0 {
		return nil, fmt.Errorf("new: bandit needs at least one arm")
	}
	for i, p := range payouts {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("new: payout %d not in [0, 1]: %v", i, p)
		}
	}

	copied := make([]float64, len(payouts))
	copy(copied, payouts)
	return &Bandit{payouts: copied, seed: seed, src: rand.NewSource(seed)},
		nil
}

// Reset implements the environment.Environment interface
func (b *Bandit) Reset() (timestep.EnvStep, error) {
	b.pulled = false
	return timestep.New(timestep.Kinds{timestep.First},
		mat.NewDense(1, 1, []float64{1}), mat.NewVecDense(1, nil))
}

// Step pulls the arm selected by the action and ends the episode
func (b *Bandit) Step(action *mat.Dense) (timestep.EnvStep, error) {
	if b.pulled {
		return timestep.EnvStep{}, fmt.Errorf("step: arm already pulled, " +
			"Reset() must be called first")
	}
	if err := b.ActionSpec().Validate(action); err != nil {
		return timestep.EnvStep{}, fmt.Errorf("step: %v", err)
	}

	arm := int(action.At(0, 0))
	if float64(arm) != action.At(0, 0) {
		return timestep.EnvStep{}, fmt.Errorf("step: arm index must be "+
			"an integer: %v", action.At(0, 0))
	}

	uniform := distuv.Uniform{Min: 0, Max: 1, Src: b.src}
	reward := 0.0
	if uniform.Rand() < b.payouts[arm] {
		reward = 1
	}

	b.pulled = true
	return timestep.New(timestep.Kinds{timestep.Last},
		mat.NewDense(1, 1, []float64{1}),
		mat.NewVecDense(1, []float64{reward}))
}

// Copy implements the environment.Environment interface. The copy
// replays the same reward noise as a freshly constructed bandit.
func (b *Bandit) Copy() (environment.Environment, error) {
	return New(b.payouts, b.seed)
}

// BatchSize implements the environment.Environment interface
func (b *Bandit) BatchSize() int {
	return 1
}

// Batched implements the environment.Environment interface
func (b *Bandit) Batched() bool {
	return false
}

// ActionSpec implements the environment.Environment interface
func (b *Bandit) ActionSpec() environment.Spec {
	return environment.NewSpec(
		mat.NewVecDense(1, nil),
		environment.Action,
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{float64(len(b.payouts) - 1)}),
		environment.Discrete,
	)
}

// ObservationSpec implements the environment.Environment interface
func (b *Bandit) ObservationSpec() environment.Spec {
	return environment.NewSpec(
		mat.NewVecDense(1, nil),
		environment.Observation,
		mat.NewVecDense(1, []float64{1}),
		mat.NewVecDense(1, []float64{1}),
		environment.Discrete,
	)
}

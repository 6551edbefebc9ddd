// Package chain implements a deterministic chain environment. The
// agent starts at the left end of a chain of states and is moved one
// state to the right by every action, reaching the terminal state
// after a fixed number of steps. Chains are the canonical environment
// for exercising episode boundaries: their episode length is known
// exactly at construction.
package chain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/environment"
	"sfneuman.com/gorollout/timestep"
	"sfneuman.com/gorollout/utils/matutils"
)

// Chain implements the chain environment. Observations are one-hot
// encodings of the current state. The reward is 0 on every transition
// and 1 on entering the terminal state. An episode emits exactly
// length timesteps: one First, length-2 Transitions, and one Last.
type Chain struct {
	length   int
	position int
	terminal bool
}

// New creates a new chain of the given episode length. The length
// counts emitted timesteps, so it must be at least 2 (a First and a
// Last).
func New(length int) (*Chain, error) {
	if length < 2 {
		return nil, fmt.Errorf("new: chain length must be at least 2, "+
			"got %d", length)
	}
	return &Chain{length: length}, nil
}

// Reset implements the environment.Environment interface
func (c *Chain) Reset() (timestep.EnvStep, error) {
	c.position = 0
	c.terminal = false
	return c.step(timestep.First, 0)
}

// Step advances the chain by one state. The action is validated
// against the action spec but does not influence the motion.
func (c *Chain) Step(action *mat.Dense) (timestep.EnvStep, error) {
	if c.terminal {
		return timestep.EnvStep{}, fmt.Errorf("step: chain is terminal, " +
			"Reset() must be called first")
	}
	if err := c.ActionSpec().Validate(action); err != nil {
		return timestep.EnvStep{}, fmt.Errorf("step: %v", err)
	}
	if rows, _ := action.Dims(); rows != 1 {
		return timestep.EnvStep{}, fmt.Errorf("step: action has %d rows "+
			"for an unbatched environment", rows)
	}

	c.position++
	if c.position == c.length-1 {
		c.terminal = true
		return c.step(timestep.Last, 1)
	}
	return c.step(timestep.Transition, 0)
}

// Copy implements the environment.Environment interface
func (c *Chain) Copy() (environment.Environment, error) {
	return &Chain{length: c.length}, nil
}

// BatchSize implements the environment.Environment interface
func (c *Chain) BatchSize() int {
	return 1
}

// Batched implements the environment.Environment interface
func (c *Chain) Batched() bool {
	return false
}

// ActionSpec implements the environment.Environment interface. Chains
// accept a single discrete action in {0, 1}.
func (c *Chain) ActionSpec() environment.Spec {
	return environment.NewSpec(
		mat.NewVecDense(1, nil),
		environment.Action,
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{1}),
		environment.Discrete,
	)
}

// ObservationSpec implements the environment.Environment interface
func (c *Chain) ObservationSpec() environment.Spec {
	return environment.NewSpec(
		mat.NewVecDense(c.length, nil),
		environment.Observation,
		mat.NewVecDense(c.length, nil),
		matutils.VecOnes(c.length),
		environment.Discrete,
	)
}

func (c *Chain) step(kind timestep.Kind, reward float64) (timestep.EnvStep,
	error) {
	obs := mat.NewDense(1, c.length, nil)
	obs.Set(0, c.position, 1)
	return timestep.New(timestep.Kinds{kind}, obs,
		mat.NewVecDense(1, []float64{reward}))
}


// Package wrappers provides environment wrappers that change how an
// environment is driven without changing its dynamics
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/environment"
	"sfneuman.com/gorollout/timestep"
)

// Vectorized wraps independent copies of an unbatched environment
// into a single batched environment. One Step() call advances every
// copy by one action, and the resulting steps are stacked along the
// batch dimension.
//
// Sub-environments reset independently: when a copy emits a Last
// step, the next Step() call resets that copy instead of stepping it,
// ignoring its action row and emitting a First step in its place.
// Episodes in different copies may therefore be at different phases
// within one batch.
type Vectorized struct {
	envs      []environment.Environment
	lastKinds timestep.Kinds
}

// New creates a batched environment from batch independent copies of
// env. The argument environment itself is not used afterwards.
func New(env environment.Environment, batch int) (*Vectorized, error) {
	if env.Batched() {
		return nil, fmt.Errorf("new: cannot vectorize an already-batched " +
			"environment")
	}
	if batch < 1 {
		return nil, fmt.Errorf("new: batch size must be positive, got %d",
			batch)
	}

	envs := make([]environment.Environment, batch)
	for i := range envs {
		copied, err := env.Copy()
		if err != nil {
			return nil, fmt.Errorf("new: could not copy environment %d: %v",
				i, err)
		}
		envs[i] = copied
	}

	return &Vectorized{envs: envs}, nil
}

// FromEnvs creates a batched environment from the argument
// environments, which need not have identical dynamics but must agree
// on action and observation shapes. The arguments are owned by the
// returned environment afterwards.
func FromEnvs(envs []environment.Environment) (*Vectorized, error) {
	if len(envs) == 0 {
		return nil, fmt.Errorf("fromEnvs: no environments to vectorize")
	}

	for i, env := range envs {
		if env.Batched() {
			return nil, fmt.Errorf("fromEnvs: environment %d is already "+
				"batched", i)
		}
		if env.ActionSpec().Dims() != envs[0].ActionSpec().Dims() {
			return nil, fmt.Errorf("fromEnvs: environment %d has %d "+
				"action dimensions, but environment 0 has %d", i,
				env.ActionSpec().Dims(), envs[0].ActionSpec().Dims())
		}
		if env.ObservationSpec().Dims() != envs[0].ObservationSpec().Dims() {
			return nil, fmt.Errorf("fromEnvs: environment %d has %d "+
				"observation dimensions, but environment 0 has %d", i,
				env.ObservationSpec().Dims(), envs[0].ObservationSpec().Dims())
		}
	}

	return &Vectorized{envs: envs}, nil
}

// Reset restarts every sub-environment
func (v *Vectorized) Reset() (timestep.EnvStep, error) {
	steps := make([]timestep.EnvStep, len(v.envs))
	for i, env := range v.envs {
		step, err := env.Reset()
		if err != nil {
			return timestep.EnvStep{}, fmt.Errorf("reset: "+
				"sub-environment %d: %v", i, err)
		}
		steps[i] = step
	}

	stacked, err := timestep.Stack(steps)
	if err != nil {
		return timestep.EnvStep{}, fmt.Errorf("reset: %v", err)
	}

	v.lastKinds = stacked.Kinds()
	return stacked, nil
}

// Step advances every sub-environment by its row of the action
// matrix. Sub-environments whose previous step was Last are reset
// instead, and their action row is ignored.
func (v *Vectorized) Step(action *mat.Dense) (timestep.EnvStep, error) {
	if v.lastKinds == nil {
		return timestep.EnvStep{}, fmt.Errorf("step: Reset() must be " +
			"called before Step()")
	}
	if rows, _ := action.Dims(); rows != len(v.envs) {
		return timestep.EnvStep{}, fmt.Errorf("step: action has %d rows "+
			"for batch size %d", rows, len(v.envs))
	}

	_, cols := action.Dims()
	steps := make([]timestep.EnvStep, len(v.envs))
	for i, env := range v.envs {
		var step timestep.EnvStep
		var err error
		if v.lastKinds[i] == timestep.Last {
			step, err = env.Reset()
		} else {
			row := mat.NewDense(1, cols, mat.Row(nil, i, action))
			step, err = env.Step(row)
		}
		if err != nil {
			return timestep.EnvStep{}, fmt.Errorf("step: "+
				"sub-environment %d: %v", i, err)
		}
		steps[i] = step
	}

	stacked, err := timestep.Stack(steps)
	if err != nil {
		return timestep.EnvStep{}, fmt.Errorf("step: %v", err)
	}

	v.lastKinds = stacked.Kinds()
	return stacked, nil
}

// Copy implements the environment.Environment interface. Each
// sub-environment is copied individually, so heterogeneous batches
// keep their per-sub-environment dynamics.
func (v *Vectorized) Copy() (environment.Environment, error) {
	envs := make([]environment.Environment, len(v.envs))
	for i, env := range v.envs {
		copied, err := env.Copy()
		if err != nil {
			return nil, fmt.Errorf("copy: could not copy environment %d: "+
				"%v", i, err)
		}
		envs[i] = copied
	}
	return FromEnvs(envs)
}

// BatchSize implements the environment.Environment interface
func (v *Vectorized) BatchSize() int {
	return len(v.envs)
}

// Batched implements the environment.Environment interface
func (v *Vectorized) Batched() bool {
	return true
}

// ActionSpec implements the environment.Environment interface
func (v *Vectorized) ActionSpec() environment.Spec {
	return v.envs[0].ActionSpec()
}

// ObservationSpec implements the environment.Environment interface
func (v *Vectorized) ObservationSpec() environment.Spec {
	return v.envs[0].ObservationSpec()
}

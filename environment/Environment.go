// Package environment outlines the interfaces needed to implement
// concrete environments that the rollout driver can interact with
package environment

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/timestep"
)

// ErrCannotCopy reports that an environment could not duplicate its
// underlying resources
var ErrCannotCopy = errors.New("environment cannot be copied")

// Environment implements a simulated environment that advances one
// batched step at a time.
//
// An Environment may be batched, in which case a single Step() call
// advances every sub-environment by one action and the returned
// timestep.EnvStep carries one row per sub-environment. An unbatched
// Environment behaves identically with a batch size of 1.
//
// Step mutates internal simulation state. Reset restarts every
// sub-environment and always returns a step whose kinds are all
// timestep.First; calling Reset immediately after construction must
// produce the canonical initial observation. Copy returns an
// independent environment that starts out reset, or an error wrapping
// ErrCannotCopy if the underlying resources cannot be duplicated.
type Environment interface {
	// Step advances every sub-environment by one action. The action
	// carries one row per sub-environment.
	Step(action *mat.Dense) (timestep.EnvStep, error)

	// Reset restarts all sub-environments
	Reset() (timestep.EnvStep, error)

	// Copy returns an independent, reset copy of the environment
	Copy() (Environment, error)

	// BatchSize returns the number of independent sub-environments
	// that share one Step() call
	BatchSize() int

	// Batched returns whether the environment vectorizes over more
	// than one sub-environment
	Batched() bool

	// ActionSpec describes the shape and bounds of valid actions.
	// It is used for validation only; the rollout machinery never
	// interprets it.
	ActionSpec() Spec

	// ObservationSpec describes the shape and bounds of observations
	ObservationSpec() Spec
}

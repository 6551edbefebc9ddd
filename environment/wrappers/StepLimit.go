package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/environment"
	"sfneuman.com/gorollout/timestep"
)

// StepLimit wraps an unbatched environment so that its episodes end
// after at most episodeSteps actions. A step at the limit has its
// kind forced to timestep.Last; the wrapped environment's own
// terminations before the limit pass through unchanged.
//
// Wrap each environment with StepLimit before vectorizing, so that
// forced terminations participate in Vectorized's per-sub-environment
// restarting.
type StepLimit struct {
	environment.Environment
	episodeSteps int
	currentStep  int
}

// NewStepLimit creates a new StepLimit ending episodes of env after
// episodeSteps actions
func NewStepLimit(env environment.Environment,
	episodeSteps int) (*StepLimit, error) {
	if env.Batched() {
		return nil, fmt.Errorf("newStepLimit: env must be unbatched")
	}
	if episodeSteps < 1 {
		return nil, fmt.Errorf("newStepLimit: episodeSteps must be "+
			"positive, got %d", episodeSteps)
	}

	return &StepLimit{
		Environment:  env,
		episodeSteps: episodeSteps,
	}, nil
}

// Reset restarts the wrapped environment and the step counter
func (s *StepLimit) Reset() (timestep.EnvStep, error) {
	s.currentStep = 0
	return s.Environment.Reset()
}

// Step advances the wrapped environment, forcing the step kind to
// timestep.Last once the episode reaches the step limit
func (s *StepLimit) Step(action *mat.Dense) (timestep.EnvStep, error) {
	step, err := s.Environment.Step(action)
	if err != nil {
		return step, err
	}

	s.currentStep++
	if s.currentStep >= s.episodeSteps && !step.Kinds().All(timestep.Last) {
		step, err = step.WithKinds(timestep.Uniform(timestep.Last, 1))
		if err != nil {
			return step, fmt.Errorf("step: %v", err)
		}
	}
	return step, nil
}

// Copy returns an independent, reset copy of the environment
func (s *StepLimit) Copy() (environment.Environment, error) {
	env, err := s.Environment.Copy()
	if err != nil {
		return nil, err
	}
	return NewStepLimit(env, s.episodeSteps)
}

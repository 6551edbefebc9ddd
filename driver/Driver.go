// Package driver implements the rollout loop that repeatedly steps an
// environment/policy pair and emits the resulting trajectory steps to
// listeners. The loop is single-threaded and synchronous: parallelism
// comes only from the batch dimension of the environment, never from
// concurrent execution.
package driver

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/environment"
	"sfneuman.com/gorollout/policy"
	"sfneuman.com/gorollout/timestep"
	"sfneuman.com/gorollout/trajectory"
)

// Listener observes every trajectory step a Driver produces.
// Listeners are invoked synchronously, in registration order, once
// per step, before the next iteration begins. A Listener must not
// retain references into the step's matrices beyond the call unless
// it treats them as read-only.
type Listener interface {
	Listen(trajectory.Step)
}

// Config bounds a single Run call. At least one bound must be set; a
// zero value leaves that bound unenforced.
type Config struct {
	// MaxSteps bounds the total number of steps taken across all
	// sub-environments in the batch. A batched step of B
	// sub-environments counts B.
	MaxSteps uint

	// MaxEpisodes bounds the number of completed episodes (Last-kind
	// boundaries) observed since the Run call began
	MaxEpisodes uint
}

// Validate returns an error if the configuration would never
// terminate a Run call
func (c Config) Validate() error {
	if c.MaxSteps == 0 && c.MaxEpisodes == 0 {
		return fmt.Errorf("validate: at least one of MaxSteps and " +
			"MaxEpisodes must be set")
	}
	return nil
}

// Driver orchestrates the environment/policy loop. Each iteration
// asks the policy for an action distribution in the current
// observation, samples an action, steps the environment, assembles a
// trajectory step, and notifies every listener.
//
// The driver performs no recovery: any error from the policy or the
// environment aborts the current Run call and propagates to the
// caller.
type Driver struct {
	env       environment.Environment
	policy    policy.Policy
	config    Config
	src       rand.Source
	listeners []Listener
}

// New creates a new Driver. The source seeds action sampling: a
// Driver constructed with an identically-seeded source reproduces
// identical rollouts for deterministic environments and policies. A
// nil source samples from process entropy.
func New(env environment.Environment, pol policy.Policy, config Config,
	src rand.Source, listeners ...Listener) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Driver{
		env:       env,
		policy:    pol,
		config:    config,
		src:       src,
		listeners: listeners,
	}, nil
}

// Register adds a listener to the (possibly already running) driver.
// Listeners are notified in registration order.
func (d *Driver) Register(l Listener) {
	d.listeners = append(d.listeners, l)
}

// Run executes the rollout loop starting from the argument policy
// state and environment step, until a configured bound is reached.
// The start step supports resuming an in-flight batch from a previous
// Run call; a fresh rollout starts from the step returned by the
// environment's Reset().
//
// Run returns the final environment step and policy state so that a
// subsequent call can resume without losing in-flight episodes.
//
// The step bound is never overshot by more than one step per
// sub-environment: step kinds are only knowable after stepping, so
// the bounds are evaluated after each iteration.
func (d *Driver) Run(state policy.State,
	start timestep.EnvStep) (timestep.EnvStep, policy.State, error) {
	if start.BatchSize() != d.env.BatchSize() {
		return start, state, fmt.Errorf("run: start step has batch size "+
			"%d, environment has %d", start.BatchSize(), d.env.BatchSize())
	}

	var steps, episodes uint
	current := start
	for d.incomplete(steps, episodes) {
		// A batched environment resets finished sub-environments
		// itself; an unbatched one is reset here once its episode
		// ends, without emitting a trajectory step.
		if !d.env.Batched() && current.Kinds().All(timestep.Last) {
			reset, err := d.env.Reset()
			if err != nil {
				return current, state, fmt.Errorf("run: reset: %v", err)
			}
			current = reset
			continue
		}

		dist, nextState, err := d.policy.Distribution(current.Observation(),
			state)
		if err != nil {
			return current, state, fmt.Errorf("run: policy: %v", err)
		}
		if dist.Batch() != current.BatchSize() {
			return current, state, fmt.Errorf("run: policy produced a "+
				"distribution over %d batch elements, want %d", dist.Batch(),
				current.BatchSize())
		}

		sample := dist.Sample(d.src)
		action := mat.NewDense(current.BatchSize(), 1, nil)
		for i := 0; i < current.BatchSize(); i++ {
			action.Set(i, 0, sample.AtVec(i))
		}

		next, err := d.env.Step(action)
		if err != nil {
			return current, state, fmt.Errorf("run: step: %v", err)
		}

		step, err := trajectory.New(current, next, action, nextState)
		if err != nil {
			return current, state, fmt.Errorf("run: %v", err)
		}
		for _, l := range d.listeners {
			l.Listen(step)
		}

		steps += uint(current.BatchSize())
		episodes += uint(next.Kinds().Count(timestep.Last))
		current = next
		state = nextState
	}

	return current, state, nil
}

// incomplete reports whether neither configured bound has been
// reached
func (d *Driver) incomplete(steps, episodes uint) bool {
	if d.config.MaxSteps != 0 && steps >= d.config.MaxSteps {
		return false
	}
	if d.config.MaxEpisodes != 0 && episodes >= d.config.MaxEpisodes {
		return false
	}
	return true
}

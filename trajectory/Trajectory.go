// Package trajectory implements the record of agent-environment
// interaction that rollout drivers produce and training algorithms
// consume. A Step pairs the environment step a decision was made in
// with the environment step that decision produced; a Trajectory is
// an ordered sequence of Steps whose insertion order is temporal
// order.
package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/policy"
	"sfneuman.com/gorollout/timestep"
)

// States holds the policy states of independently-collected steps
// that were stacked into one batched step, in stacking order
type States []policy.State

// Step records a single batched interaction: the environment step the
// policy observed, the action it chose, the policy state it carried
// forward, and the environment step that the action produced.
//
// The pair of environment steps is causally linked: Next() is always
// the step produced by applying Action() to the environment whose
// prior step was Current(). Rows of the batch are never reordered or
// mixed between the two.
type Step struct {
	current timestep.EnvStep
	next    timestep.EnvStep
	action  *mat.Dense
	state   policy.State
}

// New creates a new Step. The batch sizes of both environment steps
// and the action must agree.
func New(current, next timestep.EnvStep, action *mat.Dense,
	state policy.State) (Step, error) {
	if current.BatchSize() != next.BatchSize() {
		return Step{}, fmt.Errorf("new: current batch size %d does not "+
			"match next batch size %d", current.BatchSize(), next.BatchSize())
	}
	rows, _ := action.Dims()
	if rows != current.BatchSize() {
		return Step{}, fmt.Errorf("new: action has %d rows for batch "+
			"size %d", rows, current.BatchSize())
	}

	return Step{current, next, mat.DenseCopyOf(action), state}, nil
}

// Current returns the environment step the decision was made in
func (s Step) Current() timestep.EnvStep {
	return s.current
}

// Next returns the environment step the decision produced
func (s Step) Next() timestep.EnvStep {
	return s.next
}

// Action returns the batched action, one row per sub-environment. The
// returned matrix must not be modified.
func (s Step) Action() *mat.Dense {
	return s.action
}

// State returns the policy state that was carried forward out of this
// step
func (s Step) State() policy.State {
	return s.state
}

// BatchSize returns the number of sub-environments recorded in the
// step
func (s Step) BatchSize() int {
	return s.current.BatchSize()
}

// ActionDims returns the number of action dimensions per
// sub-environment
func (s Step) ActionDims() int {
	_, cols := s.action.Dims()
	return cols
}

// IsFirst returns a mask of the sub-environments for which this step
// began an episode
func (s Step) IsFirst() []bool {
	return s.current.Kinds().IsFirst()
}

// IsLast returns a mask of the sub-environments for which this step
// ended an episode
func (s Step) IsLast() []bool {
	return s.next.Kinds().IsLast()
}

// IsTransition returns a mask of the sub-environments for which this
// step is strictly mid-episode on both sides
func (s Step) IsTransition() []bool {
	currentMask := s.current.Kinds().IsTransition()
	nextMask := s.next.Kinds().IsTransition()

	mask := make([]bool, len(currentMask))
	for i := range mask {
		mask[i] = currentMask[i] && nextMask[i]
	}
	return mask
}

// IsBoundary returns a mask of the sub-environments for which this
// step crossed an episode boundary: the decision was made in a
// terminal step, so the action was discarded and the sub-environment
// reset. Training consumers usually drop boundary rows.
func (s Step) IsBoundary() []bool {
	return s.current.Kinds().IsLast()
}

// StackSteps combines independently-collected steps into one batched
// Step whose batch dimension is the concatenation of the argument
// batch dimensions in argument order. Every field is stacked
// independently; the policy states are collected into a States value.
// Stacking is purely structural: no data is recomputed.
func StackSteps(steps []Step) (Step, error) {
	if len(steps) == 0 {
		return Step{}, fmt.Errorf("stackSteps: no steps to stack")
	}

	currents := make([]timestep.EnvStep, len(steps))
	nexts := make([]timestep.EnvStep, len(steps))
	states := make(States, len(steps))
	actionDims := steps[0].ActionDims()
	batch := 0
	for i, step := range steps {
		if step.ActionDims() != actionDims {
			return Step{}, fmt.Errorf("stackSteps: step %d has %d action "+
				"dimensions, but step 0 has %d", i, step.ActionDims(),
				actionDims)
		}
		currents[i] = step.current
		nexts[i] = step.next
		states[i] = step.state
		batch += step.BatchSize()
	}

	current, err := timestep.Stack(currents)
	if err != nil {
		return Step{}, fmt.Errorf("stackSteps: %v", err)
	}
	next, err := timestep.Stack(nexts)
	if err != nil {
		return Step{}, fmt.Errorf("stackSteps: %v", err)
	}

	action := mat.NewDense(batch, actionDims, nil)
	row := 0
	for _, step := range steps {
		for i := 0; i < step.BatchSize(); i++ {
			action.SetRow(row, mat.Row(nil, i, step.action))
			row++
		}
	}

	return Step{current, next, action, states}, nil
}

// Unstack splits the Step into n steps of equal batch size, undoing a
// StackSteps of n equally-sized steps:
// Unstack(StackSteps(xs), len(xs)) == xs whenever all elements of xs
// share one batch size. The Step's state must be a States of length
// n, as produced by StackSteps.
func (s Step) Unstack(n int) ([]Step, error) {
	states, ok := s.state.(States)
	if !ok || len(states) != n {
		return nil, fmt.Errorf("unstack: step state is not a stack of %d "+
			"policy states", n)
	}

	currents, err := s.current.Unstack(n)
	if err != nil {
		return nil, fmt.Errorf("unstack: %v", err)
	}
	nexts, err := s.next.Unstack(n)
	if err != nil {
		return nil, fmt.Errorf("unstack: %v", err)
	}

	size := s.BatchSize() / n
	steps := make([]Step, n)
	for i := range steps {
		action := mat.NewDense(size, s.ActionDims(), nil)
		for j := 0; j < size; j++ {
			action.SetRow(j, mat.Row(nil, i*size+j, s.action))
		}
		steps[i] = Step{currents[i], nexts[i], action, states[i]}
	}

	return steps, nil
}

// Trajectory is an ordered sequence of Steps; insertion order is
// temporal order
type Trajectory []Step

// BatchSize returns the batch size shared by the trajectory's steps,
// or 0 for an empty trajectory
func (t Trajectory) BatchSize() int {
	if len(t) == 0 {
		return 0
	}
	return t[0].BatchSize()
}

// Stack combines independently-collected trajectories of equal length
// into one batched trajectory by stacking the steps at each time
// index. Stack and Unstack are a lossless round trip:
// Unstack(Stack(xs), len(xs)) == xs for structurally-identical xs.
func Stack(trajectories []Trajectory) (Trajectory, error) {
	if len(trajectories) == 0 {
		return nil, fmt.Errorf("stack: no trajectories to stack")
	}

	length := len(trajectories[0])
	for i, trajectory := range trajectories {
		if len(trajectory) != length {
			return nil, fmt.Errorf("stack: trajectory %d has length %d, "+
				"but trajectory 0 has length %d", i, len(trajectory), length)
		}
	}

	stacked := make(Trajectory, length)
	steps := make([]Step, len(trajectories))
	for i := 0; i < length; i++ {
		for j, trajectory := range trajectories {
			steps[j] = trajectory[i]
		}

		step, err := StackSteps(steps)
		if err != nil {
			return nil, fmt.Errorf("stack: time index %d: %v", i, err)
		}
		stacked[i] = step
	}

	return stacked, nil
}

// Unstack splits the batched trajectory back into the n trajectories
// it was stacked from
func (t Trajectory) Unstack(n int) ([]Trajectory, error) {
	trajectories := make([]Trajectory, n)
	for i := range trajectories {
		trajectories[i] = make(Trajectory, len(t))
	}

	for i, step := range t {
		steps, err := step.Unstack(n)
		if err != nil {
			return nil, fmt.Errorf("unstack: time index %d: %v", i, err)
		}
		for j, s := range steps {
			trajectories[j][i] = s
		}
	}

	return trajectories, nil
}

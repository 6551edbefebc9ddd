package trajectory

import (
	"fmt"

	"gorgonia.org/tensor"
	"sfneuman.com/gorollout/utils/tensorutils"
)

// Batch is the tensor form of a trajectory: every field of its steps
// composed into one dense tensor with time as the leading dimension
// and the batch as the second. Training consumers feed these tensors
// to gradient computation directly; the conversion itself is purely
// structural.
type Batch struct {
	// Observations holds the observation each decision was made in,
	// with shape [T, B, F]
	Observations *tensor.Dense

	// Actions holds the chosen actions, with shape [T, B, A]
	Actions *tensor.Dense

	// Rewards holds the reward each action produced (the reward of
	// the next environment step), with shape [T, B]
	Rewards *tensor.Dense

	// FirstMask is 1 where the step began an episode, with shape
	// [T, B]
	FirstMask *tensor.Dense

	// LastMask is 1 where the step ended an episode, with shape
	// [T, B]
	LastMask *tensor.Dense
}

// Batch converts the trajectory to its tensor form. Every step must
// share the trajectory's batch size, observation width, and action
// width.
func (t Trajectory) Batch() (*Batch, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("batch: empty trajectory")
	}

	steps := len(t)
	batch := t[0].BatchSize()
	features := t[0].Current().ObsDims()
	actionDims := t[0].ActionDims()

	obs := make([]float64, steps*batch*features)
	actions := make([]float64, steps*batch*actionDims)
	rewards := make([]float64, steps*batch)
	firstMask := make([]float64, steps*batch)
	lastMask := make([]float64, steps*batch)

	for i, step := range t {
		if step.BatchSize() != batch ||
			step.Current().ObsDims() != features ||
			step.ActionDims() != actionDims {
			return nil, fmt.Errorf("batch: step %d has shape (%d, %d, %d), "+
				"but step 0 has (%d, %d, %d)", i, step.BatchSize(),
				step.Current().ObsDims(), step.ActionDims(), batch, features,
				actionDims)
		}

		first := step.IsFirst()
		last := step.IsLast()
		for b := 0; b < batch; b++ {
			for f := 0; f < features; f++ {
				obs[(i*batch+b)*features+f] = step.Current().Observation().At(b, f)
			}
			for a := 0; a < actionDims; a++ {
				actions[(i*batch+b)*actionDims+a] = step.Action().At(b, a)
			}

			rewards[i*batch+b] = step.Next().Reward().AtVec(b)
			if first[b] {
				firstMask[i*batch+b] = 1
			}
			if last[b] {
				lastMask[i*batch+b] = 1
			}
		}
	}

	return &Batch{
		Observations: tensor.New(tensor.WithShape(steps, batch, features),
			tensor.WithBacking(obs)),
		Actions: tensor.New(tensor.WithShape(steps, batch, actionDims),
			tensor.WithBacking(actions)),
		Rewards: tensor.New(tensor.WithShape(steps, batch),
			tensor.WithBacking(rewards)),
		FirstMask: tensor.New(tensor.WithShape(steps, batch),
			tensor.WithBacking(firstMask)),
		LastMask: tensor.New(tensor.WithShape(steps, batch),
			tensor.WithBacking(lastMask)),
	}, nil
}

// Steps returns the number of timesteps in the batch
func (b *Batch) Steps() int {
	return b.Observations.Shape()[0]
}

// At returns the tensors of the single timestep at time index i, with
// the time dimension elided: observations are [B, F], actions [B, A],
// and rewards [B]. The returned tensors are materialized copies.
func (b *Batch) At(i int) (obs, actions, rewards *tensor.Dense, err error) {
	if i < 0 || i >= b.Steps() {
		return nil, nil, nil, fmt.Errorf("at: time index %d out of "+
			"range [0, %d)", i, b.Steps())
	}

	index := tensorutils.Index(i)
	if obs, err = materialize(b.Observations, index); err != nil {
		return nil, nil, nil, fmt.Errorf("at: observations: %v", err)
	}
	if actions, err = materialize(b.Actions, index); err != nil {
		return nil, nil, nil, fmt.Errorf("at: actions: %v", err)
	}
	if rewards, err = materialize(b.Rewards, index); err != nil {
		return nil, nil, nil, fmt.Errorf("at: rewards: %v", err)
	}

	return obs, actions, rewards, nil
}

func materialize(t *tensor.Dense, index tensorutils.Slice) (*tensor.Dense,
	error) {
	view, err := t.Slice(index)
	if err != nil {
		return nil, err
	}
	return view.Materialize().(*tensor.Dense), nil
}

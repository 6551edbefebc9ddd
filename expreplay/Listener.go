package expreplay

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/trajectory"
)

// Listener feeds an ExperienceReplayer from a rollout driver. Each
// observed trajectory step is split into one Transition per
// sub-environment before adding to the buffer. Boundary rows, where a
// sub-environment restarted after a mid-rollout reset, span no real
// transition and are skipped.
//
// Listening never fails loudly: the first error from the underlying
// buffer stops ingestion and is reported by Err().
type Listener struct {
	replayer ExperienceReplayer
	err      error
}

// NewListener creates a Listener feeding the argument buffer
func NewListener(replayer ExperienceReplayer) *Listener {
	return &Listener{replayer: replayer}
}

// Listen implements the driver Listener interface
func (l *Listener) Listen(step trajectory.Step) {
	if l.err != nil {
		return
	}

	boundary := step.IsBoundary()
	last := step.IsLast()
	current := step.Current().Observation()
	next := step.Next().Observation()
	reward := step.Next().Reward()
	action := step.Action()

	for i := 0; i < step.BatchSize(); i++ {
		if boundary[i] {
			continue
		}

		transition := Transition{
			State:     rowVec(current, i),
			Action:    rowVec(action, i),
			Reward:    reward.AtVec(i),
			NextState: rowVec(next, i),
			Done:      last[i],
		}
		if err := l.replayer.Add(transition); err != nil {
			l.err = fmt.Errorf("listen: %v", err)
			return
		}
	}
}

// Err returns the first error encountered while ingesting steps, if
// any
func (l *Listener) Err() error {
	return l.err
}

// rowVec copies row i of m into a new vector
func rowVec(m *mat.Dense, i int) *mat.VecDense {
	_, cols := m.Dims()
	return mat.NewVecDense(cols, mat.Row(nil, i, m))
}

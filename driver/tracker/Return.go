package tracker

import (
	"encoding/gob"
	"log"
	"os"

	"sfneuman.com/gorollout/trajectory"
)

// Return tracks and saves the episodic returns seen during a rollout.
// A running return is kept for each sub-environment in the batch;
// whenever a sub-environment's episode ends, its completed return is
// recorded and its running return starts over. Boundary steps, where
// a sub-environment restarts after a mid-rollout reset, contribute to
// no episode and are skipped.
//
// Returns of episodes still in flight when Save() is called are not
// recorded.
type Return struct {
	currentReturns []float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates a new Return tracker which will save data to the
// file filename
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Listen implements the Tracker interface
func (r *Return) Listen(step trajectory.Step) {
	batch := step.BatchSize()
	if r.currentReturns == nil {
		r.currentReturns = make([]float64, batch)
	}

	boundary := step.IsBoundary()
	last := step.IsLast()
	reward := step.Next().Reward()

	for i := 0; i < batch; i++ {
		if boundary[i] {
			continue
		}
		r.currentReturns[i] += reward.AtVec(i)
		if last[i] {
			r.episodeReturns = append(r.episodeReturns,
				r.currentReturns[i])
			r.currentReturns[i] = 0
		}
	}
}

// Returns gets the episodic returns recorded so far
func (r *Return) Returns() []float64 {
	return r.episodeReturns
}

// Save implements the Tracker interface, saving the recorded episodic
// returns to disk
func (r *Return) Save() {
	file, err := os.Create(r.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	err = enc.Encode(r.episodeReturns)
	if err != nil {
		log.Fatalf("could not encode data: %v", err)
	}
}

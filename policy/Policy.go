// Package policy outlines the interface between observations and
// action distributions. A policy never selects actions itself: it
// produces a distribution.Distribution that the caller samples from,
// so that the log-probabilities and entropies of the decision remain
// available for gradient computation.
package policy

import (
	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/distribution"
)

// State is the opaque internal state of a recurrent policy. The
// rollout driver treats it as a baton: it receives a State from each
// Distribution() call and feeds it back unchanged into the next call.
// Ownership transfers with the value; it is never shared between
// concurrent calls. Stateless policies return their argument
// unchanged and may use a nil State.
type State interface{}

// Policy turns a batched observation and the previous State into a
// distribution over actions and an updated State. The observation
// carries one row per sub-environment, and the returned distribution
// has one batch element per row.
type Policy interface {
	Distribution(obs *mat.Dense, state State) (distribution.Distribution,
		State, error)
}

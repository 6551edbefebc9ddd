// Package distribution implements probability distributions over
// actions. Distributions are pure values parameterized at
// construction: they hold no mutable random state, and sampling takes
// an explicit rand.Source so that identical sources reproduce
// identical draws. A nil source draws from process-wide
// non-deterministic randomness.
//
// A Distribution is batched: it holds one set of parameters per
// sub-environment and every operation acts elementwise along the
// batch.
package distribution

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Distribution implements a batched probability distribution over a
// scalar value per batch element.
//
// Parameters are fixed at construction and exposed as plain numeric
// vectors so that gradients with respect to them can be computed
// externally. The parameter accessors of concrete distributions
// return the backing storage; callers computing gradients may read it
// but must not mutate it.
type Distribution interface {
	// Batch returns the number of batch elements the distribution is
	// defined over
	Batch() int

	// LogProb returns the log-likelihood of value under the current
	// parameters, one entry per batch element. The value is treated
	// as a constant: gradients flow only to the distribution's own
	// parameters.
	LogProb(value *mat.VecDense) (*mat.VecDense, error)

	// Entropy returns the closed-form entropy of each batch element
	Entropy() *mat.VecDense

	// Mode returns the most likely value of each batch element. The
	// source argument exists for interface uniformity with
	// distributions whose mode requires sampling; distributions with
	// a closed-form mode ignore it.
	Mode(src rand.Source) *mat.VecDense

	// Sample draws one value per batch element. A given source state
	// always reproduces the same sample for the same parameters. A
	// nil source draws from process entropy.
	Sample(src rand.Source) *mat.VecDense
}

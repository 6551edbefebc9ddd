package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"sfneuman.com/gorollout/utils/floatutils"
)

// Bernoulli implements a batched Bernoulli distribution over {0, 1},
// parameterized by one logit per batch element. All three
// parameterizations (logits, log-probabilities, probabilities) are
// normalized to logits at construction so every operation has a
// single numerically-stable code path.
//
// Infinite logits are legal and yield a degenerate distribution that
// deterministically produces one outcome.
type Bernoulli struct {
	logits *mat.VecDense
}

// NewBernoulli creates a Bernoulli distribution from raw logits, the
// log-odds log(p) - log(1-p) of drawing 1
func NewBernoulli(logits *mat.VecDense) (*Bernoulli, error) {
	if logits.Len() == 0 {
		return nil, fmt.Errorf("newBernoulli: empty logits")
	}
	for i := 0; i < logits.Len(); i++ {
		if math.IsNaN(logits.AtVec(i)) {
			return nil, fmt.Errorf("newBernoulli: logit %d is NaN", i)
		}
	}

	return &Bernoulli{mat.VecDenseCopyOf(logits)}, nil
}

// BernoulliFromProbs creates a Bernoulli distribution from the
// probability of drawing 1 per batch element. Probabilities must lie
// in [0, 1]; the endpoints are legal and produce infinite logits, a
// degenerate but well-formed distribution.
func BernoulliFromProbs(probs *mat.VecDense) (*Bernoulli, error) {
	logits := mat.NewVecDense(probs.Len(), nil)
	for i := 0; i < probs.Len(); i++ {
		p := probs.AtVec(i)
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("bernoulliFromProbs: probability %d "+
				"not in [0, 1]: %v", i, p)
		}
		logits.SetVec(i, math.Log(p)-math.Log1p(-p))
	}

	return NewBernoulli(logits)
}

// BernoulliFromLogProbs creates a Bernoulli distribution from the
// log-probability of drawing 1 per batch element. Log-probabilities
// must be non-positive.
func BernoulliFromLogProbs(logProbs *mat.VecDense) (*Bernoulli, error) {
	logits := mat.NewVecDense(logProbs.Len(), nil)
	for i := 0; i < logProbs.Len(); i++ {
		lp := logProbs.AtVec(i)
		if math.IsNaN(lp) || lp > 0 {
			return nil, fmt.Errorf("bernoulliFromLogProbs: log "+
				"probability %d is positive or NaN: %v", i, lp)
		}
		logits.SetVec(i, lp-log1mExp(lp))
	}

	return NewBernoulli(logits)
}

// Logits returns the logits parameterizing the distribution. The
// returned vector backs the distribution itself so that external
// gradient computation can reach the parameters; it must not be
// mutated.
func (b *Bernoulli) Logits() *mat.VecDense {
	return b.logits
}

// Batch implements the Distribution interface
func (b *Bernoulli) Batch() int {
	return b.logits.Len()
}

// LogProb returns the log-likelihood of value under the distribution.
// For value elements in {0, 1} this is exactly
// -(max(l, 0) - l*v + softplus(-|l|)) with l the corresponding logit.
func (b *Bernoulli) LogProb(value *mat.VecDense) (*mat.VecDense, error) {
	if value.Len() != b.Batch() {
		return nil, fmt.Errorf("logProb: value length %d does not match "+
			"batch size %d", value.Len(), b.Batch())
	}

	logProbs := mat.NewVecDense(b.Batch(), nil)
	for i := 0; i < b.Batch(); i++ {
		l := b.logits.AtVec(i)
		v := value.AtVec(i)

		// Infinite logits are deterministic outcomes: probability 1
		// for the certain value and 0 for the other. The softplus
		// formula is indeterminate (Inf - Inf) there.
		if math.IsInf(l, 1) {
			logProbs.SetVec(i, certainLogProb(v == 1))
			continue
		}
		if math.IsInf(l, -1) {
			logProbs.SetVec(i, certainLogProb(v == 0))
			continue
		}

		nlp := math.Max(l, 0) - l*v + floatutils.Softplus(-math.Abs(l))
		logProbs.SetVec(i, -nlp)
	}

	return logProbs, nil
}

// Entropy returns the entropy of each batch element:
// max(l, 0) - l*sigmoid(l) + softplus(-|l|). The entropy is
// non-negative everywhere and approaches 0 as |l| grows.
func (b *Bernoulli) Entropy() *mat.VecDense {
	entropy := mat.NewVecDense(b.Batch(), nil)
	for i := 0; i < b.Batch(); i++ {
		l := b.logits.AtVec(i)
		if math.IsInf(l, 0) {
			entropy.SetVec(i, 0)
			continue
		}

		h := math.Max(l, 0) - l*floatutils.Sigmoid(l) +
			floatutils.Softplus(-math.Abs(l))
		entropy.SetVec(i, h)
	}

	return entropy
}

// Mode returns the most likely value of each batch element: 1 where
// the logit is positive, 0 otherwise. The tie at a logit of exactly 0
// breaks to 0. Mode is deterministic and ignores its source argument.
func (b *Bernoulli) Mode(rand.Source) *mat.VecDense {
	mode := mat.NewVecDense(b.Batch(), nil)
	for i := 0; i < b.Batch(); i++ {
		if b.logits.AtVec(i) > 0 {
			mode.SetVec(i, 1)
		}
	}

	return mode
}

// Sample draws one value per batch element using the inverse-CDF
// trick: uniform noise in [0, 1) is compared against the sigmoid of
// the logit in log-space, which avoids evaluating the sigmoid itself
// and stays exact for logits at the extremes.
func (b *Bernoulli) Sample(src rand.Source) *mat.VecDense {
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}

	sample := mat.NewVecDense(b.Batch(), nil)
	for i := 0; i < b.Batch(); i++ {
		if math.Log(uniform.Rand()) < floatutils.LogSigmoid(b.logits.AtVec(i)) {
			sample.SetVec(i, 1)
		}
	}

	return sample
}

// certainLogProb returns the log-probability of an outcome under a
// deterministic distribution
func certainLogProb(certain bool) float64 {
	if certain {
		return 0
	}
	return math.Inf(-1)
}

// log1mExp computes log(1 - exp(x)) for x <= 0, switching between the
// log1p and expm1 identities at -log(2) to keep full precision at
// both ends
func log1mExp(x float64) float64 {
	if x > -math.Ln2 {
		return math.Log(-math.Expm1(x))
	}
	return math.Log1p(-math.Exp(x))
}

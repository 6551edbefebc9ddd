package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const logSqrt2Pi = 0.9189385332046727 // log(sqrt(2 * pi))

// Normal implements a batched univariate Gaussian distribution,
// parameterized by one mean and one standard deviation per batch
// element.
type Normal struct {
	mean   *mat.VecDense
	stddev *mat.VecDense
}

// NewNormal creates a Normal distribution. The mean and standard
// deviation must have the same length, and every standard deviation
// must be positive and finite.
func NewNormal(mean, stddev *mat.VecDense) (*Normal, error) {
	if mean.Len() == 0 {
		return nil, fmt.Errorf("newNormal: empty mean")
	}
	if mean.Len() != stddev.Len() {
		return nil, fmt.Errorf("newNormal: mean length %d does not match "+
			"stddev length %d", mean.Len(), stddev.Len())
	}
	for i := 0; i < mean.Len(); i++ {
		if math.IsNaN(mean.AtVec(i)) {
			return nil, fmt.Errorf("newNormal: mean %d is NaN", i)
		}
		s := stddev.AtVec(i)
		if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			return nil, fmt.Errorf("newNormal: stddev %d must be a "+
				"positive finite value: %v", i, s)
		}
	}

	return &Normal{mat.VecDenseCopyOf(mean), mat.VecDenseCopyOf(stddev)}, nil
}

// Mean returns the means parameterizing the distribution. The
// returned vector backs the distribution itself; it must not be
// mutated.
func (n *Normal) Mean() *mat.VecDense {
	return n.mean
}

// StdDev returns the standard deviations parameterizing the
// distribution. The returned vector backs the distribution itself; it
// must not be mutated.
func (n *Normal) StdDev() *mat.VecDense {
	return n.stddev
}

// Batch implements the Distribution interface
func (n *Normal) Batch() int {
	return n.mean.Len()
}

// LogProb returns the log-density of value under the distribution,
// one entry per batch element
func (n *Normal) LogProb(value *mat.VecDense) (*mat.VecDense, error) {
	if value.Len() != n.Batch() {
		return nil, fmt.Errorf("logProb: value length %d does not match "+
			"batch size %d", value.Len(), n.Batch())
	}

	logProbs := mat.NewVecDense(n.Batch(), nil)
	for i := 0; i < n.Batch(); i++ {
		z := (value.AtVec(i) - n.mean.AtVec(i)) / n.stddev.AtVec(i)
		logProbs.SetVec(i, -0.5*z*z-math.Log(n.stddev.AtVec(i))-logSqrt2Pi)
	}

	return logProbs, nil
}

// Entropy returns the entropy of each batch element,
// 0.5 * log(2*pi*e*sigma^2)
func (n *Normal) Entropy() *mat.VecDense {
	entropy := mat.NewVecDense(n.Batch(), nil)
	for i := 0; i < n.Batch(); i++ {
		entropy.SetVec(i, 0.5+logSqrt2Pi+math.Log(n.stddev.AtVec(i)))
	}

	return entropy
}

// Mode returns the mean of each batch element. Mode is deterministic
// and ignores its source argument.
func (n *Normal) Mode(rand.Source) *mat.VecDense {
	return mat.VecDenseCopyOf(n.mean)
}

// Sample draws one value per batch element
func (n *Normal) Sample(src rand.Source) *mat.VecDense {
	sample := mat.NewVecDense(n.Batch(), nil)
	for i := 0; i < n.Batch(); i++ {
		normal := distuv.Normal{
			Mu:    n.mean.AtVec(i),
			Sigma: n.stddev.AtVec(i),
			Src:   src,
		}
		sample.SetVec(i, normal.Rand())
	}

	return sample
}

package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"sfneuman.com/gorollout/utils/floatutils"
)

// Categorical implements a batched categorical distribution over the
// action indices {0, ..., N-1}, parameterized by one row of N logits
// per batch element. Logits need not be normalized; every operation
// normalizes through a log-sum-exp internally.
type Categorical struct {
	logits *mat.Dense
}

// NewCategorical creates a Categorical distribution from raw logits,
// one row per batch element and one column per action
func NewCategorical(logits *mat.Dense) (*Categorical, error) {
	rows, cols := logits.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("newCategorical: empty logits")
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(logits.At(i, j)) {
				return nil, fmt.Errorf("newCategorical: logit (%d, %d) "+
					"is NaN", i, j)
			}
		}
	}

	return &Categorical{mat.DenseCopyOf(logits)}, nil
}

// CategoricalFromProbs creates a Categorical distribution from
// per-action probabilities, one row per batch element. Probabilities
// must lie in [0, 1]; a zero probability is legal and yields a -Inf
// logit, an action that is never drawn. Rows need not sum to one:
// they are renormalized implicitly by every operation.
func CategoricalFromProbs(probs *mat.Dense) (*Categorical, error) {
	rows, cols := probs.Dims()
	logits := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			p := probs.At(i, j)
			if math.IsNaN(p) || p < 0 || p > 1 {
				return nil, fmt.Errorf("categoricalFromProbs: "+
					"probability (%d, %d) not in [0, 1]: %v", i, j, p)
			}
			logits.Set(i, j, math.Log(p))
		}
	}

	return NewCategorical(logits)
}

// CategoricalFromLogProbs creates a Categorical distribution from
// per-action log-probabilities, one row per batch element
func CategoricalFromLogProbs(logProbs *mat.Dense) (*Categorical, error) {
	rows, cols := logProbs.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if logProbs.At(i, j) > 0 {
				return nil, fmt.Errorf("categoricalFromLogProbs: log "+
					"probability (%d, %d) is positive: %v", i, j,
					logProbs.At(i, j))
			}
		}
	}

	return NewCategorical(logProbs)
}

// Logits returns the logits parameterizing the distribution. The
// returned matrix backs the distribution itself so that external
// gradient computation can reach the parameters; it must not be
// mutated.
func (c *Categorical) Logits() *mat.Dense {
	return c.logits
}

// Batch implements the Distribution interface
func (c *Categorical) Batch() int {
	rows, _ := c.logits.Dims()
	return rows
}

// Actions returns the number of actions the distribution is defined
// over
func (c *Categorical) Actions() int {
	_, cols := c.logits.Dims()
	return cols
}

// LogProb returns the log-likelihood of the action indices in value,
// one entry per batch element. Indices must be integers in
// [0, Actions()).
func (c *Categorical) LogProb(value *mat.VecDense) (*mat.VecDense, error) {
	if value.Len() != c.Batch() {
		return nil, fmt.Errorf("logProb: value length %d does not match "+
			"batch size %d", value.Len(), c.Batch())
	}

	logProbs := mat.NewVecDense(c.Batch(), nil)
	for i := 0; i < c.Batch(); i++ {
		action := int(value.AtVec(i))
		if float64(action) != value.AtVec(i) || action < 0 ||
			action >= c.Actions() {
			return nil, fmt.Errorf("logProb: value %d is not an action "+
				"index in [0, %d): %v", i, c.Actions(), value.AtVec(i))
		}

		row := c.logits.RawRowView(i)
		logProbs.SetVec(i, row[action]-floatutils.LogSumExp(row))
	}

	return logProbs, nil
}

// Entropy returns the entropy of each batch element, computed as
// logSumExp(l) - sum(p * l) to stay stable for unnormalized logits
func (c *Categorical) Entropy() *mat.VecDense {
	entropy := mat.NewVecDense(c.Batch(), nil)
	for i := 0; i < c.Batch(); i++ {
		row := c.logits.RawRowView(i)
		lse := floatutils.LogSumExp(row)

		expected := 0.0
		for _, l := range row {
			p := math.Exp(l - lse)
			if p > 0 {
				expected += p * (l - lse)
			}
		}
		entropy.SetVec(i, -expected)
	}

	return entropy
}

// Mode returns the index of the most probable action per batch
// element, breaking ties towards the lowest index. Mode is
// deterministic and ignores its source argument.
func (c *Categorical) Mode(rand.Source) *mat.VecDense {
	mode := mat.NewVecDense(c.Batch(), nil)
	for i := 0; i < c.Batch(); i++ {
		_, indices := floatutils.MaxSlice(c.logits.RawRowView(i))
		mode.SetVec(i, float64(indices[0]))
	}

	return mode
}

// Sample draws one action index per batch element with the Gumbel-max
// trick: Gumbel noise -log(-log(u)) is added to each logit and the
// argmax taken, which samples the normalized categorical without ever
// computing the normalizing constant.
func (c *Categorical) Sample(src rand.Source) *mat.VecDense {
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}

	sample := mat.NewVecDense(c.Batch(), nil)
	perturbed := make([]float64, c.Actions())
	for i := 0; i < c.Batch(); i++ {
		row := c.logits.RawRowView(i)
		for j, l := range row {
			perturbed[j] = l - math.Log(-math.Log(uniform.Rand()))
		}

		_, indices := floatutils.MaxSlice(perturbed)
		sample.SetVec(i, float64(indices[0]))
	}

	return sample
}

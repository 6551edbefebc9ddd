// Package op provides extended Gorgonia graph operations.
//
// Adapted from aunum/G.ld on GitHub
package op

import (
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"sfneuman.com/gorollout/utils/tensorutils"
)

// LogSumExp calculates the log of the summation of exponentials of
// all logits along the given axis.
//
// Use this in place of Gorgonia's LogSumExp, which has the final sum
// and log interchanged, which is incorrect.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// Prod calculates the product of a Node along an axis
func Prod(input *G.Node, along int) *G.Node {
	shape := input.Shape()

	// Calculate the first columns along the axis along
	dims := make([]tensor.Slice, len(shape))
	for i := 0; i < len(shape); i++ {
		if i == along {
			dims[i] = tensorutils.NewSlice(0, 1, 1)
		}
	}
	prod := G.Must(G.Slice(input, dims...))

	for i := 1; i < input.Shape()[along]; i++ {
		// Calculate the column that should be multiplied next
		for j := 0; j < len(shape); j++ {
			if j == along {
				dims[j] = tensorutils.NewSlice(i, i+1, 1)
			}
		}

		s := G.Must(G.Slice(input, dims...))
		prod = G.Must(G.HadamardProd(prod, s))
	}
	return prod
}

// softplus calculates log(1 + exp(x)) elementwise
func softplus(x *G.Node) *G.Node {
	return G.Must(G.Log1p(G.Must(G.Exp(x))))
}

// BernoulliLogPdf calculates the log of the probability mass function
// of values drawn from Bernoulli distributions with the argument
// logits. Both arguments should be one-dimensional with one element
// per sample in the batch, and values should hold only 0's and 1's.
//
// The calculation follows the numerically stable form
//
//	logProb = -(max(l, 0) - l*v + log(1 + exp(-|l|)))
//
// which never exponentiates a positive logit.
func BernoulliLogPdf(logits, values *G.Node) *G.Node {
	if logits.Graph() != values.Graph() {
		panic("bernoulliLogPdf: all nodes must share the same graph")
	}

	relu := G.Must(G.Rectify(logits))
	crossTerm := G.Must(G.HadamardProd(logits, values))
	stable := softplus(G.Must(G.Neg(G.Must(G.Abs(logits)))))

	nll := G.Must(G.Sub(relu, crossTerm))
	nll = G.Must(G.Add(nll, stable))

	return G.Must(G.Neg(nll))
}

// BernoulliEntropy calculates the entropy of Bernoulli distributions
// with the argument logits. The argument should be one-dimensional
// with one element per sample in the batch.
func BernoulliEntropy(logits *G.Node) *G.Node {
	relu := G.Must(G.Rectify(logits))
	crossTerm := G.Must(G.HadamardProd(logits, G.Must(G.Sigmoid(logits))))
	stable := softplus(G.Must(G.Neg(G.Must(G.Abs(logits)))))

	entropy := G.Must(G.Sub(relu, crossTerm))
	return G.Must(G.Add(entropy, stable))
}

// CategoricalLogPdf calculates the log of the probability mass
// function of actions drawn from categorical distributions with the
// argument logits.
//
// Both arguments should be two-dimensional and of the same size
// m x n, where the rows (m) denote the samples in the batch and the
// columns (n) the action choices. The actions parameter one-hot
// encodes the chosen action of each row.
func CategoricalLogPdf(logits, actions *G.Node) *G.Node {
	if logits.Graph() != actions.Graph() {
		panic("categoricalLogPdf: all nodes must share the same graph")
	}

	normalizer := LogSumExp(logits, 1)
	chosen := G.Must(G.Sum(G.Must(G.HadamardProd(logits, actions)), 1))

	return G.Must(G.Sub(chosen, normalizer))
}

// GaussianLogPdf calculate the log of the probability density function
// of actions drawn from a diagonal Gaussian distribution with mean mean and
// standard deviation std.
//
// All arguments should be two-dimensional and of the same size m x n.
// For each argument, the rows (m) denote the number of samples in the
// batch. For the mean and std, the columns (n) denote the main diagonal
// of the mean or standard deviation respectively in the diagonal Gaussian,
// for which the PDF of actions is calculated. For the actions parameter,
// the columns denote each dimension of the actions.
//
// For row j and column i, mean[i, j] and std[i, j] denote the mean and
// standard deviation respectively of the Gaussian distribution from
// which the j-th component of actions[i] was drawn.
func GaussianLogPdf(mean, std, actions *G.Node) *G.Node {
	graph := mean.Graph()
	if graph != std.Graph() || graph != actions.Graph() {
		panic("gaussianLogPdf: all nodes must share the same graph")
	}

	negativeHalf := G.NewConstant(-0.5)

	if std.Shape()[1] != 1 {
		// Multi-dimensional actions
		variance := G.Must(G.Square(std))
		dims := float64(mean.Shape()[1])
		term1 := G.NewConstant((-dims / 2.0) * math.Log(2*math.Pi))

		det := Prod(variance, 1)
		term2 := G.Must(G.Log(det))
		term2 = G.Must(G.HadamardProd(term2, negativeHalf))

		// Calculate (-1/2) * (A - μ)^T σ^(-1) (A - μ)
		// Since everything is stored as a vector, this boils down to a
		// bunch of Hadamard products, sums, and differences.
		diff := G.Must(G.Sub(actions, mean))
		exponent := G.Must(G.HadamardDiv(diff, variance))
		exponent = G.Must(G.HadamardProd(exponent, diff))
		exponent = G.Must(G.Sum(exponent, 1))
		exponent = G.Must(G.HadamardProd(exponent, negativeHalf))

		// Calculate the probability
		terms := G.Must(G.Add(term1, term2))
		logProb := G.Must(G.Add(exponent, terms))

		return logProb
	} else {
		// If actions are single-dimensional, we can cut a few corners
		// to increase the computational efficiency
		two := G.NewConstant(2.0)
		exponent := G.Must(G.Sub(actions, mean))
		exponent = G.Must(G.HadamardDiv(exponent, std))
		exponent = G.Must(G.Pow(exponent, two))
		exponent = G.Must(G.HadamardProd(negativeHalf, exponent))

		term2 := G.Must(G.Log(std))
		term3 := G.NewConstant(math.Log(math.Pow(2*math.Pi, 0.5)))

		terms := G.Must(G.Add(term2, term3))
		logProb := G.Must(G.Sub(exponent, terms))
		logProb = G.Must(G.Ravel(logProb))

		return logProb
	}
}

package distribution

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestCategoricalLogProb(t *testing.T) {
	// Unnormalized logits; row probabilities are softmax(row)
	logits := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		1, 2, 3,
	})
	categorical, err := NewCategorical(logits)
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}

	lp, err := categorical.LogProb(mat.NewVecDense(2, []float64{0, 2}))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}

	if math.Abs(lp.AtVec(0)-math.Log(1.0/3.0)) > 1e-10 {
		t.Errorf("uniform row: got %v, want %v", lp.AtVec(0),
			math.Log(1.0/3.0))
	}

	z := math.Exp(1) + math.Exp(2) + math.Exp(3)
	if math.Abs(lp.AtVec(1)-math.Log(math.Exp(3)/z)) > 1e-10 {
		t.Errorf("softmax row: got %v, want %v", lp.AtVec(1),
			math.Log(math.Exp(3)/z))
	}

	// Probabilities of all actions must sum to one
	for i := 0; i < categorical.Batch(); i++ {
		total := 0.0
		for a := 0; a < categorical.Actions(); a++ {
			value := mat.NewVecDense(2, []float64{float64(a), float64(a)})
			lp, err := categorical.LogProb(value)
			if err != nil {
				t.Fatalf("LogProb: %v", err)
			}
			total += math.Exp(lp.AtVec(i))
		}
		if math.Abs(total-1) > 1e-10 {
			t.Errorf("row %d: probabilities sum to %v, want 1", i, total)
		}
	}
}

func TestCategoricalLogProbRejectsBadIndices(t *testing.T) {
	categorical, err := NewCategorical(mat.NewDense(1, 3, nil))
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}

	for _, bad := range []float64{-1, 3, 0.5} {
		if _, err := categorical.LogProb(mat.NewVecDense(1,
			[]float64{bad})); err == nil {
			t.Errorf("LogProb should reject action value %v", bad)
		}
	}
}

func TestCategoricalEntropy(t *testing.T) {
	logits := mat.NewDense(2, 4, []float64{
		0, 0, 0, 0,
		100, 0, 0, 0,
	})
	categorical, err := NewCategorical(logits)
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}

	entropy := categorical.Entropy()
	if math.Abs(entropy.AtVec(0)-math.Log(4)) > 1e-10 {
		t.Errorf("uniform entropy: got %v, want log 4", entropy.AtVec(0))
	}
	if entropy.AtVec(1) < 0 || entropy.AtVec(1) > 1e-10 {
		t.Errorf("peaked entropy should be ~0 and non-negative, got %v",
			entropy.AtVec(1))
	}
}

func TestCategoricalMode(t *testing.T) {
	logits := mat.NewDense(3, 3, []float64{
		3, 1, 2,
		1, 1, 1, // tie breaks to index 0
		-1, -3, -0.5,
	})
	categorical, err := NewCategorical(logits)
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}

	mode := categorical.Mode(nil)
	want := []float64{0, 0, 2}
	for i, w := range want {
		if mode.AtVec(i) != w {
			t.Errorf("row %d: mode %v, want %v", i, mode.AtVec(i), w)
		}
	}
}

func TestCategoricalSample(t *testing.T) {
	const draws = 10000
	probs := []float64{0.2, 0.5, 0.3}

	logits := mat.NewDense(draws, len(probs), nil)
	for i := 0; i < draws; i++ {
		for j, p := range probs {
			logits.Set(i, j, math.Log(p))
		}
	}
	categorical, err := NewCategorical(logits)
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}

	first := categorical.Sample(rand.NewSource(7))
	second := categorical.Sample(rand.NewSource(7))
	if !mat.EqualApprox(first, second, 0) {
		t.Error("identical seeds should reproduce identical samples")
	}

	counts := make([]float64, len(probs))
	for i := 0; i < draws; i++ {
		counts[int(first.AtVec(i))]++
	}
	for j, p := range probs {
		freq := counts[j] / draws
		tolerance := 4 * math.Sqrt(p*(1-p)/draws)
		if math.Abs(freq-p) > tolerance {
			t.Errorf("action %d: frequency %v not within %v of %v", j,
				freq, tolerance, p)
		}
	}
}

func TestCategoricalZeroProbabilityAction(t *testing.T) {
	probs := mat.NewDense(1, 3, []float64{0.5, 0, 0.5})
	categorical, err := CategoricalFromProbs(probs)
	if err != nil {
		t.Fatalf("CategoricalFromProbs: %v", err)
	}

	lp, err := categorical.LogProb(mat.NewVecDense(1, []float64{1}))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	if !math.IsInf(lp.AtVec(0), -1) {
		t.Errorf("zero-probability action should have -Inf log "+
			"probability, got %v", lp.AtVec(0))
	}

	src := rand.NewSource(3)
	for i := 0; i < 100; i++ {
		if categorical.Sample(src).AtVec(0) == 1 {
			t.Fatal("sampled a zero-probability action")
		}
	}
}

func TestCategoricalConstructionErrors(t *testing.T) {
	if _, err := NewCategorical(mat.NewDense(1, 1,
		[]float64{math.NaN()})); err == nil {
		t.Error("NewCategorical should reject NaN logits")
	}
	if _, err := CategoricalFromProbs(mat.NewDense(1, 2,
		[]float64{0.5, 1.5})); err == nil {
		t.Error("CategoricalFromProbs should reject probabilities above 1")
	}
	if _, err := CategoricalFromLogProbs(mat.NewDense(1, 2,
		[]float64{0.5, -1})); err == nil {
		t.Error("CategoricalFromLogProbs should reject positive log " +
			"probabilities")
	}
}

package distribution

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gorollout/utils/floatutils"
)

func TestBernoulliLogProbsSumToOne(t *testing.T) {
	logits := mat.NewVecDense(7, []float64{-50, -5, -1, 0, 1, 5, 50})
	bernoulli, err := NewBernoulli(logits)
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}

	ones := mat.NewVecDense(logits.Len(), nil)
	zeros := mat.NewVecDense(logits.Len(), nil)
	for i := 0; i < logits.Len(); i++ {
		ones.SetVec(i, 1)
	}

	logProbOne, err := bernoulli.LogProb(ones)
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	logProbZero, err := bernoulli.LogProb(zeros)
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}

	for i := 0; i < logits.Len(); i++ {
		total := math.Exp(logProbOne.AtVec(i)) + math.Exp(logProbZero.AtVec(i))
		if math.Abs(total-1) > 1e-10 {
			t.Errorf("logits %v: P(1) + P(0) = %v, want 1",
				logits.AtVec(i), total)
		}
	}
}

func TestBernoulliLogProbFormula(t *testing.T) {
	// The softplus identity must agree with the direct formula where
	// the latter is representable
	for _, l := range []float64{-10, -1, 0, 1, 10} {
		bernoulli, err := NewBernoulli(mat.NewVecDense(1, []float64{l}))
		if err != nil {
			t.Fatalf("NewBernoulli: %v", err)
		}

		p := floatutils.Sigmoid(l)
		lpOne, _ := bernoulli.LogProb(mat.NewVecDense(1, []float64{1}))
		lpZero, _ := bernoulli.LogProb(mat.NewVecDense(1, []float64{0}))

		if math.Abs(lpOne.AtVec(0)-math.Log(p)) > 1e-9 {
			t.Errorf("logit %v: LogProb(1) = %v, want %v", l,
				lpOne.AtVec(0), math.Log(p))
		}
		if math.Abs(lpZero.AtVec(0)-math.Log(1-p)) > 1e-9 {
			t.Errorf("logit %v: LogProb(0) = %v, want %v", l,
				lpZero.AtVec(0), math.Log(1-p))
		}
	}
}

func TestBernoulliDegenerateLogits(t *testing.T) {
	logits := mat.NewVecDense(2, []float64{math.Inf(1), math.Inf(-1)})
	bernoulli, err := NewBernoulli(logits)
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}

	lp, err := bernoulli.LogProb(mat.NewVecDense(2, []float64{1, 0}))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	if lp.AtVec(0) != 0 || lp.AtVec(1) != 0 {
		t.Errorf("certain outcomes should have log probability 0, got %v",
			lp.RawVector().Data)
	}

	lp, err = bernoulli.LogProb(mat.NewVecDense(2, []float64{0, 1}))
	if err != nil {
		t.Fatalf("LogProb: %v", err)
	}
	if !math.IsInf(lp.AtVec(0), -1) || !math.IsInf(lp.AtVec(1), -1) {
		t.Errorf("impossible outcomes should have log probability -Inf, "+
			"got %v", lp.RawVector().Data)
	}

	entropy := bernoulli.Entropy()
	if entropy.AtVec(0) != 0 || entropy.AtVec(1) != 0 {
		t.Errorf("degenerate entropy should be 0, got %v",
			entropy.RawVector().Data)
	}

	sample := bernoulli.Sample(rand.NewSource(1))
	if sample.AtVec(0) != 1 || sample.AtVec(1) != 0 {
		t.Errorf("degenerate sample should be deterministic, got %v",
			sample.RawVector().Data)
	}
}

func TestBernoulliEntropy(t *testing.T) {
	logits := mat.NewVecDense(9,
		[]float64{-100, -10, -2, -0.5, 0, 0.5, 2, 10, 100})
	bernoulli, err := NewBernoulli(logits)
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}

	entropy := bernoulli.Entropy()
	for i := 0; i < logits.Len(); i++ {
		if entropy.AtVec(i) < 0 {
			t.Errorf("logit %v: negative entropy %v", logits.AtVec(i),
				entropy.AtVec(i))
		}
	}

	// Maximal at logit 0
	if math.Abs(entropy.AtVec(4)-math.Ln2) > 1e-10 {
		t.Errorf("entropy at logit 0: got %v, want ln 2", entropy.AtVec(4))
	}

	// Approaches 0 at the extremes
	if entropy.AtVec(0) > 1e-10 || entropy.AtVec(8) > 1e-10 {
		t.Errorf("entropy should vanish for extreme logits, got %v and %v",
			entropy.AtVec(0), entropy.AtVec(8))
	}
}

func TestBernoulliMode(t *testing.T) {
	logits := mat.NewVecDense(5, []float64{-3, -1e-9, 0, 1e-9, 3})
	bernoulli, err := NewBernoulli(logits)
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}

	mode := bernoulli.Mode(nil)
	want := []float64{0, 0, 0, 1, 1} // ties at 0 break to 0
	for i, w := range want {
		if mode.AtVec(i) != w {
			t.Errorf("logit %v: mode %v, want %v", logits.AtVec(i),
				mode.AtVec(i), w)
		}
	}
}

func TestBernoulliSampleDeterminism(t *testing.T) {
	logits := mat.NewVecDense(100, nil)
	for i := 0; i < logits.Len(); i++ {
		logits.SetVec(i, float64(i%7)-3)
	}
	bernoulli, err := NewBernoulli(logits)
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}

	first := bernoulli.Sample(rand.NewSource(42))
	second := bernoulli.Sample(rand.NewSource(42))
	if !mat.EqualApprox(first, second, 0) {
		t.Error("identical seeds should reproduce identical samples")
	}

	for i := 0; i < first.Len(); i++ {
		if v := first.AtVec(i); v != 0 && v != 1 {
			t.Fatalf("sample %d not in {0, 1}: %v", i, v)
		}
	}
}

func TestBernoulliSampleFrequency(t *testing.T) {
	const draws = 10000
	src := rand.NewSource(13)

	for _, l := range []float64{-1.5, 0, 2} {
		logits := mat.NewVecDense(draws, nil)
		for i := 0; i < draws; i++ {
			logits.SetVec(i, l)
		}
		bernoulli, err := NewBernoulli(logits)
		if err != nil {
			t.Fatalf("NewBernoulli: %v", err)
		}

		sample := bernoulli.Sample(src)
		count := 0.0
		for i := 0; i < draws; i++ {
			count += sample.AtVec(i)
		}

		p := floatutils.Sigmoid(l)
		freq := count / draws
		tolerance := 4 * math.Sqrt(p*(1-p)/draws) // ~4 standard errors
		if math.Abs(freq-p) > tolerance {
			t.Errorf("logit %v: sample frequency %v not within %v of %v",
				l, freq, tolerance, p)
		}
	}
}

func TestBernoulliParameterizations(t *testing.T) {
	probs := mat.NewVecDense(4, []float64{0.1, 0.5, 0.9, 1})
	fromProbs, err := BernoulliFromProbs(probs)
	if err != nil {
		t.Fatalf("BernoulliFromProbs: %v", err)
	}

	logProbs := mat.NewVecDense(4, nil)
	for i := 0; i < probs.Len(); i++ {
		logProbs.SetVec(i, math.Log(probs.AtVec(i)))
	}
	fromLogProbs, err := BernoulliFromLogProbs(logProbs)
	if err != nil {
		t.Fatalf("BernoulliFromLogProbs: %v", err)
	}

	ones := mat.NewVecDense(4, []float64{1, 1, 1, 1})
	lpA, _ := fromProbs.LogProb(ones)
	lpB, _ := fromLogProbs.LogProb(ones)
	for i := 0; i < 4; i++ {
		if math.Abs(lpA.AtVec(i)-lpB.AtVec(i)) > 1e-9 {
			t.Errorf("parameterizations disagree at %d: %v vs %v", i,
				lpA.AtVec(i), lpB.AtVec(i))
		}
		if math.Abs(lpA.AtVec(i)-logProbs.AtVec(i)) > 1e-9 {
			t.Errorf("LogProb(1) at %d: got %v, want %v", i, lpA.AtVec(i),
				logProbs.AtVec(i))
		}
	}
}

func TestBernoulliConstructionErrors(t *testing.T) {
	if _, err := NewBernoulli(mat.NewVecDense(1,
		[]float64{math.NaN()})); err == nil {
		t.Error("NewBernoulli should reject NaN logits")
	}
	if _, err := BernoulliFromProbs(mat.NewVecDense(1,
		[]float64{1.5})); err == nil {
		t.Error("BernoulliFromProbs should reject probabilities above 1")
	}
	if _, err := BernoulliFromProbs(mat.NewVecDense(1,
		[]float64{-0.5})); err == nil {
		t.Error("BernoulliFromProbs should reject negative probabilities")
	}
	if _, err := BernoulliFromLogProbs(mat.NewVecDense(1,
		[]float64{0.5})); err == nil {
		t.Error("BernoulliFromLogProbs should reject positive log " +
			"probabilities")
	}

	// p == 0 is a documented edge case, not an error
	bernoulli, err := BernoulliFromProbs(mat.NewVecDense(1, []float64{0}))
	if err != nil {
		t.Fatalf("BernoulliFromProbs(0): %v", err)
	}
	if !math.IsInf(bernoulli.Logits().AtVec(0), -1) {
		t.Errorf("p = 0 should yield -Inf logits, got %v",
			bernoulli.Logits().AtVec(0))
	}
}

func TestBernoulliLogProbBatchMismatch(t *testing.T) {
	bernoulli, err := NewBernoulli(mat.NewVecDense(2, []float64{0, 0}))
	if err != nil {
		t.Fatalf("NewBernoulli: %v", err)
	}
	if _, err := bernoulli.LogProb(mat.NewVecDense(3, nil)); err == nil {
		t.Error("LogProb should reject mismatched value lengths")
	}
}

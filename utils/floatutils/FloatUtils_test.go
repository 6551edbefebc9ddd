package floatutils

import (
	"math"
	"testing"
)

func TestSoftplusStable(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, math.Log(2)},
		{1, math.Log1p(math.E)},
		{-1000, 0},
		{1000, 1000},
	}

	for _, test := range tests {
		got := Softplus(test.x)
		if math.Abs(got-test.want) > 1e-10 {
			t.Errorf("Softplus(%v): got %v, want %v", test.x, got, test.want)
		}
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Errorf("Softplus(%v) is not finite: %v", test.x, got)
		}
	}
}

func TestSigmoidLogSigmoid(t *testing.T) {
	for _, x := range []float64{-700, -10, -1, 0, 1, 10, 700} {
		s := Sigmoid(x)
		if s < 0 || s > 1 {
			t.Errorf("Sigmoid(%v) = %v out of [0, 1]", x, s)
		}

		// LogSigmoid must agree with log(sigmoid) where the latter is
		// representable
		if s > 0 {
			if math.Abs(LogSigmoid(x)-math.Log(s)) > 1e-9 {
				t.Errorf("LogSigmoid(%v): got %v, want %v", x,
					LogSigmoid(x), math.Log(s))
			}
		}
	}

	if Sigmoid(0) != 0.5 {
		t.Errorf("Sigmoid(0): got %v, want 0.5", Sigmoid(0))
	}
	if !math.IsInf(LogSigmoid(math.Inf(-1)), -1) {
		t.Error("LogSigmoid(-Inf) should be -Inf")
	}
}

func TestLogSumExp(t *testing.T) {
	got := LogSumExp([]float64{0, 0})
	want := math.Log(2)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("LogSumExp([0 0]): got %v, want %v", got, want)
	}

	// Must not overflow for large inputs
	got = LogSumExp([]float64{1000, 1000})
	want = 1000 + math.Log(2)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("LogSumExp([1000 1000]): got %v, want %v", got, want)
	}

	if !math.IsInf(LogSumExp([]float64{math.Inf(-1)}), -1) {
		t.Error("LogSumExp of all -Inf should be -Inf")
	}
}

func TestClip(t *testing.T) {
	if Clip(5, 0, 1) != 1 || Clip(-5, 0, 1) != 0 || Clip(0.5, 0, 1) != 0.5 {
		t.Error("Clip does not respect its bounds")
	}
}

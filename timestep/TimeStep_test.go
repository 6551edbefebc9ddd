package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestKindsMasks(t *testing.T) {
	kinds := Kinds{First, Transition, Last, Transition}

	first := kinds.IsFirst()
	transition := kinds.IsTransition()
	last := kinds.IsLast()

	expectedFirst := []bool{true, false, false, false}
	expectedTransition := []bool{false, true, false, true}
	expectedLast := []bool{false, false, true, false}

	for i := range kinds {
		if first[i] != expectedFirst[i] {
			t.Errorf("IsFirst()[%d]: got %v, want %v", i, first[i],
				expectedFirst[i])
		}
		if transition[i] != expectedTransition[i] {
			t.Errorf("IsTransition()[%d]: got %v, want %v", i, transition[i],
				expectedTransition[i])
		}
		if last[i] != expectedLast[i] {
			t.Errorf("IsLast()[%d]: got %v, want %v", i, last[i],
				expectedLast[i])
		}
	}

	if kinds.Count(Transition) != 2 {
		t.Errorf("Count(Transition): got %d, want 2",
			kinds.Count(Transition))
	}
	if kinds.All(First) {
		t.Error("All(First) should be false for mixed kinds")
	}
	if !Uniform(Last, 3).All(Last) {
		t.Error("All(Last) should be true for Uniform(Last, 3)")
	}
}

func TestEnvStepBatchAgreement(t *testing.T) {
	obs := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	reward := mat.NewVecDense(2, []float64{0, 1})

	step, err := New(Kinds{First, Transition}, obs, reward)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if step.BatchSize() != 2 || step.ObsDims() != 3 {
		t.Errorf("got batch %d, obs dims %d; want 2, 3", step.BatchSize(),
			step.ObsDims())
	}

	_, err = New(Kinds{First}, obs, reward)
	if err == nil {
		t.Error("New should reject mismatched kinds and observation rows")
	}

	_, err = New(Kinds{First, Last}, obs, mat.NewVecDense(3, nil))
	if err == nil {
		t.Error("New should reject mismatched reward and observation rows")
	}
}

func TestEnvStepImmutable(t *testing.T) {
	obs := mat.NewDense(1, 2, []float64{1, 2})
	reward := mat.NewVecDense(1, []float64{0.5})
	step, err := New(Kinds{First}, obs, reward)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Mutating the constructor arguments must not change the step
	obs.Set(0, 0, -100)
	reward.SetVec(0, -100)

	if step.Observation().At(0, 0) != 1 {
		t.Error("EnvStep shares storage with its constructor arguments")
	}
	if step.Reward().AtVec(0) != 0.5 {
		t.Error("EnvStep shares reward storage with constructor arguments")
	}

	next, err := step.WithReward(mat.NewVecDense(1, []float64{2}))
	if err != nil {
		t.Fatalf("WithReward: %v", err)
	}
	if step.Reward().AtVec(0) != 0.5 {
		t.Error("WithReward modified the receiver")
	}
	if next.Reward().AtVec(0) != 2 {
		t.Error("WithReward did not set the new reward")
	}
	if next.Observation().At(0, 1) != 2 {
		t.Error("WithReward did not carry the observation over")
	}
}

func TestEnvStepStackUnstack(t *testing.T) {
	steps := make([]EnvStep, 3)
	for i := range steps {
		obs := mat.NewDense(2, 2, []float64{
			float64(i), float64(i) + 0.1,
			float64(i) + 0.2, float64(i) + 0.3,
		})
		reward := mat.NewVecDense(2, []float64{float64(i), -float64(i)})

		var err error
		steps[i], err = New(Kinds{First, Kind(i % 3)}, obs, reward)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
	}

	stacked, err := Stack(steps)
	if err != nil {
		t.Fatalf("Stack: %v", err)
	}
	if stacked.BatchSize() != 6 {
		t.Fatalf("stacked batch size: got %d, want 6", stacked.BatchSize())
	}

	unstacked, err := stacked.Unstack(len(steps))
	if err != nil {
		t.Fatalf("Unstack: %v", err)
	}

	for i, step := range unstacked {
		want := steps[i]
		if !mat.EqualApprox(step.Observation(), want.Observation(), 0) {
			t.Errorf("step %d: observation round trip failed", i)
		}
		if !mat.EqualApprox(step.Reward(), want.Reward(), 0) {
			t.Errorf("step %d: reward round trip failed", i)
		}
		for j, kind := range step.Kinds() {
			if kind != want.Kinds()[j] {
				t.Errorf("step %d: kind %d round trip failed", i, j)
			}
		}
	}
}

func TestEnvStepStackErrors(t *testing.T) {
	if _, err := Stack(nil); err == nil {
		t.Error("Stack of no steps should fail")
	}

	a, _ := New(Kinds{First}, mat.NewDense(1, 2, nil), mat.NewVecDense(1, nil))
	b, _ := New(Kinds{First}, mat.NewDense(1, 3, nil), mat.NewVecDense(1, nil))
	if _, err := Stack([]EnvStep{a, b}); err == nil {
		t.Error("Stack of incompatible observation widths should fail")
	}

	if _, err := a.Unstack(2); err == nil {
		t.Error("Unstack with indivisible batch size should fail")
	}
}

package envelope

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, 3, 3, 3}); math.Abs(got-3) > 1e-12 {
		t.Errorf("RMS of constant 3 = %g, want 3", got)
	}
	if got := RMS([]float64{1, -1, 1, -1}); math.Abs(got-1) > 1e-12 {
		t.Errorf("RMS of alternating unit = %g, want 1", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS of empty window = %g, want 0", got)
	}
}

func TestEstimator_SeedsBaselineOnFirstTick(t *testing.T) {
	e := NewEstimator(2.0, 0.01)

	window := []float64{5, 5, 5, 5}
	env, threshold := e.Tick(window)

	if math.Abs(env-5) > 1e-12 {
		t.Errorf("env = %g, want 5", env)
	}
	// First tick seeds baseline = env, so threshold = 2 * 5
	if math.Abs(threshold-10) > 1e-12 {
		t.Errorf("threshold = %g, want 10", threshold)
	}
}

func TestEstimator_ThresholdLagsCurrentTick(t *testing.T) {
	e := NewEstimator(2.0, 0.5)

	e.Tick([]float64{1, 1, 1, 1}) // baseline seeded at 1

	// A sudden jump must be classified against the pre-jump threshold
	_, threshold := e.Tick([]float64{100, 100, 100, 100})
	if math.Abs(threshold-2.0) > 1e-9 {
		t.Errorf("threshold = %g, want 2.0 (from history predating the jump)", threshold)
	}

	// But the jump does move the baseline for the next tick
	if e.Baseline() <= 1.0 {
		t.Errorf("baseline = %g, want > 1 after high-amplitude tick", e.Baseline())
	}
}

func TestEstimator_ConstantInputNeverExceedsThreshold(t *testing.T) {
	e := NewEstimator(2.0, 0.01)

	for i := 0; i < 500; i++ {
		env, threshold := e.Tick([]float64{4, 4, 4, 4})
		if env > threshold {
			t.Fatalf("tick %d: env %g exceeded threshold %g on constant input", i, env, threshold)
		}
	}
}

func TestEstimator_PartialWindow(t *testing.T) {
	e := NewEstimator(2.0, 0.01)

	// Session start with a single sample available
	env, _ := e.Tick([]float64{2})
	if math.Abs(env-2) > 1e-12 {
		t.Errorf("env over partial window = %g, want 2", env)
	}
}

func TestEstimator_Reset(t *testing.T) {
	e := NewEstimator(2.0, 0.01)
	e.Tick([]float64{7, 7})
	e.Tick([]float64{7, 7})

	e.Reset()

	if e.Baseline() != 0 {
		t.Errorf("baseline after reset = %g, want 0", e.Baseline())
	}
	if e.History().Len() != 0 {
		t.Errorf("history length after reset = %d, want 0", e.History().Len())
	}

	// Reseeds on the next tick
	_, threshold := e.Tick([]float64{3, 3})
	if math.Abs(threshold-6) > 1e-12 {
		t.Errorf("threshold after reseed = %g, want 6", threshold)
	}
}

func TestEstimator_SetMultiplier(t *testing.T) {
	e := NewEstimator(2.0, 0.01)
	e.Tick([]float64{1, 1})

	e.SetMultiplier(4.0)
	if got := e.Threshold(); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("threshold after SetMultiplier(4) = %g, want 4", got)
	}

	// Sub-unity multipliers are ignored
	e.SetMultiplier(0.5)
	if got := e.Threshold(); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("threshold after SetMultiplier(0.5) = %g, want unchanged 4", got)
	}
}

func TestRing_OverwritesOldest(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Push(float64(i))
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if r.Last() != 5 {
		t.Errorf("Last() = %g, want 5", r.Last())
	}

	snap := r.Snapshot()
	want := []float64{3, 4, 5}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %g, want %g", i, snap[i], want[i])
		}
	}
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := NewRing(10)
	r.Push(1)
	r.Push(2)

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0] != 1 || snap[1] != 2 {
		t.Errorf("Snapshot() = %v, want [1 2]", snap)
	}
}

package filter

import (
	"math"
	"testing"
)

func TestSuppressOutliers_ReplacesSpike(t *testing.T) {
	block := make([]float64, 50)
	for i := range block {
		block[i] = math.Sin(float64(i) / 3.0)
	}
	block[25] = 1000.0

	suppressOutliers(block, 3.0)

	// The spike should be rebuilt from its neighbors
	want := (block[24] + block[26]) / 2.0
	if math.Abs(block[25]-want) > 0.01 {
		t.Errorf("block[25] = %g, want interpolated ~%g", block[25], want)
	}
}

func TestSuppressOutliers_HandlesNaN(t *testing.T) {
	block := []float64{1, 1, math.NaN(), 1, 1, math.Inf(1), 1, 1}

	suppressOutliers(block, 3.0)

	for i, v := range block {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("block[%d] = %v, non-finite sample survived", i, v)
		}
	}
}

func TestSuppressOutliers_CleanBlockUntouched(t *testing.T) {
	block := []float64{1.0, 1.1, 0.9, 1.05, 0.95, 1.0}
	orig := make([]float64, len(block))
	copy(orig, block)

	suppressOutliers(block, 3.0)

	for i := range block {
		if block[i] != orig[i] {
			t.Errorf("clean sample %d modified: %g -> %g", i, orig[i], block[i])
		}
	}
}

func TestMedianFilter_RemovesSingleSampleArtifact(t *testing.T) {
	block := []float64{1, 1, 1, 9, 1, 1, 1}
	out := medianFilter(block, 3)

	if out[3] != 1 {
		t.Errorf("out[3] = %g, want 1 (spike removed)", out[3])
	}
}

func TestMedianFilter_PreservesEdges(t *testing.T) {
	// A step edge must stay a step, not get smeared
	block := []float64{0, 0, 0, 0, 5, 5, 5, 5}
	out := medianFilter(block, 3)

	if out[3] != 0 || out[4] != 5 {
		t.Errorf("step edge smeared: out[3]=%g out[4]=%g, want 0 and 5", out[3], out[4])
	}
	if out[0] != 0 || out[len(out)-1] != 5 {
		t.Errorf("block edges changed: first=%g last=%g", out[0], out[len(out)-1])
	}
}

func TestMovingAverage_ConstantInput(t *testing.T) {
	block := []float64{2, 2, 2, 2, 2, 2}
	out := movingAverage(block, 3)

	for i, v := range out {
		if math.Abs(v-2) > 1e-12 {
			t.Errorf("out[%d] = %g, want 2", i, v)
		}
	}
}

func TestSavgolWeights_SumToOne(t *testing.T) {
	weights, err := savgolWeights(11, 3)
	if err != nil {
		t.Fatalf("savgolWeights() error = %v", err)
	}

	if len(weights) != 11 {
		t.Fatalf("got %d weights, want 11", len(weights))
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum = %g, want 1", sum)
	}
}

func TestSavgolFilter_PreservesPolynomial(t *testing.T) {
	// A cubic is reproduced exactly by an order-3 fit
	weights, err := savgolWeights(11, 3)
	if err != nil {
		t.Fatalf("savgolWeights() error = %v", err)
	}

	block := make([]float64, 40)
	for i := range block {
		x := float64(i) / 10.0
		block[i] = 2 + x + 0.5*x*x - 0.1*x*x*x
	}

	out := savgolFilter(block, weights)

	for i := 5; i < len(block)-5; i++ {
		if math.Abs(out[i]-block[i]) > 1e-9 {
			t.Errorf("out[%d] = %g, want %g (cubic preserved)", i, out[i], block[i])
		}
	}
}

func TestSavgolFilter_ShortBlockPassthrough(t *testing.T) {
	weights, err := savgolWeights(11, 3)
	if err != nil {
		t.Fatalf("savgolWeights() error = %v", err)
	}

	block := []float64{1, 2, 3}
	out := savgolFilter(block, weights)

	for i := range block {
		if out[i] != block[i] {
			t.Errorf("short block modified at %d: %g -> %g", i, block[i], out[i])
		}
	}
}

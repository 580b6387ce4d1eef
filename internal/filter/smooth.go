package filter

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// medianFilter returns the block with each sample replaced by the median of
// the width-sized neighborhood around it. The window shrinks at the block
// edges, which preserves edge samples instead of dragging them toward a
// zero pad.
func medianFilter(block []float64, width int) []float64 {
	if width <= 1 || len(block) < width {
		return block
	}

	half := width / 2
	out := make([]float64, len(block))
	window := make([]float64, 0, width)

	for i := range block {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(block) {
			hi = len(block)
		}

		window = append(window[:0], block[lo:hi]...)
		sort.Float64s(window)
		out[i] = window[len(window)/2]
	}
	return out
}

// movingAverage returns the block convolved with a normalized box kernel,
// same-length output. Blocks shorter than the window pass through unchanged.
func movingAverage(block []float64, window int) []float64 {
	if window <= 1 || len(block) < window {
		return block
	}

	half := window / 2
	out := make([]float64, len(block))
	for i := range block {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + (window - half)
		if hi > len(block) {
			hi = len(block)
		}

		var sum float64
		for _, v := range block[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// savgolWeights computes the central Savitzky-Golay convolution weights for
// the given odd window and polynomial order by least squares: the smoothed
// center value is the constant term of the polynomial fit over the window.
func savgolWeights(window, order int) ([]float64, error) {
	half := window / 2

	// Vandermonde matrix over offsets -half..half
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}

	// Projection P = (A^T A)^-1 A^T; row 0 of P gives the weights for the
	// fitted polynomial's constant term, which is the value at offset 0.
	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("singular design matrix for window %d order %d: %w", window, order, err)
	}

	var proj mat.Dense
	proj.Mul(&inv, a.T())

	return mat.Row(nil, 0, &proj), nil
}

// savgolFilter convolves the block with precomputed Savitzky-Golay weights.
// Edge samples without a full window are left as-is; blocks shorter than the
// window pass through unchanged rather than failing.
func savgolFilter(block []float64, weights []float64) []float64 {
	window := len(weights)
	if window == 0 || len(block) < window {
		return block
	}

	half := window / 2
	out := make([]float64, len(block))
	copy(out, block)

	for i := half; i < len(block)-half; i++ {
		var sum float64
		for j, w := range weights {
			sum += w * block[i-half+j]
		}
		out[i] = sum
	}
	return out
}

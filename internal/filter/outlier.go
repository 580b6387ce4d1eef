package filter

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// suppressOutliers replaces samples further than sigma standard deviations
// from the block mean with values interpolated from their nearest inliers.
// NaN and Inf samples are always treated as outliers. The block is modified
// in place.
func suppressOutliers(block []float64, sigma float64) {
	if len(block) < 3 {
		return
	}

	// Statistics over finite samples only, so a single NaN cannot poison
	// the mean and mask every other outlier.
	finite := make([]float64, 0, len(block))
	for _, v := range block {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) < 2 {
		for i := range block {
			block[i] = 0
		}
		return
	}

	mean := stat.Mean(finite, nil)
	std := stat.StdDev(finite, nil)

	inlier := func(v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if std == 0 {
			return true
		}
		return math.Abs(v-mean) <= sigma*std
	}

	// Collect inlier positions, then rebuild flagged samples by linear
	// interpolation between their neighbors. Flagged samples before the
	// first inlier (or after the last) take that inlier's value.
	var good []int
	for i, v := range block {
		if inlier(v) {
			good = append(good, i)
		}
	}
	if len(good) == len(block) {
		return
	}
	if len(good) == 0 {
		for i := range block {
			block[i] = mean
		}
		return
	}

	for i := range block {
		if inlier(block[i]) {
			continue
		}
		block[i] = interpolateAt(block, good, i)
	}
}

// interpolateAt returns the linear interpolation of position i from the
// surrounding inlier indices.
func interpolateAt(block []float64, good []int, i int) float64 {
	// Index of the first inlier at or after i
	n := sort.SearchInts(good, i)

	if n == 0 {
		return block[good[0]]
	}
	if n == len(good) {
		return block[good[len(good)-1]]
	}

	lo, hi := good[n-1], good[n]
	frac := float64(i-lo) / float64(hi-lo)
	return block[lo] + frac*(block[hi]-block[lo])
}

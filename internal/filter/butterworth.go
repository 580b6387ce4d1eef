package filter

import "math"

// biquad holds the coefficients of one second-order IIR section. Sections are
// cascaded to build higher-order filters. State lives on the stack of the
// applying function, never in the struct, so a Chain is safe to reuse across
// blocks and goroutines.
type biquad struct {
	a0, a1, a2 float64 // numerator
	b1, b2     float64 // denominator (b0 normalized to 1)
}

// butterworthLowpass designs an order/2-section Butterworth low-pass cascade
// via bilinear transform of the analog prototype.
func butterworthLowpass(order int, sampleRate, cutoffHz float64) []biquad {
	w, k := prewarp(sampleRate, cutoffHz)
	sections := make([]biquad, order/2)

	for i := range sections {
		pre, pim := sectionPole(order, i, w)
		alpha := k*k - 2*k*pre + pre*pre + pim*pim

		sections[i] = biquad{
			a0: w * w / alpha,
			a1: 2 * w * w / alpha,
			a2: w * w / alpha,
			b1: (-2*k*k + 2*(pre*pre+pim*pim)) / alpha,
			b2: (k*k + 2*k*pre + pre*pre + pim*pim) / alpha,
		}
	}
	return sections
}

// butterworthHighpass designs the high-pass counterpart: same pole placement,
// zeros moved from z=-1 to z=+1.
func butterworthHighpass(order int, sampleRate, cutoffHz float64) []biquad {
	w, k := prewarp(sampleRate, cutoffHz)
	sections := make([]biquad, order/2)

	for i := range sections {
		pre, pim := sectionPole(order, i, w)
		alpha := k*k - 2*k*pre + pre*pre + pim*pim

		sections[i] = biquad{
			a0: k * k / alpha,
			a1: -2 * k * k / alpha,
			a2: k * k / alpha,
			b1: (-2*k*k + 2*(pre*pre+pim*pim)) / alpha,
			b2: (k*k + 2*k*pre + pre*pre + pim*pim) / alpha,
		}
	}
	return sections
}

// bandstop designs a two-section notch cascade attenuating [lowHz, highHz].
// Each section is a constrained second-order notch with zeros on the unit
// circle at the center frequency.
func bandstop(sampleRate, lowHz, highHz float64) []biquad {
	center := (lowHz + highHz) / 2.0
	bandwidth := highHz - lowHz

	w0 := 2 * math.Pi * center / sampleRate
	q := center / bandwidth
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)

	norm := 1 + alpha
	section := biquad{
		a0: 1 / norm,
		a1: -2 * cosW0 / norm,
		a2: 1 / norm,
		b1: -2 * cosW0 / norm,
		b2: (1 - alpha) / norm,
	}

	// Cascading two identical sections deepens the stopband without widening
	// the attenuated region around the mains frequency.
	return []biquad{section, section}
}

// prewarp maps the requested cutoff onto the bilinear-transform frequency
// axis and clamps it away from Nyquist, where tan() blows up.
func prewarp(sampleRate, cutoffHz float64) (w, k float64) {
	if cutoffHz >= sampleRate*0.499 {
		cutoffHz = sampleRate * 0.499
	}
	w = 2.0 * sampleRate * math.Tan(math.Pi*cutoffHz/sampleRate)
	k = 2.0 * sampleRate
	return w, k
}

// sectionPole returns the analog prototype pole for cascade section i,
// ordered low-Q first for numerical stability.
func sectionPole(order, i int, w float64) (re, im float64) {
	poleIdx := (order/2 - 1) - i
	theta := math.Pi * (2.0*float64(poleIdx) + 1.0) / (2.0 * float64(order))
	return -w * math.Sin(theta), w * math.Cos(theta)
}

// apply runs the cascade over the block in one direction.
func apply(sections []biquad, block []float64) []float64 {
	out := make([]float64, len(block))
	copy(out, block)

	for _, s := range sections {
		var z1, z2 float64
		for i, in := range out {
			v := in*s.a0 + z1
			z1 = in*s.a1 - v*s.b1 + z2
			z2 = in*s.a2 - v*s.b2
			out[i] = v
		}
	}
	return out
}

// filtfilt applies the cascade forward, then backward over the reversed
// block, cancelling the phase shift. Zero phase keeps the envelope aligned
// in time with the muscle activity that produced it.
func filtfilt(sections []biquad, block []float64) []float64 {
	out := apply(sections, block)
	reverse(out)
	out = apply(sections, out)
	reverse(out)
	return out
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

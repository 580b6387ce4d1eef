// Package envelope derives an RMS amplitude envelope and an adaptive
// detection threshold from the cleaned EMG signal.
package envelope

import "math"

// DefaultHistory is the envelope ring capacity: at one tick per 100 ms this
// holds roughly 40 seconds of envelope history for inspection surfaces.
const DefaultHistory = 400

// Estimator converts cleaned signal windows into envelope samples and
// maintains the trailing baseline that drives the adaptive threshold.
//
// The threshold for a tick is computed from envelope history that strictly
// predates that tick: Tick snapshots the threshold before folding the new
// envelope value into the baseline, so the classifier never sees a threshold
// influenced by the value being classified.
type Estimator struct {
	multiplier float64
	alpha      float64

	history  *Ring
	baseline float64
	seeded   bool
}

// NewEstimator creates an Estimator.
// multiplier scales the baseline into the detection threshold; alpha is the
// exponential moving average learning rate for the baseline.
func NewEstimator(multiplier, alpha float64) *Estimator {
	return &Estimator{
		multiplier: multiplier,
		alpha:      alpha,
		history:    NewRing(DefaultHistory),
	}
}

// RMS returns the root-mean-square amplitude of the window. A partially
// filled window at session start is averaged over whatever is available.
func RMS(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, v := range window {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(window)))
}

// Tick consumes one cleaned signal window and returns the new envelope
// sample together with the threshold to classify it against.
//
// The first tick seeds the baseline with the observed envelope, so a session
// that starts under constant load does not immediately trigger: the seeded
// threshold is multiplier times the resting level.
func (e *Estimator) Tick(window []float64) (env, threshold float64) {
	env = RMS(window)

	if !e.seeded {
		e.baseline = env
		e.seeded = true
	}

	// Threshold from history preceding this tick only.
	threshold = e.Threshold()

	e.history.Push(env)
	e.baseline = e.alpha*env + (1-e.alpha)*e.baseline

	return env, threshold
}

// Threshold returns the current adaptive threshold (baseline x multiplier),
// clamped at zero.
func (e *Estimator) Threshold() float64 {
	t := e.baseline * e.multiplier
	if t < 0 {
		return 0
	}
	return t
}

// Baseline returns the current baseline estimate.
func (e *Estimator) Baseline() float64 {
	return e.baseline
}

// SetMultiplier changes the threshold multiplier for subsequent ticks.
// Values below 1 are ignored: a threshold under the baseline would keep the
// detector armed on resting signal.
func (e *Estimator) SetMultiplier(multiplier float64) {
	if multiplier < 1 {
		return
	}
	e.multiplier = multiplier
}

// History returns the envelope ring for inspection surfaces.
func (e *Estimator) History() *Ring {
	return e.history
}

// Reset clears all session state: history, baseline, and the seed flag.
// Called when the stream disconnects so a reconnect re-learns the baseline.
func (e *Estimator) Reset() {
	e.history.Reset()
	e.baseline = 0
	e.seeded = false
}

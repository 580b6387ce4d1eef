// Package filter implements the EMG signal conditioning chain: outlier
// suppression, median despiking, zero-phase band limiting, mains-frequency
// notch rejection, and smoothing. Given the same configuration, every stage
// is deterministic and side-effect-free, so a block can be reprocessed and
// stages can be toggled independently under test.
package filter

import "fmt"

// Config holds the filter chain parameters. Coefficients are derived from it
// once, when the Chain is built; the Config itself is never consulted again
// on the processing path.
type Config struct {
	SampleRate float64

	OutlierEnabled bool
	OutlierSigma   float64

	MedianEnabled bool
	MedianWidth   int

	BandEnabled bool
	HighPassHz  float64
	LowPassHz   float64
	Order       int

	Notch50Enabled bool
	Notch50Band    [2]float64
	Notch60Enabled bool
	Notch60Band    [2]float64

	SmoothingEnabled bool
	MovingAvgWindow  int
	SavGolWindow     int
	SavGolOrder      int
}

// DefaultConfig returns the stock surface-EMG conditioning parameters for a
// 1 kHz stream: 20-250 Hz band, 50/60 Hz mains notches, 3-sigma outlier
// replacement, width-3 despike, and an 11-point Savitzky-Golay smoother.
func DefaultConfig() Config {
	return Config{
		SampleRate:       1000,
		OutlierEnabled:   true,
		OutlierSigma:     3.0,
		MedianEnabled:    true,
		MedianWidth:      3,
		BandEnabled:      true,
		HighPassHz:       20.0,
		LowPassHz:        250.0,
		Order:            4,
		Notch50Enabled:   true,
		Notch50Band:      [2]float64{49.0, 51.0},
		Notch60Enabled:   true,
		Notch60Band:      [2]float64{59.0, 61.0},
		SmoothingEnabled: true,
		MovingAvgWindow:  3,
		SavGolWindow:     11,
		SavGolOrder:      3,
	}
}

// Chain applies the fixed-order conditioning stages to raw sample blocks.
// The stage order is not reorderable: band limiting assumes spikes are gone,
// and smoothing assumes mains interference is gone.
type Chain struct {
	config Config

	highPass []biquad
	lowPass  []biquad
	notch50  []biquad
	notch60  []biquad

	savgol []float64 // precomputed Savitzky-Golay convolution weights
}

// NewChain builds a Chain for the given configuration, computing all filter
// coefficients up front.
func NewChain(config Config) (*Chain, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", config.SampleRate)
	}
	if config.Order <= 0 || config.Order%2 != 0 {
		return nil, fmt.Errorf("filter order must be a positive even number, got %d", config.Order)
	}
	if config.MedianWidth%2 == 0 {
		return nil, fmt.Errorf("median width must be odd, got %d", config.MedianWidth)
	}
	if config.SavGolWindow%2 == 0 {
		return nil, fmt.Errorf("savitzky-golay window must be odd, got %d", config.SavGolWindow)
	}
	if config.SavGolOrder >= config.SavGolWindow {
		return nil, fmt.Errorf("savitzky-golay order %d must be below window %d", config.SavGolOrder, config.SavGolWindow)
	}

	c := &Chain{config: config}

	if config.BandEnabled {
		c.highPass = butterworthHighpass(config.Order, config.SampleRate, config.HighPassHz)
		c.lowPass = butterworthLowpass(config.Order, config.SampleRate, config.LowPassHz)
	}
	if config.Notch50Enabled {
		c.notch50 = bandstop(config.SampleRate, config.Notch50Band[0], config.Notch50Band[1])
	}
	if config.Notch60Enabled {
		c.notch60 = bandstop(config.SampleRate, config.Notch60Band[0], config.Notch60Band[1])
	}
	if config.SmoothingEnabled {
		weights, err := savgolWeights(config.SavGolWindow, config.SavGolOrder)
		if err != nil {
			return nil, fmt.Errorf("savitzky-golay design: %w", err)
		}
		c.savgol = weights
	}

	return c, nil
}

// Config returns the configuration the chain was built with.
func (c *Chain) Config() Config {
	return c.config
}

// Process runs a raw block through every enabled stage and returns a cleaned
// block of the same length. The input slice is not modified.
//
// Stage order:
//  1. Outlier suppression (statistical replacement)
//  2. Median despiking (single-sample artifacts)
//  3. Band limiting (zero-phase high-pass then low-pass)
//  4. Mains notch rejection (50 Hz and 60 Hz bands)
//  5. Smoothing (moving average then Savitzky-Golay)
func (c *Chain) Process(block []float64) []float64 {
	out := make([]float64, len(block))
	copy(out, block)
	if len(out) == 0 {
		return out
	}

	if c.config.OutlierEnabled {
		suppressOutliers(out, c.config.OutlierSigma)
	}
	if c.config.MedianEnabled {
		out = medianFilter(out, c.config.MedianWidth)
	}
	if c.config.BandEnabled {
		out = filtfilt(c.highPass, out)
		out = filtfilt(c.lowPass, out)
	}
	if c.config.Notch50Enabled {
		out = filtfilt(c.notch50, out)
	}
	if c.config.Notch60Enabled {
		out = filtfilt(c.notch60, out)
	}
	if c.config.SmoothingEnabled {
		out = movingAverage(out, c.config.MovingAvgWindow)
		// Degrades gracefully: blocks shorter than the window pass through.
		out = savgolFilter(out, c.savgol)
	}

	return out
}

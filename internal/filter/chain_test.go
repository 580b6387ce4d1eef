package filter

import (
	"math"
	"testing"
)

func TestChain_BlockPreserving(t *testing.T) {
	chain, err := NewChain(DefaultConfig())
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	block := sine(200, 1000, 100, 1.0)
	out := chain.Process(block)

	if len(out) != len(block) {
		t.Errorf("output length = %d, want %d", len(out), len(block))
	}
}

func TestChain_Deterministic(t *testing.T) {
	chain, err := NewChain(DefaultConfig())
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	block := sine(200, 1000, 100, 1.0)
	block[17] = 50.0 // spike
	first := chain.Process(block)
	second := chain.Process(block)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("output differs at %d between identical runs: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestChain_ShortBlockDegradesGracefully(t *testing.T) {
	chain, err := NewChain(DefaultConfig())
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	// Shorter than the Savitzky-Golay window (11); must not panic or grow.
	block := sine(8, 1000, 100, 1.0)
	out := chain.Process(block)

	if len(out) != 8 {
		t.Errorf("output length = %d, want 8", len(out))
	}

	// Empty block is a no-op
	if got := chain.Process(nil); len(got) != 0 {
		t.Errorf("Process(nil) length = %d, want 0", len(got))
	}
}

func TestChain_StagesToggleable(t *testing.T) {
	config := DefaultConfig()
	config.OutlierEnabled = false
	config.MedianEnabled = false
	config.BandEnabled = false
	config.Notch50Enabled = false
	config.Notch60Enabled = false
	config.SmoothingEnabled = false

	chain, err := NewChain(config)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	block := []float64{1, 2, 3, 4, 5}
	out := chain.Process(block)

	for i := range block {
		if out[i] != block[i] {
			t.Fatalf("all stages disabled but sample %d changed: %g -> %g", i, block[i], out[i])
		}
	}
}

func TestChain_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd order", func(c *Config) { c.Order = 3 }},
		{"even median width", func(c *Config) { c.MedianWidth = 4 }},
		{"even savgol window", func(c *Config) { c.SavGolWindow = 10 }},
		{"savgol order too high", func(c *Config) { c.SavGolOrder = 11 }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
	}

	for _, tc := range cases {
		config := DefaultConfig()
		tc.mutate(&config)
		if _, err := NewChain(config); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestChain_RemovesSpikeAndDC(t *testing.T) {
	chain, err := NewChain(DefaultConfig())
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	// 100 Hz carrier (inside the pass band) with a DC offset and one spike
	block := sine(400, 1000, 100, 1.0)
	for i := range block {
		block[i] += 10.0
	}
	block[200] = 500.0

	out := chain.Process(block)

	// DC offset removed by the high-pass stage: interior mean near zero
	var mean float64
	for _, v := range out[50:350] {
		mean += v
	}
	mean /= 300
	if math.Abs(mean) > 0.5 {
		t.Errorf("interior mean = %g, want near 0 after DC removal", mean)
	}

	// Spike suppressed: no interior sample anywhere near its amplitude
	for i, v := range out[50:350] {
		if math.Abs(v) > 50 {
			t.Errorf("sample %d = %g, spike not suppressed", i+50, v)
		}
	}
}

// sine returns n samples of a sine wave at freq Hz sampled at rate Hz.
func sine(n int, rate, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

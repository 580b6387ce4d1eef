package stream

import (
	"math"
	"math/rand"
)

// SyntheticConfig shapes the generated signal.
type SyntheticConfig struct {
	// SampleRate in Hz.
	SampleRate int
	// NoiseAmplitude is the resting-muscle noise floor.
	NoiseAmplitude float64
	// BurstAmplitude is the noise amplitude during a simulated contraction.
	BurstAmplitude float64
	// HumAmplitude is the 50 Hz mains interference mixed into everything.
	HumAmplitude float64
	// BurstPeriodSec is seconds between contraction onsets.
	BurstPeriodSec float64
	// BurstDurationSec is how long each contraction lasts.
	BurstDurationSec float64
	// Seed makes the generator deterministic.
	Seed int64
}

// DefaultSyntheticConfig returns a signal that produces one clean
// close/open gesture every four seconds: 0.4 s contractions over a quiet
// noise floor, with mains hum for the notch stages to remove.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		SampleRate:       1000,
		NoiseAmplitude:   0.05,
		BurstAmplitude:   1.0,
		HumAmplitude:     0.2,
		BurstPeriodSec:   4.0,
		BurstDurationSec: 0.4,
		Seed:             1,
	}
}

// Synthetic generates EMG-like samples: Gaussian noise whose amplitude
// jumps during periodic contraction bursts, plus constant mains hum.
type Synthetic struct {
	config SyntheticConfig
	rng    *rand.Rand
	n      int64 // samples generated
}

// NewSynthetic creates a Synthetic source.
func NewSynthetic(config SyntheticConfig) *Synthetic {
	return &Synthetic{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Open is a no-op; the generator needs no hardware.
func (s *Synthetic) Open() error { return nil }

// Read fills block with the next samples. Never returns an error: the
// generator is infinite.
func (s *Synthetic) Read(block []float64) error {
	rate := float64(s.config.SampleRate)
	for i := range block {
		t := float64(s.n) / rate

		amplitude := s.config.NoiseAmplitude
		if s.inBurst(t) {
			amplitude = s.config.BurstAmplitude
		}

		sample := s.rng.NormFloat64() * amplitude
		sample += s.config.HumAmplitude * math.Sin(2*math.Pi*50*t)

		block[i] = sample
		s.n++
	}
	return nil
}

// burstLeadSec delays the first burst so the pipeline sees a resting
// lead-in to learn its baseline from.
const burstLeadSec = 1.0

func (s *Synthetic) inBurst(t float64) bool {
	if s.config.BurstPeriodSec <= 0 {
		return false
	}
	phase := math.Mod(t, s.config.BurstPeriodSec)
	return phase >= burstLeadSec && phase < burstLeadSec+s.config.BurstDurationSec
}

// Close is a no-op.
func (s *Synthetic) Close() error { return nil }

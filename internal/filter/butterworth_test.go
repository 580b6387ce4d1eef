package filter

import (
	"math"
	"testing"
)

// rms of a slice, used to compare pass/stop band energy.
func rms(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

func TestButterworthLowpass_AttenuatesStopband(t *testing.T) {
	sections := butterworthLowpass(4, 1000, 250)

	pass := filtfilt(sections, sine(1000, 1000, 50, 1.0))
	stop := filtfilt(sections, sine(1000, 1000, 450, 1.0))

	// Compare steady-state energy away from the block edges
	passRMS := rms(pass[200:800])
	stopRMS := rms(stop[200:800])

	if passRMS < 0.6 {
		t.Errorf("50 Hz passband RMS = %g, want > 0.6", passRMS)
	}
	if stopRMS > 0.05 {
		t.Errorf("450 Hz stopband RMS = %g, want < 0.05", stopRMS)
	}
}

func TestButterworthHighpass_RemovesDC(t *testing.T) {
	sections := butterworthHighpass(4, 1000, 20)

	block := sine(1000, 1000, 100, 1.0)
	for i := range block {
		block[i] += 5.0 // DC offset
	}
	out := filtfilt(sections, block)

	var mean float64
	for _, v := range out[200:800] {
		mean += v
	}
	mean /= 600

	if math.Abs(mean) > 0.1 {
		t.Errorf("mean after high-pass = %g, want near 0", mean)
	}
	if got := rms(out[200:800]); got < 0.6 {
		t.Errorf("100 Hz carrier RMS after high-pass = %g, want > 0.6", got)
	}
}

func TestBandstop_NotchesMains(t *testing.T) {
	sections := bandstop(1000, 49, 51)

	mains := filtfilt(sections, sine(2000, 1000, 50, 1.0))
	signal := filtfilt(sections, sine(2000, 1000, 100, 1.0))

	mainsRMS := rms(mains[500:1500])
	signalRMS := rms(signal[500:1500])

	if mainsRMS > 0.1 {
		t.Errorf("50 Hz RMS after notch = %g, want < 0.1", mainsRMS)
	}
	if signalRMS < 0.6 {
		t.Errorf("100 Hz RMS after notch = %g, want > 0.6", signalRMS)
	}
}

func TestFiltfilt_ZeroPhase(t *testing.T) {
	sections := butterworthLowpass(4, 1000, 100)

	// Gaussian pulse centered at sample 500
	block := make([]float64, 1000)
	for i := range block {
		x := float64(i-500) / 30.0
		block[i] = math.Exp(-0.5 * x * x)
	}

	out := filtfilt(sections, block)

	peak := 0
	for i, v := range out {
		if v > out[peak] {
			peak = i
		}
	}

	// Forward-backward application must not shift the pulse in time
	if peak < 497 || peak > 503 {
		t.Errorf("pulse peak moved to %d, want ~500 (zero phase)", peak)
	}
}

func TestApply_StatelessAcrossCalls(t *testing.T) {
	sections := butterworthLowpass(4, 1000, 100)
	block := sine(200, 1000, 50, 1.0)

	first := apply(sections, block)
	second := apply(sections, block)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("apply carried state between calls: sample %d differs", i)
		}
	}
}

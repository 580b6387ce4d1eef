// Package config provides configuration for the Mudra EMG gripper control system.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all tunable parameters for a control session.
// A Config is constructed once per session and passed by value into the
// components that need it; components never reach for ambient globals.
type Config struct {
	// Sampling
	SampleRate int // samples per second delivered by the EMG stream
	BlockSize  int // samples per raw block (one envelope tick per block)
	WindowSize int // trailing window in samples for the RMS envelope

	// Filter chain
	OutlierEnabled   bool
	OutlierSigma     float64 // N standard deviations before a sample is replaced
	MedianEnabled    bool
	MedianWidth      int // median despike kernel width (odd)
	BandEnabled      bool
	HighPassHz       float64 // drift/DC removal cutoff
	LowPassHz        float64 // high-frequency noise cutoff
	FilterOrder      int     // Butterworth order (even)
	Notch50Enabled   bool
	Notch50Band      [2]float64 // mains rejection band, 50 Hz regions
	Notch60Enabled   bool
	Notch60Band      [2]float64 // mains rejection band, 60 Hz regions
	SmoothingEnabled bool
	MovingAvgWindow  int // moving average width
	SavGolWindow     int // Savitzky-Golay window (odd)
	SavGolOrder      int // Savitzky-Golay polynomial order

	// Gesture detection
	ThresholdMultiplier float64 // adaptive threshold = baseline * multiplier
	BaselineAlpha       float64 // EMA learning rate for the baseline estimate
	MinGestureMs        int     // minimum close/open phase duration
	MaxGestureMs        int     // maximum close phase duration before rejection
	GestureCooldownMs   int     // dead time after a completed cycle
	CommandCooldownMs   int     // minimum spacing between emitted commands

	// Dispatcher
	QueueCapacity int // bounded command queue size
	AckTimeoutMs  int // acknowledgement wait before a send is failed
	DrainMs       int // dispatcher drain cadence

	// Actuator channel
	SerialPort string // empty for auto-detect failure -> mock
	BaudRate   int
	MockMode   bool // simulate the arm without hardware

	// Surfaces
	ListenAddr string // HTTP/WebSocket operator surface
	DBPath     string // event journal; empty disables persistence
}

// Default returns a Config with the values the system was tuned with:
// a 1 kHz stream, a 200 ms envelope window updated every 100 ms, and the
// standard surface-EMG band of 20-250 Hz.
func Default() Config {
	return Config{
		SampleRate: 1000,
		BlockSize:  100,
		WindowSize: 200,

		OutlierEnabled:   true,
		OutlierSigma:     3.0,
		MedianEnabled:    true,
		MedianWidth:      3,
		BandEnabled:      true,
		HighPassHz:       20.0,
		LowPassHz:        250.0,
		FilterOrder:      4,
		Notch50Enabled:   true,
		Notch50Band:      [2]float64{49.0, 51.0},
		Notch60Enabled:   true,
		Notch60Band:      [2]float64{59.0, 61.0},
		SmoothingEnabled: true,
		MovingAvgWindow:  3,
		SavGolWindow:     11,
		SavGolOrder:      3,

		ThresholdMultiplier: 2.0,
		BaselineAlpha:       0.01,
		MinGestureMs:        100,
		MaxGestureMs:        2000,
		GestureCooldownMs:   500,
		CommandCooldownMs:   1000,

		QueueCapacity: 16,
		AckTimeoutMs:  1000,
		DrainMs:       10,

		SerialPort: "",
		BaudRate:   9600,
		MockMode:   true,

		ListenAddr: ":8080",
		DBPath:     "",
	}
}

// Load reads a KEY=VALUE configuration file and returns the resulting Config.
// Missing keys keep their defaults; unknown keys are an error so typos do not
// silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return cfg, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return cfg, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "SAMPLE_RATE":
		return setInt(&c.SampleRate, key, value)
	case "BLOCK_SIZE":
		return setInt(&c.BlockSize, key, value)
	case "WINDOW_SIZE":
		return setInt(&c.WindowSize, key, value)

	case "OUTLIER_ENABLED":
		return setBool(&c.OutlierEnabled, key, value)
	case "OUTLIER_SIGMA":
		return setFloat(&c.OutlierSigma, key, value)
	case "MEDIAN_ENABLED":
		return setBool(&c.MedianEnabled, key, value)
	case "MEDIAN_WIDTH":
		return setInt(&c.MedianWidth, key, value)
	case "BAND_ENABLED":
		return setBool(&c.BandEnabled, key, value)
	case "HIGH_PASS_HZ":
		return setFloat(&c.HighPassHz, key, value)
	case "LOW_PASS_HZ":
		return setFloat(&c.LowPassHz, key, value)
	case "FILTER_ORDER":
		return setInt(&c.FilterOrder, key, value)
	case "NOTCH_50_ENABLED":
		return setBool(&c.Notch50Enabled, key, value)
	case "NOTCH_60_ENABLED":
		return setBool(&c.Notch60Enabled, key, value)
	case "SMOOTHING_ENABLED":
		return setBool(&c.SmoothingEnabled, key, value)
	case "MOVING_AVG_WINDOW":
		return setInt(&c.MovingAvgWindow, key, value)
	case "SAVGOL_WINDOW":
		return setInt(&c.SavGolWindow, key, value)
	case "SAVGOL_ORDER":
		return setInt(&c.SavGolOrder, key, value)

	case "THRESHOLD_MULTIPLIER":
		return setFloat(&c.ThresholdMultiplier, key, value)
	case "BASELINE_ALPHA":
		return setFloat(&c.BaselineAlpha, key, value)
	case "MIN_GESTURE_MS":
		return setInt(&c.MinGestureMs, key, value)
	case "MAX_GESTURE_MS":
		return setInt(&c.MaxGestureMs, key, value)
	case "GESTURE_COOLDOWN_MS":
		return setInt(&c.GestureCooldownMs, key, value)
	case "COMMAND_COOLDOWN_MS":
		return setInt(&c.CommandCooldownMs, key, value)

	case "QUEUE_CAPACITY":
		return setInt(&c.QueueCapacity, key, value)
	case "ACK_TIMEOUT_MS":
		return setInt(&c.AckTimeoutMs, key, value)
	case "DRAIN_MS":
		return setInt(&c.DrainMs, key, value)

	case "SERIAL_PORT":
		c.SerialPort = value
		return nil
	case "BAUD_RATE":
		return setInt(&c.BaudRate, key, value)
	case "MOCK_MODE":
		return setBool(&c.MockMode, key, value)

	case "LISTEN_ADDR":
		c.ListenAddr = value
		return nil
	case "DB_PATH":
		c.DBPath = value
		return nil

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
}

// Validate checks cross-field constraints that the per-key setters cannot see.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("BLOCK_SIZE must be positive, got %d", c.BlockSize)
	}
	if c.WindowSize < c.BlockSize {
		return fmt.Errorf("WINDOW_SIZE (%d) must be at least BLOCK_SIZE (%d)", c.WindowSize, c.BlockSize)
	}
	if c.MedianWidth%2 == 0 {
		return fmt.Errorf("MEDIAN_WIDTH must be odd, got %d", c.MedianWidth)
	}
	if c.FilterOrder%2 != 0 || c.FilterOrder <= 0 {
		return fmt.Errorf("FILTER_ORDER must be a positive even number, got %d", c.FilterOrder)
	}
	nyquist := float64(c.SampleRate) / 2.0
	if c.HighPassHz <= 0 || c.HighPassHz >= c.LowPassHz {
		return fmt.Errorf("HIGH_PASS_HZ (%g) must be positive and below LOW_PASS_HZ (%g)", c.HighPassHz, c.LowPassHz)
	}
	if c.LowPassHz >= nyquist {
		return fmt.Errorf("LOW_PASS_HZ (%g) must be below the Nyquist frequency (%g)", c.LowPassHz, nyquist)
	}
	if c.SavGolWindow%2 == 0 {
		return fmt.Errorf("SAVGOL_WINDOW must be odd, got %d", c.SavGolWindow)
	}
	if c.SavGolOrder >= c.SavGolWindow {
		return fmt.Errorf("SAVGOL_ORDER (%d) must be smaller than SAVGOL_WINDOW (%d)", c.SavGolOrder, c.SavGolWindow)
	}
	if c.ThresholdMultiplier < 1.0 {
		return fmt.Errorf("THRESHOLD_MULTIPLIER must be at least 1.0, got %g", c.ThresholdMultiplier)
	}
	if c.BaselineAlpha <= 0 || c.BaselineAlpha > 1 {
		return fmt.Errorf("BASELINE_ALPHA must be in (0, 1], got %g", c.BaselineAlpha)
	}
	if c.MinGestureMs <= 0 || c.MinGestureMs >= c.MaxGestureMs {
		return fmt.Errorf("MIN_GESTURE_MS (%d) must be positive and below MAX_GESTURE_MS (%d)", c.MinGestureMs, c.MaxGestureMs)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.QueueCapacity)
	}
	if c.AckTimeoutMs <= 0 {
		return fmt.Errorf("ACK_TIMEOUT_MS must be positive, got %d", c.AckTimeoutMs)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, key, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

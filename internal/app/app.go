// Package app wires the EMG pipeline together: stream in, filter, envelope,
// gesture detection, and command dispatch out.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/arm"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/envelope"
	"github.com/ayusman/mudra/internal/filter"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/stream"
)

// Options carries the externally constructed collaborators. Store may be nil
// to disable persistence.
type Options struct {
	Config  config.Config
	Source  stream.Source
	Channel arm.Channel
	Store   *store.Store
	// SourceName labels the session in the journal: "synthetic", "serial",
	// "replay".
	SourceName string
}

// Status is a snapshot of the whole pipeline for the operator surface.
type Status struct {
	SessionID  string               `json:"session_id"`
	Running    bool                 `json:"running"`
	Envelope   float64              `json:"envelope"`
	Threshold  float64              `json:"threshold"`
	Baseline   float64              `json:"baseline"`
	Gesture    gesture.Stats        `json:"gesture"`
	NextAction gesture.Action       `json:"next_action"`
	Dispatcher arm.DispatcherStats  `json:"dispatcher"`
	Position   arm.PositionSnapshot `json:"position"`
}

// App owns the pipeline goroutine and every stage in it.
type App struct {
	opts       Options
	chain      *filter.Chain
	estimator  *envelope.Estimator
	detector   *gesture.Detector
	controller *gesture.Controller
	dispatcher *arm.Dispatcher
	position   *arm.Position
	bus        *Bus

	mu        sync.RWMutex
	sessionID string
	window    []float64
	lastEnv   float64
	lastThr   float64
	stopCh    chan struct{}
	done      chan struct{}
	exhausted bool // source returned io.EOF; pipeline goroutine has exited
}

// New builds an App from the given options. The filter chain is constructed
// eagerly so configuration problems surface before the pipeline starts.
func New(opts Options) (*App, error) {
	chain, err := filter.NewChain(filterConfig(opts.Config))
	if err != nil {
		return nil, fmt.Errorf("build filter chain: %w", err)
	}

	cfg := opts.Config
	a := &App{
		opts:      opts,
		chain:     chain,
		estimator: envelope.NewEstimator(cfg.ThresholdMultiplier, cfg.BaselineAlpha),
		detector: gesture.NewDetector(gesture.DetectorConfig{
			MinDuration: time.Duration(cfg.MinGestureMs) * time.Millisecond,
			MaxDuration: time.Duration(cfg.MaxGestureMs) * time.Millisecond,
			Cooldown:    time.Duration(cfg.GestureCooldownMs) * time.Millisecond,
		}),
		controller: gesture.NewController(time.Duration(cfg.CommandCooldownMs) * time.Millisecond),
		position:   arm.NewPosition(),
		bus:        NewBus(),
	}

	a.dispatcher = arm.NewDispatcher(arm.DispatcherConfig{
		QueueCapacity: cfg.QueueCapacity,
		AckTimeout:    time.Duration(cfg.AckTimeoutMs) * time.Millisecond,
		DrainInterval: time.Duration(cfg.DrainMs) * time.Millisecond,
	}, opts.Channel, a.onDispatch)

	return a, nil
}

// filterConfig maps the session configuration onto the filter chain's.
func filterConfig(cfg config.Config) filter.Config {
	return filter.Config{
		SampleRate:       float64(cfg.SampleRate),
		OutlierEnabled:   cfg.OutlierEnabled,
		OutlierSigma:     cfg.OutlierSigma,
		MedianEnabled:    cfg.MedianEnabled,
		MedianWidth:      cfg.MedianWidth,
		BandEnabled:      cfg.BandEnabled,
		HighPassHz:       cfg.HighPassHz,
		LowPassHz:        cfg.LowPassHz,
		Order:            cfg.FilterOrder,
		Notch50Enabled:   cfg.Notch50Enabled,
		Notch50Band:      cfg.Notch50Band,
		Notch60Enabled:   cfg.Notch60Enabled,
		Notch60Band:      cfg.Notch60Band,
		SmoothingEnabled: cfg.SmoothingEnabled,
		MovingAvgWindow:  cfg.MovingAvgWindow,
		SavGolWindow:     cfg.SavGolWindow,
		SavGolOrder:      cfg.SavGolOrder,
	}
}

// Bus returns the pipeline event bus for live subscribers.
func (a *App) Bus() *Bus {
	return a.bus
}

// Start opens the source, begins a new session, and launches the pipeline
// and dispatcher goroutines. Starting a running App is a no-op.
//
// The lock is released before the start event is emitted: emit re-acquires
// it to read the session id, and the journal write must not sit inside the
// critical section either way.
func (a *App) Start() error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return nil
	}

	if err := a.opts.Source.Open(); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("open signal source: %w", err)
	}

	a.sessionID = uuid.New().String()
	a.window = make([]float64, 0, a.opts.Config.WindowSize)
	a.exhausted = false

	if a.opts.Store != nil {
		err := a.opts.Store.Sessions().Create(&store.Session{
			ID:     a.sessionID,
			Source: a.opts.SourceName,
		})
		if err != nil {
			a.opts.Source.Close()
			a.mu.Unlock()
			return fmt.Errorf("record session: %w", err)
		}
	}

	a.dispatcher.Start()
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	stopCh, done := a.stopCh, a.done
	sessionID := a.sessionID
	a.mu.Unlock()

	go a.runPipeline(stopCh, done)

	a.emit(EventSessionStarted, a.opts.SourceName)
	log.Printf("session %s started on %s source", sessionID, a.opts.SourceName)
	return nil
}

// Stop halts the pipeline, the dispatcher, and the source, and closes out
// the session. Stopping a stopped App is a no-op.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	done := a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	<-done
	a.dispatcher.Stop()
	if err := a.opts.Source.Close(); err != nil {
		log.Printf("close signal source: %v", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.opts.Store != nil && a.sessionID != "" {
		if err := a.opts.Store.Sessions().End(a.sessionID, time.Now()); err != nil {
			log.Printf("end session %s: %v", a.sessionID, err)
		}
	}
	log.Printf("session %s stopped", a.sessionID)
}

// EmergencyStop latches the dispatcher and puts the stop on the wire. The
// pipeline keeps running so the operator surface stays live; commands are
// simply refused until Resume.
func (a *App) EmergencyStop() error {
	err := a.dispatcher.EmergencyStop()
	a.mu.Lock()
	a.detector.Reset()
	a.mu.Unlock()
	a.emit(EventEmergencyStop, "")
	if err != nil {
		return fmt.Errorf("emergency stop: %w", err)
	}
	return nil
}

// Resume clears the emergency-stop latch. Idempotent.
func (a *App) Resume() {
	if !a.dispatcher.Stopped() {
		return
	}
	a.dispatcher.Resume()
	a.emit(EventResume, "")
}

// Reset clears all per-session detection state and starts a fresh session:
// the baseline re-learns, the cycle parity returns to GRAB-next, and the
// pose model returns to neutral. The stream itself stays open.
func (a *App) Reset() {
	a.mu.Lock()
	a.estimator.Reset()
	a.detector.Reset()
	a.controller.Reset()
	a.position.Reset()
	a.window = a.window[:0]
	a.lastEnv = 0
	a.lastThr = 0

	old := a.sessionID
	a.sessionID = uuid.New().String()
	fresh := a.sessionID
	a.mu.Unlock()

	if a.opts.Store != nil {
		if old != "" {
			if err := a.opts.Store.Sessions().End(old, time.Now()); err != nil {
				log.Printf("end session %s: %v", old, err)
			}
		}
		err := a.opts.Store.Sessions().Create(&store.Session{
			ID:     fresh,
			Source: a.opts.SourceName,
		})
		if err != nil {
			log.Printf("record session %s: %v", fresh, err)
		}
	}

	a.emit(EventSessionReset, "")
	log.Printf("session reset: %s -> %s", old, fresh)
}

// Status returns a snapshot of the whole pipeline.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		SessionID:  a.sessionID,
		Running:    a.stopCh != nil && !a.exhausted,
		Envelope:   a.lastEnv,
		Threshold:  a.lastThr,
		Baseline:   a.estimator.Baseline(),
		Gesture:    a.detector.Stats(),
		NextAction: a.controller.NextAction(),
		Dispatcher: a.dispatcher.Stats(),
		Position:   a.position.Snapshot(),
	}
}

// emit publishes an event to the bus and, when persistence is on, appends it
// to the session journal.
func (a *App) emit(kind EventKind, detail string) {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()

	ev := Event{Kind: kind, SessionID: sessionID, Detail: detail, At: time.Now()}
	a.bus.Publish(ev)

	if a.opts.Store != nil && sessionID != "" {
		err := a.opts.Store.Events().Append(&store.Event{
			SessionID: sessionID,
			Kind:      string(kind),
			Detail:    detail,
			CreatedAt: ev.At,
		})
		if err != nil {
			log.Printf("journal %s: %v", kind, err)
		}
	}
}

// onDispatch runs on the dispatcher's drain goroutine after every send.
func (a *App) onDispatch(result arm.Result) {
	if result.Err != nil {
		a.emit(EventCommandFailed, fmt.Sprintf("%s: %v", result.Command.Encode(), result.Err))
		return
	}
	a.position.Apply(result.Command)
	a.emit(EventCommandSent, result.Command.Encode())
}

package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/arm"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline is the main processing loop. Each tick it pulls one raw block
// from the source, slides it into the trailing window, conditions the window,
// takes one envelope sample, advances the gesture state machine, and turns
// completed cycles into gripper commands.
//
// One tick per block keeps envelope time locked to sample time: at 1 kHz with
// 100-sample blocks the detector sees ten updates per second regardless of
// wall-clock jitter in the source.
func (a *App) runPipeline(stopCh, done chan struct{}) {
	defer close(done)

	cfg := a.opts.Config
	interval := time.Duration(cfg.BlockSize) * time.Second / time.Duration(cfg.SampleRate)
	block := make([]float64, cfg.BlockSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := a.opts.Source.Read(block); err != nil {
				if errors.Is(err, io.EOF) {
					log.Println("signal source exhausted")
					a.mu.Lock()
					a.exhausted = true
					a.mu.Unlock()
					return
				}
				log.Printf("read block: %v", err)
				continue
			}
			a.processBlock(block, time.Now())
		}
	}
}

// processBlock advances the pipeline by one block.
func (a *App) processBlock(block []float64, now time.Time) {
	a.mu.Lock()

	// Slide the raw trailing window.
	a.window = append(a.window, block...)
	if excess := len(a.window) - a.opts.Config.WindowSize; excess > 0 {
		a.window = append(a.window[:0], a.window[excess:]...)
	}

	cleaned := a.chain.Process(a.window)
	env, threshold := a.estimator.Tick(cleaned)
	a.lastEnv = env
	a.lastThr = threshold

	events := a.detector.Update(env, threshold, now)
	a.mu.Unlock()

	for _, ev := range events {
		switch ev.Kind {
		case gesture.EventClose:
			a.emit(EventGestureClose, "")
		case gesture.EventOpen:
			a.emit(EventGestureOpen, "")
			a.completeCycle(ev.At)
		}
	}
}

// completeCycle maps one finished close/open cycle onto a gripper command
// and enqueues it.
func (a *App) completeCycle(at time.Time) {
	a.mu.Lock()
	action, emitted := a.controller.CycleComplete(at)
	count := a.controller.CycleCount()
	a.mu.Unlock()

	a.emit(EventCycleComplete, fmt.Sprintf("cycle %d", count))

	if !emitted {
		a.emit(EventCommandSuppressed, string(action))
		return
	}

	var cmd arm.Command
	switch action {
	case gesture.ActionGrab:
		cmd = arm.Grab(at)
	case gesture.ActionRelease:
		cmd = arm.Release(at)
	}

	if err := a.dispatcher.Enqueue(cmd); err != nil {
		a.emit(EventCommandFailed, fmt.Sprintf("%s: %v", cmd.Encode(), err))
		return
	}
	a.emit(EventCommandEmitted, string(action))
}

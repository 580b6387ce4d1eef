package arm

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	// ErrStopped is returned by Enqueue while the emergency-stop latch is set.
	ErrStopped = errors.New("dispatcher is emergency-stopped")
	// ErrQueueFull is returned when the queue is full and nothing can be evicted.
	ErrQueueFull = errors.New("command queue full")
	// ErrDirectOnly is returned when EMERGENCY_STOP is enqueued; it must go
	// through EmergencyStop so it bypasses the queue.
	ErrDirectOnly = errors.New("command cannot be queued")
)

// Result describes the outcome of one dispatched command.
type Result struct {
	Command Command
	Ack     string
	Err     error
	At      time.Time
}

// DispatcherConfig bounds the queue and the per-command acknowledgement wait.
type DispatcherConfig struct {
	// QueueCapacity is the maximum number of pending commands.
	QueueCapacity int
	// AckTimeout bounds how long one Send may wait for the arm's ack.
	AckTimeout time.Duration
	// DrainInterval is how often the drain loop checks the queue.
	DrainInterval time.Duration
}

// DefaultDispatcherConfig returns the stock dispatcher bounds.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueCapacity: 16,
		AckTimeout:    time.Second,
		DrainInterval: 10 * time.Millisecond,
	}
}

// DispatcherStats is a snapshot of dispatcher counters for status surfaces.
type DispatcherStats struct {
	Queued  int  `json:"queued"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Dropped int  `json:"dropped"`
	Stopped bool `json:"stopped"`
}

// Dispatcher owns the hardware channel. Commands are enqueued by the
// pipeline and the HTTP surface, and a single drain goroutine sends them one
// at a time, waiting for each acknowledgement before taking the next.
//
// EmergencyStop is the one path that bypasses the queue: it latches the
// dispatcher shut, cancels the in-flight send, flushes everything pending,
// and puts the stop on the wire directly.
type Dispatcher struct {
	config  DispatcherConfig
	channel Channel
	notify  func(Result)

	// sendMu serializes channel access between the drain loop and
	// EmergencyStop; implementations need not tolerate concurrent sends.
	sendMu sync.Mutex

	mu       sync.Mutex
	queue    []Command
	inflight context.CancelFunc
	stopped  bool
	sent     int
	failed   int
	dropped  int

	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewDispatcher creates a Dispatcher over the given channel. notify, if
// non-nil, is invoked from the drain goroutine after every send attempt.
func NewDispatcher(config DispatcherConfig, channel Channel, notify func(Result)) *Dispatcher {
	return &Dispatcher{
		config:  config,
		channel: channel,
		notify:  notify,
	}
}

// Start launches the drain goroutine. Starting a running dispatcher is a
// no-op, and a stopped dispatcher may be started again.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	go d.drainLoop(d.stopCh, d.done)
}

// Stop terminates the drain goroutine and waits for it to exit. Pending
// commands stay queued for a later Start. The hardware channel stays open;
// whoever constructed it closes it. Stopping a stopped dispatcher is a no-op.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	stopCh, done := d.stopCh, d.done
	d.mu.Unlock()

	close(stopCh)
	<-done
}

// Enqueue validates the command and appends it to the queue. While the
// emergency-stop latch is set every enqueue fails with ErrStopped. When the
// queue is full the oldest non-critical command is evicted to make room;
// if every pending command is critical the new command is rejected.
func (d *Dispatcher) Enqueue(cmd Command) error {
	if cmd.Kind == KindEmergencyStop {
		return ErrDirectOnly
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}
	if len(d.queue) >= d.config.QueueCapacity {
		evicted := false
		for i, pending := range d.queue {
			if !pending.Critical() {
				log.Printf("dispatcher: queue full, dropping %s", pending.Encode())
				d.queue = append(d.queue[:i], d.queue[i+1:]...)
				d.dropped++
				evicted = true
				break
			}
		}
		if !evicted {
			return ErrQueueFull
		}
	}
	d.queue = append(d.queue, cmd)
	return nil
}

// EmergencyStop latches the dispatcher shut, cancels any in-flight send,
// flushes the queue, and sends EMERGENCY_STOP on the channel directly. It
// blocks until the stop has been acknowledged or the ack timeout expires.
func (d *Dispatcher) EmergencyStop() error {
	d.mu.Lock()
	d.stopped = true
	flushed := len(d.queue)
	d.queue = nil
	d.dropped += flushed
	if d.inflight != nil {
		d.inflight()
	}
	d.mu.Unlock()

	if flushed > 0 {
		log.Printf("dispatcher: emergency stop flushed %d pending commands", flushed)
	}

	cmd := Command{Kind: KindEmergencyStop, At: time.Now()}
	ctx, cancel := context.WithTimeout(context.Background(), d.config.AckTimeout)
	defer cancel()

	d.sendMu.Lock()
	ack, err := d.channel.Send(ctx, cmd)
	d.sendMu.Unlock()
	d.record(cmd, ack, err)
	if err != nil {
		return err
	}
	return nil
}

// Resume clears the emergency-stop latch. Resuming a dispatcher that is not
// stopped is a no-op.
func (d *Dispatcher) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = false
}

// Stopped reports whether the emergency-stop latch is set.
func (d *Dispatcher) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Stats returns a snapshot of dispatcher counters.
func (d *Dispatcher) Stats() DispatcherStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DispatcherStats{
		Queued:  len(d.queue),
		Sent:    d.sent,
		Failed:  d.failed,
		Dropped: d.dropped,
		Stopped: d.stopped,
	}
}

func (d *Dispatcher) drainLoop(stopCh, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.config.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			d.drainOne()
		}
	}
}

// drainOne sends at most one queued command and waits for its ack. Failed
// commands are not retried; the failure is counted and reported.
func (d *Dispatcher) drainOne() {
	d.mu.Lock()
	if d.stopped || len(d.queue) == 0 {
		d.mu.Unlock()
		return
	}
	cmd := d.queue[0]
	d.queue = d.queue[1:]

	ctx, cancel := context.WithTimeout(context.Background(), d.config.AckTimeout)
	d.inflight = cancel
	d.mu.Unlock()

	d.sendMu.Lock()
	ack, err := d.channel.Send(ctx, cmd)
	d.sendMu.Unlock()

	d.mu.Lock()
	d.inflight = nil
	d.mu.Unlock()
	cancel()

	d.record(cmd, ack, err)
}

func (d *Dispatcher) record(cmd Command, ack string, err error) {
	d.mu.Lock()
	if err != nil {
		d.failed++
	} else {
		d.sent++
	}
	notify := d.notify
	d.mu.Unlock()

	if err != nil {
		log.Printf("dispatcher: %s failed: %v", cmd.Encode(), err)
	}
	if notify != nil {
		notify(Result{Command: cmd, Ack: ack, Err: err, At: time.Now()})
	}
}

package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/statechart"
)

// ErrQueueFull is returned when a tick batch already holds
// Config.MaxEventsPerTick events.
var ErrQueueFull = errors.New("event queue full")

// ErrAlreadyStarted is returned by Start on a running runtime.
var ErrAlreadyStarted = errors.New("runtime already started")

// Config configures the real-time runtime
type Config struct {
	TickRate         time.Duration // Fixed tick rate (default 60 FPS)
	MaxEventsPerTick int           // Event batch capacity (default: 1000)

	// Logger receives tick errors. Defaults to a discard logger.
	Logger *slog.Logger

	// Clock replaces time.Now for delayed events.
	Clock func() time.Time
}

// RealtimeRuntime drives one Statechart from a fixed-rate tick loop.
type RealtimeRuntime struct {
	chartMu sync.Mutex
	chart   *statechart.Statechart

	tickRate time.Duration
	maxBatch int
	logger   *slog.Logger
	now      func() time.Time

	// Event batching
	batchMu     sync.Mutex
	eventBatch  []EventWithMeta
	delayed     []EventWithMeta
	sequenceNum uint64
	tickNum     uint64

	// Control
	ctlMu      sync.Mutex
	ticker     *time.Ticker
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewRuntime wraps chart. The runtime does not process anything until Start
// or Tick is called.
func NewRuntime(chart *statechart.Statechart, cfg Config) *RealtimeRuntime {
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond // Default 60 FPS
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &RealtimeRuntime{
		chart:      chart,
		tickRate:   cfg.TickRate,
		maxBatch:   cfg.MaxEventsPerTick,
		logger:     cfg.Logger.With("machine", chart.ID()),
		now:        cfg.Clock,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
	}
}

// Start begins tick-based execution. The loop ends when ctx is cancelled or
// Stop is called.
func (rt *RealtimeRuntime) Start(ctx context.Context) error {
	rt.ctlMu.Lock()
	defer rt.ctlMu.Unlock()
	if rt.ticker != nil {
		return ErrAlreadyStarted
	}

	tickCtx, cancel := context.WithCancel(ctx)
	rt.tickCancel = cancel
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})

	go rt.tickLoop(tickCtx, rt.ticker, rt.stopped)
	rt.logger.Info("realtime runtime started", "tick_rate", rt.tickRate)
	return nil
}

// Stop gracefully stops the runtime and waits for the running tick to finish.
// Pending events stay queued and can still be flushed with Tick.
func (rt *RealtimeRuntime) Stop() error {
	rt.ctlMu.Lock()
	defer rt.ctlMu.Unlock()
	if rt.ticker == nil {
		return nil
	}

	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped

	rt.ticker = nil
	rt.tickCancel = nil
	rt.logger.Info("realtime runtime stopped", "ticks", rt.GetTickNumber())
	return nil
}

func (rt *RealtimeRuntime) tickLoop(ctx context.Context, ticker *time.Ticker, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rt.Tick(); err != nil {
				rt.logger.Error("tick failed", "tick", rt.GetTickNumber(), "error", err)
			}
		}
	}
}

// SendEvent queues an event for the next tick (thread-safe)
func (rt *RealtimeRuntime) SendEvent(name string, data any) error {
	return rt.SendEventWithPriority(name, data, 0)
}

// SendEventWithPriority queues an event with priority
func (rt *RealtimeRuntime) SendEventWithPriority(name string, data any, priority int) error {
	if name == "" {
		return statechart.ErrEmptyEvent
	}
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= rt.maxBatch {
		return ErrQueueFull
	}

	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       statechart.Event{Name: name, Data: data},
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++

	return nil
}

// SendAfter queues an event for the first tick at or after now+delay.
func (rt *RealtimeRuntime) SendAfter(name string, data any, delay time.Duration) error {
	if name == "" {
		return statechart.ErrEmptyEvent
	}
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	rt.delayed = append(rt.delayed, EventWithMeta{
		Event:       statechart.Event{Name: name, Data: data},
		SequenceNum: rt.sequenceNum,
		Due:         rt.now().Add(delay),
	})
	rt.sequenceNum++

	return nil
}

// GetTickNumber returns the number of completed ticks
func (rt *RealtimeRuntime) GetTickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// Pending returns the number of queued and delayed events.
func (rt *RealtimeRuntime) Pending() int {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return len(rt.eventBatch) + len(rt.delayed)
}

// Configuration returns the chart's active state ids.
func (rt *RealtimeRuntime) Configuration() []string {
	rt.chartMu.Lock()
	defer rt.chartMu.Unlock()
	return rt.chart.Configuration()
}

// IsActive reports whether the state id is active.
func (rt *RealtimeRuntime) IsActive(id string) bool {
	rt.chartMu.Lock()
	defer rt.chartMu.Unlock()
	return rt.chart.IsActive(id)
}

// Done reports whether the chart reached a top-level final state.
func (rt *RealtimeRuntime) Done() bool {
	rt.chartMu.Lock()
	defer rt.chartMu.Unlock()
	return rt.chart.Done()
}

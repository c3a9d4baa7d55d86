package testutil

import (
	"context"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/realtime"
)

// RuntimeAdapter provides a common interface for both the direct and the
// tick-based front of a chart. This allows running the same test suite on both.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(name string, data any) error
	IsActive(id string) bool
	Configuration() []string
	// Settle returns once every event sent so far has been processed.
	Settle() error
}

// DirectAdapter wraps a Statechart; events are processed inside SendEvent.
type DirectAdapter struct {
	sc *statechart.Statechart
}

// NewDirectAdapter creates a new adapter for direct Emit calls
func NewDirectAdapter(sc *statechart.Statechart) *DirectAdapter {
	return &DirectAdapter{sc: sc}
}

func (a *DirectAdapter) Start(context.Context) error { return nil }
func (a *DirectAdapter) Stop() error                 { return nil }

func (a *DirectAdapter) SendEvent(name string, data any) error {
	return a.sc.Emit(name, data)
}

func (a *DirectAdapter) IsActive(id string) bool {
	return a.sc.IsActive(id)
}

func (a *DirectAdapter) Configuration() []string {
	return a.sc.Configuration()
}

func (a *DirectAdapter) Settle() error { return nil }

// TickAdapter wraps the tick-based runtime without starting its ticker;
// Settle runs one tick.
type TickAdapter struct {
	rt *realtime.RealtimeRuntime
}

// NewTickAdapter creates a new adapter for the tick-based runtime
func NewTickAdapter(sc *statechart.Statechart, cfg realtime.Config) *TickAdapter {
	return &TickAdapter{rt: realtime.NewRuntime(sc, cfg)}
}

func (a *TickAdapter) Start(context.Context) error { return nil }
func (a *TickAdapter) Stop() error                 { return a.rt.Stop() }

func (a *TickAdapter) SendEvent(name string, data any) error {
	return a.rt.SendEvent(name, data)
}

func (a *TickAdapter) IsActive(id string) bool {
	return a.rt.IsActive(id)
}

func (a *TickAdapter) Configuration() []string {
	return a.rt.Configuration()
}

func (a *TickAdapter) Settle() error {
	return a.rt.Tick()
}

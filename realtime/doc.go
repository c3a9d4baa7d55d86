// Package realtime provides a tick-based, goroutine-safe front for a
// statechart.
//
// A Statechart processes each Emit to completion on the caller's goroutine and
// is not safe for concurrent use. RealtimeRuntime accepts events from any
// goroutine, batches them, and feeds them to the chart at fixed tick
// boundaries:
//   - Events sent during a tick window are processed at the next tick
//   - Ordering is by priority (higher first), then by sequence number (FIFO)
//   - Delayed events (SendAfter) join the batch of the first tick at or after
//     their due time
//
// # Example Usage
//
//	sc, _ := statechart.New(spec)
//	rt := realtime.NewRuntime(sc, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	defer rt.Stop()
//	rt.SendEvent("jump", nil)
//	rt.SendAfter("land", nil, 500*time.Millisecond)
//
// # Event Ordering Guarantees
//
// Given the same sequence of Send calls between two ticks, the chart sees the
// same sequence of events regardless of goroutine scheduling. Events raised by
// actions inside the chart are internal to the macrostep and are not
// affected by tick batching.
//
// Tests and simulations can skip the ticker entirely: create the runtime,
// never call Start, and drive it with Tick. Config.Clock replaces time.Now for
// delayed events.
package realtime

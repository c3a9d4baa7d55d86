package realtime

import "errors"

// Tick processes one complete tick synchronously and returns the errors the
// chart reported for its events. An event that fails does not stop the rest
// of the batch.
func (rt *RealtimeRuntime) Tick() error {
	// Phase 1: Collect events atomically
	events := rt.collectEvents()

	// Phase 2: Sort for deterministic order
	sortEvents(events)

	// Phase 3: Feed the chart
	err := rt.processEvents(events)

	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
	return err
}

// collectEvents atomically retrieves and clears the event batch, adding every
// delayed event that is due.
func (rt *RealtimeRuntime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, rt.maxBatch)

	if len(rt.delayed) > 0 {
		now := rt.now()
		sortDelayed(rt.delayed)
		n := 0
		for n < len(rt.delayed) && !rt.delayed[n].Due.After(now) {
			n++
		}
		events = append(events, rt.delayed[:n]...)
		rt.delayed = append(rt.delayed[:0:0], rt.delayed[n:]...)
	}
	return events
}

func (rt *RealtimeRuntime) processEvents(events []EventWithMeta) error {
	if len(events) == 0 {
		return nil
	}
	rt.chartMu.Lock()
	defer rt.chartMu.Unlock()

	var errs []error
	for _, em := range events {
		if err := rt.chart.Emit(em.Event.Name, em.Event.Data); err != nil {
			rt.logger.Warn("event failed", "event", em.Event.Name, "seq", em.SequenceNum, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

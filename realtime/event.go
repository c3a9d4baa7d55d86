package realtime

import (
	"sort"
	"time"

	"github.com/comalice/statechart"
)

// EventWithMeta adds sequencing metadata for deterministic ordering
type EventWithMeta struct {
	Event       statechart.Event
	SequenceNum uint64
	Priority    int
	Due         time.Time // zero for events sent without delay
}

// sortEvents orders events deterministically
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		// Primary: Higher priority first
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}

		// Secondary: Earlier sequence number first (FIFO)
		return events[i].SequenceNum < events[j].SequenceNum
	})
}

// sortDelayed orders pending delayed events by due time, then sequence.
func sortDelayed(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Due.Equal(events[j].Due) {
			return events[i].Due.Before(events[j].Due)
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}

package core

// historyTable tracks, per history state, the states recorded the last time
// its owner was exited.
// Shallow: the owner's active direct children.
// Deep: every active atomic descendant of the owner.
// Owned by a single machine; no locking.
type historyTable struct {
	values map[int][]int
}

func newHistoryTable() *historyTable {
	return &historyTable{values: make(map[int][]int)}
}

// record stores the recorded states for history state h, replacing any
// earlier value.
func (h *historyTable) record(hist int, states []int) {
	h.values[hist] = append([]int(nil), states...)
}

// restore returns the recorded states for h, if any were recorded.
func (h *historyTable) restore(hist int) ([]int, bool) {
	states, ok := h.values[hist]
	if !ok || len(states) == 0 {
		return nil, false
	}
	return states, true
}

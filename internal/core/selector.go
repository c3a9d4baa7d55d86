package core

import "github.com/comalice/statechart/internal/primitives"

// selectTransitions returns the enabled transitions for qe, or for the
// eventless tick when qe is nil.
//
// Active atomic states are visited in document order. For each, the first
// matching transition found walking outward to the root is the candidate.
// A candidate is dropped when an accepted transition with targets would exit
// its source; a candidate with targets evicts accepted transitions it would
// exit, so the outer transition wins regardless of visiting order.
func (m *Machine) selectTransitions(qe *queuedEvent) *transitionSet {
	var ev *primitives.Event
	var guardEvent primitives.Event
	if qe != nil {
		ev = &qe.Event
		guardEvent = qe.Event
	}

	enabled := &transitionSet{}
	for _, atomic := range m.config.atomic() {
		t := m.firstEnabled(atomic, ev, guardEvent, qe)
		if t == nil || enabled.Has(t) {
			continue
		}
		if m.preempted(enabled, t) {
			continue
		}
		if len(t.targets) > 0 {
			scope := m.tree.lca(t.source, t.targets)
			enabled.RemoveIf(func(other *transition) bool {
				return m.tree.isDescendant(other.source, scope)
			})
		}
		enabled.Add(t)
	}
	return enabled
}

func (m *Machine) firstEnabled(atomic int, ev *primitives.Event, guardEvent primitives.Event, qe *queuedEvent) *transition {
	for s := atomic; s != noState; s = m.tree.states[s].parent {
		for _, t := range m.tree.states[s].transitions {
			if !primitives.Matches(t.event, ev) {
				continue
			}
			if !m.relayAllowed(t, qe) {
				continue
			}
			if t.guard != nil && !t.guard(guardEvent) {
				continue
			}
			return t
		}
	}
	return nil
}

// preempted reports whether an accepted transition with targets exits t's source.
func (m *Machine) preempted(enabled *transitionSet, t *transition) bool {
	for _, other := range enabled.items {
		if len(other.targets) == 0 {
			continue
		}
		if m.tree.isDescendant(t.source, m.tree.lca(other.source, other.targets)) {
			return true
		}
	}
	return false
}

// relayAllowed keeps a relay from bouncing an event back to its origin.
func (m *Machine) relayAllowed(t *transition, qe *queuedEvent) bool {
	if qe == nil || qe.from == nil {
		return true
	}
	switch t.relay {
	case relayDown:
		subs := m.subs[t.source]
		return t.sub >= len(subs) || subs[t.sub] != qe.from
	case relayUp:
		return m.parent == nil || qe.from != m.parent
	}
	return true
}

package core

import "github.com/comalice/statechart/internal/primitives"

// exitSet returns the active states left by the transitions, in exit order
// (descending document order).
func (m *Machine) exitSet(enabled *transitionSet) []int {
	exits := newStateSet()
	for _, t := range enabled.items {
		if len(t.targets) == 0 {
			continue
		}
		scope := m.tree.lca(t.source, t.targets)
		for _, s := range m.config.members() {
			if m.tree.isDescendant(s, scope) {
				exits.Add(s)
			}
		}
	}
	return exits.Descending()
}

// entrySet returns the states entered by the transitions, in entry order
// (ascending document order). History is resolved against the table as it
// stands after the exit phase recorded it.
func (m *Machine) entrySet(enabled *transitionSet) []int {
	entries := newStateSet()
	for _, t := range enabled.items {
		if len(t.targets) == 0 {
			continue
		}
		scope := m.tree.lca(t.source, t.targets)
		for _, target := range t.targets {
			m.addDescendants(target, entries)
		}
		for _, target := range t.targets {
			for _, s := range m.effectiveTargets(target) {
				m.addAncestors(s, scope, entries)
			}
		}
	}
	return entries.Ascending()
}

// initialEntrySet is the entry set of the synthetic start transition from the
// root into its default child.
func (m *Machine) initialEntrySet() []int {
	entries := newStateSet()
	initial := m.tree.states[rootState].initial
	m.addDescendants(initial, entries)
	m.addAncestors(initial, rootState, entries)
	return entries.Ascending()
}

// effectiveTargets maps a history target to the states it restores.
func (m *Machine) effectiveTargets(s int) []int {
	if m.tree.states[s].kind != primitives.History {
		return []int{s}
	}
	if recorded, ok := m.history.restore(s); ok {
		return recorded
	}
	return m.tree.historyDefault(s)
}

func (m *Machine) addDescendants(s int, entries *stateSet) {
	st := m.tree.states[s]
	if st.kind == primitives.History {
		restored := m.effectiveTargets(s)
		for _, r := range restored {
			m.addDescendants(r, entries)
		}
		for _, r := range restored {
			m.addAncestors(r, st.parent, entries)
		}
		return
	}

	entries.Add(s)
	switch {
	case st.kind == primitives.Parallel:
		for _, child := range m.tree.enterableChildren(s) {
			if !m.covered(child, entries) {
				m.addDescendants(child, entries)
			}
		}
	case st.initial != noState:
		m.addDescendants(st.initial, entries)
	}
}

// addAncestors enters the proper ancestors of s strictly below scope. A
// parallel ancestor gets every region not already entered.
func (m *Machine) addAncestors(s, scope int, entries *stateSet) {
	for _, anc := range m.tree.properAncestors(s, scope) {
		entries.Add(anc)
		if m.tree.states[anc].kind != primitives.Parallel {
			continue
		}
		for _, child := range m.tree.enterableChildren(anc) {
			if !m.covered(child, entries) {
				m.addDescendants(child, entries)
			}
		}
	}
}

// covered reports whether region c, or any state inside it, is already entered.
func (m *Machine) covered(c int, entries *stateSet) bool {
	return entries.Some(func(x int) bool {
		return x == c || m.tree.isDescendant(x, c)
	})
}

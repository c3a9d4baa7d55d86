package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
)

// CheckConfiguration verifies the structural invariants of a settled
// configuration:
//   - every proper ancestor of an active state, up to the root, is active
//   - every region of an active parallel state is active
//   - an active compound standard state has exactly one active child
func CheckConfiguration(m *statechart.Machine) error {
	tree := m.Tree()
	root := tree.RootID()
	for _, id := range m.Configuration() {
		for p, ok := tree.Parent(id); ok && p != root; p, ok = tree.Parent(p) {
			if !m.IsActive(p) {
				return fmt.Errorf("%s is active but its ancestor %s is not", id, p)
			}
		}

		var active []string
		regions := 0
		for _, c := range tree.Children(id) {
			if tree.Kind(c) == statechart.History {
				continue
			}
			regions++
			if m.IsActive(c) {
				active = append(active, c)
			}
		}
		switch tree.Kind(id) {
		case statechart.Parallel:
			if len(active) != regions {
				return fmt.Errorf("parallel state %s has %d of %d regions active", id, len(active), regions)
			}
		case statechart.Standard:
			if regions > 0 && len(active) != 1 {
				return fmt.Errorf("state %s has %d active children %v, want exactly one", id, len(active), active)
			}
		}
	}
	return nil
}

// RequireConsistent fails the test when CheckConfiguration reports a violation.
func RequireConsistent(t testing.TB, m *statechart.Machine) {
	t.Helper()
	require.NoError(t, CheckConfiguration(m), "configuration %v", m.Configuration())
}

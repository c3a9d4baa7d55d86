package primitives

import "reflect"

// TransitionConfig defines a single transition owned by the enclosing state.
//
// Event is an exact event name, Wildcard, or empty for an eventless
// transition. Targets are state ids resolved at build time; an empty list is a
// targetless transition that only runs Action.
type TransitionConfig struct {
	Event   string
	Guard   Guard
	Targets []string
	Action  Action

	// Unknown lists attribute names the producer could not map; see StateConfig.
	Unknown []string
}

// HasSideEffects reports whether the transition would do anything when taken.
func (t *TransitionConfig) HasSideEffects() bool {
	return len(t.Targets) > 0 || t.Action != nil
}

// DataEquals returns a guard accepting events whose payload equals v.
func DataEquals(v any) Guard {
	return func(e Event) bool { return reflect.DeepEqual(e.Data, v) }
}

// DataNotEquals returns a guard accepting events whose payload differs from v.
func DataNotEquals(v any) Guard {
	return func(e Event) bool { return !reflect.DeepEqual(e.Data, v) }
}

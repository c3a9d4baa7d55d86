// Event provides the immutable event primitive for statechart transitions.
//
// Events are value types. Once created, Events should not be mutated. Use
// NewEvent for construction.
//
// Example:
//
//	event := NewEvent("open", MyPayload{Value: 42})
package primitives

import "strings"

const (
	// Wildcard matches any named event. It never matches the eventless tick.
	Wildcard = "*"

	// DonePrefix prefixes the internal completion event of a compound or
	// parallel state: "done.<id>".
	DonePrefix = "done."

	// StartEvent and StopEvent switch a sub-machine on and off. Wildcard
	// patterns never match them.
	StartEvent = "__start__"
	StopEvent  = "__stop__"
)

type Event struct {
	Name string
	Data any
}

// NewEvent creates and returns a new immutable Event.
func NewEvent(name string, data any) Event {
	return Event{
		Name: name,
		Data: data,
	}
}

// DoneEvent returns the completion event generated for the state id.
func DoneEvent(id string) Event {
	return Event{Name: DonePrefix + id}
}

// IsDone reports whether e is a completion event and, if so, for which state.
func (e Event) IsDone() (string, bool) {
	if !strings.HasPrefix(e.Name, DonePrefix) {
		return "", false
	}
	return strings.TrimPrefix(e.Name, DonePrefix), true
}

// Matches reports whether a transition event pattern accepts e. A nil event is
// the eventless tick used while draining a macrostep; only the empty pattern
// matches it. Sub-machine control events are matched by name only.
func Matches(pattern string, e *Event) bool {
	if e == nil {
		return pattern == ""
	}
	if e.Name == "" {
		return false
	}
	if pattern == Wildcard {
		return e.Name != StartEvent && e.Name != StopEvent
	}
	return pattern == e.Name
}

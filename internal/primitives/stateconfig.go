// StateConfig describes one node of an unresolved state tree: its kind,
// callbacks, outgoing transitions and nested states. The builder DSL and the
// chart file loader produce StateConfig trees; core.Build resolves them.
package primitives

// StateKind defines the possible kinds of states in the statechart.
type StateKind string

const (
	Standard StateKind = "state"
	Parallel StateKind = "parallel"
	Final    StateKind = "final"
	History  StateKind = "history"
)

// Valid reports whether k is one of the known kinds. The zero value is treated
// as Standard.
func (k StateKind) Valid() bool {
	switch k {
	case "", Standard, Parallel, Final, History:
		return true
	}
	return false
}

// Emitter is handed to every action. Raise enqueues an event on the internal
// queue of the interpreter running the action; it is processed before the
// next external event.
type Emitter interface {
	Raise(name string, data any)
}

// Action is a side-effecting callback run on entry, exit or transition.
// A returned error aborts the running macrostep and is surfaced to the caller.
type Action func(e Event, emit Emitter) error

// Guard decides whether a transition is enabled for the event.
type Guard func(e Event) bool

// StateConfig defines a state, supporting hierarchical nesting.
type StateConfig struct {
	ID          string
	Kind        StateKind
	Initial     bool
	Deep        bool
	Entry       Action
	Exit        Action
	Transitions []*TransitionConfig
	Children    []*StateConfig
	Export      []string
	Subcharts   []*StateConfig

	// Unknown lists attribute names the producer could not map onto a field.
	// A non-empty list is reported by core.Build as a build error naming the
	// first attribute.
	Unknown []string
}

// NewStateConfig creates a new StateConfig with ID and Kind.
func NewStateConfig(id string, kind StateKind) *StateConfig {
	return &StateConfig{
		ID:   id,
		Kind: kind,
	}
}

// KindOrDefault returns Standard for the zero kind.
func (s *StateConfig) KindOrDefault() StateKind {
	if s.Kind == "" {
		return Standard
	}
	return s.Kind
}

// WithInitial flags this state as its parent's initial child.
func (s *StateConfig) WithInitial() *StateConfig {
	s.Initial = true
	return s
}

// WithEntry sets the entry action.
func (s *StateConfig) WithEntry(a Action) *StateConfig {
	s.Entry = a
	return s
}

// WithExit sets the exit action.
func (s *StateConfig) WithExit(a Action) *StateConfig {
	s.Exit = a
	return s
}

// AddChild adds a child state.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	return s
}

// State creates and adds a child state (standard by default, or the given kind).
// Returns the child for fluent chaining: parent.State("child").On("evt", "target").
func (s *StateConfig) State(id string, kind ...StateKind) *StateConfig {
	k := Standard
	if len(kind) > 0 {
		k = kind[0]
	}
	child := NewStateConfig(id, k)
	s.AddChild(child)
	return child
}

// AddTransition appends an outgoing transition.
func (s *StateConfig) AddTransition(t *TransitionConfig) *StateConfig {
	s.Transitions = append(s.Transitions, t)
	return s
}

// On adds a simple event -> targets transition.
func (s *StateConfig) On(event string, targets ...string) *StateConfig {
	return s.AddTransition(&TransitionConfig{Event: event, Targets: targets})
}

// Walk visits s and every nested state in document order (pre-order). Sub-chart
// specs are not visited; they are independent trees.
func (s *StateConfig) Walk(visit func(*StateConfig)) {
	visit(s)
	for _, child := range s.Children {
		child.Walk(visit)
	}
}

// Package builder assembles state trees from nested fragments.
//
//	spec, err := builder.State("door",
//		builder.State("closed",
//			builder.On("open", "opened"),
//		),
//		builder.State("opened",
//			builder.Entry(logOpen),
//			builder.Transition(builder.Event("close"), builder.Condition(isSafe), builder.Target("closed")),
//		),
//	).Build()
//
// A fragment placed where its field has no meaning (an Event directly on a
// state, Deep on a transition) is kept as an unknown attribute and rejected by
// statechart.New with the field name.
package builder

import (
	"fmt"

	"github.com/comalice/statechart/internal/primitives"
)

// Field names the attribute a fragment sets.
type Field string

const (
	FieldState      Field = "state"
	FieldTransition Field = "transition"
	FieldEntry      Field = "entry"
	FieldExit       Field = "exit"
	FieldEvent      Field = "event"
	FieldCondition  Field = "condition"
	FieldTarget     Field = "target"
	FieldTargets    Field = "targets"
	FieldAction     Field = "action"
	FieldInitial    Field = "initial"
	FieldDeep       Field = "deep"
	FieldExport     Field = "export"
	FieldSubchart   Field = "subchart"
)

// Fragment is one piece of a state or transition description.
type Fragment interface {
	Field() Field
}

type attr struct {
	field  Field
	action primitives.Action
	guard  primitives.Guard
	names  []string
	node   *Node
}

func (a attr) Field() Field { return a.field }

// Entry sets the entry action of a state.
func Entry(a primitives.Action) Fragment { return attr{field: FieldEntry, action: a} }

// Exit sets the exit action of a state.
func Exit(a primitives.Action) Fragment { return attr{field: FieldExit, action: a} }

// Event sets the event pattern of a transition. Omit it for an eventless
// transition; use primitives.Wildcard to match any named event.
func Event(name string) Fragment { return attr{field: FieldEvent, names: []string{name}} }

// Condition sets the guard of a transition.
func Condition(g primitives.Guard) Fragment { return attr{field: FieldCondition, guard: g} }

// DataEquals guards a transition on the event data deep-equalling v.
func DataEquals(v any) Fragment { return Condition(primitives.DataEquals(v)) }

// DataNotEquals guards a transition on the event data differing from v.
func DataNotEquals(v any) Fragment { return Condition(primitives.DataNotEquals(v)) }

// Target adds one target state id to a transition.
func Target(id string) Fragment { return attr{field: FieldTarget, names: []string{id}} }

// Targets adds target state ids to a transition.
func Targets(ids ...string) Fragment { return attr{field: FieldTargets, names: ids} }

// Action sets the action of a transition.
func Action(a primitives.Action) Fragment { return attr{field: FieldAction, action: a} }

// Initial marks a state as its parent's default child.
func Initial() Fragment { return attr{field: FieldInitial} }

// Deep makes a history state record every active leaf of its owner.
func Deep() Fragment { return attr{field: FieldDeep} }

// Export declares event names relayed across a sub-chart boundary, or callable
// by name on the top-level chart.
func Export(names ...string) Fragment { return attr{field: FieldExport, names: names} }

// Subchart attaches an independent chart started on entry and stopped on exit.
func Subchart(n *Node) Fragment { return attr{field: FieldSubchart, node: n} }

// Node is a state description. It is itself a Fragment so states nest.
type Node struct {
	id    string
	kind  primitives.StateKind
	parts []Fragment
}

func (n *Node) Field() Field { return FieldState }

// ID returns the state id.
func (n *Node) ID() string { return n.id }

// State describes a standard state; children make it compound.
func State(id string, parts ...Fragment) *Node {
	return &Node{id: id, kind: primitives.Standard, parts: parts}
}

// Parallel describes a state whose children are all active together.
func Parallel(id string, parts ...Fragment) *Node {
	return &Node{id: id, kind: primitives.Parallel, parts: parts}
}

// Final describes a final state.
func Final(id string, parts ...Fragment) *Node {
	return &Node{id: id, kind: primitives.Final, parts: parts}
}

// History describes a history pseudo-state of its parent.
func History(id string, parts ...Fragment) *Node {
	return &Node{id: id, kind: primitives.History, parts: parts}
}

// Edge is a transition description.
type Edge struct {
	parts []Fragment
}

func (e *Edge) Field() Field { return FieldTransition }

// Transition describes an outgoing transition of the enclosing state.
func Transition(parts ...Fragment) *Edge {
	return &Edge{parts: parts}
}

// On is shorthand for Transition(Event(event), Targets(targets...), extra...).
func On(event string, target string, extra ...Fragment) *Edge {
	parts := append([]Fragment{Event(event), Target(target)}, extra...)
	return &Edge{parts: parts}
}

// Build merges the fragments into a StateConfig. It reports fragments that
// set the same single-valued field twice; every other structural check is
// left to statechart.New.
func (n *Node) Build() (*primitives.StateConfig, error) {
	if n == nil {
		return nil, fmt.Errorf("nil state")
	}
	cfg := primitives.NewStateConfig(n.id, n.kind)
	for _, part := range n.parts {
		switch p := part.(type) {
		case nil:
			return nil, fmt.Errorf("state %s: nil fragment", n.id)
		case *Node:
			child, err := p.Build()
			if err != nil {
				return nil, err
			}
			cfg.AddChild(child)
		case *Edge:
			t, err := p.build(n.id)
			if err != nil {
				return nil, err
			}
			cfg.AddTransition(t)
		case attr:
			if err := n.merge(cfg, p); err != nil {
				return nil, err
			}
		default:
			cfg.Unknown = append(cfg.Unknown, string(part.Field()))
		}
	}
	return cfg, nil
}

// MustBuild is like Build but panics on error.
func (n *Node) MustBuild() *primitives.StateConfig {
	cfg, err := n.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (n *Node) merge(cfg *primitives.StateConfig, p attr) error {
	switch p.field {
	case FieldEntry:
		if cfg.Entry != nil {
			return duplicate(n.id, p.field)
		}
		cfg.Entry = p.action
	case FieldExit:
		if cfg.Exit != nil {
			return duplicate(n.id, p.field)
		}
		cfg.Exit = p.action
	case FieldInitial:
		cfg.Initial = true
	case FieldDeep:
		cfg.Deep = true
	case FieldExport:
		cfg.Export = append(cfg.Export, p.names...)
	case FieldSubchart:
		sub, err := p.node.Build()
		if err != nil {
			return fmt.Errorf("state %s: subchart: %w", n.id, err)
		}
		cfg.Subcharts = append(cfg.Subcharts, sub)
	default:
		cfg.Unknown = append(cfg.Unknown, string(p.field))
	}
	return nil
}

func (e *Edge) build(source string) (*primitives.TransitionConfig, error) {
	t := &primitives.TransitionConfig{}
	seen := make(map[Field]bool)
	for _, part := range e.parts {
		p, ok := part.(attr)
		if !ok {
			if part == nil {
				return nil, fmt.Errorf("state %s: nil transition fragment", source)
			}
			t.Unknown = append(t.Unknown, string(part.Field()))
			continue
		}
		switch p.field {
		case FieldEvent, FieldCondition, FieldAction:
			if seen[p.field] {
				return nil, duplicate(source, p.field)
			}
			seen[p.field] = true
		}
		switch p.field {
		case FieldEvent:
			t.Event = p.names[0]
		case FieldCondition:
			t.Guard = p.guard
		case FieldAction:
			t.Action = p.action
		case FieldTarget, FieldTargets:
			t.Targets = append(t.Targets, p.names...)
		default:
			t.Unknown = append(t.Unknown, string(p.field))
		}
	}
	return t, nil
}

func duplicate(id string, f Field) error {
	return fmt.Errorf("state %s: %s set more than once", id, f)
}

// Package core provides the runtime core tier of the statechart engine: the
// state graph builder, the configuration model, transition selection,
// entry/exit set calculation and the run-to-completion dispatch loop.
//
// The resolved tree is an arena. Every state is addressed by its handle, an
// index into Tree.states assigned in pre-order; the handle doubles as the
// document order used for exit (descending) and entry (ascending) ordering.
package core

import (
	"fmt"

	"github.com/comalice/statechart/internal/primitives"
)

const (
	// RootID is the id of the synthetic root when the top-level spec has none.
	RootID = "__root__"

	// StartEvent and StopEvent switch a sub-machine between its on and off
	// wrapper states.
	StartEvent = primitives.StartEvent
	StopEvent  = primitives.StopEvent

	onStateID  = "__on__"
	offStateID = "__off__"
)

const (
	noState   = -1
	rootState = 0
)

type relayKind uint8

const (
	relayNone relayKind = iota
	// relayDown forwards the event from the owning state into a sub-machine.
	relayDown
	// relayUp forwards the event from a sub-machine to its parent machine.
	relayUp
)

// transition is an edge owned by exactly one source state.
type transition struct {
	source  int
	event   string
	guard   primitives.Guard
	targets []int
	action  primitives.Action

	relay relayKind
	sub   int // sub-machine slot on the source state for relayDown
}

type state struct {
	id          string
	kind        primitives.StateKind
	parent      int
	children    []int
	initial     int
	deep        bool
	atomic      bool
	entry       primitives.Action
	exit        primitives.Action
	transitions []*transition
	history     []int
	subcharts   []*Tree
}

// Tree is the immutable, resolved state tree produced by Build. One Tree can
// back any number of machines.
type Tree struct {
	states  []*state
	byID    map[string]int
	exports []string
}

// Build validates and links a nested state description into a Tree. The
// spec is the top-level (root-equivalent) state; its children become the
// children of the synthetic root. No state is entered.
func Build(spec *primitives.StateConfig) (*Tree, error) {
	if spec == nil {
		return nil, buildErrorf(ErrCodeInvalidStructure, "", "nil top-level spec")
	}
	if len(spec.Children) == 0 {
		return nil, buildErrorf(ErrCodeEmptyRoot, spec.ID, "the root state has to have at least one child state")
	}
	if k := spec.KindOrDefault(); k != primitives.Standard {
		return nil, buildErrorf(ErrCodeInvalidStructure, spec.ID, "the root state must be a standard state, got %s", k)
	}
	if spec.Entry != nil || spec.Exit != nil {
		return nil, buildErrorf(ErrCodeInvalidStructure, spec.ID, "the root state is never entered and cannot carry entry or exit actions")
	}

	b := &treeBuilder{
		tree: &Tree{byID: make(map[string]int)},
		cfgs: nil,
	}

	rootID := spec.ID
	if rootID == "" {
		rootID = RootID
	}
	if err := b.visit(spec, rootID, noState, true); err != nil {
		return nil, err
	}
	for i, cfg := range b.cfgs {
		if err := b.resolveTransitions(i, cfg); err != nil {
			return nil, err
		}
	}
	for i, cfg := range b.cfgs {
		if err := b.instantiateSubcharts(i, cfg); err != nil {
			return nil, err
		}
	}
	b.tree.exports = uniqueStrings(spec.Export)
	return b.tree, nil
}

type treeBuilder struct {
	tree *Tree
	cfgs []*primitives.StateConfig
}

// visit assigns document indices in pre-order and validates each state's
// attribute set.
func (b *treeBuilder) visit(cfg *primitives.StateConfig, id string, parent int, isRoot bool) error {
	if cfg == nil {
		return buildErrorf(ErrCodeInvalidStructure, b.idOf(parent), "nil child state")
	}
	if id == "" {
		return buildErrorf(ErrCodeInvalidStructure, b.idOf(parent), "state id is required")
	}
	if len(cfg.Unknown) > 0 {
		return &BuildError{
			Code:      ErrCodeUnknownAttribute,
			StateID:   id,
			Attribute: cfg.Unknown[0],
			Message:   fmt.Sprintf("invalid state attribute: %s", cfg.Unknown[0]),
		}
	}
	if !cfg.Kind.Valid() {
		return buildErrorf(ErrCodeInvalidStructure, id, "unknown state kind %q", cfg.Kind)
	}
	kind := cfg.KindOrDefault()
	if cfg.Deep && kind != primitives.History {
		return &BuildError{
			Code:      ErrCodeHistoryAttribute,
			StateID:   id,
			Attribute: "deep",
			Message:   "deep attribute only applies to history states",
		}
	}
	if len(cfg.Export) > 0 && !isRoot {
		return &BuildError{
			Code:      ErrCodeInvalidStructure,
			StateID:   id,
			Attribute: "export",
			Message:   "exported events are only declared on a top-level or sub-chart spec",
		}
	}
	if err := checkKindShape(id, kind, cfg); err != nil {
		return err
	}
	if _, exists := b.tree.byID[id]; exists {
		return buildErrorf(ErrCodeDuplicateState, id, "state %s already exists", id)
	}

	idx := len(b.tree.states)
	st := &state{
		id:      id,
		kind:    kind,
		parent:  parent,
		initial: noState,
		deep:    cfg.Deep,
		atomic:  kind != primitives.History && len(cfg.Children) == 0,
		entry:   cfg.Entry,
		exit:    cfg.Exit,
	}
	b.tree.states = append(b.tree.states, st)
	b.tree.byID[id] = idx
	b.cfgs = append(b.cfgs, cfg)

	flagged := noState
	firstEnterable := noState
	for _, child := range cfg.Children {
		childIdx := len(b.tree.states)
		childID := ""
		if child != nil {
			childID = child.ID
		}
		if err := b.visit(child, childID, idx, false); err != nil {
			return err
		}
		st.children = append(st.children, childIdx)
		if child.Initial {
			if flagged != noState {
				return buildErrorf(ErrCodeInvalidStructure, id, "more than one initial child (%s, %s)", b.idOf(flagged), child.ID)
			}
			flagged = childIdx
		}
		if child.KindOrDefault() == primitives.History {
			st.history = append(st.history, childIdx)
		} else if firstEnterable == noState {
			firstEnterable = childIdx
		}
	}

	if len(st.children) > 0 {
		if firstEnterable == noState {
			return buildErrorf(ErrCodeInvalidStructure, id, "state has only history children and cannot be entered")
		}
		st.initial = firstEnterable
		if flagged != noState {
			st.initial = flagged
		}
	}
	return nil
}

func checkKindShape(id string, kind primitives.StateKind, cfg *primitives.StateConfig) error {
	switch kind {
	case primitives.History:
		if len(cfg.Children) > 0 {
			return buildErrorf(ErrCodeInvalidStructure, id, "history state cannot have children (restored at runtime)")
		}
		if len(cfg.Transitions) > 0 || cfg.Entry != nil || cfg.Exit != nil || len(cfg.Subcharts) > 0 {
			return buildErrorf(ErrCodeInvalidStructure, id, "history state cannot carry transitions, actions or sub-charts")
		}
	case primitives.Final:
		if len(cfg.Children) > 0 {
			return buildErrorf(ErrCodeInvalidStructure, id, "final state cannot have children")
		}
	}
	return nil
}

// resolveTransitions binds transition target ids to state handles.
func (b *treeBuilder) resolveTransitions(idx int, cfg *primitives.StateConfig) error {
	st := b.tree.states[idx]
	for _, tc := range cfg.Transitions {
		if tc == nil {
			return buildErrorf(ErrCodeInvalidStructure, st.id, "nil transition")
		}
		if len(tc.Unknown) > 0 {
			return &BuildError{
				Code:      ErrCodeUnknownAttribute,
				StateID:   st.id,
				Attribute: tc.Unknown[0],
				Message:   fmt.Sprintf("illegal transition attribute: %s", tc.Unknown[0]),
			}
		}
		if !tc.HasSideEffects() {
			return buildErrorf(ErrCodeNoSideEffects, st.id, "transition on %q has no side effects", tc.Event)
		}
		t := &transition{
			source: idx,
			event:  tc.Event,
			guard:  tc.Guard,
			action: tc.Action,
		}
		seen := make(map[int]bool, len(tc.Targets))
		for _, target := range tc.Targets {
			ti, ok := b.tree.byID[target]
			if !ok {
				return &BuildError{
					Code:      ErrCodeUnresolvedTarget,
					StateID:   st.id,
					Attribute: "targets",
					Message:   fmt.Sprintf("state %s not found, in transition from state %s", target, st.id),
				}
			}
			if ti == rootState {
				return buildErrorf(ErrCodeInvalidStructure, st.id, "transition cannot target the root state")
			}
			if !seen[ti] {
				seen[ti] = true
				t.targets = append(t.targets, ti)
			}
		}
		st.transitions = append(st.transitions, t)
	}
	return nil
}

// instantiateSubcharts wraps every sub-chart spec of a state into an
// on/off tree and wires the exported-event relays in both directions.
func (b *treeBuilder) instantiateSubcharts(idx int, cfg *primitives.StateConfig) error {
	st := b.tree.states[idx]
	for slot, sc := range cfg.Subcharts {
		if sc == nil {
			return buildErrorf(ErrCodeInvalidStructure, st.id, "nil sub-chart")
		}
		inner := *sc
		inner.Export = nil
		inner.Initial = false
		wrapped := &primitives.StateConfig{
			ID: RootID,
			Children: []*primitives.StateConfig{
				{
					ID:          onStateID,
					Children:    []*primitives.StateConfig{&inner},
					Transitions: []*primitives.TransitionConfig{{Event: StopEvent, Targets: []string{offStateID}}},
				},
				{
					ID:          offStateID,
					Initial:     true,
					Transitions: []*primitives.TransitionConfig{{Event: StartEvent, Targets: []string{onStateID}}},
				},
			},
		}
		child, err := Build(wrapped)
		if err != nil {
			return err
		}

		exports := uniqueStrings(sc.Export)
		child.exports = exports
		specIdx := child.byID[inner.ID]
		for _, name := range exports {
			child.states[specIdx].transitions = append(child.states[specIdx].transitions, &transition{
				source: specIdx,
				event:  name,
				relay:  relayUp,
			})
			st.transitions = append(st.transitions, &transition{
				source: idx,
				event:  name,
				relay:  relayDown,
				sub:    slot,
			})
		}
		st.subcharts = append(st.subcharts, child)
	}
	return nil
}

func (b *treeBuilder) idOf(idx int) string {
	if idx == noState || idx >= len(b.tree.states) {
		return ""
	}
	return b.tree.states[idx].id
}

func uniqueStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

//
// Structural queries
//

// RootID returns the id of the synthetic root.
func (t *Tree) RootID() string {
	return t.states[rootState].id
}

// Len returns the number of states, root included.
func (t *Tree) Len() int {
	return len(t.states)
}

// IDs returns all state ids except the root, in document order.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.states)-1)
	for _, s := range t.states[1:] {
		ids = append(ids, s.id)
	}
	return ids
}

// Has reports whether id names a state of the tree.
func (t *Tree) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Parent returns the id of the parent of id. The root has none.
func (t *Tree) Parent(id string) (string, bool) {
	idx, ok := t.byID[id]
	if !ok || t.states[idx].parent == noState {
		return "", false
	}
	return t.states[t.states[idx].parent].id, true
}

// Children returns the child ids of id in document order.
func (t *Tree) Children(id string) []string {
	idx, ok := t.byID[id]
	if !ok {
		return nil
	}
	return t.idsOf(t.states[idx].children)
}

// Kind returns the kind of id, or the empty kind if it does not exist.
func (t *Tree) Kind(id string) primitives.StateKind {
	idx, ok := t.byID[id]
	if !ok {
		return ""
	}
	return t.states[idx].kind
}

// IsAtomic reports whether id is a non-history state without children.
func (t *Tree) IsAtomic(id string) bool {
	idx, ok := t.byID[id]
	return ok && t.states[idx].atomic
}

// Initial returns the child entered by default when id is entered.
func (t *Tree) Initial(id string) (string, bool) {
	idx, ok := t.byID[id]
	if !ok || t.states[idx].initial == noState {
		return "", false
	}
	return t.states[t.states[idx].initial].id, true
}

// Exports returns the event names declared as exported by the top-level spec.
func (t *Tree) Exports() []string {
	return append([]string(nil), t.exports...)
}

func (t *Tree) idsOf(handles []int) []string {
	ids := make([]string, len(handles))
	for i, h := range handles {
		ids[i] = t.states[h].id
	}
	return ids
}

//
// Tree algorithms over handles
//

// isDescendant reports whether s is a proper descendant of anc.
func (t *Tree) isDescendant(s, anc int) bool {
	for p := t.states[s].parent; p != noState; p = t.states[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

// properAncestors returns the ancestors of s, innermost first, stopping before
// upTo (exclusive). Pass noState to walk to the root inclusive.
func (t *Tree) properAncestors(s, upTo int) []int {
	var ancs []int
	for p := t.states[s].parent; p != noState && p != upTo; p = t.states[p].parent {
		ancs = append(ancs, p)
	}
	return ancs
}

// lca returns the deepest proper ancestor of source that is also a proper
// ancestor of every target. The root is the fallback.
func (t *Tree) lca(source int, targets []int) int {
	for _, anc := range t.properAncestors(source, noState) {
		all := true
		for _, target := range targets {
			if !t.isDescendant(target, anc) {
				all = false
				break
			}
		}
		if all {
			return anc
		}
	}
	return rootState
}

// enterableChildren returns the non-history children of s.
func (t *Tree) enterableChildren(s int) []int {
	var out []int
	for _, c := range t.states[s].children {
		if t.states[c].kind != primitives.History {
			out = append(out, c)
		}
	}
	return out
}

// historyDefault returns the states entered through history state h when
// nothing was recorded yet: every region for a parallel owner, otherwise the
// owner's default child.
func (t *Tree) historyDefault(h int) []int {
	owner := t.states[h].parent
	if t.states[owner].kind == primitives.Parallel {
		return t.enterableChildren(owner)
	}
	initial := t.states[owner].initial
	if t.states[initial].kind == primitives.History {
		return t.enterableChildren(owner)[:1]
	}
	return []int{initial}
}

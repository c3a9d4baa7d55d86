package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/comalice/statechart/internal/primitives"
)

// Machine is one running interpreter over a Tree.
//
// A Machine is not safe for concurrent use. Emit may be called from inside an
// action: the event is queued and handled after the running macrostep, never
// inline. Each sub-chart of a state runs as its own Machine, reachable only
// through the owning state's start, stop and relay transitions.
type Machine struct {
	id            string
	tree          *Tree
	parent        *Machine
	logger        *slog.Logger
	observer      Observer
	maxMicrosteps int

	config  *configuration
	history *historyTable
	subs    map[int][]*Machine

	external eventQueue
	internal eventQueue
	current  primitives.Event
	steps    int
	busy     bool
	done     bool
}

// New creates a Machine over tree and performs the initial entry into the
// root's default child, including every eventless and internal step that
// follows it. The returned machine is settled.
func New(tree *Tree, opts ...Option) (*Machine, error) {
	if tree == nil || len(tree.states) == 0 {
		return nil, buildErrorf(ErrCodeInvalidStructure, "", "nil state tree")
	}
	m := newMachine(tree)
	for _, opt := range opts {
		opt(m)
	}
	base := m.logger
	m.logger = base.With("machine", m.id)

	if err := m.spawnSubs(base); err != nil {
		return nil, err
	}
	if err := m.start(); err != nil {
		return nil, err
	}
	m.logger.Info("machine started", "configuration", m.Configuration())
	return m, nil
}

func newMachine(tree *Tree) *Machine {
	return &Machine{
		id:            uuid.Must(uuid.NewV7()).String(),
		tree:          tree,
		logger:        slog.New(slog.DiscardHandler),
		observer:      nopObserver{},
		maxMicrosteps: DefaultMaxMicrosteps,
		config:        newConfiguration(tree),
		history:       newHistoryTable(),
		subs:          make(map[int][]*Machine),
	}
}

// spawnSubs creates the sub-machines of every state. They start in their off
// state and are switched on when the owning state is entered.
func (m *Machine) spawnSubs(base *slog.Logger) error {
	for idx, st := range m.tree.states {
		for _, sc := range st.subcharts {
			child := newMachine(sc)
			child.parent = m
			child.maxMicrosteps = m.maxMicrosteps
			child.logger = base.With("machine", child.id, "parent", m.id)
			if err := child.spawnSubs(base); err != nil {
				return err
			}
			if err := child.start(); err != nil {
				return err
			}
			m.subs[idx] = append(m.subs[idx], child)
		}
	}
	return nil
}

func (m *Machine) start() error {
	return m.run(func() error {
		m.steps = 0
		m.current = primitives.Event{}
		if err := m.enter(m.initialEntrySet(), m.current); err != nil {
			return err
		}
		return m.drain()
	})
}

// Emit queues a named external event and, unless a macrostep is already
// running, processes the external queue until it is empty.
// Events emitted after the chart reached a top-level final state are dropped.
func (m *Machine) Emit(name string, data any) error {
	return m.deliver(queuedEvent{Event: primitives.NewEvent(name, data)})
}

func (m *Machine) deliver(qe queuedEvent) error {
	if qe.Name == "" {
		return ErrEmptyEvent
	}
	if m.done {
		m.logger.Warn("event ignored, chart is done", "event", qe.Name)
		return nil
	}
	m.external.push(qe)
	return m.run(nil)
}

// run holds the busy guard while it executes first, if any, and then every
// queued external event in FIFO order. A reentrant call returns immediately;
// its event is already queued.
func (m *Machine) run(first func() error) error {
	if m.busy {
		return nil
	}
	m.busy = true
	defer func() { m.busy = false }()

	if first != nil {
		if err := first(); err != nil {
			return err
		}
	}
	for {
		if m.done {
			m.external.clear()
			return nil
		}
		qe, ok := m.external.pop()
		if !ok {
			return nil
		}
		if err := m.macrostep(qe); err != nil {
			return err
		}
	}
}

func (m *Machine) macrostep(qe queuedEvent) error {
	m.steps = 0
	m.current = qe.Event
	if enabled := m.selectTransitions(&qe); len(enabled.items) > 0 {
		if err := m.microstep(enabled); err != nil {
			return err
		}
	}
	return m.drain()
}

// drain runs eventless transitions first, then internal events one at a time,
// until neither enables anything.
func (m *Machine) drain() error {
	for !m.done {
		enabled := m.selectTransitions(nil)
		if len(enabled.items) == 0 {
			qe, ok := m.internal.pop()
			if !ok {
				return nil
			}
			m.current = qe.Event
			enabled = m.selectTransitions(&qe)
			if len(enabled.items) == 0 {
				continue
			}
		}
		if err := m.microstep(enabled); err != nil {
			return err
		}
	}
	m.internal.clear()
	return nil
}

func (m *Machine) microstep(enabled *transitionSet) error {
	m.steps++
	if m.steps > m.maxMicrosteps {
		return &RuntimeError{
			Code:    ErrCodeMicrostepLimit,
			Event:   m.current.Name,
			Message: fmt.Sprintf("macrostep exceeded %d microsteps", m.maxMicrosteps),
		}
	}
	e := m.current

	exits := m.exitSet(enabled)
	for _, s := range exits {
		for _, h := range m.tree.states[s].history {
			m.history.record(h, m.config.historyValue(h))
		}
	}
	for _, s := range exits {
		st := m.tree.states[s]
		if st.exit != nil {
			if err := st.exit(e, raiser{m}); err != nil {
				return m.actionFailed(err, s, "exit")
			}
		}
		m.config.remove(s)
		m.observer.OnExit(st.id, e)
		if err := m.signalSubs(s, StopEvent); err != nil {
			return err
		}
	}

	for _, t := range enabled.items {
		if err := m.fire(t, e); err != nil {
			return err
		}
	}

	entries := m.entrySet(enabled)
	if err := m.enter(entries, e); err != nil {
		return err
	}

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("microstep",
			"event", e.Name,
			"transitions", len(enabled.items),
			"exited", m.tree.idsOf(exits),
			"entered", m.tree.idsOf(entries))
	}
	return nil
}

func (m *Machine) fire(t *transition, e primitives.Event) error {
	switch t.relay {
	case relayDown:
		subs := m.subs[t.source]
		if t.sub >= len(subs) {
			return nil
		}
		return subs[t.sub].deliver(queuedEvent{Event: e, from: m})
	case relayUp:
		if m.parent == nil {
			return nil
		}
		return m.parent.deliver(queuedEvent{Event: e, from: m})
	}

	if len(t.targets) > 0 {
		m.observer.OnTransition(m.tree.states[t.source].id, m.tree.idsOf(t.targets), e)
	}
	if t.action != nil {
		if err := t.action(e, raiser{m}); err != nil {
			return m.actionFailed(err, t.source, "transition")
		}
	}
	return nil
}

func (m *Machine) enter(entries []int, e primitives.Event) error {
	for _, s := range entries {
		st := m.tree.states[s]
		m.config.add(s)
		m.observer.OnEnter(st.id, e)
		if st.entry != nil {
			if err := st.entry(e, raiser{m}); err != nil {
				return m.actionFailed(err, s, "entry")
			}
		}
		if err := m.signalSubs(s, StartEvent); err != nil {
			return err
		}
		if st.kind == primitives.Final {
			m.completed(s)
		}
	}
	return nil
}

// completed raises the done events a newly entered final state s causes.
func (m *Machine) completed(s int) {
	parent := m.tree.states[s].parent
	if parent == rootState {
		m.done = true
		m.logger.Debug("chart reached its final configuration", "state", m.tree.states[s].id)
		return
	}
	if m.config.isComplete(parent) {
		m.raise(primitives.DoneEvent(m.tree.states[parent].id))
	}
	grand := m.tree.states[parent].parent
	if grand != noState && grand != rootState &&
		m.tree.states[grand].kind == primitives.Parallel && m.config.isComplete(grand) {
		m.raise(primitives.DoneEvent(m.tree.states[grand].id))
	}
}

func (m *Machine) signalSubs(s int, name string) error {
	for _, sub := range m.subs[s] {
		if err := sub.deliver(queuedEvent{Event: primitives.NewEvent(name, nil), from: m}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) raise(e primitives.Event) {
	m.internal.push(queuedEvent{Event: e, from: m})
}

func (m *Machine) actionFailed(err error, s int, phase string) error {
	id := m.tree.states[s].id
	return &RuntimeError{
		Code:    ErrCodeActionFailed,
		Event:   m.current.Name,
		StateID: id,
		Phase:   phase,
		Message: fmt.Sprintf("%s action of %s failed", phase, id),
		Err:     err,
	}
}

// raiser is the Emitter handed to actions.
type raiser struct {
	m *Machine
}

func (r raiser) Raise(name string, data any) {
	if name == "" {
		r.m.logger.Warn("unnamed internal event dropped")
		return
	}
	r.m.raise(primitives.NewEvent(name, data))
}

//
// Introspection
//

// ID returns the instance id.
func (m *Machine) ID() string {
	return m.id
}

// Tree returns the resolved tree the machine runs.
func (m *Machine) Tree() *Tree {
	return m.tree
}

// Configuration returns the active state ids in document order.
func (m *Machine) Configuration() []string {
	return m.tree.idsOf(m.config.ascending())
}

// IsActive reports whether the state id is in the configuration.
func (m *Machine) IsActive(id string) bool {
	idx, ok := m.tree.byID[id]
	return ok && m.config.has(idx)
}

// Done reports whether a top-level final state has been entered.
func (m *Machine) Done() bool {
	return m.done
}

// History returns the states recorded by the history state id, if its owner
// has been exited at least once.
func (m *Machine) History(id string) ([]string, bool) {
	idx, ok := m.tree.byID[id]
	if !ok || m.tree.states[idx].kind != primitives.History {
		return nil, false
	}
	recorded, ok := m.history.restore(idx)
	if !ok {
		return nil, false
	}
	return m.tree.idsOf(recorded), true
}

// Subcharts returns the sub-machines owned by the state id in declaration
// order.
func (m *Machine) Subcharts(id string) []*Machine {
	idx, ok := m.tree.byID[id]
	if !ok {
		return nil
	}
	return append([]*Machine(nil), m.subs[idx]...)
}

// Pending returns the number of queued external events. It is non-zero only
// after a macrostep stopped on an error.
func (m *Machine) Pending() int {
	return m.external.len()
}

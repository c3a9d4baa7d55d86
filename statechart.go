// Package statechart is a hierarchical, parallel statechart interpreter with
// history, completion events and nested sub-charts.
//
// A chart is described as a tree of StateConfig values, usually produced by
// the builder package or loaded by the chartfile package, and validated once
// by New. The returned Statechart has already entered its initial
// configuration. Every Emit runs one macrostep to completion before returning.
//
//	spec := builder.State("light",
//		builder.State("off", builder.On("flip", "on")),
//		builder.State("on", builder.On("flip", "off")),
//	).MustBuild()
//	sc, err := statechart.New(spec)
//	...
//	err = sc.Emit("flip", nil)
package statechart

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/comalice/statechart/internal/core"
	"github.com/comalice/statechart/internal/primitives"
)

type (
	Event            = primitives.Event
	StateKind        = primitives.StateKind
	Action           = primitives.Action
	Guard            = primitives.Guard
	Emitter          = primitives.Emitter
	StateConfig      = primitives.StateConfig
	TransitionConfig = primitives.TransitionConfig

	Observer = core.Observer
	Option   = core.Option
	Tree     = core.Tree
	Machine  = core.Machine

	BuildError       = core.BuildError
	BuildErrorCode   = core.BuildErrorCode
	RuntimeError     = core.RuntimeError
	RuntimeErrorCode = core.RuntimeErrorCode
)

const (
	Standard = primitives.Standard
	Parallel = primitives.Parallel
	Final    = primitives.Final
	History  = primitives.History

	// Wildcard matches any named event.
	Wildcard = primitives.Wildcard
)

const (
	ErrCodeUnknownAttribute = core.ErrCodeUnknownAttribute
	ErrCodeDuplicateState   = core.ErrCodeDuplicateState
	ErrCodeHistoryAttribute = core.ErrCodeHistoryAttribute
	ErrCodeUnresolvedTarget = core.ErrCodeUnresolvedTarget
	ErrCodeNoSideEffects    = core.ErrCodeNoSideEffects
	ErrCodeEmptyRoot        = core.ErrCodeEmptyRoot
	ErrCodeInvalidStructure = core.ErrCodeInvalidStructure

	ErrCodeActionFailed   = core.ErrCodeActionFailed
	ErrCodeMicrostepLimit = core.ErrCodeMicrostepLimit
)

var (
	// ErrEmptyEvent is returned by Emit for an event without a name.
	ErrEmptyEvent = core.ErrEmptyEvent

	// ErrNotExported is returned by Call for a name the chart does not export.
	ErrNotExported = errors.New("event is not exported")
)

// IsBuildError reports whether err is a BuildError with the given code.
func IsBuildError(err error, code BuildErrorCode) bool {
	return core.IsBuildError(err, code)
}

// IsRuntimeError reports whether err is a RuntimeError with the given code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	return core.IsRuntimeError(err, code)
}

// DataEquals returns a guard accepting events whose data deep-equals v.
func DataEquals(v any) Guard { return primitives.DataEquals(v) }

// DataNotEquals returns a guard rejecting events whose data deep-equals v.
func DataNotEquals(v any) Guard { return primitives.DataNotEquals(v) }

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option { return core.WithLogger(l) }

// WithID overrides the generated instance id used in log records.
func WithID(id string) Option { return core.WithID(id) }

// WithObserver registers an Observer for entry, exit and transition callbacks.
func WithObserver(o Observer) Option { return core.WithObserver(o) }

// WithMaxMicrosteps bounds the microsteps one Emit may run before it fails
// with ErrCodeMicrostepLimit.
func WithMaxMicrosteps(n int) Option { return core.WithMaxMicrosteps(n) }

// Compile validates spec and resolves it into a Tree without starting a chart.
func Compile(spec *StateConfig) (*Tree, error) {
	return core.Build(spec)
}

// Validate reports the *BuildError New would fail with, if any.
func Validate(spec *StateConfig) error {
	_, err := core.Build(spec)
	return err
}

// Statechart is a running chart plus the events it exports by name.
// Like the Machine it embeds, it is not safe for concurrent use; see the
// realtime package for a goroutine-safe front.
type Statechart struct {
	*core.Machine
	exports map[string]bool
}

// New validates spec and starts a chart over it. Structural problems are
// reported as *BuildError before any state is entered.
func New(spec *StateConfig, opts ...Option) (*Statechart, error) {
	tree, err := core.Build(spec)
	if err != nil {
		return nil, err
	}
	m, err := core.New(tree, opts...)
	if err != nil {
		return nil, err
	}
	sc := &Statechart{Machine: m, exports: make(map[string]bool)}
	for _, name := range tree.Exports() {
		sc.exports[name] = true
	}
	return sc, nil
}

// Call emits the exported event name with data.
func (s *Statechart) Call(name string, data any) error {
	if !s.exports[name] {
		return fmt.Errorf("%w: %s", ErrNotExported, name)
	}
	return s.Emit(name, data)
}

// Exported returns a function emitting the exported event name.
func (s *Statechart) Exported(name string) (func(data any) error, bool) {
	if !s.exports[name] {
		return nil, false
	}
	return func(data any) error { return s.Emit(name, data) }, true
}

// Exports returns the exported event names in declaration order.
func (s *Statechart) Exports() []string {
	return s.Tree().Exports()
}

package core

import "github.com/comalice/statechart/internal/primitives"

// Observer receives configuration changes as they happen inside a microstep.
// Callbacks run synchronously on the interpreting goroutine and must not call
// back into the machine. OnTransition is reported for transitions with
// targets only.
type Observer interface {
	OnEnter(stateID string, e primitives.Event)
	OnExit(stateID string, e primitives.Event)
	OnTransition(source string, targets []string, e primitives.Event)
}

type nopObserver struct{}

func (nopObserver) OnEnter(string, primitives.Event)                {}
func (nopObserver) OnExit(string, primitives.Event)                 {}
func (nopObserver) OnTransition(string, []string, primitives.Event) {}

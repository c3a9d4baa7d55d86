// Package production provides integrations for charts running inside a
// larger service.
package production

import (
	"strings"
	"sync/atomic"

	"github.com/comalice/statechart/internal/core"
	"github.com/comalice/statechart/internal/primitives"
)

// ChangeKind names what a Change reports.
type ChangeKind string

const (
	Entered    ChangeKind = "enter"
	Exited     ChangeKind = "exit"
	Transition ChangeKind = "transition"
)

// Change is one configuration change published by a ChannelPublisher.
type Change struct {
	Machine string
	Kind    ChangeKind
	State   string   // entered or exited state, or transition source
	Targets []string // transition targets only
	Event   primitives.Event
}

func (c Change) String() string {
	if c.Kind == Transition {
		return string(c.Kind) + " " + c.State + " -> " + strings.Join(c.Targets, ", ")
	}
	return string(c.Kind) + " " + c.State
}

// ChannelPublisher is an Observer forwarding every change to a channel.
// Publishing never blocks the interpreter: changes are dropped and counted
// while the channel is full.
type ChannelPublisher struct {
	machine string
	ch      chan<- Change
	dropped atomic.Int64
}

var _ core.Observer = (*ChannelPublisher)(nil)

// NewChannelPublisher creates a ChannelPublisher tagging changes with the
// machine name.
func NewChannelPublisher(machine string, ch chan<- Change) *ChannelPublisher {
	return &ChannelPublisher{machine: machine, ch: ch}
}

func (p *ChannelPublisher) OnEnter(id string, e primitives.Event) {
	p.publish(Change{Kind: Entered, State: id, Event: e})
}

func (p *ChannelPublisher) OnExit(id string, e primitives.Event) {
	p.publish(Change{Kind: Exited, State: id, Event: e})
}

func (p *ChannelPublisher) OnTransition(source string, targets []string, e primitives.Event) {
	p.publish(Change{Kind: Transition, State: source, Targets: targets, Event: e})
}

func (p *ChannelPublisher) publish(c Change) {
	c.Machine = p.machine
	select {
	case p.ch <- c:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many changes were lost to a full channel.
func (p *ChannelPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close closes the channel. The publisher must not be used by a running chart
// afterwards.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

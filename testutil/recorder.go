// Package testutil holds helpers shared by the tests of the statechart
// packages: an Observer that records traces, configuration invariant checks
// and adapters that run one test against both runtimes.
package testutil

import (
	"strings"
	"sync"

	"github.com/comalice/statechart"
)

// Recorder is an Observer collecting "enter:<id>", "exit:<id>" and
// "transition:<source>-><targets>" steps in the order they happen.
type Recorder struct {
	mu    sync.Mutex
	steps []string
}

var _ statechart.Observer = (*Recorder)(nil)

func (r *Recorder) OnEnter(id string, _ statechart.Event) {
	r.add("enter:" + id)
}

func (r *Recorder) OnExit(id string, _ statechart.Event) {
	r.add("exit:" + id)
}

func (r *Recorder) OnTransition(source string, targets []string, _ statechart.Event) {
	r.add("transition:" + source + "->" + strings.Join(targets, ","))
}

func (r *Recorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

// Trace returns a copy of the recorded steps.
func (r *Recorder) Trace() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

// Entered returns only the ids of entered states, in order.
func (r *Recorder) Entered() []string {
	return r.filter("enter:")
}

// Exited returns only the ids of exited states, in order.
func (r *Recorder) Exited() []string {
	return r.filter("exit:")
}

func (r *Recorder) filter(prefix string) []string {
	var out []string
	for _, step := range r.Trace() {
		if id, ok := strings.CutPrefix(step, prefix); ok {
			out = append(out, id)
		}
	}
	return out
}

// Reset drops every recorded step.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

// Package benchmarks provides performance benchmarks for the statechart engine core transitions.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/builder"
)

func emitLoop(b *testing.B, sc *statechart.Statechart, event string) {
	b.Helper()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := sc.Emit(event, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSimpleTransition(b *testing.B) {
	sc := mustStart(b, builder.State("simple",
		builder.State("idle", builder.On("tick", "idle")),
	).MustBuild())
	emitLoop(b, sc, "tick")
}

func BenchmarkHierarchicalTransition(b *testing.B) {
	for _, depth := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			emitLoop(b, mustStart(b, GenDeepChart(depth)), "tick")
		})
	}
}

func BenchmarkParallelTransition(b *testing.B) {
	for _, regions := range []int{2, 8, 32} {
		b.Run(fmt.Sprintf("regions=%d", regions), func(b *testing.B) {
			emitLoop(b, mustStart(b, GenParallelChart(regions)), "tick")
		})
	}
}

func BenchmarkGuardedTransition(b *testing.B) {
	sc := mustStart(b, builder.State("guarded",
		builder.State("idle", builder.Transition(
			builder.Event("tick"),
			builder.Condition(func(statechart.Event) bool { return true }),
			builder.Target("idle"),
		)),
	).MustBuild())
	emitLoop(b, sc, "tick")
}

func BenchmarkWideTransitions(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("transitions=%d", n), func(b *testing.B) {
			emitLoop(b, mustStart(b, GenWideTransitions(n)), "tick")
		})
	}
}

func BenchmarkHistoryRestore(b *testing.B) {
	sc := mustStart(b, builder.State("player",
		builder.State("on",
			builder.History("h", builder.Deep()),
			builder.State("a", builder.State("a1"), builder.State("a2")),
			builder.On("toggle", "off"),
		),
		builder.State("off", builder.On("toggle", "h")),
	).MustBuild())
	emitLoop(b, sc, "toggle")
}

func BenchmarkInternalEvents(b *testing.B) {
	raise := builder.Action(func(_ statechart.Event, emit statechart.Emitter) error {
		emit.Raise("step", nil)
		return nil
	})
	sc := mustStart(b, builder.State("relay",
		builder.State("a", builder.On("tick", "b", raise)),
		builder.State("b", builder.On("step", "a")),
	).MustBuild())
	emitLoop(b, sc, "tick")
}

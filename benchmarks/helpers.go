// Package benchmarks provides shared chart generators for the benchmark tests.
package benchmarks

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/primitives"
)

// GenFlatChart creates n atomic states cycling via "tick" events.
func GenFlatChart(n int) *statechart.StateConfig {
	if n < 1 {
		n = 1
	}
	root := primitives.NewStateConfig(fmt.Sprintf("flat_%d", n), primitives.Standard)
	for i := 0; i < n; i++ {
		root.State(fmt.Sprintf("s%d", i)).On("tick", fmt.Sprintf("s%d", (i+1)%n))
	}
	return root
}

// GenDeepChart nests depth compound states and flips between two leaves at the
// bottom, so every tick exits and enters one leaf under depth ancestors.
func GenDeepChart(depth int) *statechart.StateConfig {
	if depth < 1 {
		depth = 1
	}
	root := primitives.NewStateConfig(fmt.Sprintf("deep_%d", depth), primitives.Standard)
	parent := root
	for i := 0; i < depth; i++ {
		parent = parent.State(fmt.Sprintf("c%d", i))
	}
	parent.State("leaf1").On("tick", "leaf2")
	parent.State("leaf2").On("tick", "leaf1")
	return root
}

// GenParallelChart creates one parallel state with n regions, each flipping
// between two leaves on "tick".
func GenParallelChart(regions int) *statechart.StateConfig {
	if regions < 1 {
		regions = 1
	}
	root := primitives.NewStateConfig(fmt.Sprintf("parallel_%d", regions), primitives.Standard)
	p := root.State("p", primitives.Parallel)
	for i := 0; i < regions; i++ {
		region := p.State(fmt.Sprintf("r%d", i))
		a, b := fmt.Sprintf("r%d_a", i), fmt.Sprintf("r%d_b", i)
		region.State(a).On("tick", b)
		region.State(b).On("tick", a)
	}
	return root
}

// GenWideTransitions creates one main state with n guarded "tick"
// transitions; only the last one is enabled, so selection scans them all.
func GenWideTransitions(n int) *statechart.StateConfig {
	if n < 1 {
		n = 1
	}
	root := primitives.NewStateConfig(fmt.Sprintf("wide_%d", n), primitives.Standard)
	main := root.State("main")
	for i := 0; i < n; i++ {
		target := fmt.Sprintf("target%d", i)
		enabled := i == n-1
		main.AddTransition(&primitives.TransitionConfig{
			Event:   "tick",
			Targets: []string{target},
			Guard:   func(primitives.Event) bool { return enabled },
		})
		root.State(target).On("tick", "main")
	}
	return root
}

// GenChartYAML renders a flat chart of n states as a chart document.
func GenChartYAML(n int) []byte {
	if n < 1 {
		n = 1
	}
	states := make([]map[string]any, n)
	for i := range states {
		states[i] = map[string]any{
			"id": fmt.Sprintf("s%d", i),
			"transitions": []map[string]any{
				{"event": "tick", "target": fmt.Sprintf("s%d", (i+1)%n)},
				{"event": "check", "condition": fmt.Sprintf("data == %d", i), "action": "raise matched"},
			},
		}
	}
	data, err := yaml.Marshal(map[string]any{
		"id":     fmt.Sprintf("doc_%d", n),
		"export": []string{"tick"},
		"states": states,
	})
	if err != nil {
		panic(err)
	}
	return data
}

// mustStart builds and starts spec or fails the benchmark.
func mustStart(b *testing.B, spec *statechart.StateConfig, opts ...statechart.Option) *statechart.Statechart {
	b.Helper()
	sc, err := statechart.New(spec, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return sc
}

// Package primitives provides the foundational data structures shared by the
// statechart engine and its collaborators.
//
// Nothing in this package has runtime behaviour: it describes events, the
// callbacks a chart may carry, and the unresolved state tree (StateConfig)
// that the builder DSL and the chart file loader produce and the core
// resolves into an immutable arena.
//
// Core invariants:
//   - Event is a value type and is never mutated after construction
//   - StateConfig is plain data; validation happens once, in core.Build
package primitives

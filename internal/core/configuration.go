package core

import "github.com/comalice/statechart/internal/primitives"

// configuration is the live set of active states of one machine. The root is
// never a member.
type configuration struct {
	tree   *Tree
	active *stateSet
}

func newConfiguration(tree *Tree) *configuration {
	return &configuration{tree: tree, active: newStateSet()}
}

func (c *configuration) add(s int) { c.active.Add(s) }
func (c *configuration) remove(s int) { c.active.Remove(s) }
func (c *configuration) has(s int) bool { return c.active.Has(s) }
func (c *configuration) ascending() []int { return c.active.Ascending() }
func (c *configuration) members() []int { return c.active.Items() }

// atomic returns the active atomic states in document order.
func (c *configuration) atomic() []int {
	var out []int
	for _, s := range c.active.Ascending() {
		if c.tree.states[s].atomic {
			out = append(out, s)
		}
	}
	return out
}

// historyValue computes what history state h records when its owner is exited.
// It must run before any state of the exit set is removed.
func (c *configuration) historyValue(hist int) []int {
	owner := c.tree.states[hist].parent
	deep := c.tree.states[hist].deep
	var out []int
	for _, s := range c.active.Ascending() {
		if deep {
			if c.tree.states[s].atomic && c.tree.isDescendant(s, owner) {
				out = append(out, s)
			}
		} else if c.tree.states[s].parent == owner {
			out = append(out, s)
		}
	}
	return out
}

// isComplete is the completion predicate: a final state is complete while
// active, a standard state when an active child is final, a parallel state
// when every region is complete.
func (c *configuration) isComplete(s int) bool {
	st := c.tree.states[s]
	switch st.kind {
	case primitives.Final:
		return c.has(s)
	case primitives.Standard:
		for _, child := range st.children {
			if c.has(child) && c.tree.states[child].kind == primitives.Final {
				return true
			}
		}
		return false
	case primitives.Parallel:
		regions := c.tree.enterableChildren(s)
		if len(regions) == 0 {
			return false
		}
		for _, child := range regions {
			if !c.isComplete(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

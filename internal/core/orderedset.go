package core

import "sort"

// stateSet is an insertion-ordered set of state handles. Add is a no-op for a
// handle already present, so the first insertion fixes its relative position.
type stateSet struct {
	items []int
	in    map[int]bool
}

func newStateSet() *stateSet {
	return &stateSet{in: make(map[int]bool)}
}

func (s *stateSet) Add(h int) bool {
	if s.in[h] {
		return false
	}
	s.in[h] = true
	s.items = append(s.items, h)
	return true
}

func (s *stateSet) Has(h int) bool {
	return s.in[h]
}

// Remove deletes h by content, preserving the order of the remaining items.
func (s *stateSet) Remove(h int) bool {
	if !s.in[h] {
		return false
	}
	delete(s.in, h)
	for i, item := range s.items {
		if item == h {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

func (s *stateSet) Len() int {
	return len(s.items)
}

// Items returns a copy in insertion order.
func (s *stateSet) Items() []int {
	return append([]int(nil), s.items...)
}

// Some reports whether any member satisfies pred.
func (s *stateSet) Some(pred func(int) bool) bool {
	for _, item := range s.items {
		if pred(item) {
			return true
		}
	}
	return false
}

// Ascending returns the members sorted by document order.
func (s *stateSet) Ascending() []int {
	out := s.Items()
	sort.Ints(out)
	return out
}

// Descending returns the members sorted by reverse document order.
func (s *stateSet) Descending() []int {
	out := s.Items()
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// transitionSet is the ordered set of transitions selected for one microstep.
type transitionSet struct {
	items []*transition
}

func (s *transitionSet) Has(t *transition) bool {
	for _, item := range s.items {
		if item == t {
			return true
		}
	}
	return false
}

func (s *transitionSet) Add(t *transition) {
	if !s.Has(t) {
		s.items = append(s.items, t)
	}
}

// RemoveIf drops every member matching pred, preserving order.
func (s *transitionSet) RemoveIf(pred func(*transition) bool) {
	kept := s.items[:0]
	for _, item := range s.items {
		if !pred(item) {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

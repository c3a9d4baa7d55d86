package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateSetUniqueAdd(t *testing.T) {
	s := newStateSet()
	assert.True(t, s.Add(3))
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(3))
	assert.True(t, s.Add(2))

	assert.Equal(t, []int{3, 1, 2}, s.Items())
	assert.Equal(t, []int{1, 2, 3}, s.Ascending())
	assert.Equal(t, []int{3, 2, 1}, s.Descending())
}

func TestStateSetRemoveByContent(t *testing.T) {
	s := newStateSet()
	for _, h := range []int{5, 7, 9} {
		s.Add(h)
	}

	assert.True(t, s.Remove(7))
	assert.False(t, s.Remove(7))
	assert.False(t, s.Has(7))
	assert.Equal(t, []int{5, 9}, s.Items())
	assert.Equal(t, 2, s.Len())

	s.Add(7)
	assert.Equal(t, []int{5, 9, 7}, s.Items())
}

func TestStateSetSome(t *testing.T) {
	s := newStateSet()
	s.Add(4)
	s.Add(6)
	assert.True(t, s.Some(func(h int) bool { return h > 5 }))
	assert.False(t, s.Some(func(h int) bool { return h > 6 }))
}

func TestTransitionSet(t *testing.T) {
	a := &transition{source: 1}
	b := &transition{source: 2}
	c := &transition{source: 3}

	var ts transitionSet
	ts.Add(a)
	ts.Add(b)
	ts.Add(a)
	ts.Add(c)
	assert.Equal(t, []*transition{a, b, c}, ts.items)

	ts.RemoveIf(func(t *transition) bool { return t.source == 2 })
	assert.Equal(t, []*transition{a, c}, ts.items)
	assert.True(t, ts.Has(c))
	assert.False(t, ts.Has(b))
}

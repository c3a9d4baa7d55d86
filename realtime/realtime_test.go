package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/builder"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newRecordingChart returns a chart that stays in one state and records the
// name of every event it handles.
func newRecordingChart(t *testing.T) (*statechart.Statechart, *[]string) {
	t.Helper()
	var seen []string
	record := func(e statechart.Event, _ statechart.Emitter) error {
		seen = append(seen, e.Name)
		return nil
	}
	spec := builder.State("root",
		builder.State("idle",
			builder.Transition(builder.Event(statechart.Wildcard), builder.Action(record)),
		),
	).MustBuild()
	sc, err := statechart.New(spec)
	require.NoError(t, err)
	return sc, &seen
}

func TestRuntimeCreation(t *testing.T) {
	sc, _ := newRecordingChart(t)
	rt := NewRuntime(sc, Config{})

	require.NotNil(t, rt)
	assert.Equal(t, 16667*time.Microsecond, rt.tickRate)
	assert.Equal(t, 1000, rt.maxBatch)
	assert.Equal(t, []string{"idle"}, rt.Configuration())
	assert.Zero(t, rt.GetTickNumber())
}

func TestTickProcessesBatchInOrder(t *testing.T) {
	sc, seen := newRecordingChart(t)
	rt := NewRuntime(sc, Config{})

	require.NoError(t, rt.SendEvent("first", nil))
	require.NoError(t, rt.SendEvent("second", nil))
	require.NoError(t, rt.SendEventWithPriority("urgent", nil, 10))
	require.NoError(t, rt.SendEventWithPriority("low", nil, -1))
	require.NoError(t, rt.SendEvent("third", nil))
	assert.Empty(t, *seen, "nothing runs before a tick")
	assert.Equal(t, 5, rt.Pending())

	require.NoError(t, rt.Tick())
	assert.Equal(t, []string{"urgent", "first", "second", "third", "low"}, *seen)
	assert.Equal(t, uint64(1), rt.GetTickNumber())
	assert.Zero(t, rt.Pending())
}

func TestSortEventsIsStable(t *testing.T) {
	events := []EventWithMeta{
		{Event: statechart.Event{Name: "c"}, SequenceNum: 2},
		{Event: statechart.Event{Name: "a"}, SequenceNum: 0},
		{Event: statechart.Event{Name: "p"}, SequenceNum: 3, Priority: 1},
		{Event: statechart.Event{Name: "b"}, SequenceNum: 1},
	}
	sortEvents(events)

	var names []string
	for _, e := range events {
		names = append(names, e.Event.Name)
	}
	assert.Equal(t, []string{"p", "a", "b", "c"}, names)
}

func TestQueueFull(t *testing.T) {
	sc, _ := newRecordingChart(t)
	rt := NewRuntime(sc, Config{MaxEventsPerTick: 2})

	require.NoError(t, rt.SendEvent("a", nil))
	require.NoError(t, rt.SendEvent("b", nil))
	assert.ErrorIs(t, rt.SendEvent("c", nil), ErrQueueFull)

	require.NoError(t, rt.Tick())
	assert.NoError(t, rt.SendEvent("c", nil), "the batch is emptied by a tick")
}

func TestEmptyEventRejected(t *testing.T) {
	sc, _ := newRecordingChart(t)
	rt := NewRuntime(sc, Config{})

	assert.ErrorIs(t, rt.SendEvent("", nil), statechart.ErrEmptyEvent)
	assert.ErrorIs(t, rt.SendAfter("", nil, time.Second), statechart.ErrEmptyEvent)
}

func TestSendAfter(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	sc, seen := newRecordingChart(t)
	rt := NewRuntime(sc, Config{Clock: clock.Now})

	require.NoError(t, rt.SendAfter("late", nil, 2*time.Second))
	require.NoError(t, rt.SendAfter("soon", nil, time.Second))
	require.NoError(t, rt.SendEvent("now", nil))

	require.NoError(t, rt.Tick())
	assert.Equal(t, []string{"now"}, *seen)
	assert.Equal(t, 2, rt.Pending())

	clock.Advance(time.Second)
	require.NoError(t, rt.Tick())
	assert.Equal(t, []string{"now", "soon"}, *seen)

	clock.Advance(5 * time.Second)
	require.NoError(t, rt.Tick())
	assert.Equal(t, []string{"now", "soon", "late"}, *seen)
	assert.Zero(t, rt.Pending())
}

func TestTickReportsChartErrors(t *testing.T) {
	boom := errors.New("boom")
	var handled []string
	spec := builder.State("root",
		builder.State("idle",
			builder.Transition(builder.Event("fail"), builder.Action(func(statechart.Event, statechart.Emitter) error {
				return boom
			})),
			builder.Transition(builder.Event("ok"), builder.Action(func(e statechart.Event, _ statechart.Emitter) error {
				handled = append(handled, e.Name)
				return nil
			})),
		),
	).MustBuild()
	sc, err := statechart.New(spec)
	require.NoError(t, err)

	rt := NewRuntime(sc, Config{})
	require.NoError(t, rt.SendEvent("fail", nil))
	require.NoError(t, rt.SendEvent("ok", nil))

	err = rt.Tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, statechart.IsRuntimeError(err, statechart.ErrCodeActionFailed))
	assert.Equal(t, []string{"ok"}, handled, "a failed event does not stop the batch")
}

func TestSimpleTransition(t *testing.T) {
	spec := builder.State("root",
		builder.State("a", builder.On("event1", "b")),
		builder.State("b", builder.On("finish", "end")),
		builder.Final("end"),
	).MustBuild()
	sc, err := statechart.New(spec)
	require.NoError(t, err)

	rt := NewRuntime(sc, Config{})
	assert.True(t, rt.IsActive("a"))

	require.NoError(t, rt.SendEvent("event1", nil))
	require.NoError(t, rt.Tick())
	assert.True(t, rt.IsActive("b"))

	require.NoError(t, rt.SendEvent("finish", nil))
	require.NoError(t, rt.Tick())
	assert.True(t, rt.Done())
}

func TestTickLoop(t *testing.T) {
	sc, _ := newRecordingChart(t)
	rt := NewRuntime(sc, Config{TickRate: time.Millisecond})

	require.NoError(t, rt.Start(context.Background()))
	assert.ErrorIs(t, rt.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, rt.SendEvent("ping", nil))
	require.Eventually(t, func() bool { return rt.Pending() == 0 && rt.GetTickNumber() > 0 },
		time.Second, time.Millisecond)

	require.NoError(t, rt.Stop())
	require.NoError(t, rt.Stop(), "stop is idempotent")

	ticks := rt.GetTickNumber()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, ticks, rt.GetTickNumber(), "no ticks after stop")
}

func TestConcurrentSenders(t *testing.T) {
	count := 0
	spec := builder.State("root",
		builder.State("idle",
			builder.Transition(builder.Event("inc"), builder.Action(func(statechart.Event, statechart.Emitter) error {
				count++
				return nil
			})),
		),
	).MustBuild()
	sc, err := statechart.New(spec)
	require.NoError(t, err)

	rt := NewRuntime(sc, Config{TickRate: time.Millisecond, MaxEventsPerTick: 10000})
	require.NoError(t, rt.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = rt.SendEvent("inc", nil)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return rt.Pending() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, rt.Stop())
	require.NoError(t, rt.Tick())
	assert.Equal(t, 800, count)
}

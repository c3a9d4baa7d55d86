package chartfile_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/chartfile"
	"github.com/comalice/statechart/testutil"
)

func start(t *testing.T, spec *statechart.StateConfig) *statechart.Statechart {
	t.Helper()
	sc, err := statechart.New(spec)
	require.NoError(t, err)
	testutil.RequireConsistent(t, sc.Machine)
	return sc
}

func emit(t *testing.T, sc *statechart.Statechart, name string, data any) {
	t.Helper()
	require.NoError(t, sc.Emit(name, data), "emit %s", name)
	testutil.RequireConsistent(t, sc.Machine)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want chartfile.Format
	}{
		{"chart.yaml", chartfile.FormatYAML},
		{"dir/chart.YML", chartfile.FormatYAML},
		{"chart.cue", chartfile.FormatCUE},
	}
	for _, tt := range tests {
		got, err := chartfile.FormatOf(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := chartfile.FormatOf("chart.json")
	assert.ErrorIs(t, err, chartfile.ErrUnknownFormat)
}

func TestLoadFile_Turnstile(t *testing.T) {
	var logs bytes.Buffer
	reg := chartfile.NewRegistry(slog.New(slog.NewTextHandler(&logs, nil)))
	var refunds, alarms, passes int
	require.NoError(t, reg.RegisterAction("refund", func(statechart.Event, statechart.Emitter) error {
		refunds++
		return nil
	}))
	require.NoError(t, reg.RegisterAction("alarm", func(statechart.Event, statechart.Emitter) error {
		alarms++
		return nil
	}))
	require.NoError(t, reg.RegisterAction("count", func(statechart.Event, statechart.Emitter) error {
		passes++
		return nil
	}))

	spec, err := chartfile.LoadFile("testdata/turnstile.yaml", reg)
	require.NoError(t, err)
	sc := start(t, spec)
	assert.Equal(t, []string{"coin", "push"}, sc.Exports())
	assert.Contains(t, logs.String(), "turnstile locked")

	emit(t, sc, "coin", 20)
	assert.Equal(t, 1, refunds)
	assert.True(t, sc.IsActive("locked"))

	emit(t, sc, "push", nil)
	assert.Equal(t, 1, alarms)

	require.NoError(t, sc.Call("coin", 50))
	assert.True(t, sc.IsActive("unlocked"))

	require.NoError(t, sc.Call("push", nil))
	assert.True(t, sc.IsActive("locked"))
	assert.Equal(t, 1, passes)
	assert.Contains(t, logs.String(), "passing through")
}

func TestLoadFile_HistoryAndParallel(t *testing.T) {
	spec, err := chartfile.LoadFile("testdata/player.yaml", nil)
	require.NoError(t, err)
	sc := start(t, spec)
	assert.Equal(t, []string{"stopped"}, sc.Configuration())

	emit(t, sc, "play", nil)
	assert.Equal(t, []string{"active", "playing", "video", "sd", "audio", "surround"}, sc.Configuration())

	emit(t, sc, "hd", nil)
	emit(t, sc, "stop", nil)
	assert.Equal(t, []string{"stopped"}, sc.Configuration())

	emit(t, sc, "resume", nil)
	assert.Equal(t, []string{"active", "playing", "video", "hd", "audio", "surround"}, sc.Configuration())
}

func TestLoadFile_Subchart(t *testing.T) {
	spec, err := chartfile.LoadFile("testdata/counter.yaml", nil)
	require.NoError(t, err)
	sc := start(t, spec)

	emit(t, sc, "start", nil)
	emit(t, sc, "inc", nil)
	assert.False(t, sc.Done())

	emit(t, sc, "inc", nil)
	assert.True(t, sc.Done())
	assert.Equal(t, []string{"full"}, sc.Configuration())
}

func TestLoadFile_CUE(t *testing.T) {
	spec, err := chartfile.LoadFile("testdata/elevator.cue", nil)
	require.NoError(t, err)

	var ids []string
	spec.Walk(func(s *statechart.StateConfig) { ids = append(ids, s.ID) })
	assert.Equal(t, []string{"elevator", "ground", "first", "second"}, ids)

	sc := start(t, spec)
	assert.Equal(t, []string{"up", "down"}, sc.Exports())

	for _, e := range []string{"up", "up", "up"} {
		emit(t, sc, e, nil)
	}
	assert.Equal(t, []string{"second"}, sc.Configuration())

	emit(t, sc, "down", nil)
	assert.Equal(t, []string{"first"}, sc.Configuration())
}

func TestLoad_UnknownAttributeRejectedAtBuild(t *testing.T) {
	spec, err := chartfile.LoadFile("testdata/unknown.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"colour"}, spec.Children[0].Unknown)

	_, err = statechart.New(spec)
	require.Error(t, err)
	assert.True(t, statechart.IsBuildError(err, statechart.ErrCodeUnknownAttribute))
	assert.Contains(t, err.Error(), "colour")

	spec, err = chartfile.Load([]byte(`
id: root
states:
  - id: a
    transitions:
      - {event: go, target: a, priority: 2}
`), chartfile.FormatYAML, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"priority"}, spec.Children[0].Transitions[0].Unknown)
}

func TestLoad_NormalisesIdentifiers(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	spec, err := chartfile.Load([]byte(`
id: root
states:
  - id: start
    transitions:
      - {event: order, target: `+composed+`}
  - id: `+decomposed+`
`), chartfile.FormatYAML, nil)
	require.NoError(t, err)
	assert.Equal(t, composed, spec.Children[1].ID)

	sc := start(t, spec)
	emit(t, sc, "order", nil)
	assert.True(t, sc.IsActive(composed))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		is   error
	}{
		{
			name: "states not a list",
			doc:  "id: root\nstates: {id: a}\n",
			path: "states",
		},
		{
			name: "initial not a boolean",
			doc:  "id: root\nstates:\n  - id: a\n    initial: sometimes\n",
			path: "states[0].initial",
		},
		{
			name: "id not a string",
			doc:  "id: root\nstates:\n  - id: [a]\n",
			path: "states[0].id",
		},
		{
			name: "unknown condition",
			doc:  "id: root\nstates:\n  - id: a\n    transitions:\n      - {event: go, target: a, condition: isReady}\n",
			path: "states[0].transitions[0].condition",
			is:   chartfile.ErrUnknownGuard,
		},
		{
			name: "unknown action in list",
			doc:  "id: root\nstates:\n  - id: a\n    entry: [log hi, launch]\n",
			path: "states[0].entry[1]",
			is:   chartfile.ErrUnknownAction,
		},
		{
			name: "malformed built-in",
			doc:  "id: root\nstates:\n  - id: a\n    exit: raise\n",
			path: "states[0].exit",
		},
		{
			name: "nested subchart",
			doc:  "id: root\nstates:\n  - id: a\n    subcharts:\n      - id: sub\n        states: [{id: s, transitions: [{event: x, action: nope}]}]\n",
			path: "states[0].subcharts[0].states[0].transitions[0].action",
			is:   chartfile.ErrUnknownAction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chartfile.Load([]byte(tt.doc), chartfile.FormatYAML, nil)
			require.Error(t, err)
			var fe *chartfile.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.path, fe.Path)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoad_SyntaxErrors(t *testing.T) {
	_, err := chartfile.Load([]byte("id: [unclosed"), chartfile.FormatYAML, nil)
	assert.ErrorIs(t, err, chartfile.ErrSyntax)
	assert.ErrorContains(t, err, "parse yaml")

	_, err = chartfile.Load([]byte("id: \"a\"\nid: \"b\"\n"), chartfile.FormatCUE, nil)
	assert.ErrorIs(t, err, chartfile.ErrSyntax)

	_, err = chartfile.Load(nil, chartfile.FormatYAML, nil)
	assert.ErrorContains(t, err, "empty document")

	_, err = chartfile.Load([]byte("id: a"), chartfile.Format("toml"), nil)
	assert.ErrorIs(t, err, chartfile.ErrUnknownFormat)

	_, err = chartfile.LoadFile("testdata/missing.yaml", nil)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := chartfile.NewRegistry(nil)
	nop := func(statechart.Event, statechart.Emitter) error { return nil }

	require.NoError(t, reg.RegisterAction("go", nop))
	assert.Error(t, reg.RegisterAction("go", nop), "duplicate")
	assert.Error(t, reg.RegisterAction("", nop))
	assert.Error(t, reg.RegisterAction("nil", nil))

	ready := false
	require.NoError(t, reg.RegisterGuard("isReady", func(statechart.Event) bool { return ready }))
	assert.Error(t, reg.RegisterGuard("isReady", func(statechart.Event) bool { return true }))

	spec, err := chartfile.Load([]byte(`
id: root
states:
  - id: waiting
    transitions:
      - {event: check, condition: isReady, target: done}
  - id: done
`), chartfile.FormatYAML, reg)
	require.NoError(t, err)
	sc := start(t, spec)

	emit(t, sc, "check", nil)
	assert.True(t, sc.IsActive("waiting"))

	ready = true
	emit(t, sc, "check", nil)
	assert.True(t, sc.IsActive("done"))
}

func TestRegistry_ActionErrorsSurface(t *testing.T) {
	boom := errors.New("boom")
	reg := chartfile.NewRegistry(nil)
	require.NoError(t, reg.RegisterAction("explode", func(statechart.Event, statechart.Emitter) error { return boom }))

	spec, err := chartfile.Load([]byte(`
id: root
states:
  - id: a
    transitions: [{event: go, action: explode}]
`), chartfile.FormatYAML, reg)
	require.NoError(t, err)
	sc := start(t, spec)

	err = sc.Emit("go", nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, statechart.IsRuntimeError(err, statechart.ErrCodeActionFailed))
}

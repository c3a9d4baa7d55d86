package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/chartfile"
	"github.com/comalice/statechart/internal/extensibility"
)

// startEvent labels the record of the initial configuration.
const startEvent = "(start)"

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Trace bool
}

// StepRecord is printed after the start and after every event.
type StepRecord struct {
	Event         string   `json:"event"`
	Data          any      `json:"data,omitempty"`
	Trace         []string `json:"trace,omitempty"`
	Configuration []string `json:"configuration"`
	Done          bool     `json:"done"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <chart> [event[=value]...]",
		Short: "Run a chart against a sequence of events",
		Long: `Start the chart and emit each event in turn, printing the configuration
after every macrostep. Values are YAML literals: coin=50 sends the int 50.
Without event arguments, events are read from stdin one per line; blank
lines and lines starting with # are skipped.

Example:
  statechart run turnstile.yaml coin=50 push
  echo push | statechart run --trace turnstile.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print entered and exited states and taken transitions")

	return cmd
}

func runChart(opts *RunOptions, path string, events []string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	logger, err := NewLogger(cmd.ErrOrStderr(), opts.Settings, opts.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}

	spec, err := chartfile.LoadFile(path, chartfile.NewRegistry(logger))
	if err != nil {
		return report(f, err)
	}
	tr := &tracer{}
	sc, err := statechart.New(spec,
		statechart.WithLogger(logger),
		statechart.WithObserver(tr),
		statechart.WithMaxMicrosteps(opts.Settings.MaxMicrosteps),
	)
	if err != nil {
		return report(f, err)
	}
	if err := printStep(f, sc, tr, opts.Trace, StepRecord{Event: startEvent}, startEvent); err != nil {
		return err
	}

	next := argSource(events)
	if len(events) == 0 {
		next = lineSource(cmd.InOrStdin())
	}
	for {
		raw, ok, err := next()
		if err != nil {
			return WrapExitError(ExitCommandError, "read events", err)
		}
		if !ok {
			return nil
		}
		e, err := extensibility.ParseEvent(raw)
		if err != nil {
			return report(f, err)
		}
		if err := sc.Emit(e.Name, e.Data); err != nil {
			return report(f, err)
		}
		rec := StepRecord{Event: e.Name, Data: e.Data}
		if err := printStep(f, sc, tr, opts.Trace, rec, strings.TrimSpace(raw)); err != nil {
			return err
		}
	}
}

func printStep(f *OutputFormatter, sc *statechart.Statechart, tr *tracer, trace bool, rec StepRecord, label string) error {
	steps := tr.flush()
	rec.Configuration = sc.Configuration()
	rec.Done = sc.Done()

	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s", label, strings.Join(rec.Configuration, ", "))
	if rec.Done {
		b.WriteString(" (done)")
	}
	if trace {
		rec.Trace = steps
		for _, s := range steps {
			b.WriteString("\n  " + s)
		}
	}
	return f.Record(rec, b.String())
}

type eventSource func() (raw string, ok bool, err error)

func argSource(args []string) eventSource {
	i := 0
	return func() (string, bool, error) {
		if i >= len(args) {
			return "", false, nil
		}
		i++
		return args[i-1], true, nil
	}
}

func lineSource(r io.Reader) eventSource {
	sc := bufio.NewScanner(r)
	return func() (string, bool, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true, nil
		}
		return "", false, sc.Err()
	}
}

// tracer collects observer callbacks between two printed steps.
type tracer struct {
	mu    sync.Mutex
	steps []string
}

func (t *tracer) OnEnter(id string, _ statechart.Event) { t.add("enter " + id) }

func (t *tracer) OnExit(id string, _ statechart.Event) { t.add("exit " + id) }

func (t *tracer) OnTransition(source string, targets []string, _ statechart.Event) {
	t.add("transition " + source + " -> " + strings.Join(targets, ", "))
}

func (t *tracer) add(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, s)
}

func (t *tracer) flush() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.steps
	t.steps = nil
	return out
}

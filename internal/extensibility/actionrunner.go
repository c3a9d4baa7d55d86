package extensibility

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comalice/statechart/internal/primitives"
)

// BuiltinAction compiles the built-in action expressions:
//
//	raise <event> [literal]   raise an internal event, optionally with data
//	log <message>             write an Info record naming the current event
//
// ok is false for any other expression.
func BuiltinAction(expr string, logger *slog.Logger) (a primitives.Action, ok bool, err error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(expr), " ")
	rest = strings.TrimSpace(rest)
	switch verb {
	case "raise":
		name, literal, _ := strings.Cut(rest, " ")
		if name == "" {
			return nil, true, fmt.Errorf("action %q: missing event name", expr)
		}
		data, err := ParseValue(literal)
		if err != nil {
			return nil, true, fmt.Errorf("action %q: %w", expr, err)
		}
		return func(_ primitives.Event, emit primitives.Emitter) error {
			emit.Raise(name, data)
			return nil
		}, true, nil
	case "log":
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		return func(e primitives.Event, _ primitives.Emitter) error {
			logger.Info(rest, "event", e.Name, "data", e.Data)
			return nil
		}, true, nil
	}
	return nil, false, nil
}

// Logged wraps a named action with Debug records around each run.
func Logged(name string, a primitives.Action, logger *slog.Logger) primitives.Action {
	if logger == nil {
		return a
	}
	return func(e primitives.Event, emit primitives.Emitter) error {
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			return a(e, emit)
		}
		start := time.Now()
		err := a(e, emit)
		logger.Debug("action finished",
			"action", name,
			"event", e.Name,
			"elapsed", time.Since(start),
			"error", err,
		)
		return err
	}
}

// Sequence runs actions in order and stops at the first error.
func Sequence(actions ...primitives.Action) primitives.Action {
	switch len(actions) {
	case 0:
		return nil
	case 1:
		return actions[0]
	}
	return func(e primitives.Event, emit primitives.Emitter) error {
		for _, a := range actions {
			if err := a(e, emit); err != nil {
				return err
			}
		}
		return nil
	}
}

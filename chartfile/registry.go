package chartfile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/comalice/statechart/internal/extensibility"
	"github.com/comalice/statechart/internal/primitives"
)

// Registry resolves the action and condition names used by chart documents.
//
// Registered names win over the built-ins. Built-in actions are
// "raise <event> [value]" and "log <message>"; built-in conditions are
// "data <op> <value>" with op one of == != < > <= >=. Values are YAML
// literals.
type Registry struct {
	logger  *slog.Logger
	actions map[string]primitives.Action
	guards  map[string]primitives.Guard
}

// NewRegistry returns a registry with only the built-ins. logger receives the
// output of "log" actions and Debug records for registered actions; nil
// discards both.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		logger:  logger,
		actions: make(map[string]primitives.Action),
		guards:  make(map[string]primitives.Guard),
	}
}

// RegisterAction binds name to a. Names are unique.
func (r *Registry) RegisterAction(name string, a primitives.Action) error {
	if err := checkName(name, a == nil); err != nil {
		return err
	}
	if _, dup := r.actions[name]; dup {
		return fmt.Errorf("action %q already registered", name)
	}
	r.actions[name] = a
	return nil
}

// RegisterGuard binds name to g. Names are unique.
func (r *Registry) RegisterGuard(name string, g primitives.Guard) error {
	if err := checkName(name, g == nil); err != nil {
		return err
	}
	if _, dup := r.guards[name]; dup {
		return fmt.Errorf("condition %q already registered", name)
	}
	r.guards[name] = g
	return nil
}

func (r *Registry) action(expr string) (primitives.Action, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty action")
	}
	if a, ok := r.actions[expr]; ok {
		return extensibility.Logged(expr, a, r.logger), nil
	}
	a, ok, err := extensibility.BuiltinAction(expr, r.logger)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, expr)
	}
	return a, nil
}

func (r *Registry) guard(expr string) (primitives.Guard, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty condition")
	}
	if g, ok := r.guards[expr]; ok {
		return g, nil
	}
	g, ok, err := extensibility.ExpressionGuard(expr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGuard, expr)
	}
	return g, nil
}

func checkName(name string, missing bool) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty name")
	}
	if missing {
		return fmt.Errorf("%q: nil function", name)
	}
	return nil
}

package chartfile

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/comalice/statechart/internal/extensibility"
	"github.com/comalice/statechart/internal/primitives"
)

type converter struct {
	reg *Registry
}

func (c *converter) state(path string, v any) (*primitives.StateConfig, error) {
	m, err := mapping(path, v)
	if err != nil {
		return nil, err
	}
	cfg := &primitives.StateConfig{}
	for _, key := range sortedKeys(m) {
		val := m[key]
		at := join(path, key)
		switch key {
		case "id":
			s, err := str(at, val)
			if err != nil {
				return nil, err
			}
			cfg.ID = nfc(s)
		case "kind":
			s, err := str(at, val)
			if err != nil {
				return nil, err
			}
			cfg.Kind = primitives.StateKind(s)
		case "initial":
			if cfg.Initial, err = boolean(at, val); err != nil {
				return nil, err
			}
		case "deep":
			if cfg.Deep, err = boolean(at, val); err != nil {
				return nil, err
			}
		case "entry":
			if cfg.Entry, err = c.actions(at, val); err != nil {
				return nil, err
			}
		case "exit":
			if cfg.Exit, err = c.actions(at, val); err != nil {
				return nil, err
			}
		case "export":
			if cfg.Export, err = names(at, val); err != nil {
				return nil, err
			}
		case "states", "subcharts":
			items, err := list(at, val)
			if err != nil {
				return nil, err
			}
			for i, item := range items {
				child, err := c.state(index(at, i), item)
				if err != nil {
					return nil, err
				}
				if key == "states" {
					cfg.AddChild(child)
				} else {
					cfg.Subcharts = append(cfg.Subcharts, child)
				}
			}
		case "transitions":
			items, err := list(at, val)
			if err != nil {
				return nil, err
			}
			for i, item := range items {
				t, err := c.transition(index(at, i), item)
				if err != nil {
					return nil, err
				}
				cfg.AddTransition(t)
			}
		default:
			cfg.Unknown = append(cfg.Unknown, key)
		}
	}
	return cfg, nil
}

func (c *converter) transition(path string, v any) (*primitives.TransitionConfig, error) {
	m, err := mapping(path, v)
	if err != nil {
		return nil, err
	}
	t := &primitives.TransitionConfig{}
	for _, key := range sortedKeys(m) {
		val := m[key]
		at := join(path, key)
		switch key {
		case "event":
			s, err := str(at, val)
			if err != nil {
				return nil, err
			}
			t.Event = nfc(s)
		case "condition":
			s, err := str(at, val)
			if err != nil {
				return nil, err
			}
			if t.Guard, err = c.reg.guard(s); err != nil {
				return nil, &Error{Path: at, Err: err}
			}
		case "target", "targets":
			ids, err := names(at, val)
			if err != nil {
				return nil, err
			}
			t.Targets = append(t.Targets, ids...)
		case "action":
			if t.Action, err = c.actions(at, val); err != nil {
				return nil, err
			}
		default:
			t.Unknown = append(t.Unknown, key)
		}
	}
	return t, nil
}

// actions resolves one expression or a list of them run in order.
func (c *converter) actions(path string, v any) (primitives.Action, error) {
	exprs, err := strs(path, v)
	if err != nil {
		return nil, err
	}
	resolved := make([]primitives.Action, 0, len(exprs))
	for i, expr := range exprs {
		a, err := c.reg.action(expr)
		if err != nil {
			at := path
			if len(exprs) > 1 {
				at = index(path, i)
			}
			return nil, &Error{Path: at, Err: err}
		}
		resolved = append(resolved, a)
	}
	return extensibility.Sequence(resolved...), nil
}

func mapping(path string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeError(path, "a mapping", v)
	}
	return m, nil
}

func list(path string, v any) ([]any, error) {
	l, ok := v.([]any)
	if !ok {
		return nil, typeError(path, "a list", v)
	}
	return l, nil
}

func str(path string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeError(path, "a string", v)
	}
	return s, nil
}

func boolean(path string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, typeError(path, "a boolean", v)
	}
	return b, nil
}

// strs accepts a single string or a list of strings.
func strs(path string, v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	items, err := list(path, v)
	if err != nil {
		return nil, typeError(path, "a string or a list of strings", v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := str(index(path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// names is strs with NFC normalisation.
func names(path string, v any) ([]string, error) {
	out, err := strs(path, v)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = nfc(out[i])
	}
	return out, nil
}

func nfc(s string) string { return norm.NFC.String(s) }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func typeError(path, want string, got any) error {
	desc := fmt.Sprintf("%T", got)
	if got == nil {
		desc = "null"
	}
	return &Error{Path: path, Err: fmt.Errorf("expected %s, got %s", want, desc)}
}

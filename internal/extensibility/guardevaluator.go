package extensibility

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statechart/internal/primitives"
)

// ParseValue decodes a literal as a YAML scalar or flow collection, so 3 is an
// int, true a bool, [1, 2] a []any and a bare word a string. The empty string
// is nil.
func ParseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", s, err)
	}
	return v, nil
}

// comparison operators, longest first so "<=" is not read as "<".
var operators = []string{"==", "!=", "<=", ">=", "<", ">"}

// ExpressionGuard compiles "data <op> <literal>" into a guard over the event
// payload. op is one of == != < > <= >=. Equality is deep equality; ordering
// compares numbers and fails closed for anything else. ok is false when expr
// is not a data expression at all, so callers can try other resolutions.
func ExpressionGuard(expr string) (g primitives.Guard, ok bool, err error) {
	rest, found := strings.CutPrefix(strings.TrimSpace(expr), "data")
	if !found || rest == "" || rest[0] != ' ' {
		return nil, false, nil
	}
	rest = strings.TrimSpace(rest)

	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(rest, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return nil, true, fmt.Errorf("guard %q: missing operator", expr)
	}
	literal := strings.TrimSpace(rest[len(op):])
	if literal == "" {
		return nil, true, fmt.Errorf("guard %q: missing value", expr)
	}
	want, err := ParseValue(literal)
	if err != nil {
		return nil, true, fmt.Errorf("guard %q: %w", expr, err)
	}

	switch op {
	case "==":
		return primitives.DataEquals(want), true, nil
	case "!=":
		return primitives.DataNotEquals(want), true, nil
	}
	bound, numeric := toFloat(want)
	if !numeric {
		return nil, true, fmt.Errorf("guard %q: %s needs a number", expr, op)
	}
	return func(e primitives.Event) bool {
		got, ok := toFloat(e.Data)
		if !ok {
			return false
		}
		switch op {
		case "<":
			return got < bound
		case ">":
			return got > bound
		case "<=":
			return got <= bound
		default:
			return got >= bound
		}
	}, true, nil
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

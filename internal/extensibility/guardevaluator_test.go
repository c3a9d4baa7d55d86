package extensibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart/internal/primitives"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"42", 42},
		{"-1.5", -1.5},
		{"true", true},
		{"hello world", "hello world"},
		{`"42"`, "42"},
		{"[1, two]", []any{1, "two"}},
		{"{a: 1}", map[string]any{"a": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseValue("[unclosed")
	assert.Error(t, err)
}

func TestExpressionGuard(t *testing.T) {
	tests := []struct {
		expr string
		data any
		want bool
	}{
		{"data == 1234", 1234, true},
		{"data == 1234", "1234", false},
		{"data != 1234", 4321, true},
		{"data != 1234", 1234, false},
		{"data == open sesame", "open sesame", true},
		{"data > 30", 35, true},
		{"data > 30", 30.0, false},
		{"data >= 30", 30, true},
		{"data < 0.5", 0.25, true},
		{"data <= 2", uint8(3), false},
		{"data > 30", "35", false},
		{"data > 30", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			g, ok, err := ExpressionGuard(tt.expr)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, g(primitives.NewEvent("e", tt.data)))
		})
	}
}

func TestExpressionGuard_NotAnExpression(t *testing.T) {
	for _, expr := range []string{"isReady", "dataReady", "data", ""} {
		g, ok, err := ExpressionGuard(expr)
		assert.NoError(t, err, expr)
		assert.False(t, ok, expr)
		assert.Nil(t, g, expr)
	}
}

func TestExpressionGuard_Malformed(t *testing.T) {
	for _, expr := range []string{"data ~ 3", "data ==", "data > hello", "data == [oops"} {
		_, ok, err := ExpressionGuard(expr)
		assert.True(t, ok, expr)
		assert.Error(t, err, expr)
	}
}

package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorTool_Evaluate(t *testing.T) {
	calc := NewCalculatorTool()
	assert.Equal(t, "calculator", calc.Name())

	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2", "3"},
		{"2 * 3 + 4", "10"},
		{"2 * (3 + 4)", "14"},
		{"10 / 4", "2.5"},
		{"2 ^ 3 ^ 2", "512"},
		{"-5 + 3", "-2"},
		{"10 % 3", "1"},
		{"1.5 * 2", "3"},
	}
	for _, tt := range tests {
		result, err := calc.Call(context.Background(), map[string]any{"expression": tt.expr})
		require.NoError(t, err, "expression %q", tt.expr)
		assert.Equal(t, tt.want, result, "expression %q", tt.expr)
	}
}

func TestCalculatorTool_Errors(t *testing.T) {
	calc := NewCalculatorTool()

	for _, expr := range []string{"1 / 0", "5 % 0", "1 +", "(1 + 2", "abc"} {
		_, err := calc.Call(context.Background(), map[string]any{"expression": expr})
		assert.Error(t, err, "expression %q", expr)
	}
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Expr   string `json:"expr" description:"Arithmetic expression"`
	Prec   *int   `json:"prec" description:"Optional precision"`
	Label  string `json:"label,omitempty"`
	hidden float64
}

func TestFromStruct(t *testing.T) {
	s := FromStruct(sampleArgs{})

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "expr")
	assert.Contains(t, props, "prec")
	assert.Contains(t, props, "label")
	assert.NotContains(t, props, "hidden")

	expr := props["expr"].(map[string]any)
	assert.Equal(t, "string", expr["type"])
	assert.Equal(t, "Arithmetic expression", expr["description"])

	// Only non-pointer, non-omitempty fields are required.
	req, _ := s["required"].([]string)
	assert.ElementsMatch(t, []string{"expr"}, req)
}

func TestFromStruct_NonStruct(t *testing.T) {
	s := FromStruct("not a struct")
	assert.Equal(t, "object", s["type"])
	assert.Empty(t, s["properties"])
}

func TestValidate(t *testing.T) {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
			"q": map[string]any{"type": "string"},
		},
		// []any mirrors a JSON-decoded schema shape
		"required": []any{"x"},
	}

	assert.NoError(t, Validate(map[string]any{"x": 5}, s))
	assert.NoError(t, Validate(map[string]any{"x": float64(5), "q": "hi"}, s))
	// Extra fields are allowed.
	assert.NoError(t, Validate(map[string]any{"x": 1, "unknown": true}, s))

	err := Validate(map[string]any{}, s)
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "x", vErr.Field)

	err = Validate(map[string]any{"x": "not-int"}, s)
	require.Error(t, err)
	vErr, ok = err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Message, "expected type integer")

	// Non-integral float is not an integer.
	assert.Error(t, Validate(map[string]any{"x": 1.5}, s))
}

func TestValidate_StringRequiredSlice(t *testing.T) {
	s := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "boolean"}},
		"required":   []string{"a"},
	}
	assert.Error(t, Validate(map[string]any{}, s))
	assert.NoError(t, Validate(map[string]any{"a": true}, s))
}

package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func newTestRegistry(t *testing.T, tools ...Tool) *Registry {
	t.Helper()
	r, err := NewRegistry(nil, tools...)
	require.NoError(t, err)
	return r
}

func TestRegistry_RegisterAndDefinitions(t *testing.T) {
	a := NewFunctionTool("alpha", "First", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) { return "a", nil })
	b := NewFunctionTool("beta", "Second", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) { return "b", nil })
	r := newTestRegistry(t, a, b)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "First", defs[0].Description)
	assert.Equal(t, "beta", defs[1].Name)
}

func TestRegistry_DuplicateTool(t *testing.T) {
	a := NewFunctionTool("alpha", "First", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	r := newTestRegistry(t, a)

	err := r.Register(NewFunctionTool("alpha", "Clone", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) { return nil, nil }))
	require.Error(t, err)
	assert.Equal(t, core.ErrDuplicateTool, core.KindOf(err))
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Invoke(context.Background(), core.ToolCallRequest{CallID: "1", ToolName: "ghost"})
	require.Error(t, err)
	assert.Equal(t, core.ErrUnknownTool, core.KindOf(err))
}

func TestRegistry_InvokeSuccess(t *testing.T) {
	calc := NewFunctionTool("calc", "Calculate", map[string]any{
		"type":       "object",
		"properties": map[string]any{"expr": map[string]any{"type": "string"}},
		"required":   []string{"expr"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		assert.Equal(t, "2+2", args["expr"])
		return "4", nil
	})
	r := newTestRegistry(t, calc)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{
		CallID:    "call-1",
		ToolName:  "calc",
		Arguments: json.RawMessage(`{"expr":"2+2"}`),
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "4", res.Content)
	assert.Equal(t, "call-1", res.CallID)
	assert.Equal(t, "calc", res.ToolName)
}

func TestRegistry_FailingExecutorBecomesResult(t *testing.T) {
	failing := NewFunctionTool("boom", "Always fails", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("kaput")
	})
	r := newTestRegistry(t, failing)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{CallID: "1", ToolName: "boom"})
	require.NoError(t, err, "executor failure must not propagate as a loop error")
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
	assert.Contains(t, res.Error, "kaput")
}

func TestRegistry_ValidationFailureBecomesResult(t *testing.T) {
	strict := NewFunctionTool("strict", "Validates", map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer"}},
		"required":   []string{"n"},
	}, func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	r := newTestRegistry(t, strict)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{CallID: "1", ToolName: "strict"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "VALIDATION_ERROR")
}

func TestRegistry_MalformedArgumentsBecomeResult(t *testing.T) {
	echo := NewFunctionTool("echo", "Echo", emptySchema(), func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})
	r := newTestRegistry(t, echo)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{
		CallID:    "1",
		ToolName:  "echo",
		Arguments: json.RawMessage(`{broken`),
	})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "invalid arguments")
}

func TestRegistry_PanickingToolBecomesResult(t *testing.T) {
	panicky := NewFunctionTool("panic", "Panics", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) {
		panic("whoops")
	})
	r := newTestRegistry(t, panicky)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{CallID: "1", ToolName: "panic"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "panicked")
}

func TestRegistry_StructuredResultIsSerialized(t *testing.T) {
	data := NewFunctionTool("data", "Structured", emptySchema(), func(_ context.Context, _ map[string]any) (any, error) {
		return map[string]any{"answer": 42}, nil
	})
	r := newTestRegistry(t, data)

	res, err := r.Invoke(context.Background(), core.ToolCallRequest{CallID: "1", ToolName: "data"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.JSONEq(t, `{"answer":42}`, res.Content)
}

func TestRegistry_InvokeLogsToolCall(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	echo := NewFunctionTool("echo", "Echo", emptySchema(), func(_ context.Context, args map[string]any) (any, error) {
		return "ok", nil
	})
	r, err := NewRegistry(logger, echo)
	require.NoError(t, err)

	_, err = r.Invoke(context.Background(), core.ToolCallRequest{CallID: "c1", ToolName: "echo"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "tool.call.completed")
	assert.Contains(t, out, `"tool":"echo"`)
	assert.Contains(t, out, `"call_id":"c1"`)
}

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/model"
)

// Registry holds callable tools keyed by name and exposes their invocation
// schemas to the model. Registration happens at agent construction time (or
// between runs via AddTool); a registry is never mutated while a loop that
// owns it is in flight.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry creates a registry holding the given tools. It fails with a
// duplicate_tool error if two tools share a name.
func NewRegistry(logger logging.Logger, tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:  map[string]Tool{},
		logger: logging.OrNoOp(logger),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. It fails with a duplicate_tool error if the name is
// already present.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return core.NewError(core.ErrDuplicateTool, "", fmt.Errorf("tool %q already registered", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns a read-only snapshot of all tool schemas for inclusion
// in a model call, in registration order.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Invoke executes the tool named by the request. An unknown tool is a
// registry defect and returns an unknown_tool error, fatal to the current
// loop. Every other failure (argument decoding, schema validation, executor
// errors, even panics) is converted into a ToolResult with OK=false so it
// flows back to the model as data instead of crashing the loop.
func (r *Registry) Invoke(ctx context.Context, call core.ToolCallRequest) (core.ToolResult, error) {
	r.mu.RLock()
	t, exists := r.tools[call.ToolName]
	r.mu.RUnlock()
	if !exists {
		return core.ToolResult{}, core.NewError(
			core.ErrUnknownTool, "", fmt.Errorf("tool %q not registered", call.ToolName),
		)
	}

	res := core.ToolResult{CallID: call.CallID, ToolName: call.ToolName}

	args, err := call.ArgumentsMap()
	if err != nil {
		res.Error = fmt.Sprintf("invalid arguments: %v", err)
		r.logger.Warn("tool.invoke.bad_arguments", "tool", call.ToolName, "call_id", call.CallID, "error", err.Error())
		return res, nil
	}

	start := time.Now()
	out, err := r.call(ctx, t, args)
	logging.LogToolCall(r.logger, call.ToolName, call.CallID, time.Since(start), err)
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}

	res.OK = true
	res.Content = stringify(out)
	return res, nil
}

// call isolates the executor so a panicking tool degrades to a failed result.
func (r *Registry) call(ctx context.Context, t Tool, args map[string]any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool %s panicked: %v", t.Name(), rec)
		}
	}()
	return t.Call(ctx, args)
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%v", v)
	}
}

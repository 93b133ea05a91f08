package core

import "encoding/json"

// ToolCallRequest is a model-issued request to execute a named tool. It is
// produced only by a model gateway response, never constructed by callers.
// CallID is unique within one loop turn and ties the eventual result back to
// this request.
type ToolCallRequest struct {
	CallID    string          `json:"call_id"`
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ArgumentsMap deserializes the raw JSON arguments into a key/value map.
// An empty payload yields an empty map.
func (r ToolCallRequest) ArgumentsMap() (map[string]any, error) {
	args := map[string]any{}
	if len(r.Arguments) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(r.Arguments, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// ToolResult is the outcome of one tool invocation. A failed execution is
// data, not a loop error: OK is false and Error holds the message that will
// be fed back to the model.
type ToolResult struct {
	CallID   string `json:"call_id"`
	ToolName string `json:"tool_name"`
	Content  string `json:"content,omitempty"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

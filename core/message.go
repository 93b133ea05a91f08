package core

import "github.com/google/uuid"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries role/instruction text injected ahead of the
	// conversation. System messages are produced by the framework, never by
	// the model.
	RoleSystem Role = "system"
	// RoleUser is the caller's request.
	RoleUser Role = "user"
	// RoleAgent is a model-authored turn (final answer or tool call request).
	RoleAgent Role = "agent"
	// RoleTool is a tool result fed back into the model's context.
	RoleTool Role = "tool"
)

// Message is one immutable entry in a conversation. The ordered message
// sequence is the model's working memory; order is append-only and
// semantically significant.
//
// An agent-role message may carry ToolCalls when the model requested tool
// executions instead of (or alongside) answer text. A tool-role message
// carries exactly one tool result and links back to its originating request
// via ToolCallID.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolName   string            `json:"tool_name,omitempty"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// NewUserMessage creates a user-role message.
func NewUserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// NewAgentMessage creates an agent-role message holding a final answer.
func NewAgentMessage(text string) Message { return Message{Role: RoleAgent, Content: text} }

// NewToolCallMessage creates the agent-role message recording a model turn
// that requested tool executions.
func NewToolCallMessage(text string, calls []ToolCallRequest) Message {
	return Message{Role: RoleAgent, Content: text, ToolCalls: calls}
}

// NewToolMessage creates the tool-role message carrying one tool result,
// preserving the call ID linkage required for re-association.
func NewToolMessage(res ToolResult) Message {
	content := res.Content
	if !res.OK {
		content = "error: " + res.Error
	}
	return Message{Role: RoleTool, Content: content, ToolCallID: res.CallID, ToolName: res.ToolName}
}

// NewID generates a unique identifier for runs and stream correlation.
func NewID() string { return uuid.NewString() }

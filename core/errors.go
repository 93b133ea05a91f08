package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind categorizes loop-terminating failures. Tool execution failures
// are deliberately absent: they are folded into ToolResult data and fed back
// to the model instead of terminating the loop.
type ErrorKind string

const (
	// ErrBackend is a model/network failure (auth, rate limit, transport).
	// Surfaced to the caller, never retried internally.
	ErrBackend ErrorKind = "backend_error"
	// ErrUnknownTool means the model requested a tool absent from the registry.
	ErrUnknownTool ErrorKind = "unknown_tool"
	// ErrDuplicateTool means a tool name was registered twice.
	ErrDuplicateTool ErrorKind = "duplicate_tool"
	// ErrLoopLimit is the safety cutoff on model/tool round-trips.
	ErrLoopLimit ErrorKind = "loop_limit_exceeded"
	// ErrCancelled is a cooperative abort via the caller's context.
	ErrCancelled ErrorKind = "cancelled"
)

// Error is a structured loop failure carrying the kind, the identity of the
// failing agent (empty for registry construction defects) and the underlying
// cause.
type Error struct {
	Kind  ErrorKind
	Agent string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("agent %s: %s: %v", e.Agent, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a structured Error.
func NewError(kind ErrorKind, agent string, err error) *Error {
	return &Error{Kind: kind, Agent: agent, Err: err}
}

// KindOf extracts the ErrorKind from err. Context cancellation and deadline
// errors map to ErrCancelled; anything else unrecognized maps to ErrBackend.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCancelled
	}
	return ErrBackend
}

// AgentOf extracts the failing agent's name from err, or "" if untagged.
func AgentOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Agent
	}
	return ""
}

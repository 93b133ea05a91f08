package core

import (
	"context"
	"time"
)

// StreamEventType discriminates incremental events delivered while a loop runs.
type StreamEventType string

const (
	// StreamText is an incremental fragment of model answer text.
	StreamText StreamEventType = "text"
	// StreamToolCall announces a tool dispatch.
	StreamToolCall StreamEventType = "tool_call"
	// StreamToolResult announces a completed tool invocation.
	StreamToolResult StreamEventType = "tool_result"
	// StreamFinal is the terminal event carrying the full final answer.
	StreamFinal StreamEventType = "final"
	// StreamError is the terminal event carrying a loop failure.
	StreamError StreamEventType = "error"
)

// StreamEvent is one element of the lazy, finite, non-restartable sequence
// produced by a streaming run. Exactly one terminal event (StreamFinal or
// StreamError) ends the sequence.
type StreamEvent struct {
	Type       StreamEventType  `json:"type"`
	RunID      string           `json:"run_id"`
	Agent      string           `json:"agent"`
	Text       string           `json:"text,omitempty"`
	ToolCall   *ToolCallRequest `json:"tool_call,omitempty"`
	ToolResult *ToolResult      `json:"tool_result,omitempty"`
	Err        string           `json:"error,omitempty"`
	ErrKind    ErrorKind        `json:"error_kind,omitempty"`
}

// Emitter forwards stream events to a consumer channel. A nil *Emitter is a
// valid no-op so the loop emits unconditionally. Sends observe context
// cancellation so a stalled consumer cannot wedge a cancelled run.
type Emitter struct {
	runID string
	agent string
	ch    chan StreamEvent
}

// NewEmitter creates an emitter buffered with size buf.
func NewEmitter(runID, agent string, buf int) *Emitter {
	if buf < 0 {
		buf = 0
	}
	return &Emitter{runID: runID, agent: agent, ch: make(chan StreamEvent, buf)}
}

// Events returns the consumer side of the stream.
func (e *Emitter) Events() <-chan StreamEvent { return e.ch }

// Close terminates the sequence. Must be called exactly once by the producer.
func (e *Emitter) Close() {
	if e != nil {
		close(e.ch)
	}
}

func (e *Emitter) send(ctx context.Context, ev StreamEvent) {
	if e == nil {
		return
	}
	ev.RunID = e.runID
	ev.Agent = e.agent
	select {
	case <-ctx.Done():
	case e.ch <- ev:
	}
}

// Text emits an incremental answer fragment.
func (e *Emitter) Text(ctx context.Context, delta string) {
	e.send(ctx, StreamEvent{Type: StreamText, Text: delta})
}

// ToolCall emits a dispatch notification.
func (e *Emitter) ToolCall(ctx context.Context, call ToolCallRequest) {
	e.send(ctx, StreamEvent{Type: StreamToolCall, ToolCall: &call})
}

// ToolResult emits a completion notification.
func (e *Emitter) ToolResult(ctx context.Context, res ToolResult) {
	e.send(ctx, StreamEvent{Type: StreamToolResult, ToolResult: &res})
}

// Final emits the terminal answer event.
func (e *Emitter) Final(ctx context.Context, answer string) {
	e.send(ctx, StreamEvent{Type: StreamFinal, Text: answer})
}

// Error emits the terminal failure event. It ignores ctx so a cancellation
// outcome still reaches the consumer: the send waits for the consumer to
// drain any buffered events, bounded by a timeout so an abandoned stream
// cannot wedge the producer forever.
func (e *Emitter) Error(err error) {
	if e == nil {
		return
	}
	ev := StreamEvent{
		Type:    StreamError,
		RunID:   e.runID,
		Agent:   e.agent,
		Err:     err.Error(),
		ErrKind: KindOf(err),
	}
	select {
	case e.ch <- ev:
		return
	default:
	}
	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()
	select {
	case e.ch <- ev:
	case <-timer.C:
	}
}

package core

import "sync"

// Conversation is an append-only, ordered message history scoped to one
// agent. It is safe for concurrent access, though an agent owns its
// conversation exclusively while a loop is in flight.
//
// Contract:
//   - Messages are immutable once appended
//   - Snapshot returns a defensive copy
//   - Clear resets the history for a fresh chat
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation { return &Conversation{} }

// Append adds messages to the end of the history.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Snapshot returns a copy of the full ordered history.
func (c *Conversation) Snapshot() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Clear discards the history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

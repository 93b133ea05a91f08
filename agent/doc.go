// Package agent implements the per-agent turn loop: it drives a model and a
// tool registry against a conversation history until the model produces a
// final answer, a safety limit trips, or the caller cancels.
package agent

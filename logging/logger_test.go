package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("anything else"))
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l, _ := newCaptureLogger()
	assert.Equal(t, l, OrNoOp(l))
}

func TestLogToolCall(t *testing.T) {
	l, buf := newCaptureLogger()

	LogToolCall(l, "calculator", "call-1", 5*time.Millisecond, nil)
	out := buf.String()
	require.Contains(t, out, "tool.call.completed")
	assert.Contains(t, out, `"tool":"calculator"`)
	assert.Contains(t, out, `"call_id":"call-1"`)

	buf.Reset()
	LogToolCall(l, "calculator", "call-2", time.Millisecond, errors.New("boom"))
	out = buf.String()
	require.Contains(t, out, "tool.call.failed")
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLogModelCall(t *testing.T) {
	l, buf := newCaptureLogger()

	LogModelCall(l, "helper", "gpt-4o-mini", 2, 10*time.Millisecond, nil)
	out := buf.String()
	require.Contains(t, out, "model.call.completed")
	assert.Contains(t, out, `"agent":"helper"`)
	assert.Contains(t, out, `"iteration":2`)

	buf.Reset()
	LogModelCall(l, "helper", "gpt-4o-mini", 1, time.Millisecond, errors.New("rate limited"))
	assert.Contains(t, buf.String(), "model.call.failed")
}

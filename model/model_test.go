package model

import (
	"context"
	"testing"

	"github.com/agentapps/agentapps/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var responses []Response
	for resp := range respCh {
		responses = append(responses, resp)
	}
	return responses, <-errCh
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.AddResponse("What is 2+2?", "4")

	respCh, errCh := m.Generate(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("What is 2+2?")},
	})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].IsFinalAnswer())
	assert.Equal(t, "4", responses[0].Text)
}

func TestMockModel_StreamingEndsWithTerminal(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.AddResponse("hi", "ok")

	respCh, errCh := m.Generate(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Stream:   true,
	})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	// One partial per rune plus the terminal response.
	require.Len(t, responses, 3)
	assert.True(t, responses[0].Partial)
	assert.True(t, responses[1].Partial)
	assert.True(t, responses[2].IsFinalAnswer())
	assert.Equal(t, "ok", responses[2].Text)
}

func TestMockModel_EmptyRequest(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	respCh, errCh := m.Generate(context.Background(), Request{})
	responses, err := drain(t, respCh, errCh)
	assert.Empty(t, responses)
	assert.Error(t, err)
}

func TestResponse_IsFinalAnswer(t *testing.T) {
	assert.True(t, Response{Text: "done"}.IsFinalAnswer())
	assert.False(t, Response{Partial: true}.IsFinalAnswer())
	assert.False(t, Response{ToolCalls: []core.ToolCallRequest{{CallID: "1"}}}.IsFinalAnswer())
}

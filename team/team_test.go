package team

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/model"
)

// scriptedModel replays canned terminal responses and records requests.
type scriptedModel struct {
	mu       sync.Mutex
	script   []model.Response
	errs     []error
	calls    int
	requests []model.Request
}

func (m *scriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	idx := m.calls
	m.calls++
	m.mu.Unlock()

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)
		if idx < len(m.errs) && m.errs[idx] != nil {
			errCh <- m.errs[idx]
			return
		}
		if idx >= len(m.script) {
			errCh <- fmt.Errorf("unexpected model call %d", idx+1)
			return
		}
		respCh <- m.script[idx]
	}()
	return respCh, errCh
}

func (m *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newAgent(t *testing.T, name string, llm model.Model) *agent.Agent {
	t.Helper()
	a, err := agent.New(name, llm)
	require.NoError(t, err)
	return a
}

func TestTeam_SequentialHandoff(t *testing.T) {
	researchLLM := &scriptedModel{script: []model.Response{{Text: "The answer is 42."}}}
	writerLLM := &scriptedModel{script: []model.Response{{Text: "Forty-two."}}}

	researcher := newAgent(t, "researcher", researchLLM)
	writer := newAgent(t, "writer", writerLLM)

	tm, err := New("pipeline", []*agent.Agent{researcher, writer})
	require.NoError(t, err)

	res, err := tm.Execute(context.Background(), "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "Forty-two.", res.Answer)

	// The researcher's answer must appear in the writer's seed context.
	require.Len(t, writerLLM.requests, 1)
	msgs := writerLLM.requests[0].Messages
	found := false
	for _, m := range msgs {
		if m.Role == core.RoleSystem && m.Content == "Context from researcher: The answer is 42." {
			found = true
		}
	}
	assert.True(t, found, "upstream answer missing from downstream seed")

	// Per-stage transcripts are retained in order.
	require.Len(t, res.Stages, 2)
	assert.Equal(t, "researcher", res.Stages[0].Agent)
	assert.Equal(t, "The answer is 42.", res.Stages[0].Answer)
	assert.Equal(t, "writer", res.Stages[1].Agent)
	assert.NotEmpty(t, res.Stages[0].Messages)
}

func TestTeam_TeamInstructionsInSeed(t *testing.T) {
	llm := &scriptedModel{script: []model.Response{{Text: "ok"}}}
	a := newAgent(t, "solo", llm)

	tm, err := New("guided", []*agent.Agent{a}, func(o *Options) {
		o.Instructions = []string{"Answer in French."}
	})
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), "hello")
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	first := llm.requests[0].Messages[0]
	assert.Equal(t, core.RoleSystem, first.Role)
	assert.Equal(t, "Answer in French.", first.Content)
}

func TestTeam_HaltsOnFirstFailure(t *testing.T) {
	failingLLM := &scriptedModel{errs: []error{errors.New("auth expired")}}
	downstreamLLM := &scriptedModel{script: []model.Response{{Text: "never"}}}

	first := newAgent(t, "first", failingLLM)
	second := newAgent(t, "second", downstreamLLM)

	tm, err := New("fragile", []*agent.Agent{first, second})
	require.NoError(t, err)

	_, err = tm.Run(context.Background(), "go")
	require.Error(t, err)
	assert.Equal(t, core.ErrBackend, core.KindOf(err))
	assert.Equal(t, "first", core.AgentOf(err))

	// The downstream agent never starts.
	assert.Equal(t, 0, downstreamLLM.callCount())
}

func TestTeam_RequiresAgents(t *testing.T) {
	_, err := New("empty", nil)
	require.Error(t, err)
}

func TestTeam_Info(t *testing.T) {
	llm := model.NewMockModel("mock-1", "mock")
	a := newAgent(t, "only", llm)

	tm, err := New("solo-team", []*agent.Agent{a}, func(o *Options) {
		o.Instructions = []string{"Be kind."}
	})
	require.NoError(t, err)

	info := tm.Info()
	assert.Equal(t, "solo-team", info.Name)
	assert.Equal(t, []string{"Be kind."}, info.Instructions)
	require.Len(t, info.Agents, 1)
	assert.Equal(t, "only", info.Agents[0].Name)
}

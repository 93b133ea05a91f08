package agentapps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/model"
	"github.com/agentapps/agentapps/team"
)

func newMockAgent(t *testing.T, name, prompt, answer string) *agent.Agent {
	t.Helper()
	llm := model.NewMockModel("mock-1", "mock")
	llm.AddResponse(prompt, answer)
	a, err := agent.New(name, llm)
	require.NoError(t, err)
	return a
}

func TestAgentApps_RunAgent(t *testing.T) {
	app := New()
	require.NoError(t, app.RegisterAgent(newMockAgent(t, "greeter", "hi", "hello there")))

	answer, err := app.Run(context.Background(), "greeter", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", answer)

	_, err = app.Run(context.Background(), "nobody", "hi")
	require.Error(t, err)
}

func TestAgentApps_DuplicateRegistration(t *testing.T) {
	app := New()
	require.NoError(t, app.RegisterAgent(newMockAgent(t, "one", "x", "y")))
	err := app.RegisterAgent(newMockAgent(t, "one", "x", "y"))
	require.Error(t, err)
}

func TestAgentApps_RunTeam(t *testing.T) {
	app := New()

	first := newMockAgent(t, "first", "go", "stage one done")
	second := newMockAgent(t, "second", "go", "stage two done")
	tm, err := team.New("pipeline", []*agent.Agent{first, second})
	require.NoError(t, err)
	require.NoError(t, app.RegisterTeam(tm))

	answer, err := app.RunTeam(context.Background(), "pipeline", "go")
	require.NoError(t, err)
	assert.Equal(t, "stage two done", answer)

	_, err = app.RunTeam(context.Background(), "missing", "go")
	require.Error(t, err)
}

func TestAgentApps_RunStreamUnknownAgent(t *testing.T) {
	app := New()

	var events []core.StreamEvent
	for ev := range app.RunStream(context.Background(), "ghost", "hi") {
		events = append(events, ev)
	}
	require.Len(t, events, 1)
	assert.Equal(t, core.StreamError, events[0].Type)
}

func TestAgentApps_Infos(t *testing.T) {
	app := New()
	require.NoError(t, app.RegisterAgent(newMockAgent(t, "a", "x", "y")))
	require.NoError(t, app.RegisterAgent(newMockAgent(t, "b", "x", "y")))

	infos := app.AgentInfos()
	assert.Len(t, infos, 2)
	assert.Empty(t, app.TeamInfos())
}

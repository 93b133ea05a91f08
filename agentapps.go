// Package agentapps provides a high-level façade over the agent loop and
// team orchestration. Most applications interact with this package by:
//  1. Creating an AgentApps via New() (optionally supplying a logger)
//  2. Registering one or more agents and teams by name
//  3. Running them synchronously (Run/RunTeam) or as a stream (RunStream)
//
// The façade keeps setup ergonomics concise while delegating the actual loop
// to the agent and team packages.
package agentapps

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/team"
)

// Options configures the AgentApps instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentApps is the high-level façade holding named agents and teams.
type AgentApps struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
	teams  map[string]*team.Team
	logger logging.Logger
}

// New creates a new AgentApps instance with optional overrides.
func New(optFns ...func(o *Options)) *AgentApps {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &AgentApps{
		agents: make(map[string]*agent.Agent),
		teams:  make(map[string]*team.Team),
		logger: logging.OrNoOp(opts.Logger),
	}
}

// RegisterAgent adds an agent under its name. Registering the same name twice
// is an error.
func (a *AgentApps) RegisterAgent(ag *agent.Agent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	name := ag.Name()
	if _, exists := a.agents[name]; exists {
		return fmt.Errorf("agent %q already registered", name)
	}
	a.agents[name] = ag
	a.logger.Info("agent.registered", "agent", name)
	return nil
}

// RegisterTeam adds a team under its name.
func (a *AgentApps) RegisterTeam(tm *team.Team) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	name := tm.Name()
	if _, exists := a.teams[name]; exists {
		return fmt.Errorf("team %q already registered", name)
	}
	a.teams[name] = tm
	a.logger.Info("team.registered", "team", name)
	return nil
}

// Agent returns the registered agent by name.
func (a *AgentApps) Agent(name string) (*agent.Agent, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ag, ok := a.agents[name]
	return ag, ok
}

// Team returns the registered team by name.
func (a *AgentApps) Team(name string) (*team.Team, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tm, ok := a.teams[name]
	return tm, ok
}

// Run executes the named agent and returns its final answer.
func (a *AgentApps) Run(ctx context.Context, agentName, message string) (string, error) {
	ag, ok := a.Agent(agentName)
	if !ok {
		return "", fmt.Errorf("agent %q not registered", agentName)
	}
	return ag.Run(ctx, message)
}

// RunStream executes the named agent, delivering incremental events. An
// unregistered name yields a single error event.
func (a *AgentApps) RunStream(ctx context.Context, agentName, message string) <-chan core.StreamEvent {
	ag, ok := a.Agent(agentName)
	if !ok {
		emitter := core.NewEmitter(core.NewID(), agentName, 1)
		emitter.Error(fmt.Errorf("agent %q not registered", agentName))
		emitter.Close()
		return emitter.Events()
	}
	return ag.RunStream(ctx, message)
}

// RunTeam executes the named team and returns the last agent's final answer.
func (a *AgentApps) RunTeam(ctx context.Context, teamName, message string) (string, error) {
	tm, ok := a.Team(teamName)
	if !ok {
		return "", fmt.Errorf("team %q not registered", teamName)
	}
	return tm.Run(ctx, message)
}

// AgentInfos returns configuration snapshots for all registered agents.
func (a *AgentApps) AgentInfos() []agent.Info {
	a.mu.RLock()
	defer a.mu.RUnlock()
	infos := make([]agent.Info, 0, len(a.agents))
	for _, ag := range a.agents {
		infos = append(infos, ag.Info())
	}
	return infos
}

// TeamInfos returns configuration snapshots for all registered teams.
func (a *AgentApps) TeamInfos() []team.Info {
	a.mu.RLock()
	defer a.mu.RUnlock()
	infos := make([]team.Info, 0, len(a.teams))
	for _, tm := range a.teams {
		infos = append(infos, tm.Info())
	}
	return infos
}

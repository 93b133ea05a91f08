// Package team sequences agents into a fixed chain: each agent's final
// answer becomes seed context for the next, and the last agent's answer is
// the team's answer.
package team

import (
	"context"
	"fmt"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
)

// Options configures a Team.
type Options struct {
	// Instructions are team-level directives injected into every stage's
	// seed context.
	Instructions []string
	// Logger receives structured orchestration events. Defaults to a no-op
	// logger.
	Logger logging.Logger
}

// Team runs an ordered sequence of agents. The order is the execution order
// and never changes at runtime. Downstream agents structurally depend on
// upstream answers, so the first failure halts the chain.
type Team struct {
	name         string
	instructions []string
	agents       []*agent.Agent
	logger       logging.Logger
}

// Stage is one agent's contribution to a team run: its final answer plus the
// full transcript of messages its loop produced.
type Stage struct {
	Agent    string
	Answer   string
	Messages []core.Message
}

// Result is the outcome of a completed team run. Answer is the last agent's
// final answer; Stages retains every intermediate transcript for inspection.
type Result struct {
	Answer string
	Stages []Stage
}

// Info is a read-only snapshot of a team's configuration.
type Info struct {
	Name         string       `json:"name"`
	Instructions []string     `json:"instructions,omitempty"`
	Agents       []agent.Info `json:"agents"`
}

// New creates a team from the given agents in execution order. At least one
// agent is required.
func New(name string, agents []*agent.Agent, optFns ...func(o *Options)) (*Team, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("team %q requires at least one agent", name)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Team{
		name:         name,
		instructions: opts.Instructions,
		agents:       agents,
		logger:       logging.OrNoOp(opts.Logger),
	}, nil
}

// Name returns the team's name.
func (t *Team) Name() string { return t.name }

// Run executes the chain for one request and returns the last agent's final
// answer.
func (t *Team) Run(ctx context.Context, message string) (string, error) {
	res, err := t.Execute(ctx, message)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Execute runs the chain and returns the full result including per-stage
// transcripts. If an agent fails, the error carries that agent's identity
// and no downstream agent starts; stages completed so far are discarded
// with the error (each agent retains its own history for diagnostics).
func (t *Team) Execute(ctx context.Context, message string) (*Result, error) {
	seed := make([]core.Message, 0, len(t.instructions)+len(t.agents))
	for _, inst := range t.instructions {
		seed = append(seed, core.NewSystemMessage(inst))
	}

	result := &Result{}
	for i, a := range t.agents {
		if err := ctx.Err(); err != nil {
			return nil, core.NewError(core.KindOf(err), a.Name(), err)
		}

		t.logger.Info("team.stage.started", "team", t.name, "stage", i, "agent", a.Name())
		stageRes, err := a.RunSeeded(ctx, message, seed)
		if err != nil {
			t.logger.Error("team.stage.failed", "team", t.name, "stage", i, "agent", a.Name(), "error", err.Error())
			return nil, err
		}

		result.Stages = append(result.Stages, Stage{
			Agent:    a.Name(),
			Answer:   stageRes.Answer,
			Messages: stageRes.Messages,
		})
		result.Answer = stageRes.Answer

		seed = append(seed, core.NewSystemMessage(
			fmt.Sprintf("Context from %s: %s", a.Name(), stageRes.Answer)))
	}

	t.logger.Info("team.run.completed", "team", t.name, "stages", len(result.Stages))
	return result, nil
}

// Info returns a read-only snapshot of the team's configuration.
func (t *Team) Info() Info {
	agents := make([]agent.Info, 0, len(t.agents))
	for _, a := range t.agents {
		agents = append(agents, a.Info())
	}
	return Info{
		Name:         t.name,
		Instructions: append([]string(nil), t.instructions...),
		Agents:       agents,
	}
}

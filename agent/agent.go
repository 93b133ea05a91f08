package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/model"
	"github.com/agentapps/agentapps/tool"
)

// DefaultMaxIterations caps model/tool round-trips within one run.
const DefaultMaxIterations = 10

// Options configures an Agent.
type Options struct {
	// Role is a short description of the agent's purpose, fed to the model
	// ahead of the instructions.
	Role string
	// Instructions are ordered directive strings for the model.
	Instructions []string
	// Tools are registered at construction. Registration fails on duplicate
	// tool names.
	Tools []tool.Tool
	// MaxIterations bounds model/tool round-trips. Defaults to
	// DefaultMaxIterations.
	MaxIterations int
	// Params are sampling parameters passed through to the model.
	Params model.Params
	// ShowToolCalls surfaces tool dispatches and results as stream events.
	ShowToolCalls bool
	// Logger receives structured loop events. Defaults to a no-op logger.
	Logger logging.Logger
}

// Agent binds a model, a tool registry and an instruction set to a
// conversation history and runs the turn loop over them. Configuration is
// fixed at construction (except AddTool between runs); only one run may be
// in flight at a time.
type Agent struct {
	name          string
	role          string
	instructions  []string
	llm           model.Model
	registry      *tool.Registry
	maxIterations int
	params        model.Params
	showToolCalls bool
	history       *core.Conversation
	logger        logging.Logger

	mu sync.Mutex // serializes runs; the loop owns history and registry exclusively
}

// Result is the outcome of one completed run: the final answer, the
// transcript of messages produced during the run, and the number of model
// turns consumed.
type Result struct {
	Answer     string
	Messages   []core.Message
	Iterations int
}

// Info is a read-only snapshot of an agent's configuration.
type Info struct {
	Name          string     `json:"name"`
	Role          string     `json:"role,omitempty"`
	Instructions  []string   `json:"instructions,omitempty"`
	Model         model.Info `json:"model"`
	Tools         []string   `json:"tools"`
	MaxIterations int        `json:"max_iterations"`
}

// New creates an agent bound to the given model. It fails if two configured
// tools share a name.
func New(name string, llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)

	registry, err := tool.NewRegistry(logger, opts.Tools...)
	if err != nil {
		return nil, err
	}

	return &Agent{
		name:          name,
		role:          opts.Role,
		instructions:  opts.Instructions,
		llm:           llm,
		registry:      registry,
		maxIterations: opts.MaxIterations,
		params:        opts.Params,
		showToolCalls: opts.ShowToolCalls,
		history:       core.NewConversation(),
		logger:        logger,
	}, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Run executes the loop for one user message and returns the final answer.
func (a *Agent) Run(ctx context.Context, message string) (string, error) {
	res, err := a.RunSeeded(ctx, message, nil)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// RunSeeded executes the loop with additional seed context messages supplied
// ahead of the retained history. Team orchestration uses it to inject
// upstream agents' answers; the seed is not retained in history.
func (a *Agent) RunSeeded(ctx context.Context, message string, seed []core.Message) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.run(ctx, message, seed, nil)
}

// RunStream executes the loop for one user message, delivering incremental
// events on the returned channel. The sequence is finite and ends with
// exactly one terminal event (final answer or error); it cannot be restarted.
func (a *Agent) RunStream(ctx context.Context, message string) <-chan core.StreamEvent {
	emitter := core.NewEmitter(core.NewID(), a.name, 16)

	go func() {
		defer emitter.Close()
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, err := a.run(ctx, message, nil, emitter); err != nil {
			emitter.Error(err)
		}
	}()

	return emitter.Events()
}

// AddTool registers an additional tool before the next run. It fails with a
// duplicate_tool error if the name is already present.
func (a *Agent) AddTool(t tool.Tool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry.Register(t)
}

// ClearHistory discards the retained conversation so the next run starts a
// fresh chat.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history.Clear()
}

// History returns a copy of the retained conversation.
func (a *Agent) History() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Snapshot()
}

// Info returns a read-only snapshot of the agent's configuration.
func (a *Agent) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{
		Name:          a.name,
		Role:          a.role,
		Instructions:  append([]string(nil), a.instructions...),
		Model:         a.llm.Info(),
		Tools:         a.registry.Names(),
		MaxIterations: a.maxIterations,
	}
}

// systemPrompt assembles the leading instruction text from the agent's role
// and directive list.
func (a *Agent) systemPrompt() string {
	var parts []string
	if a.role != "" {
		parts = append(parts, "You are "+a.name+", "+a.role+".")
	}
	for _, inst := range a.instructions {
		parts = append(parts, inst)
	}
	return strings.Join(parts, "\n")
}

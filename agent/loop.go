package agent

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentapps/agentapps/core"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/model"
)

// run is the turn loop. It seeds the conversation, alternates model calls
// and tool dispatches, and terminates on a final answer, the iteration cap,
// a backend/registry failure, or cancellation. The caller holds a.mu.
func (a *Agent) run(ctx context.Context, message string, seed []core.Message, emitter *core.Emitter) (*Result, error) {
	userMsg := core.NewUserMessage(message)
	a.history.Append(userMsg)
	transcript := []core.Message{userMsg}

	record := func(msgs ...core.Message) {
		a.history.Append(msgs...)
		transcript = append(transcript, msgs...)
	}

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, a.fail(err, transcript, iteration)
		}

		req := model.Request{
			Instructions: a.systemPrompt(),
			Messages:     append(append([]core.Message{}, seed...), a.history.Snapshot()...),
			Tools:        a.registry.Definitions(),
			Params:       a.params,
			Stream:       emitter != nil,
		}

		start := time.Now()
		resp, err := a.generate(ctx, req, emitter)
		logging.LogModelCall(a.logger, a.name, a.llm.Info().Name, iteration, time.Since(start), err)
		if err != nil {
			return nil, a.fail(err, transcript, iteration)
		}

		if resp.IsFinalAnswer() {
			record(core.NewAgentMessage(resp.Text))
			emitter.Final(ctx, resp.Text)
			a.logger.Info("agent.run.completed", "agent", a.name, "iterations", iteration)
			return &Result{Answer: resp.Text, Messages: transcript, Iterations: iteration}, nil
		}

		record(core.NewToolCallMessage(resp.Text, resp.ToolCalls))
		results, err := a.dispatchTools(ctx, resp.ToolCalls, emitter)
		if err != nil {
			return nil, a.fail(err, transcript, iteration)
		}
		for _, res := range results {
			record(core.NewToolMessage(res))
		}
	}

	err := core.NewError(core.ErrLoopLimit, a.name,
		fmt.Errorf("no final answer after %d iterations", a.maxIterations))
	a.logger.Error("agent.run.failed", "agent", a.name, "error", err.Error())
	return nil, err
}

// generate performs one model call, forwarding partial text fragments to the
// emitter and returning the terminal response.
func (a *Agent) generate(ctx context.Context, req model.Request, emitter *core.Emitter) (*model.Response, error) {
	respCh, errCh := a.llm.Generate(ctx, req)

	var terminal *model.Response
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				emitter.Text(ctx, resp.Text)
				continue
			}
			terminal = &resp
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		if terminal != nil {
			break
		}
	}

	if terminal == nil {
		return nil, fmt.Errorf("model closed the stream without a terminal response")
	}
	return terminal, nil
}

// dispatchTools fans the turn's tool calls out concurrently and collects the
// results back in request order. The loop suspends until every call of the
// turn has completed; partial results are never fed to the model. Registry
// defects (unknown tool) abort the whole turn.
func (a *Agent) dispatchTools(ctx context.Context, calls []core.ToolCallRequest, emitter *core.Emitter) ([]core.ToolResult, error) {
	if a.showToolCalls {
		for _, call := range calls {
			emitter.ToolCall(ctx, call)
		}
	}

	results := make([]core.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			res, err := a.registry.Invoke(gctx, call)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if a.showToolCalls {
		for _, res := range results {
			emitter.ToolResult(ctx, res)
		}
	}
	return results, nil
}

// fail tags err with the agent's identity and classified kind, logging the
// outcome. Partial transcript is retained in history for diagnostics.
func (a *Agent) fail(err error, transcript []core.Message, iteration int) error {
	tagged := err
	if core.AgentOf(err) == "" {
		tagged = core.NewError(core.KindOf(err), a.name, err)
	}
	a.logger.Error("agent.run.failed",
		"agent", a.name, "iteration", iteration, "messages", len(transcript), "error", tagged.Error())
	return tagged
}

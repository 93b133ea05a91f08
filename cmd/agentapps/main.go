// Command agentapps runs the studio HTTP server: agents are defined over the
// JSON API, persisted to disk and run against the configured model providers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/config"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/model"
	anthropicmodel "github.com/agentapps/agentapps/model/anthropic"
	openaimodel "github.com/agentapps/agentapps/model/openai"
	"github.com/agentapps/agentapps/server"
	"github.com/agentapps/agentapps/tool"
	"github.com/agentapps/agentapps/tool/builtin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})

	store, err := server.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}

	srv := server.New(store, newAgentFactory(cfg, logger), func(o *server.Options) {
		o.Logger = logger
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.started", "addr", cfg.HTTPAddr, "data_dir", cfg.DataDir)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("server.stopping", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// newAgentFactory wires persisted definitions to concrete models and builtin
// tools using the process configuration.
func newAgentFactory(cfg *config.Config, logger logging.Logger) server.AgentFactory {
	return func(def server.Definition) (*agent.Agent, error) {
		llm, err := buildModel(cfg, def)
		if err != nil {
			return nil, err
		}

		tools := make([]tool.Tool, 0, len(def.Tools))
		for _, name := range def.Tools {
			t, err := buildTool(cfg, name)
			if err != nil {
				return nil, err
			}
			tools = append(tools, t)
		}

		return agent.New(def.Name, llm, func(o *agent.Options) {
			o.Role = def.Role
			o.Instructions = def.Instructions
			o.Tools = tools
			o.ShowToolCalls = def.ShowToolCalls
			o.Logger = logger
			if def.MaxIterations > 0 {
				o.MaxIterations = def.MaxIterations
			} else {
				o.MaxIterations = cfg.MaxIterations
			}
			if def.Temperature > 0 {
				o.Params.Temperature = def.Temperature
			} else {
				o.Params.Temperature = cfg.Temperature
			}
		})
	}
}

func buildModel(cfg *config.Config, def server.Definition) (model.Model, error) {
	name := def.Model
	if name == "" {
		name = cfg.DefaultModel
	}

	switch def.Provider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.APIKey = cfg.OpenAIAPIKey
			o.Model = name
		}), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			o.Model = anthropic.Model(name)
		}), nil
	case "mock":
		return model.NewMockModel(name, "mock"), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", def.Provider)
	}
}

func buildTool(cfg *config.Config, name string) (tool.Tool, error) {
	switch name {
	case "calculator":
		return builtin.NewCalculatorTool(), nil
	case "search_summary":
		return builtin.NewSearchSummaryTool(func(o *builtin.SearchOptions) {
			o.APIKey = cfg.SearchAPIKey
			if cfg.SearchAPIURL != "" {
				o.APIURL = cfg.SearchAPIURL
			}
		}), nil
	case "scrape_webpage":
		return builtin.NewScraperTool(), nil
	case "run_shell_command":
		return builtin.NewShellTool(), nil
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

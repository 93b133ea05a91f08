package builtin

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/agentapps/agentapps/tool"
)

// ShellOptions configures the shell command tool.
type ShellOptions struct {
	// Interpreter is the command used to run scripts. Defaults to ["sh", "-c"].
	Interpreter []string
	// WorkDir is the working directory for commands.
	WorkDir string
}

// NewShellTool returns a tool that executes shell commands. Commands run
// through the configured interpreter and are killed when the context is
// cancelled. Only register this tool in trusted environments.
func NewShellTool(optFns ...func(o *ShellOptions)) *tool.FunctionTool {
	opts := ShellOptions{
		Interpreter: []string{"sh", "-c"},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute",
			},
		},
		"required": []string{"command"},
	}

	return tool.NewFunctionTool(
		"run_shell_command",
		"Execute a shell command and return its output",
		params,
		func(ctx context.Context, args map[string]any) (any, error) {
			command, _ := args["command"].(string)
			return runCommand(ctx, opts, command)
		},
	)
}

func runCommand(ctx context.Context, opts ShellOptions, command string) (string, error) {
	argv := append(append([]string{}, opts.Interpreter...), command)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.WorkDir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("command failed: %s", msg)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = "(no output)"
	}
	return out, nil
}

package task

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xctask/xctask/pkg/runner"
)

// ShellHooks runs configured shell commands around a task's process. After
// commands receive XCTASK_TASK, XCTASK_STATUS and XCTASK_OUTPUT_LINES in
// their environment.
type ShellHooks struct {
	Task           string
	Runner         runner.Runner
	Dir            string
	BeforeCommands []string
	AfterCommands  []string
}

// Ensure ShellHooks implements runner.Hooks
var _ runner.Hooks = (*ShellHooks)(nil)

// Before runs the before commands in order, stopping at the first failure.
func (h *ShellHooks) Before(ctx context.Context) error {
	return h.run(ctx, h.BeforeCommands, "XCTASK_TASK="+h.Task)
}

// After runs the after commands once the process succeeded.
func (h *ShellHooks) After(ctx context.Context, output []string, status int) error {
	return h.run(ctx, h.AfterCommands,
		"XCTASK_TASK="+h.Task,
		"XCTASK_STATUS="+strconv.Itoa(status),
		"XCTASK_OUTPUT_LINES="+strconv.Itoa(len(output)),
	)
}

func (h *ShellHooks) run(ctx context.Context, commands []string, env ...string) error {
	for _, c := range commands {
		cmd := runner.Command{
			Args: []string{"/bin/sh", "-c", c},
			Dir:  h.Dir,
			Env:  env,
		}
		if _, err := h.Runner.Run(ctx, cmd, nil); err != nil {
			return fmt.Errorf("%q: %w", c, err)
		}
	}
	return nil
}

package runner

import (
	"context"
	"fmt"
)

// Ensure Recorder implements Runner
var _ Runner = (*Recorder)(nil)

// Recorder is a Runner for tests. It records every command instead of
// starting a process and follows the same hook and failure rules as Exec.
type Recorder struct {
	Commands []Command

	// Respond returns the output lines and exit status for a command.
	// When nil every command succeeds with no output.
	Respond func(cmd Command) ([]string, int)

	// StartError, if non-nil, is returned as if the process could not be started.
	StartError error
}

// NewRecorder creates a Recorder where every command succeeds.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Run(ctx context.Context, c Command, hooks Hooks) (*Result, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if err := runBefore(ctx, hooks); err != nil {
		return nil, err
	}

	r.Commands = append(r.Commands, c)
	if r.StartError != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Tool(), r.StartError)
	}

	res := &Result{}
	if r.Respond != nil {
		res.Output, res.ExitCode = r.Respond(c)
	}
	if res.ExitCode != 0 {
		return res, &CommandFailedError{Tool: c.Tool(), Args: c.Args, ExitCode: res.ExitCode}
	}
	if err := runAfter(ctx, hooks, res); err != nil {
		return res, err
	}
	return res, nil
}

// Lines returns the recorded command lines in order.
func (r *Recorder) Lines() []string {
	lines := make([]string, 0, len(r.Commands))
	for _, c := range r.Commands {
		lines = append(lines, c.String())
	}
	return lines
}

// Package runner executes external tools for tasks.
//
// A Runner starts one process (optionally piped through a formatter), streams
// every output line to the console as it arrives and returns the buffered
// lines together with the exit status. Any nonzero exit of the primary
// process is reported as a *CommandFailedError.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Args      []string // program followed by its arguments
	Dir       string   // working directory, empty for the current one
	Env       []string // KEY=VALUE pairs added to (or, with Isolate, replacing) the environment
	Isolate   bool     // when true the process sees only Env
	Formatter string   // shell command receiving the combined output, e.g. "xcpretty -c"
}

// String returns the command line as printed before execution.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Tool returns the base name of the program, used in failure messages.
func (c Command) Tool() string {
	if len(c.Args) == 0 {
		return ""
	}
	return filepath.Base(c.Args[0])
}

// Result holds the captured output of a finished process.
type Result struct {
	Output   []string
	ExitCode int
}

// Hooks are called around a process run. Before runs before the process
// starts, regardless of the outcome. After runs only when the process exits
// with status 0.
type Hooks interface {
	Before(ctx context.Context) error
	After(ctx context.Context, output []string, status int) error
}

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command, hooks Hooks) (*Result, error)
}

// HookFuncs adapts plain functions to the Hooks interface. Nil functions are skipped.
type HookFuncs struct {
	BeforeFunc func(ctx context.Context) error
	AfterFunc  func(ctx context.Context, output []string, status int) error
}

func (h HookFuncs) Before(ctx context.Context) error {
	if h.BeforeFunc == nil {
		return nil
	}
	return h.BeforeFunc(ctx)
}

func (h HookFuncs) After(ctx context.Context, output []string, status int) error {
	if h.AfterFunc == nil {
		return nil
	}
	return h.AfterFunc(ctx, output, status)
}

func runBefore(ctx context.Context, hooks Hooks) error {
	if hooks == nil {
		return nil
	}
	if err := hooks.Before(ctx); err != nil {
		return fmt.Errorf("before hook: %w", err)
	}
	return nil
}

func runAfter(ctx context.Context, hooks Hooks, res *Result) error {
	if hooks == nil {
		return nil
	}
	if err := hooks.After(ctx, res.Output, res.ExitCode); err != nil {
		return fmt.Errorf("after hook: %w", err)
	}
	return nil
}

// Package pipeline executes registered pipes in sequence.
//
// A task runs in two stages:
//   - Validation stage: the kind's check pipes, which validate the task
//   - Execution stage: the kind's execution pipes, which start processes
//
// No process is started when validation fails. Usage:
//
//	ctx := context.NewContext(context.Background(), cfg, logger)
//	ctx.Runner = runner.NewExec(os.Stdout, logger)
//	ctx.Task = t
//	if err := pipeline.RunTask(ctx); err != nil {
//	    // Handle error
//	}
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// RunValidation executes only the validation pipes of the context's task.
// Used by the check command.
func RunValidation(ctx *context.Context) error {
	if ctx.Task == nil {
		return fmt.Errorf("no task to validate")
	}
	return runPipes(ctx, ValidationPipes[ctx.Task.Kind()])
}

// RunTask validates the context's task, runs it once and records the
// outcome on the task. The task ends Succeeded or Failed unless validation
// fails, in which case nothing is started.
func RunTask(ctx *context.Context) error {
	t := ctx.Task
	if err := RunValidation(ctx); err != nil {
		return err
	}

	err := runPipes(ctx, ExecutionPipes[t.Kind()])
	if t.State() == task.Running {
		if ferr := t.Finish(err); ferr != nil {
			return ferr
		}
	}
	return err
}

// RunCoverage executes the coverage pipes.
func RunCoverage(ctx *context.Context) error {
	return runPipes(ctx, CoveragePipes)
}

// runPipes executes a slice of pipes in sequence.
func runPipes(ctx *context.Context, pipes []Piper) error {
	for _, p := range pipes {
		if err := ctx.Err(); err != nil {
			return err
		}
		ctx.Logger.Infof("Running: %s", p.String())
		start := time.Now()

		if err := p.Run(ctx); err != nil {
			if isSkip(err) {
				ctx.Logger.Infof("Skipping: %v", err)
				continue
			}
			return fmt.Errorf("%s: %w", p.String(), err)
		}

		duration := time.Since(start)
		ctx.Logger.Infof("Completed: %s (%s)", p.String(), duration.Round(time.Millisecond))
	}
	return nil
}

func isSkip(err error) bool {
	var s pipe.IsSkip
	return errors.As(err, &s) && s.IsSkip()
}

// Piper is re-exported for convenience within the pipeline package.
type Piper = pipe.Piper

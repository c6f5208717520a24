package test

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// CheckPipe validates a test task before anything runs.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating test task" }

func (CheckPipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindTest {
		return pipe.Skip("not a test task")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	ctx.Logger.WithField("sdk", t.SDK()).Debug("Test task validated successfully")
	return nil
}

package test

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// Pipe runs `xcodebuild test`.
type Pipe struct{}

func (Pipe) String() string { return "running tests" }

func (Pipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindTest {
		return pipe.Skip("not a test task")
	}

	ctx.Logger.Infof("Testing scheme %q on %s", t.Scheme(), t.SDK())
	res, err := t.Execute(ctx.StdCtx, ctx.Runner, ctx.Profiles)
	ctx.Result = res
	if err != nil {
		return err
	}

	if t.Coverage() {
		ctx.Logger.Info("Coverage data written; run coverage:coveralls to report it")
	}
	return nil
}

package build

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// Pipe runs `xcodebuild build`.
type Pipe struct{}

func (Pipe) String() string { return "building project" }

func (Pipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindBuild {
		return pipe.Skip("not a build task")
	}

	if t.Scheme() != "" {
		ctx.Logger.Infof("Building scheme %q", t.Scheme())
	}
	res, err := t.Execute(ctx.StdCtx, ctx.Runner, ctx.Profiles)
	ctx.Result = res
	if err != nil {
		return err
	}

	if dir := t.BuildDir(); dir != "" {
		ctx.Logger.Infof("Build products: %s", dir)
	}
	return nil
}

package archive

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// Pipe runs `xcodebuild archive`.
type Pipe struct{}

func (Pipe) String() string { return "archiving project" }

func (Pipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindArchive {
		return pipe.Skip("not an archive task")
	}

	ctx.Logger.Infof("Archiving scheme %q", t.Scheme())
	res, err := t.Execute(ctx.StdCtx, ctx.Runner, ctx.Profiles)
	ctx.Result = res
	if err != nil {
		return err
	}

	if path := t.ArchivePath(); path != "" {
		ctx.Logger.Infof("Archive path: %s", path)
	}
	return nil
}

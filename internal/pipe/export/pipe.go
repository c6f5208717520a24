package export

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// Pipe runs `xcodebuild -exportArchive`.
type Pipe struct{}

func (Pipe) String() string { return "exporting archive" }

func (Pipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindExport {
		return pipe.Skip("not an export task")
	}

	ctx.Logger.Infof("Exporting %s", t.ArchivePath())
	res, err := t.Execute(ctx.StdCtx, ctx.Runner, ctx.Profiles)
	ctx.Result = res
	if err != nil {
		return err
	}

	if path := t.ExportPath(); path != "" {
		ctx.Logger.Infof("Exported to %s", path)
	}
	return nil
}

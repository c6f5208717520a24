package archive

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// CheckPipe validates an archive task before anything runs.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating archive task" }

func (CheckPipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindArchive {
		return pipe.Skip("not an archive task")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if t.BuildDir() == "" {
		ctx.Logger.Warn("build_dir is not set; the archive will not be zipped")
	}
	ctx.Logger.WithField("archive", t.ArchivePath()).Debug("Archive task validated successfully")
	return nil
}

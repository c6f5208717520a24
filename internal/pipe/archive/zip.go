package archive

import (
	"fmt"

	"github.com/xctask/xctask/pkg/archive"
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// ZipPipe zips the dSYMs and the .xcarchive inside the build directory.
type ZipPipe struct{}

func (ZipPipe) String() string { return "zipping archive" }

func (ZipPipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindArchive {
		return pipe.Skip("not an archive task")
	}
	commands := t.PostCommands()
	if len(commands) == 0 {
		return pipe.Skip("no build_dir to zip in")
	}

	for _, cmd := range commands {
		if _, err := ctx.Runner.Run(ctx.StdCtx, cmd, nil); err != nil {
			return fmt.Errorf("zip failed: %w", err)
		}
	}

	for _, out := range archive.Outputs(t.BuildDir(), t.Scheme()) {
		ctx.Logger.Infof("Zip created: %s", out)
	}
	return nil
}

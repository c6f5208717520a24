package export

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
	"github.com/xctask/xctask/pkg/validate"
)

// Formats are the values xcodebuild accepts for -exportFormat.
var Formats = []string{"IPA", "PKG", "APP"}

// CheckPipe validates an export task before anything runs.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating export task" }

func (CheckPipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindExport {
		return pipe.Skip("not an export task")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if format, ok := t.ExportFormat(); ok {
		if err := validate.OneOf(format, Formats, "export_format"); err != nil {
			return err
		}
	}

	ctx.Logger.WithField("archive", t.ArchivePath()).Debug("Export task validated successfully")
	return nil
}

package build

import (
	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
	"github.com/xctask/xctask/pkg/task"
)

// CheckPipe validates a build task before anything runs.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating build task" }

func (CheckPipe) Run(ctx *context.Context) error {
	t := ctx.Task
	if t == nil || t.Kind() != task.KindBuild {
		return pipe.Skip("not a build task")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if t.ProvisioningProfile() != "" && t.SigningIdentity() == "" {
		ctx.Logger.Warnf("provisioning_profile %q is set without a signing_identity", t.ProvisioningProfile())
	}
	ctx.Logger.Debug("Build task validated successfully")
	return nil
}

// Package sign checks a task's signing identities against the keychain.
package sign

import (
	"fmt"

	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/pipe"
)

// KeychainPipe fails when a configured signing identity is not installed.
type KeychainPipe struct{}

func (KeychainPipe) String() string { return "checking signing identities" }

func (KeychainPipe) Run(ctx *context.Context) error {
	if ctx.Keychain == nil || ctx.Task == nil {
		return pipe.Skip("keychain check not requested")
	}

	var configured []string
	for _, id := range []string{ctx.Task.SigningIdentity(), ctx.Task.ExportSigningIdentity()} {
		if id != "" {
			configured = append(configured, id)
		}
	}
	if len(configured) == 0 {
		return pipe.Skip("no signing identity configured")
	}

	for _, id := range configured {
		ctx.Logger.Infof("Validating signing identity: %s", id)
		if err := ctx.Keychain.Check(ctx.StdCtx, id); err != nil {
			return fmt.Errorf("identity validation failed: %w", err)
		}
	}

	ctx.Logger.Debug("Signing identities found in keychain")
	return nil
}

// Package coverage holds the pipes of the coverage:coveralls command.
package coverage

import (
	"os"
	"path/filepath"

	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/coverage"
	"github.com/xctask/xctask/pkg/git"
	"github.com/xctask/xctask/pkg/validate"
)

// CheckPipe validates the coverage configuration and resolves the base directory.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating coverage configuration" }

func (CheckPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Coverage

	if _, err := coverage.NewCollector("", nil, nil, cfg.ExcludePatterns); err != nil {
		return validate.Errorf("coverage.exclude_patterns", "%v", err)
	}
	if cfg.Profdata != "" {
		if err := validate.RequiredSlice(cfg.Binaries, "coverage.binaries"); err != nil {
			return err
		}
	}
	if cfg.GitHubStatus.Enabled {
		if err := validate.RequiredString(cfg.GitHubStatus.Token, "coverage.github_status.token"); err != nil {
			return err
		}
	}
	if ctx.Coverage.Upload && cfg.RepoToken == "" {
		ctx.Logger.Warn("coverage.repo_token is empty; only Travis CI jobs can be matched without one")
	}

	base, err := baseDir(cfg.BaseDir)
	if err != nil {
		return err
	}
	ctx.Coverage.BaseDir = base

	ctx.Logger.WithField("base_dir", base).Debug("Coverage configuration validated successfully")
	return nil
}

// baseDir returns the configured directory, else the git top level, else
// the working directory.
func baseDir(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	if top, err := git.TopLevel("."); err == nil {
		return top, nil
	}
	return os.Getwd()
}

package context

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/xctask/xctask/pkg/config"
	"github.com/xctask/xctask/pkg/coverage"
	"github.com/xctask/xctask/pkg/env"
	"github.com/xctask/xctask/pkg/github"
	"github.com/xctask/xctask/pkg/runner"
	"github.com/xctask/xctask/pkg/sign"
	"github.com/xctask/xctask/pkg/task"
)

// Context provides shared state for all pipes
type Context struct {
	StdCtx context.Context // Standard context for cancellation support
	Config *config.Config
	Logger *logrus.Logger

	Runner   runner.Runner
	Profiles sign.ProfileResolver
	Keychain *sign.Keychain // nil unless signing identities are checked
	Env      env.LookupFunc

	// Task is the task being run by a task pipeline.
	Task   *task.Task
	Result *runner.Result

	Coverage Coverage
}

// Coverage carries the state of the coverage pipeline between pipes.
type Coverage struct {
	Upload     bool
	Uploader   coverage.Uploader
	GitHub     github.ClientInterface
	ToolRunner runner.Runner // runs llvm-cov, defaults to Runner

	BaseDir     string
	ExtractDir  string   // temporary directory holding GcovFiles
	GcovFiles   []string // synthetic files written from llvm-cov output
	SourceFiles []coverage.SourceFile
	Report      *coverage.Report
	ReportPath  string
}

// NewContext creates a new context with the given standard context, config, and logger.
// If stdCtx is nil, context.Background() is used.
func NewContext(stdCtx context.Context, cfg *config.Config, logger *logrus.Logger) *Context {
	if stdCtx == nil {
		stdCtx = context.Background()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Context{
		StdCtx: stdCtx,
		Config: cfg,
		Logger: logger,
		Env:    env.OS,
	}
}

// Done returns the done channel from the standard context for cancellation support
func (c *Context) Done() <-chan struct{} {
	return c.StdCtx.Done()
}

// Err returns the error from the standard context
func (c *Context) Err() error {
	return c.StdCtx.Err()
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xctask/xctask/pkg/config"
	xcContext "github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/logging"
	"github.com/xctask/xctask/pkg/runner"
	"github.com/xctask/xctask/pkg/sign"
	"github.com/xctask/xctask/pkg/task"
)

// SetupLogger creates and configures a logger based on debug mode
func SetupLogger(debug bool) *logrus.Logger {
	logger := logrus.New()

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logging.BulletFormatter{})
	}

	return logger
}

// ExitWithErrorf logs an error with the provided logger and exits with code 1
func ExitWithErrorf(logger *logrus.Logger, format string, args ...interface{}) {
	logger.Errorf(format, args...)
	os.Exit(1)
}

// ExitWithErrorNoLoggerf prints an error to stderr and exits with code 1
func ExitWithErrorNoLoggerf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

// session is the state shared by commands that work on configured tasks.
type session struct {
	logger *logrus.Logger
	config *config.Config
	runner runner.Runner
	repo   *task.Repository
}

// loadSession loads the configuration and registers its tasks, exiting on failure.
func loadSession() *session {
	logger := SetupLogger(GetDebugMode())
	configPath := GetConfigPath()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		ExitWithErrorf(logger, "Failed to load configuration: %v", err)
	}
	logger.WithField("action", "loading configuration").WithField("path", configPath).Info("")

	r := runner.NewExec(os.Stdout, logger)
	repo, err := task.RepositoryFromConfig(cfg, r)
	if err != nil {
		ExitWithErrorf(logger, "Invalid task configuration: %v", err)
	}

	return &session{logger: logger, config: cfg, runner: r, repo: repo}
}

// newContext creates a pipe context wired to the session's collaborators.
func (s *session) newContext() *xcContext.Context {
	ctx := xcContext.NewContext(context.Background(), s.config, s.logger)
	ctx.Runner = s.runner
	ctx.Profiles = sign.NewPlistResolver(s.logger)
	ctx.Coverage.ToolRunner = runner.NewExec(io.Discard, s.logger)
	return ctx
}

// lookupTask returns the named task, or the first task of kind when name is empty.
func (s *session) lookupTask(name string, kind task.Kind) *task.Task {
	if name != "" {
		t, ok := s.repo.Lookup(name)
		if !ok {
			ExitWithErrorf(s.logger, "Unknown task %q", name)
		}
		return t
	}

	t, ok := s.repo.FirstOfKind(kind)
	if !ok {
		ExitWithErrorf(s.logger, "No %s task configured in %s", kind, GetConfigPath())
	}
	return t
}

// formatDuration renders d as 523ms, 45s or 1m32s.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

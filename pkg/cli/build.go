package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/xctask/xctask/pkg/pipeline"
	"github.com/xctask/xctask/pkg/task"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a configured task by name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTaskCommand(args[0], "")
	},
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test [task]",
	Short: "Run the tests",
	Long: `Run xcodebuild test for the named test task, or the first one configured.
With --coverage the coverage report is collected and uploaded once the
tests pass.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := runTaskCommand(firstArg(args), task.KindTest)
		if collect, _ := cmd.Flags().GetBool("coverage"); collect {
			runCoverage(s, true, "")
		}
	},
}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [task]",
	Short: "Build the project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTaskCommand(firstArg(args), task.KindBuild)
	},
}

// archiveCmd represents the build:archive command
var archiveCmd = &cobra.Command{
	Use:     "build:archive [task]",
	Aliases: []string{"archive"},
	Short:   "Archive the project",
	Long: `Run xcodebuild archive, then zip the dSYMs and the .xcarchive in the
task's build directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTaskCommand(firstArg(args), task.KindArchive)
	},
}

// exportCmd represents the build:export command
var exportCmd = &cobra.Command{
	Use:     "build:export [task]",
	Aliases: []string{"export"},
	Short:   "Export an archive",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTaskCommand(firstArg(args), task.KindExport)
	},
}

// runTaskCommand runs one task through the pipeline, exiting on failure.
// An empty name selects the first task of kind.
func runTaskCommand(name string, kind task.Kind) *session {
	s := loadSession()
	t := s.lookupTask(name, kind)

	ctx := s.newContext()
	ctx.Task = t

	start := time.Now()
	s.logger.WithField("task", t.Name()).Infof("Starting %s", t.Kind())
	if err := pipeline.RunTask(ctx); err != nil {
		ExitWithErrorf(s.logger, "Task %s failed after %s: %v", t.Name(), formatDuration(time.Since(start)), err)
	}
	s.logger.Infof("Task %s succeeded in %s", t.Name(), formatDuration(time.Since(start)))
	return s
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

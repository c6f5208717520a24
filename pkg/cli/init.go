package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/xctask/xctask/pkg/build"
	"github.com/xctask/xctask/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate example xctask configuration",
	Long: `Generate an example .xctask.yaml configuration file in the current directory.
The Xcode workspace or project found in the directory is used for the
example tasks.`,
	Run: runInit,
}

// runInit executes the init command
func runInit(cmd *cobra.Command, args []string) {
	logger := SetupLogger(GetDebugMode())
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		logger.Infof("Configuration file %s already exists", configPath)
		os.Exit(0)
	}

	var project, workspace, scheme string
	if detected, err := build.Detect("."); err != nil {
		logger.Warnf("No Xcode project detected, using placeholders: %v", err)
	} else {
		opts := detected.Options()
		project, workspace = opts.Project, opts.Workspace
		scheme = detected.Name()
		logger.WithField("path", detected.Path).Infof("Detected scheme %s", scheme)
	}

	if err := config.SaveConfig(configPath, config.ExampleConfig(project, workspace, scheme)); err != nil {
		ExitWithErrorf(logger, "Failed to save configuration: %v", err)
	}

	logger.Infof("Example configuration created: %s", configPath)
	logger.Info("Edit this file to match your project requirements")
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xctask/xctask/pkg/config"
	"github.com/xctask/xctask/pkg/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "xctask",
	Short:   "xcodebuild task runner",
	Version: version.VersionInfo(),
	Long: `xctask runs xcodebuild test, build, archive and export tasks defined in
a configuration file, and reports code coverage to Coveralls.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Fprintf(os.Stderr, "Error displaying help: %v\n", err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	registerCommands()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	return rootCmd.Execute()
}

// registerCommands initializes flags and registers all subcommands
func registerCommands() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug mode")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(cleanCmd)

	checkCmd.Flags().Bool("keychain", false, "fail when a signing identity is not in the keychain")

	testCmd.Flags().Bool("coverage", false, "collect and upload the coverage report after the tests pass")

	coverageCmd.Flags().Bool("no-upload", false, "write the report without uploading it")
	coverageCmd.Flags().String("output", "", "report file path (default: a temporary file)")
}

// GetConfigPath returns the config file path from flags
func GetConfigPath() string {
	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	return configPath
}

// GetDebugMode returns debug mode flag value
func GetDebugMode() bool {
	debug, _ := rootCmd.PersistentFlags().GetBool("debug")
	return debug
}

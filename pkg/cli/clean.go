package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:     "clean",
	Aliases: []string{"clobber"},
	Short:   "Remove build directories",
	Long: `Remove the build directories of every valid task. Directories outside
the working directory are left in place.`,
	Args: cobra.NoArgs,
	Run:  runClean,
}

// runClean executes the clean command
func runClean(cmd *cobra.Command, args []string) {
	s := loadSession()

	for name, err := range s.repo.ValidateAll() {
		s.logger.WithField("task", name).Warnf("Skipping invalid task: %v", err)
	}

	for _, dir := range s.repo.CleanTargets() {
		log := s.logger.WithField("path", dir)
		if !filepath.IsLocal(dir) {
			log.Warn("Refusing to remove a directory outside the working directory")
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			ExitWithErrorf(s.logger, "Failed to remove %s: %v", dir, err)
		}
		log.Info("Removed")
	}
}

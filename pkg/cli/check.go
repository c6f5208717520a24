package cli

import (
	"github.com/spf13/cobra"
	"github.com/xctask/xctask/pkg/pipeline"
	"github.com/xctask/xctask/pkg/sign"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration file",
	Long: `Validate the .xctask.yaml configuration file.
Every task is validated without starting xcodebuild, and the command line
each valid task would run is printed.`,
	Run: runCheck,
}

// runCheck executes the check command
func runCheck(cmd *cobra.Command, args []string) {
	s := loadSession()
	checkKeychain, _ := cmd.Flags().GetBool("keychain")

	tasks := s.repo.All()
	failed := 0
	for _, t := range tasks {
		ctx := s.newContext()
		ctx.Task = t
		if checkKeychain {
			ctx.Keychain = sign.NewKeychain()
		}

		log := s.logger.WithField("task", t.Name())
		if err := pipeline.RunValidation(ctx); err != nil {
			log.Errorf("Invalid: %v", err)
			failed++
			continue
		}

		invocation, err := t.Invocation(ctx.StdCtx, nil)
		if err != nil {
			log.Errorf("Invalid: %v", err)
			failed++
			continue
		}
		log.WithField("cmd", invocation.String()).Info("Valid")
	}

	if failed > 0 {
		ExitWithErrorf(s.logger, "%d of %d tasks failed validation", failed, len(tasks))
	}
	s.logger.Info("Configuration is valid")
}

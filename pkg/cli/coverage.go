package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/xctask/xctask/pkg/coverage"
	"github.com/xctask/xctask/pkg/github"
	"github.com/xctask/xctask/pkg/pipeline"
)

// coverageCmd represents the coverage:coveralls command
var coverageCmd = &cobra.Command{
	Use:     "coverage:coveralls",
	Aliases: []string{"coverage"},
	Short:   "Collect and upload code coverage",
	Long: `Collect gcov and llvm-cov coverage data, write a Coveralls job report and
upload it. Run it after a test task with coverage enabled.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		noUpload, _ := cmd.Flags().GetBool("no-upload")
		output, _ := cmd.Flags().GetString("output")
		runCoverage(loadSession(), !noUpload, output)
	},
}

// runCoverage runs the coverage pipes, exiting on failure. A non-empty
// output overrides coverage.output. GITHUB_TOKEN is the fallback status token.
func runCoverage(s *session, upload bool, output string) {
	if output != "" {
		s.config.Coverage.Output = output
	}
	if s.config.Coverage.GitHubStatus.Token == "" {
		s.config.Coverage.GitHubStatus.Token = github.GetGitHubToken()
	}
	cfg := s.config.Coverage

	ctx := s.newContext()
	ctx.Coverage.Upload = upload
	if upload {
		ctx.Coverage.Uploader = coverage.NewHTTPUploader(cfg.Endpoint)
	}
	if cfg.GitHubStatus.Enabled && cfg.GitHubStatus.Token != "" {
		client, err := github.NewClient(cfg.GitHubStatus.Token)
		if err != nil {
			ExitWithErrorf(s.logger, "Failed to create GitHub client: %v", err)
		}
		ctx.Coverage.GitHub = client
	}

	start := time.Now()
	if err := pipeline.RunCoverage(ctx); err != nil {
		ExitWithErrorf(s.logger, "Coverage failed after %s: %v", formatDuration(time.Since(start)), err)
	}
	if report := ctx.Coverage.Report; report != nil {
		s.logger.WithField("path", ctx.Coverage.ReportPath).
			Infof("Coverage report: %.2f%% of lines covered", report.Percent())
	}
}

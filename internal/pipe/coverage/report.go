package coverage

import (
	"fmt"

	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/coverage"
	"github.com/xctask/xctask/pkg/git"
	"github.com/xctask/xctask/pkg/github"
	"github.com/xctask/xctask/pkg/pipe"
)

// ReportPipe assembles the report with CI and git metadata and writes it.
type ReportPipe struct{}

func (ReportPipe) String() string { return "writing coverage report" }

func (ReportPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Coverage
	report := &coverage.Report{
		RepoToken:    cfg.RepoToken,
		ServiceName:  cfg.ServiceName,
		ServiceJobID: cfg.ServiceJobID,
		Parallel:     cfg.Parallel,
		SourceFiles:  ctx.Coverage.SourceFiles,
	}
	report.ApplyCI(coverage.DetectCI(ctx.Env))

	meta, err := gitMetadata(ctx.Coverage.BaseDir)
	if err != nil {
		ctx.Logger.Warnf("git metadata unavailable: %v", err)
	}
	report.Git = meta

	if report.ServicePullRequest == "" && ctx.Coverage.GitHub != nil && meta != nil {
		lookupPullRequest(ctx, report)
	}

	path, err := coverage.WriteReport(report, cfg.Output)
	if err != nil {
		return err
	}
	ctx.Coverage.Report = report
	ctx.Coverage.ReportPath = path

	ctx.Logger.WithField("service", report.ServiceName).Infof("Coverage %.2f%% written to %s", report.Percent(), path)
	return nil
}

func gitMetadata(dir string) (*coverage.Git, error) {
	head, err := git.HeadCommit(dir)
	if err != nil {
		return nil, err
	}
	meta := &coverage.Git{Head: coverage.Head{
		ID:             head.ID,
		AuthorName:     head.AuthorName,
		AuthorEmail:    head.AuthorEmail,
		CommitterName:  head.CommitterName,
		CommitterEmail: head.CommitterEmail,
		Message:        head.Message,
	}}

	if branch, err := git.CurrentBranch(dir); err == nil {
		meta.Branch = branch
	}
	if remote, ok, err := git.FirstFetchRemote(dir); err == nil && ok {
		meta.Remotes = []coverage.Remote{{Name: remote.Name, URL: remote.URL}}
	}
	return meta, nil
}

func lookupPullRequest(ctx *context.Context, report *coverage.Report) {
	branch := report.ServiceBranch
	if branch == "" {
		branch = report.Git.Branch
	}
	owner, repo, err := repository(ctx, report)
	if err != nil || branch == "" || branch == "HEAD" {
		return
	}

	n, err := ctx.Coverage.GitHub.FindPullRequest(ctx.StdCtx, owner, repo, branch)
	if err != nil {
		if !github.IsNotFound(err) {
			ctx.Logger.Warnf("pull request lookup failed: %v", err)
		}
		return
	}
	report.ServicePullRequest = fmt.Sprint(n)
}

// repository returns the configured GitHub repository, else the one of the
// report's fetch remote.
func repository(ctx *context.Context, report *coverage.Report) (string, string, error) {
	if r := ctx.Config.Coverage.GitHubStatus.Repository; r != "" {
		return github.ParseRepository(r)
	}
	if report.Git == nil || len(report.Git.Remotes) == 0 {
		return "", "", fmt.Errorf("no git remote to derive the GitHub repository from")
	}
	return github.ParseRepository(report.Git.Remotes[0].URL)
}

// UploadPipe sends the written report to the coverage service.
type UploadPipe struct{}

func (UploadPipe) String() string { return "uploading coverage report" }

func (UploadPipe) Run(ctx *context.Context) error {
	if !ctx.Coverage.Upload {
		return pipe.Skip("upload disabled")
	}
	if ctx.Coverage.ReportPath == "" {
		return fmt.Errorf("no coverage report to upload")
	}

	u := ctx.Coverage.Uploader
	if u == nil {
		u = coverage.NewHTTPUploader(ctx.Config.Coverage.Endpoint)
	}
	if err := u.Upload(ctx.StdCtx, ctx.Coverage.ReportPath); err != nil {
		return err
	}
	ctx.Logger.Info("Coverage report uploaded")
	return nil
}

// StatusPipe posts the coverage percentage as a GitHub commit status.
type StatusPipe struct{}

func (StatusPipe) String() string { return "posting commit status" }

// DefaultStatusContext labels the commit status when none is configured.
const DefaultStatusContext = "coverage/xctask"

func (StatusPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Coverage.GitHubStatus
	if !cfg.Enabled {
		return pipe.Skip("coverage.github_status is disabled")
	}
	if ctx.Coverage.GitHub == nil {
		return pipe.Skip("no GitHub client")
	}

	report := ctx.Coverage.Report
	if report == nil || report.Git == nil || report.Git.Head.ID == "" {
		return fmt.Errorf("no commit to post a status on")
	}
	owner, repo, err := repository(ctx, report)
	if err != nil {
		return err
	}

	statusContext := cfg.Context
	if statusContext == "" {
		statusContext = DefaultStatusContext
	}
	status := github.Status{
		State:       github.StateSuccess,
		Context:     statusContext,
		Description: fmt.Sprintf("%.2f%% coverage", report.Percent()),
	}
	if err := ctx.Coverage.GitHub.CreateStatus(ctx.StdCtx, owner, repo, report.Git.Head.ID, status); err != nil {
		return err
	}
	ctx.Logger.Infof("Status posted to %s/%s@%.7s", owner, repo, report.Git.Head.ID)
	return nil
}

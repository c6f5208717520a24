// Package github posts coverage results back to GitHub.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// Commit status states accepted by the statuses API.
const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// NotFoundError represents a resource not found condition.
// Used by the mock client and checked by IsNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// IsNotFound returns true if the error represents a GitHub 404 Not Found response.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// Status is a commit status to publish.
type Status struct {
	State       string
	Context     string
	Description string
	TargetURL   string
}

// ClientInterface defines the GitHub client contract
type ClientInterface interface {
	CreateStatus(ctx context.Context, owner, repo, ref string, status Status) error
	FindPullRequest(ctx context.Context, owner, repo, branch string) (int, error)
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Client wraps the GitHub client with convenience methods
type Client struct {
	client *github.Client
}

// NewClient creates a client authenticated with token.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	// oauth2.NewClient returns a client without timeout
	httpClient.Timeout = time.Minute

	return &Client{client: github.NewClient(httpClient)}, nil
}

// GetGitHubToken retrieves GitHub token from environment
func GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// CreateStatus sets a commit status on ref.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, ref string, status Status) error {
	s := &github.RepoStatus{
		State:   github.String(status.State),
		Context: github.String(status.Context),
	}
	if status.Description != "" {
		s.Description = github.String(status.Description)
	}
	if status.TargetURL != "" {
		s.TargetURL = github.String(status.TargetURL)
	}

	if _, _, err := c.client.Repositories.CreateStatus(ctx, owner, repo, ref, s); err != nil {
		return fmt.Errorf("failed to create status on %s/%s@%s: %w", owner, repo, ref, err)
	}
	return nil
}

// FindPullRequest returns the number of the open pull request whose head is
// branch in owner's repository, or a *NotFoundError when there is none.
func (c *Client) FindPullRequest(ctx context.Context, owner, repo, branch string) (int, error) {
	opt := &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + branch,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	prs, _, err := c.client.PullRequests.List(ctx, owner, repo, opt)
	if err != nil {
		return 0, fmt.Errorf("failed to list pull requests %s/%s: %w", owner, repo, err)
	}
	if len(prs) == 0 {
		return 0, &NotFoundError{Message: fmt.Sprintf("no open pull request for %s in %s/%s", branch, owner, repo)}
	}
	return prs[0].GetNumber(), nil
}

package github

import (
	"context"
	"fmt"
)

// Ensure MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)

// CreatedStatus records one CreateStatus call.
type CreatedStatus struct {
	Repository string // owner/repo
	Ref        string
	Status     Status
}

// MockClient is a mock implementation of the GitHub client for testing
type MockClient struct {
	Statuses      []CreatedStatus
	PullRequests  map[string]int // key: "owner/repo:branch"
	ErrorToReturn error
}

// NewMockClient creates a new mock GitHub client
func NewMockClient() *MockClient {
	return &MockClient{PullRequests: make(map[string]int)}
}

// CreateStatus records the status.
func (m *MockClient) CreateStatus(ctx context.Context, owner, repo, ref string, status Status) error {
	if m.ErrorToReturn != nil {
		return m.ErrorToReturn
	}
	m.Statuses = append(m.Statuses, CreatedStatus{
		Repository: owner + "/" + repo,
		Ref:        ref,
		Status:     status,
	})
	return nil
}

// FindPullRequest looks the branch up in mock data.
func (m *MockClient) FindPullRequest(ctx context.Context, owner, repo, branch string) (int, error) {
	if m.ErrorToReturn != nil {
		return 0, m.ErrorToReturn
	}
	key := fmt.Sprintf("%s/%s:%s", owner, repo, branch)
	if n, ok := m.PullRequests[key]; ok {
		return n, nil
	}
	return 0, &NotFoundError{Message: fmt.Sprintf("no open pull request for %s", key)}
}

// AddPullRequest adds an open pull request to mock data
func (m *MockClient) AddPullRequest(owner, repo, branch string, number int) {
	m.PullRequests[fmt.Sprintf("%s/%s:%s", owner, repo, branch)] = number
}

// SetError sets an error to be returned by all mock operations
func (m *MockClient) SetError(err error) {
	m.ErrorToReturn = err
}

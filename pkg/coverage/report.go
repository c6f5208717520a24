package coverage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Report is the Coveralls job document.
type Report struct {
	RepoToken          string       `json:"repo_token,omitempty"`
	ServiceName        string       `json:"service_name,omitempty"`
	ServiceJobID       string       `json:"service_job_id,omitempty"`
	ServiceNumber      string       `json:"service_number,omitempty"`
	ServicePullRequest string       `json:"service_pull_request,omitempty"`
	ServiceBranch      string       `json:"service_branch,omitempty"`
	Parallel           bool         `json:"parallel,omitempty"`
	Git                *Git         `json:"git,omitempty"`
	SourceFiles        []SourceFile `json:"source_files"`
}

// Git is the repository metadata of a report.
type Git struct {
	Head    Head     `json:"head"`
	Branch  string   `json:"branch,omitempty"`
	Remotes []Remote `json:"remotes,omitempty"`
}

// Head describes the commit the report belongs to.
type Head struct {
	ID             string `json:"id"`
	AuthorName     string `json:"author_name"`
	AuthorEmail    string `json:"author_email"`
	CommitterName  string `json:"committer_name"`
	CommitterEmail string `json:"committer_email"`
	Message        string `json:"message"`
}

// Remote is a named git remote.
type Remote struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ApplyCI copies detected CI metadata. Values already set win.
func (r *Report) ApplyCI(ci CI) {
	if r.ServiceName == "" {
		r.ServiceName = ci.ServiceName
	}
	if r.ServiceJobID == "" {
		r.ServiceJobID = ci.JobID
	}
	if r.ServiceNumber == "" {
		r.ServiceNumber = ci.BuildNumber
	}
	if r.ServicePullRequest == "" {
		r.ServicePullRequest = ci.PullRequest
	}
	if r.ServiceBranch == "" {
		r.ServiceBranch = ci.Branch
	}
	r.Parallel = r.Parallel || ci.Parallel
}

// Percent returns the share of executable lines hit at least once, 0-100.
func (r *Report) Percent() float64 {
	var relevant, covered int
	for _, f := range r.SourceFiles {
		for _, hits := range f.Coverage {
			if hits == nil {
				continue
			}
			relevant++
			if *hits > 0 {
				covered++
			}
		}
	}
	if relevant == 0 {
		return 0
	}
	return float64(covered) * 100 / float64(relevant)
}

// Encode writes the report as a single line of JSON.
func (r *Report) Encode(w io.Writer) error {
	if r.SourceFiles == nil {
		r.SourceFiles = []SourceFile{}
	}
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("failed to encode coverage report: %w", err)
	}
	return nil
}

// WriteReport writes the report to path, or to a new temporary file when
// path is empty, and returns the file written.
func WriteReport(r *Report, path string) (string, error) {
	var (
		f   *os.File
		err error
	)
	if path == "" {
		f, err = os.CreateTemp("", "coverage-*.json")
	} else {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create coverage report: %w", err)
	}

	if err := r.Encode(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write coverage report: %w", err)
	}
	return f.Name(), nil
}

// Package git reads repository metadata for coverage reports.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Commit is the author and committer information of one commit.
type Commit struct {
	ID             string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	Message        string
}

// Remote is a named remote URL.
type Remote struct {
	Name string
	URL  string
}

// fieldSep separates the log format fields; it cannot appear in names or subjects.
const fieldSep = "\x1f"

// TopLevel returns the root of the work tree containing dir.
func TopLevel(dir string) (string, error) {
	return output(dir, "rev-parse", "--show-toplevel")
}

// HeadCommit describes HEAD.
func HeadCommit(dir string) (*Commit, error) {
	format := strings.Join([]string{"%H", "%an", "%ae", "%cn", "%ce", "%s"}, fieldSep)
	out, err := output(dir, "log", "-1", "--format="+format)
	if err != nil {
		return nil, err
	}

	fields := strings.SplitN(out, fieldSep, 6)
	if len(fields) != 6 {
		return nil, fmt.Errorf("unexpected git log output %q", out)
	}
	return &Commit{
		ID:             fields[0],
		AuthorName:     fields[1],
		AuthorEmail:    fields[2],
		CommitterName:  fields[3],
		CommitterEmail: fields[4],
		Message:        fields[5],
	}, nil
}

// CurrentBranch returns the checked out branch, or "HEAD" when detached.
func CurrentBranch(dir string) (string, error) {
	return output(dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// Remotes lists the fetch URL of every remote.
func Remotes(dir string) ([]Remote, error) {
	out, err := output(dir, "remote", "-v")
	if err != nil {
		return nil, err
	}
	return ParseRemotes(out), nil
}

// FirstFetchRemote returns the first remote listed by `git remote -v`.
// ok is false when the repository has no remotes.
func FirstFetchRemote(dir string) (remote Remote, ok bool, err error) {
	remotes, err := Remotes(dir)
	if err != nil || len(remotes) == 0 {
		return Remote{}, false, err
	}
	return remotes[0], true, nil
}

// ParseRemotes parses `git remote -v` output, keeping the (fetch) entries.
func ParseRemotes(out string) []Remote {
	var remotes []Remote
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[2] != "(fetch)" {
			continue
		}
		remotes = append(remotes, Remote{Name: fields[0], URL: fields[1]})
	}
	return remotes
}

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if strings.Contains(stderr, "not a git repository") {
				return "", fmt.Errorf("%s is not a git repository", dir)
			}
			return "", fmt.Errorf("git %s failed: %s", args[0], stderr)
		}
		if _, pathErr := exec.LookPath("git"); pathErr != nil {
			return "", fmt.Errorf("git is not installed or not in PATH")
		}
		return "", fmt.Errorf("failed to run git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

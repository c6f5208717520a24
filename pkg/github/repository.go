package github

import (
	"fmt"
	"strings"
)

// ParseRepository extracts owner and name from a GitHub remote URL or an
// "owner/repo" shorthand. Supported forms:
//
//	git@github.com:owner/repo.git
//	ssh://git@github.com/owner/repo.git
//	https://github.com/owner/repo(.git)
//	owner/repo
func ParseRepository(remote string) (owner, repo string, err error) {
	s := strings.TrimSpace(remote)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")

	switch {
	case strings.HasPrefix(s, "git@"):
		_, path, found := strings.Cut(s, ":")
		if !found {
			return "", "", fmt.Errorf("invalid GitHub remote %q", remote)
		}
		s = path
	case strings.Contains(s, "://"):
		_, rest, _ := strings.Cut(s, "://")
		_, path, found := strings.Cut(rest, "/")
		if !found {
			return "", "", fmt.Errorf("invalid GitHub remote %q", remote)
		}
		s = path
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub remote %q: expected owner/repo", remote)
	}
	return parts[0], parts[1], nil
}

package version

import (
	"strings"
	"testing"
)

func TestVersionInfo(t *testing.T) {
	info := VersionInfo()
	if !strings.HasPrefix(info, "xctask version dev\n") {
		t.Errorf("VersionInfo() = %q", info)
	}
	if !strings.Contains(info, "Go version: go") {
		t.Errorf("VersionInfo() missing Go version: %q", info)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "xctask/dev" {
		t.Errorf("UserAgent() = %q, want xctask/dev", got)
	}
}

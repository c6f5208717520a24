package version

import (
	"fmt"
	"runtime"
)

// Name of the application
const Name = "xctask"

// Set with -ldflags "-X github.com/xctask/xctask/pkg/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// VersionInfo returns complete version information
func VersionInfo() string {
	return fmt.Sprintf("%s version %s\nCommit: %s\nBuilt: %s\nGo version: %s (%s/%s)",
		Name, Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies xctask in outgoing HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Name, Version)
}

package archive

import (
	"path/filepath"

	"github.com/xctask/xctask/pkg/runner"
)

// Bundle returns the name of the archive bundle xcodebuild writes for scheme.
func Bundle(scheme string) string {
	return scheme + ".xcarchive"
}

// ZipCommands returns the commands that pack an archive's debug symbols and
// the archive bundle itself into sibling zip files. Both run inside buildDir:
//
//	zip -ryq dSYMs.zip Example.xcarchive/dSYMs
//	zip -ryq Example.xcarchive.zip Example.xcarchive
//
// -y stores symlinks as links, which framework bundles depend on.
func ZipCommands(buildDir, scheme string) []runner.Command {
	if buildDir == "" || scheme == "" {
		return nil
	}

	bundle := Bundle(scheme)
	return []runner.Command{
		{
			Args: []string{"zip", "-ryq", "dSYMs.zip", filepath.Join(bundle, "dSYMs")},
			Dir:  buildDir,
		},
		{
			Args: []string{"zip", "-ryq", bundle + ".zip", bundle},
			Dir:  buildDir,
		},
	}
}

// Outputs returns the paths of the zip files ZipCommands produces.
func Outputs(buildDir, scheme string) []string {
	if buildDir == "" || scheme == "" {
		return nil
	}
	return []string{
		filepath.Join(buildDir, "dSYMs.zip"),
		filepath.Join(buildDir, Bundle(scheme)+".zip"),
	}
}

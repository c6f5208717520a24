package build

import (
	"path/filepath"
)

// Tool is the program every build invocation runs.
const Tool = "xcodebuild"

// Action is the xcodebuild action placed right after the program name.
type Action string

const (
	ActionTest    Action = "test"
	ActionBuild   Action = "build"
	ActionArchive Action = "archive"
	ActionExport  Action = "-exportArchive"
)

// Options holds the attributes of one xcodebuild invocation.
type Options struct {
	Project       string // -project, normalized to .xcodeproj
	Target        string // -target
	Workspace     string // -workspace, normalized to .xcworkspace
	Scheme        string // -scheme
	SDK           string // -sdk
	Configuration string // -configuration
	Coverage      bool   // -enableCodeCoverage YES
	BuildDir      string // -derivedDataPath
	Destinations  []string
	Settings      *Settings
}

// Args assembles the option list in a fixed order: identity flags, SDK,
// configuration, coverage, derived data path, destinations and finally the
// build settings.
func Args(o Options) []string {
	var args []string

	if o.Project != "" {
		args = append(args, "-project", NormalizeProject(o.Project))
	}
	if o.Target != "" {
		args = append(args, "-target", o.Target)
	}
	if o.Workspace != "" {
		args = append(args, "-workspace", NormalizeWorkspace(o.Workspace))
	}
	if o.Scheme != "" {
		args = append(args, "-scheme", o.Scheme)
	}
	if o.SDK != "" {
		args = append(args, "-sdk", o.SDK)
	}
	if o.Configuration != "" {
		args = append(args, "-configuration", o.Configuration)
	}
	if o.Coverage {
		args = append(args, "-enableCodeCoverage", "YES")
	}
	if o.BuildDir != "" {
		args = append(args, "-derivedDataPath", o.BuildDir)
	}
	for _, d := range o.Destinations {
		args = append(args, "-destination", d)
	}

	return append(args, o.Settings.Args()...)
}

// CommandArgs prefixes options with the program and action.
func CommandArgs(action Action, options []string) []string {
	args := make([]string, 0, len(options)+2)
	args = append(args, Tool, string(action))
	return append(args, options...)
}

// NormalizeProject appends .xcodeproj to a reference without an extension.
func NormalizeProject(project string) string {
	return withDefaultExt(project, ".xcodeproj")
}

// NormalizeWorkspace appends .xcworkspace to a reference without an extension.
func NormalizeWorkspace(workspace string) string {
	return withDefaultExt(workspace, ".xcworkspace")
}

func withDefaultExt(ref, ext string) string {
	if ref == "" || filepath.Ext(ref) != "" {
		return ref
	}
	return ref + ext
}

// ArchivePath returns the explicit path, or <buildDir>/<scheme> when both are known.
func ArchivePath(explicit, buildDir, scheme string) string {
	if explicit != "" {
		return explicit
	}
	if buildDir != "" && scheme != "" {
		return filepath.Join(buildDir, scheme)
	}
	return ""
}

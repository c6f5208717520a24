package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReferenceType tells whether a detected bundle is a workspace or a project.
type ReferenceType int

const (
	WorkspaceRef ReferenceType = iota // .xcworkspace
	ProjectRef                        // .xcodeproj
)

// Detected is the result of Detect.
type Detected struct {
	Path string
	Type ReferenceType
}

// Name returns the bundle name without extension. Xcode names the default
// scheme after it.
func (d *Detected) Name() string {
	return strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
}

// Options returns build options identifying the detected bundle and its
// default scheme.
func (d *Detected) Options() Options {
	o := Options{Scheme: d.Name()}
	switch d.Type {
	case WorkspaceRef:
		o.Workspace = d.Path
	case ProjectRef:
		o.Project = d.Path
	}
	return o
}

// Detect finds the single workspace, or failing that the single project, at
// the top level of dir. A CocoaPods workspace is ignored when another
// workspace exists.
func Detect(dir string) (*Detected, error) {
	workspaces, err := findBundles(dir, ".xcworkspace")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for workspaces: %w", err)
	}
	workspaces = withoutPods(workspaces)

	switch len(workspaces) {
	case 1:
		return &Detected{Path: workspaces[0], Type: WorkspaceRef}, nil
	case 0:
	default:
		return nil, fmt.Errorf("multiple .xcworkspace files found: %s, set workspace on the task to pick one",
			strings.Join(workspaces, ", "))
	}

	projects, err := findBundles(dir, ".xcodeproj")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for projects: %w", err)
	}

	switch len(projects) {
	case 1:
		return &Detected{Path: projects[0], Type: ProjectRef}, nil
	case 0:
		return nil, fmt.Errorf("no .xcworkspace or .xcodeproj found in %s", dir)
	default:
		return nil, fmt.Errorf("multiple .xcodeproj files found: %s, set project on the task to pick one",
			strings.Join(projects, ", "))
	}
}

// findBundles lists top-level entries of dir with the given extension.
func findBundles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ext {
			matches = append(matches, entry.Name())
		}
	}
	return matches, nil
}

func withoutPods(workspaces []string) []string {
	if len(workspaces) <= 1 {
		return workspaces
	}

	var filtered []string
	for _, ws := range workspaces {
		if ws != "Pods.xcworkspace" {
			filtered = append(filtered, ws)
		}
	}
	if len(filtered) == 0 {
		return workspaces
	}
	return filtered
}

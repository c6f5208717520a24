// Package task models xcodebuild tasks and their lifecycle.
//
// A Task is configured through fluent setters, validated, then run once per
// invocation:
//
//	Unconfigured -> Configured -> Validated -> Running -> Succeeded | Failed
//
// Every run builds its command from a snapshot of the configuration, so a
// running invocation never observes later changes.
package task

import (
	"github.com/xctask/xctask/pkg/build"
	"github.com/xctask/xctask/pkg/runner"
)

// Task is one named xcodebuild task. It is not safe for concurrent use.
type Task struct {
	name  string
	kind  Kind
	state State
	err   error

	opts                build.Options
	signingIdentity     string
	provisioningProfile string

	formatter string
	isolate   *bool
	env       []string
	hooks     runner.Hooks

	archivePath   string
	export        build.ExportOptions
	exportProfile string

	cleanTargets []string
}

// New creates an unconfigured task. An empty name uses the kind's default.
func New(name string, kind Kind) *Task {
	if name == "" {
		name = kind.DefaultName()
	}
	return &Task{
		name:  name,
		kind:  kind,
		state: Unconfigured,
		opts:  build.Options{Settings: &build.Settings{}},
	}
}

// NewTest creates a test task with the default name.
func NewTest() *Task { return New("", KindTest) }

// NewBuild creates a build task with the default name.
func NewBuild() *Task { return New("", KindBuild) }

// NewArchive creates an archive task with the default name.
func NewArchive() *Task { return New("", KindArchive) }

// NewExport creates an export task with the default name.
func NewExport() *Task { return New("", KindExport) }

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Kind returns the task kind.
func (t *Task) Kind() Kind { return t.kind }

// State returns the lifecycle state.
func (t *Task) State() State { return t.state }

// Err returns the error of the last failed run, or nil.
func (t *Task) Err() error { return t.err }

// Scheme returns the configured scheme.
func (t *Task) Scheme() string { return t.opts.Scheme }

// BuildDir returns the derived data directory.
func (t *Task) BuildDir() string { return t.opts.BuildDir }

// Coverage reports whether code coverage is enabled.
func (t *Task) Coverage() bool { return t.opts.Coverage }

// SDK returns the configured SDK. Test tasks default to iphonesimulator.
func (t *Task) SDK() string {
	if t.opts.SDK == "" && t.kind == KindTest {
		return "iphonesimulator"
	}
	return t.opts.SDK
}

// SigningIdentity returns the code signing identity.
func (t *Task) SigningIdentity() string { return t.signingIdentity }

// ProvisioningProfile returns the raw provisioning profile reference.
func (t *Task) ProvisioningProfile() string { return t.provisioningProfile }

// ExportSigningIdentity returns the export signing identity.
func (t *Task) ExportSigningIdentity() string { return t.export.SigningIdentity }

// ExportFormat returns the export format and whether the flag is emitted.
func (t *Task) ExportFormat() (string, bool) { return t.export.ExportFormat() }

// ExportPath returns the export destination.
func (t *Task) ExportPath() string { return t.export.ExportPath }

// Hooks returns the before/after hooks, possibly nil.
func (t *Task) Hooks() runner.Hooks { return t.hooks }

// ArchivePath returns the archive location, defaulting to <build_dir>/<scheme>.
func (t *Task) ArchivePath() string {
	return build.ArchivePath(t.archivePath, t.opts.BuildDir, t.opts.Scheme)
}

// IsolateEnv reports whether the process only sees the configured
// environment. Export tasks isolate unless told otherwise.
func (t *Task) IsolateEnv() bool {
	if t.isolate != nil {
		return *t.isolate
	}
	return t.kind == KindExport
}

// configure records a change. Changes made while running apply to the next run.
func (t *Task) configure() *Task {
	if t.state != Running {
		t.state = Configured
		t.err = nil
	}
	return t
}

// SetProject sets -project. A missing .xcodeproj extension is appended.
func (t *Task) SetProject(project string) *Task {
	t.opts.Project = project
	return t.configure()
}

// SetTarget sets -target.
func (t *Task) SetTarget(target string) *Task {
	t.opts.Target = target
	return t.configure()
}

// SetWorkspace sets -workspace. A missing .xcworkspace extension is appended.
func (t *Task) SetWorkspace(workspace string) *Task {
	t.opts.Workspace = workspace
	return t.configure()
}

// SetScheme sets -scheme.
func (t *Task) SetScheme(scheme string) *Task {
	t.opts.Scheme = scheme
	return t.configure()
}

// SetSDK sets -sdk.
func (t *Task) SetSDK(sdk string) *Task {
	t.opts.SDK = sdk
	return t.configure()
}

// SetConfiguration sets -configuration.
func (t *Task) SetConfiguration(configuration string) *Task {
	t.opts.Configuration = configuration
	return t.configure()
}

// SetBuildDir sets -derivedDataPath. Validation registers it for clean.
func (t *Task) SetBuildDir(dir string) *Task {
	t.opts.BuildDir = dir
	return t.configure()
}

// SetCoverage enables code coverage for test tasks.
func (t *Task) SetCoverage(enabled bool) *Task {
	t.opts.Coverage = enabled
	return t.configure()
}

// AddDestination appends a -destination specifier. Duplicates are kept.
func (t *Task) AddDestination(destination string) *Task {
	t.opts.Destinations = append(t.opts.Destinations, destination)
	return t.configure()
}

// AddBuildSetting sets KEY=VALUE. A repeated key keeps its first position.
func (t *Task) AddBuildSetting(key, value string) *Task {
	t.opts.Settings.Set(key, value)
	return t.configure()
}

// SetSigningIdentity sets CODE_SIGN_IDENTITY for build and archive tasks.
func (t *Task) SetSigningIdentity(identity string) *Task {
	t.signingIdentity = identity
	return t.configure()
}

// SetProvisioningProfile takes a profile file path or the name of an
// installed profile. It is resolved when the task runs.
func (t *Task) SetProvisioningProfile(ref string) *Task {
	t.provisioningProfile = ref
	return t.configure()
}

// SetFormatter pipes the combined output through a shell command.
func (t *Task) SetFormatter(formatter string) *Task {
	t.formatter = formatter
	return t.configure()
}

// SetIsolateEnv overrides the default environment isolation of the kind.
func (t *Task) SetIsolateEnv(isolate bool) *Task {
	t.isolate = &isolate
	return t.configure()
}

// SetEnv sets KEY=VALUE pairs passed to the process.
func (t *Task) SetEnv(env ...string) *Task {
	t.env = append([]string(nil), env...)
	return t.configure()
}

// SetHooks sets the hooks run around the process.
func (t *Task) SetHooks(hooks runner.Hooks) *Task {
	t.hooks = hooks
	return t.configure()
}

// SetArchivePath overrides the default archive location.
func (t *Task) SetArchivePath(path string) *Task {
	t.archivePath = path
	return t.configure()
}

// SetExportFormat sets -exportFormat. An empty format omits the flag.
func (t *Task) SetExportFormat(format string) *Task {
	t.export.Format = &format
	return t.configure()
}

// SetExportPath sets -exportPath.
func (t *Task) SetExportPath(path string) *Task {
	t.export.ExportPath = path
	return t.configure()
}

// SetExportProvisioningProfile takes a profile path or installed profile
// name. The profile's name is passed to xcodebuild.
func (t *Task) SetExportProvisioningProfile(ref string) *Task {
	t.exportProfile = ref
	return t.configure()
}

// SetExportSigningIdentity sets -exportSigningIdentity.
func (t *Task) SetExportSigningIdentity(identity string) *Task {
	t.export.SigningIdentity = identity
	return t.configure()
}

// SetExportInstallerIdentity sets -exportInstallerIdentity.
func (t *Task) SetExportInstallerIdentity(identity string) *Task {
	t.export.InstallerIdentity = identity
	return t.configure()
}

// SetExportWithOriginalSigningIdentity adds -exportWithOriginalSigningIdentity.
func (t *Task) SetExportWithOriginalSigningIdentity(enabled bool) *Task {
	t.export.WithOriginalSigningIdentity = enabled
	return t.configure()
}

// SetExportOptionsPlist replaces the format and identity flags with a plist.
func (t *Task) SetExportOptionsPlist(path string) *Task {
	t.export.OptionsPlist = path
	return t.configure()
}

// CleanTargets returns the directories registered for clean/clobber.
func (t *Task) CleanTargets() []string {
	return append([]string(nil), t.cleanTargets...)
}

package task

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/xctask/xctask/pkg/archive"
	"github.com/xctask/xctask/pkg/build"
	"github.com/xctask/xctask/pkg/runner"
	"github.com/xctask/xctask/pkg/sign"
	"github.com/xctask/xctask/pkg/validate"
)

// Validate runs the kind-specific precondition checks and moves the task to
// Validated. A build directory is registered for clean/clobber. Failures are
// *validate.ConfigurationError and leave the task Configured.
func (t *Task) Validate() error {
	if t.state == Running {
		return &TransitionError{Task: t.name, From: t.state, Op: "validate"}
	}
	if t.state == Unconfigured {
		t.state = Configured
	}

	if err := t.check(); err != nil {
		t.state = Configured
		return err
	}

	t.cleanTargets = nil
	if dir := t.opts.BuildDir; dir != "" {
		t.cleanTargets = append(t.cleanTargets, filepath.Clean(dir))
	}
	t.state = Validated
	t.err = nil
	return nil
}

func (t *Task) check() error {
	o := t.opts

	switch t.kind {
	case KindTest:
		if o.Scheme == "" {
			return validate.Errorf("", "test action requires specifying a scheme")
		}
	case KindBuild:
		if o.BuildDir != "" && o.Scheme == "" {
			return validate.Errorf("", "the scheme is required when specifying build_dir")
		}
	case KindArchive:
		if o.Scheme == "" {
			return validate.Errorf("", "archive action requires specifying a scheme")
		}
	case KindExport:
		if t.ArchivePath() == "" {
			return validate.Errorf("", "export action requires an archive_path, or a build_dir and a scheme")
		}
	default:
		return validate.Errorf("kind", "unknown task kind %q", t.kind)
	}

	if o.Scheme != "" && o.Target != "" {
		return validate.Errorf("", "cannot specify both a scheme and targets")
	}
	return nil
}

// Invocation assembles the command for the next run from a snapshot of the
// current configuration. Provisioning profiles are resolved through resolver,
// which may be nil when none are configured.
func (t *Task) Invocation(ctx context.Context, resolver sign.ProfileResolver) (runner.Command, error) {
	if t.state != Validated {
		return runner.Command{}, &TransitionError{Task: t.name, From: t.state, Op: "build a command"}
	}

	var args []string
	switch t.kind {
	case KindExport:
		export := t.export
		export.ArchivePath = t.ArchivePath()
		if t.exportProfile != "" {
			export.ProvisioningProfile = resolve(ctx, resolver, t.exportProfile).Name
		}
		args = build.CommandArgs(build.ActionExport, build.ExportArgs(export))
	default:
		opts := t.snapshot()
		t.deriveSettings(ctx, resolver, opts.Settings)
		options := build.Args(opts)
		if t.kind == KindArchive {
			if path := t.ArchivePath(); path != "" {
				options = append(options, "-archivePath", path)
			}
		}
		args = build.CommandArgs(t.action(), options)
	}

	return runner.Command{
		Args:      args,
		Env:       append([]string(nil), t.env...),
		Isolate:   t.IsolateEnv(),
		Formatter: t.formatter,
	}, nil
}

func (t *Task) snapshot() build.Options {
	opts := t.opts
	opts.Destinations = append([]string(nil), t.opts.Destinations...)
	opts.Settings = t.opts.Settings.Clone()
	if t.kind == KindTest {
		opts.SDK = t.SDK()
	}
	return opts
}

func (t *Task) deriveSettings(ctx context.Context, resolver sign.ProfileResolver, s *build.Settings) {
	switch t.kind {
	case KindTest:
		if isSimulator(t.SDK()) {
			s.Set("CODE_SIGN_IDENTITY", `""`)
			s.Set("CODE_SIGNING_REQUIRED", "NO")
		}
		s.Set("GCC_SYMBOLS_PRIVATE_EXTERN", "NO")
		if t.opts.Coverage {
			s.Set("GCC_INSTRUMENT_PROGRAM_FLOW_ARCS", "YES")
			s.Set("GCC_GENERATE_TEST_COVERAGE_FILES", "YES")
		}
	case KindBuild, KindArchive:
		if dir := t.opts.BuildDir; dir != "" {
			s.Set("CONFIGURATION_TEMP_DIR", filepath.Join(dir, "temp"))
		}
		if t.signingIdentity != "" {
			s.Set("CODE_SIGN_IDENTITY", t.signingIdentity)
		}
		if t.provisioningProfile != "" {
			if p := resolve(ctx, resolver, t.provisioningProfile); p.Resolved() {
				s.Set("PROVISIONING_PROFILE", p.UUID)
			}
		}
	}
}

func (t *Task) action() build.Action {
	switch t.kind {
	case KindTest:
		return build.ActionTest
	case KindArchive:
		return build.ActionArchive
	case KindExport:
		return build.ActionExport
	default:
		return build.ActionBuild
	}
}

// PostCommands returns the commands to run after a successful xcodebuild
// run: the dSYMs and archive zips for archive tasks.
func (t *Task) PostCommands() []runner.Command {
	if t.kind != KindArchive {
		return nil
	}
	return archive.ZipCommands(t.opts.BuildDir, t.opts.Scheme)
}

// Execute builds the invocation, moves the task to Running and runs the
// command once with the task's hooks. The caller records the outcome with
// Finish after any follow-up commands.
func (t *Task) Execute(ctx context.Context, r runner.Runner, resolver sign.ProfileResolver) (*runner.Result, error) {
	cmd, err := t.Invocation(ctx, resolver)
	if err != nil {
		return nil, err
	}
	if err := t.Start(); err != nil {
		return nil, err
	}
	return r.Run(ctx, cmd, t.hooks)
}

// Start moves a validated task to Running.
func (t *Task) Start() error {
	if t.state != Validated {
		return &TransitionError{Task: t.name, From: t.state, Op: "start"}
	}
	t.state = Running
	return nil
}

// Finish records the outcome of a run. A nil err means Succeeded.
func (t *Task) Finish(err error) error {
	if t.state != Running {
		return &TransitionError{Task: t.name, From: t.state, Op: "finish"}
	}
	t.err = err
	if err != nil {
		t.state = Failed
	} else {
		t.state = Succeeded
	}
	return nil
}

func resolve(ctx context.Context, resolver sign.ProfileResolver, ref string) sign.Profile {
	if resolver == nil {
		return sign.Profile{Ref: ref, Name: ref}
	}
	return resolver.Resolve(ctx, ref)
}

func isSimulator(sdk string) bool {
	return strings.Contains(sdk, "simulator")
}

package task

import (
	"fmt"

	"github.com/xctask/xctask/pkg/config"
	"github.com/xctask/xctask/pkg/runner"
)

// ExportFormatNone in configuration omits -exportFormat.
const ExportFormatNone = "none"

// FromConfig builds a configured task. Hook commands run through r.
func FromConfig(tc config.TaskConfig, r runner.Runner) (*Task, error) {
	kind, err := ParseKind(tc.Kind)
	if err != nil {
		return nil, err
	}

	t := New(tc.Name, kind).
		SetProject(tc.Project).
		SetWorkspace(tc.Workspace).
		SetTarget(tc.Target).
		SetScheme(tc.Scheme).
		SetSDK(tc.SDK).
		SetConfiguration(tc.Configuration).
		SetBuildDir(tc.BuildDir).
		SetCoverage(tc.Coverage).
		SetSigningIdentity(tc.SigningIdentity).
		SetProvisioningProfile(tc.ProvisioningProfile).
		SetFormatter(tc.Formatter).
		SetEnv(tc.Env...).
		SetArchivePath(tc.ArchivePath)

	for _, d := range tc.Destinations {
		t.AddDestination(d)
	}
	for _, s := range tc.Settings() {
		t.AddBuildSetting(s.Key, s.Value)
	}
	if tc.IsolateEnv != nil {
		t.SetIsolateEnv(*tc.IsolateEnv)
	}

	if kind == KindExport {
		switch tc.ExportFormat {
		case "":
		case ExportFormatNone:
			t.SetExportFormat("")
		default:
			t.SetExportFormat(tc.ExportFormat)
		}
		t.SetExportPath(tc.ExportPath).
			SetExportProvisioningProfile(tc.ExportProvisioningProfile).
			SetExportSigningIdentity(tc.ExportSigningIdentity).
			SetExportInstallerIdentity(tc.ExportInstallerIdentity).
			SetExportWithOriginalSigningIdentity(tc.ExportWithOriginalSigningIdentity).
			SetExportOptionsPlist(tc.ExportOptionsPlist)
	}

	if len(tc.Hooks.Before) > 0 || len(tc.Hooks.After) > 0 {
		if r == nil {
			return nil, fmt.Errorf("task %s: hooks require a runner", t.Name())
		}
		t.SetHooks(&ShellHooks{
			Task:           t.Name(),
			Runner:         r,
			BeforeCommands: tc.Hooks.Before,
			AfterCommands:  tc.Hooks.After,
		})
	}

	return t, nil
}

// RepositoryFromConfig registers every configured task.
func RepositoryFromConfig(cfg *config.Config, r runner.Runner) (*Repository, error) {
	repo := NewRepository()
	for i, tc := range cfg.Tasks {
		t, err := FromConfig(tc, r)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if _, err := repo.Register(t); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

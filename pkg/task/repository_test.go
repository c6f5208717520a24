package task

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/xctask/xctask/pkg/config"
	"github.com/xctask/xctask/pkg/runner"
)

func TestRepository(t *testing.T) {
	repo := NewRepository()

	unit, err := repo.Register(NewTest().SetScheme("Example"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Register(New("ui-test", KindTest).SetScheme("ExampleUITests")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Register(NewBuild().SetScheme("Example").SetBuildDir("build")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Register(NewArchive().SetScheme("Example").SetBuildDir("./build")); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Register(NewTest()); err == nil || !strings.Contains(err.Error(), `"test" is already defined`) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if _, err := repo.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}

	if got, ok := repo.Lookup("test"); !ok || got != unit {
		t.Errorf("Lookup(test) = %v, %v", got, ok)
	}
	if _, ok := repo.Lookup("missing"); ok {
		t.Error("Lookup(missing) found a task")
	}
	if got, ok := repo.FirstOfKind(KindTest); !ok || got != unit {
		t.Errorf("FirstOfKind(test) = %v", got)
	}
	if _, ok := repo.FirstOfKind(KindExport); ok {
		t.Error("FirstOfKind(export) found a task")
	}
	if len(repo.All()) != 4 {
		t.Errorf("All() = %d tasks", len(repo.All()))
	}

	if got := repo.CleanTargets(); len(got) != 0 {
		t.Errorf("CleanTargets() before validation = %v", got)
	}
	if errs := repo.ValidateAll(); len(errs) != 0 {
		t.Fatalf("ValidateAll() = %v", errs)
	}
	if got := repo.CleanTargets(); !reflect.DeepEqual(got, []string{"build"}) {
		t.Errorf("CleanTargets() = %v, want [build]", got)
	}
}

func TestRepositoryValidateAllReportsPerTask(t *testing.T) {
	repo := NewRepository()
	_, _ = repo.Register(NewTest())
	_, _ = repo.Register(NewBuild().SetProject("Example"))

	errs := repo.ValidateAll()
	if len(errs) != 1 || errs["test"] == nil {
		t.Errorf("ValidateAll() = %v, want one error for test", errs)
	}
}

func TestFromConfig(t *testing.T) {
	isolate := false
	tc := config.TaskConfig{
		Kind:          "export",
		Scheme:        "Example",
		BuildDir:      "build",
		ExportFormat:  "none",
		ExportPath:    "build/Example.ipa",
		IsolateEnv:    &isolate,
		Env:           []string{"LANG=en_US.UTF-8"},
		BuildSettings: yaml.MapSlice{{Key: "IGNORED", Value: "x"}},
		Hooks:         config.HooksConfig{Before: []string{"echo before"}},
	}

	rec := runner.NewRecorder()
	task, err := FromConfig(tc, rec)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if task.Name() != "build:export" || task.Kind() != KindExport {
		t.Errorf("task = %s (%s)", task.Name(), task.Kind())
	}
	if err := task.Validate(); err != nil {
		t.Fatal(err)
	}

	cmd, err := task.Invocation(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := "xcodebuild -exportArchive -archivePath build/Example -exportPath build/Example.ipa"; cmd.String() != want {
		t.Errorf("command = %q, want %q", cmd.String(), want)
	}
	if cmd.Isolate || len(cmd.Env) != 1 {
		t.Errorf("command env = %v isolate = %v", cmd.Env, cmd.Isolate)
	}

	if task.Hooks() == nil {
		t.Fatal("hooks not configured")
	}
	if err := task.Hooks().Before(context.Background()); err != nil {
		t.Fatal(err)
	}
	if lines := rec.Lines(); len(lines) != 1 || lines[0] != "/bin/sh -c echo before" {
		t.Errorf("hook commands = %v", lines)
	}
}

func TestFromConfigBuildSettingsOrder(t *testing.T) {
	tc := config.TaskConfig{
		Kind:    "build",
		Project: "Example",
		BuildSettings: yaml.MapSlice{
			{Key: "Z", Value: "1"},
			{Key: "A", Value: true},
		},
	}
	task, err := FromConfig(tc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := commandLine(t, task); got != "xcodebuild build -project Example.xcodeproj Z=1 A=YES" {
		t.Errorf("command = %q", got)
	}
}

func TestFromConfigErrors(t *testing.T) {
	if _, err := FromConfig(config.TaskConfig{Kind: "deploy"}, nil); err == nil {
		t.Error("expected error for unknown kind")
	}
	tc := config.TaskConfig{Kind: "test", Hooks: config.HooksConfig{After: []string{"true"}}}
	if _, err := FromConfig(tc, nil); err == nil {
		t.Error("expected error for hooks without runner")
	}

	cfg := &config.Config{Tasks: []config.TaskConfig{{Kind: "test"}, {Kind: "test"}}}
	if _, err := RepositoryFromConfig(cfg, nil); err == nil {
		t.Error("expected duplicate task error")
	}
}

func TestShellHooksAfterEnvironment(t *testing.T) {
	rec := runner.NewRecorder()
	hooks := &ShellHooks{Task: "test", Runner: rec, AfterCommands: []string{"notify", "archive-logs"}}

	if err := hooks.After(context.Background(), []string{"a", "b"}, 0); err != nil {
		t.Fatal(err)
	}
	if len(rec.Commands) != 2 {
		t.Fatalf("ran %d commands, want 2", len(rec.Commands))
	}
	env := strings.Join(rec.Commands[0].Env, " ")
	if env != "XCTASK_TASK=test XCTASK_STATUS=0 XCTASK_OUTPUT_LINES=2" {
		t.Errorf("env = %q", env)
	}

	failing := &runner.Recorder{Respond: func(runner.Command) ([]string, int) { return nil, 1 }}
	hooks = &ShellHooks{Task: "test", Runner: failing, BeforeCommands: []string{"false", "never"}}
	if err := hooks.Before(context.Background()); err == nil {
		t.Error("expected hook failure")
	}
	if len(failing.Commands) != 1 {
		t.Errorf("ran %d commands after a failure, want 1", len(failing.Commands))
	}
}

package task

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xctask/xctask/pkg/sign"
	"github.com/xctask/xctask/pkg/validate"
)

type fakeResolver map[string]sign.Profile

func (f fakeResolver) Resolve(ctx context.Context, ref string) sign.Profile {
	if p, ok := f[ref]; ok {
		return p
	}
	return sign.Profile{Ref: ref, Name: ref}
}

var profiles = fakeResolver{
	"Distribution.mobileprovision": {
		Ref:  "Distribution.mobileprovision",
		UUID: "5d09b88d-ff09-43aa-a6fd-3907f98fe467",
		Name: "Distribution",
	},
}

func commandLine(t *testing.T, task *Task) string {
	t.Helper()
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cmd, err := task.Invocation(context.Background(), profiles)
	if err != nil {
		t.Fatalf("Invocation() error = %v", err)
	}
	return cmd.String()
}

func TestValidateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		task    *Task
		wantErr string
	}{
		{
			name:    "test without scheme",
			task:    NewTest().SetProject("Example"),
			wantErr: "test action requires specifying a scheme",
		},
		{
			name:    "archive without scheme",
			task:    NewArchive().SetProject("Example").SetBuildDir("build"),
			wantErr: "archive action requires specifying a scheme",
		},
		{
			name:    "build dir without scheme",
			task:    NewBuild().SetProject("Example").SetTarget("Example").SetBuildDir("build"),
			wantErr: "the scheme is required when specifying build_dir",
		},
		{
			name:    "test with scheme and target",
			task:    NewTest().SetScheme("Example").SetTarget("Example"),
			wantErr: "cannot specify both a scheme and targets",
		},
		{
			name:    "build with scheme and target",
			task:    NewBuild().SetScheme("Example").SetTarget("Example"),
			wantErr: "cannot specify both a scheme and targets",
		},
		{
			name:    "archive with scheme and target",
			task:    NewArchive().SetScheme("Example").SetTarget("Example"),
			wantErr: "cannot specify both a scheme and targets",
		},
		{
			name:    "export with scheme and target",
			task:    NewExport().SetArchivePath("build/Example").SetScheme("Example").SetTarget("Example"),
			wantErr: "cannot specify both a scheme and targets",
		},
		{
			name:    "export without archive",
			task:    NewExport().SetExportPath("build/Example.ipa"),
			wantErr: "export action requires an archive_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if err == nil {
				t.Fatalf("expected error %q", tt.wantErr)
			}
			if !validate.IsConfigurationError(err) {
				t.Errorf("error %T is not a ConfigurationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			if tt.task.State() != Configured {
				t.Errorf("state = %s, want configured", tt.task.State())
			}
			if len(tt.task.CleanTargets()) != 0 {
				t.Errorf("clean targets registered on failure: %v", tt.task.CleanTargets())
			}
			if _, err := tt.task.Invocation(context.Background(), profiles); err == nil {
				t.Error("Invocation() succeeded on an unvalidated task")
			}
		})
	}
}

func TestTestInvocation(t *testing.T) {
	tests := []struct {
		name string
		task *Task
		want string
	}{
		{
			name: "simulator",
			task: NewTest().
				SetProject("Example").
				SetScheme("Example").
				SetConfiguration("Debug").
				AddDestination("name=iPhone 6,OS=8.1").
				AddDestination("name=iPad Air,OS=8.1"),
			want: `xcodebuild test -project Example.xcodeproj -scheme Example -sdk iphonesimulator -configuration Debug ` +
				`-destination name=iPhone 6,OS=8.1 -destination name=iPad Air,OS=8.1 ` +
				`CODE_SIGN_IDENTITY="" CODE_SIGNING_REQUIRED=NO GCC_SYMBOLS_PRIVATE_EXTERN=NO`,
		},
		{
			name: "device",
			task: NewTest().
				SetProject("Example.xcodeproj").
				SetScheme("Example").
				SetSDK("iphoneos").
				SetConfiguration("Debug").
				AddDestination("platform=iOS,id=8d18c8c4d1a6988ac4a70d370bfcbe99fef3f7b5"),
			want: "xcodebuild test -project Example.xcodeproj -scheme Example -sdk iphoneos -configuration Debug " +
				"-destination platform=iOS,id=8d18c8c4d1a6988ac4a70d370bfcbe99fef3f7b5 GCC_SYMBOLS_PRIVATE_EXTERN=NO",
		},
		{
			name: "coverage",
			task: NewTest().
				SetWorkspace("Example").
				SetScheme("Example").
				SetCoverage(true).
				SetBuildDir("build").
				AddBuildSetting("OTHER_SWIFT_FLAGS", "-DCI"),
			want: `xcodebuild test -workspace Example.xcworkspace -scheme Example -sdk iphonesimulator ` +
				`-enableCodeCoverage YES -derivedDataPath build OTHER_SWIFT_FLAGS=-DCI ` +
				`CODE_SIGN_IDENTITY="" CODE_SIGNING_REQUIRED=NO GCC_SYMBOLS_PRIVATE_EXTERN=NO ` +
				`GCC_INSTRUMENT_PROGRAM_FLOW_ARCS=YES GCC_GENERATE_TEST_COVERAGE_FILES=YES`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandLine(t, tt.task); got != tt.want {
				t.Errorf("command\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestBuildInvocation(t *testing.T) {
	tests := []struct {
		name string
		task *Task
		want string
	}{
		{
			name: "project and target",
			task: NewBuild().SetProject("Example").SetTarget("Example").SetConfiguration("Release"),
			want: "xcodebuild build -project Example.xcodeproj -target Example -configuration Release",
		},
		{
			name: "build dir with scheme",
			task: NewBuild().
				SetWorkspace("Example").
				SetScheme("Example").
				SetConfiguration("Debug").
				SetBuildDir("build").
				SetSigningIdentity("iPhone Developer: Katsumi Kishikawa (9NXEJ2L8Q6)"),
			want: "xcodebuild build -workspace Example.xcworkspace -scheme Example -configuration Debug " +
				"-derivedDataPath build CONFIGURATION_TEMP_DIR=build/temp " +
				"CODE_SIGN_IDENTITY=iPhone Developer: Katsumi Kishikawa (9NXEJ2L8Q6)",
		},
		{
			name: "resolved provisioning profile",
			task: NewBuild().
				SetWorkspace("Example").
				SetScheme("Example").
				SetBuildDir("build").
				SetSigningIdentity("iPhone Distribution").
				SetProvisioningProfile("Distribution.mobileprovision"),
			want: "xcodebuild build -workspace Example.xcworkspace -scheme Example -derivedDataPath build " +
				"CONFIGURATION_TEMP_DIR=build/temp CODE_SIGN_IDENTITY=iPhone Distribution " +
				"PROVISIONING_PROFILE=5d09b88d-ff09-43aa-a6fd-3907f98fe467",
		},
		{
			name: "unresolved provisioning profile is dropped",
			task: NewBuild().
				SetProject("Example").
				SetScheme("Example").
				SetProvisioningProfile("Missing.mobileprovision"),
			want: "xcodebuild build -project Example.xcodeproj -scheme Example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandLine(t, tt.task); got != tt.want {
				t.Errorf("command\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestBuildDerivedTempDir(t *testing.T) {
	task := NewBuild().SetProject("Example").SetScheme("Example").SetBuildDir("build")
	if got := commandLine(t, task); !strings.Contains(got, " CONFIGURATION_TEMP_DIR=build/temp") {
		t.Errorf("command %q lacks CONFIGURATION_TEMP_DIR=build/temp", got)
	}
}

func TestArchiveInvocation(t *testing.T) {
	task := NewArchive().
		SetWorkspace("Example").
		SetScheme("Example").
		SetConfiguration("Release").
		SetBuildDir("build").
		SetSigningIdentity("iPhone Distribution: kishikawa katsumi").
		SetProvisioningProfile("Distribution.mobileprovision")

	want := "xcodebuild archive -workspace Example.xcworkspace -scheme Example -configuration Release " +
		"-derivedDataPath build CONFIGURATION_TEMP_DIR=build/temp " +
		"CODE_SIGN_IDENTITY=iPhone Distribution: kishikawa katsumi " +
		"PROVISIONING_PROFILE=5d09b88d-ff09-43aa-a6fd-3907f98fe467 -archivePath build/Example"
	if got := commandLine(t, task); got != want {
		t.Errorf("command\n got: %s\nwant: %s", got, want)
	}

	post := task.PostCommands()
	if len(post) != 2 {
		t.Fatalf("PostCommands() = %d commands, want 2", len(post))
	}
	if post[0].String() != "zip -ryq dSYMs.zip Example.xcarchive/dSYMs" || post[0].Dir != "build" {
		t.Errorf("first post command = %+v", post[0])
	}
	if post[1].String() != "zip -ryq Example.xcarchive.zip Example.xcarchive" || post[1].Dir != "build" {
		t.Errorf("second post command = %+v", post[1])
	}
}

func TestArchiveExplicitPath(t *testing.T) {
	task := NewArchive().SetProject("Example").SetScheme("Example").SetArchivePath("out/App")
	if got := commandLine(t, task); !strings.HasSuffix(got, " -archivePath out/App") {
		t.Errorf("command = %q", got)
	}
	if NewBuild().PostCommands() != nil {
		t.Error("build tasks have no post commands")
	}
}

func TestExportInvocation(t *testing.T) {
	tests := []struct {
		name        string
		task        *Task
		want        string
		wantIsolate bool
	}{
		{
			name: "default format",
			task: NewExport().
				SetBuildDir("build").
				SetScheme("Example").
				SetExportPath("build/Example.ipa").
				SetExportProvisioningProfile("Ad_Hoc.mobileprovision").
				SetExportSigningIdentity("iPhone Distribution: kishikawa katsumi"),
			want: "xcodebuild -exportArchive -archivePath build/Example -exportFormat IPA -exportPath build/Example.ipa " +
				"-exportProvisioningProfile Ad_Hoc.mobileprovision -exportSigningIdentity iPhone Distribution: kishikawa katsumi",
			wantIsolate: true,
		},
		{
			name: "format omitted",
			task: NewExport().
				SetArchivePath("build/Example").
				SetExportFormat("").
				SetExportPath("build/out"),
			want:        "xcodebuild -exportArchive -archivePath build/Example -exportPath build/out",
			wantIsolate: true,
		},
		{
			name: "resolved profile passes its name",
			task: NewExport().
				SetArchivePath("build/Example").
				SetExportProvisioningProfile("Distribution.mobileprovision").
				SetIsolateEnv(false),
			want: "xcodebuild -exportArchive -archivePath build/Example -exportFormat IPA " +
				"-exportProvisioningProfile Distribution",
			wantIsolate: false,
		},
		{
			name: "options plist",
			task: NewExport().
				SetArchivePath("build/Example.xcarchive").
				SetExportPath("build/export").
				SetExportSigningIdentity("ignored").
				SetExportOptionsPlist("ExportOptions.plist"),
			want: "xcodebuild -exportArchive -exportOptionsPlist ExportOptions.plist " +
				"-archivePath build/Example.xcarchive -exportPath build/export",
			wantIsolate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.task.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			cmd, err := tt.task.Invocation(context.Background(), profiles)
			if err != nil {
				t.Fatalf("Invocation() error = %v", err)
			}
			if cmd.String() != tt.want {
				t.Errorf("command\n got: %s\nwant: %s", cmd.String(), tt.want)
			}
			if cmd.Isolate != tt.wantIsolate {
				t.Errorf("Isolate = %v, want %v", cmd.Isolate, tt.wantIsolate)
			}
		})
	}
}

func TestInvocationDoesNotMutateTask(t *testing.T) {
	task := NewTest().SetProject("Example").SetScheme("Example").AddBuildSetting("A", "1")
	first := commandLine(t, task)
	second, err := task.Invocation(context.Background(), profiles)
	if err != nil {
		t.Fatal(err)
	}
	if first != second.String() {
		t.Errorf("invocations differ:\n%s\n%s", first, second.String())
	}
	if task.opts.Settings.Len() != 1 {
		t.Errorf("derived settings leaked into the task: %v", task.opts.Settings.Args())
	}
}

func TestBuildSettingReAddKeepsPosition(t *testing.T) {
	task := NewBuild().
		SetProject("Example").
		AddBuildSetting("FIRST", "a").
		AddBuildSetting("SECOND", "b").
		AddBuildSetting("FIRST", "c")
	want := "xcodebuild build -project Example.xcodeproj FIRST=c SECOND=b"
	if got := commandLine(t, task); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestStateTransitions(t *testing.T) {
	task := NewBuild()
	if task.State() != Unconfigured {
		t.Fatalf("initial state = %s", task.State())
	}

	task.SetProject("Example").SetScheme("Example").SetBuildDir("build")
	if task.State() != Configured {
		t.Fatalf("state after setters = %s", task.State())
	}

	if err := task.Start(); err == nil {
		t.Fatal("Start() before Validate() should fail")
	}

	if err := task.Validate(); err != nil {
		t.Fatal(err)
	}
	if task.State() != Validated {
		t.Fatalf("state = %s, want validated", task.State())
	}
	if got := task.CleanTargets(); len(got) != 1 || got[0] != "build" {
		t.Errorf("CleanTargets() = %v", got)
	}

	if err := task.Start(); err != nil {
		t.Fatal(err)
	}
	if err := task.Validate(); err == nil {
		t.Error("Validate() while running should fail")
	}
	var transition *TransitionError
	if err := task.Start(); !errors.As(err, &transition) {
		t.Errorf("second Start() error = %v", err)
	}

	failure := errors.New("xcodebuild failed (exited with status: 65)")
	if err := task.Finish(failure); err != nil {
		t.Fatal(err)
	}
	if task.State() != Failed || task.Err() != failure {
		t.Errorf("state = %s err = %v", task.State(), task.Err())
	}
	if !task.State().Done() {
		t.Error("failed state should be terminal")
	}

	if err := task.Finish(nil); err == nil {
		t.Error("Finish() outside Running should fail")
	}

	if err := task.Validate(); err != nil {
		t.Fatalf("revalidating a finished task: %v", err)
	}
	if err := task.Start(); err != nil {
		t.Fatal(err)
	}
	if err := task.Finish(nil); err != nil {
		t.Fatal(err)
	}
	if task.State() != Succeeded || task.Err() != nil {
		t.Errorf("state = %s err = %v", task.State(), task.Err())
	}
}

func TestSetterInvalidatesValidation(t *testing.T) {
	task := NewTest().SetScheme("Example")
	if err := task.Validate(); err != nil {
		t.Fatal(err)
	}
	task.SetTarget("Example")
	if task.State() != Configured {
		t.Fatalf("state = %s, want configured", task.State())
	}
	if err := task.Validate(); err == nil {
		t.Error("expected validation failure after conflicting change")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("deploy"); !validate.IsConfigurationError(err) {
		t.Errorf("ParseKind(deploy) error = %v", err)
	}
}

func TestDefaultNames(t *testing.T) {
	want := map[Kind]string{
		KindTest:    "test",
		KindBuild:   "build",
		KindArchive: "build:archive",
		KindExport:  "build:export",
	}
	for kind, name := range want {
		if got := New("", kind).Name(); got != name {
			t.Errorf("default name of %s = %q, want %q", kind, got, name)
		}
	}
}

package config

// ExampleConfig returns a configuration with example values for use with
// `xctask init`. Exactly one of project and workspace is normally set.
func ExampleConfig(project, workspace, scheme string) *Config {
	if scheme == "" {
		scheme = "Example"
	}
	if project == "" && workspace == "" {
		project = scheme + ".xcodeproj"
	}

	identity := func(kind string) TaskConfig {
		return TaskConfig{
			Kind:      kind,
			Project:   project,
			Workspace: workspace,
			Scheme:    scheme,
		}
	}

	test := identity("test")
	test.Configuration = "Debug"
	test.SDK = "iphonesimulator"
	test.BuildDir = "build"
	test.Coverage = true
	test.Destinations = []string{"platform=iOS Simulator,name=iPhone 15"}
	test.Formatter = "xcpretty -c"

	build := identity("build")
	build.Configuration = "Release"
	build.BuildDir = "build"

	archive := identity("archive")
	archive.Configuration = "Release"
	archive.BuildDir = "build"
	archive.SigningIdentity = "iPhone Distribution: Your Name (TEAM_ID)"
	archive.ProvisioningProfile = "AdHoc.mobileprovision"

	export := identity("export")
	export.BuildDir = "build"
	export.ExportPath = "build/" + scheme + ".ipa"
	export.ExportProvisioningProfile = "AdHoc.mobileprovision"

	return &Config{
		Tasks: []TaskConfig{test, build, archive, export},
		Coverage: CoverageConfig{
			RepoToken:       "env(COVERALLS_REPO_TOKEN)",
			Extensions:      []string{".m", ".swift"},
			Excludes:        []string{"Pods"},
			ExcludePatterns: []string{"Tests?/"},
			GcovDir:         "build",
			GitHubStatus: GitHubStatusConfig{
				Enabled: false,
				Token:   "env(GITHUB_TOKEN)",
				Context: "coverage/xctask",
			},
		},
	}
}

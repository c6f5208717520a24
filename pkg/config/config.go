package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"github.com/xctask/xctask/pkg/env"
)

// Config represents the complete xctask configuration
type Config struct {
	Tasks    []TaskConfig   `yaml:"tasks"`
	Coverage CoverageConfig `yaml:"coverage,omitempty"`
}

// TaskConfig describes one xcodebuild task
type TaskConfig struct {
	Name          string        `yaml:"name,omitempty"`
	Kind          string        `yaml:"kind"`
	Project       string        `yaml:"project,omitempty"`
	Workspace     string        `yaml:"workspace,omitempty"`
	Target        string        `yaml:"target,omitempty"`
	Scheme        string        `yaml:"scheme,omitempty"`
	SDK           string        `yaml:"sdk,omitempty"`
	Configuration string        `yaml:"configuration,omitempty"`
	BuildDir      string        `yaml:"build_dir,omitempty"`
	Coverage      bool          `yaml:"coverage,omitempty"`
	Destinations  []string      `yaml:"destinations,omitempty"`
	BuildSettings yaml.MapSlice `yaml:"build_settings,omitempty"`

	SigningIdentity     string `yaml:"signing_identity,omitempty"`
	ProvisioningProfile string `yaml:"provisioning_profile,omitempty"`

	Formatter  string      `yaml:"formatter,omitempty"`
	IsolateEnv *bool       `yaml:"isolate_env,omitempty"`
	Env        []string    `yaml:"env,omitempty"`
	Hooks      HooksConfig `yaml:"hooks,omitempty"`

	ArchivePath string `yaml:"archive_path,omitempty"`

	ExportFormat                      string `yaml:"export_format,omitempty"`
	ExportPath                        string `yaml:"export_path,omitempty"`
	ExportProvisioningProfile         string `yaml:"export_provisioning_profile,omitempty"`
	ExportSigningIdentity             string `yaml:"export_signing_identity,omitempty"`
	ExportInstallerIdentity           string `yaml:"export_installer_identity,omitempty"`
	ExportWithOriginalSigningIdentity bool   `yaml:"export_with_original_signing_identity,omitempty"`
	ExportOptionsPlist                string `yaml:"export_options_plist,omitempty"`
}

// HooksConfig holds shell commands run around a task's xcodebuild process
type HooksConfig struct {
	Before []string `yaml:"before,omitempty"`
	After  []string `yaml:"after,omitempty"`
}

// CoverageConfig contains coverage collection and upload configuration.
// Always use env(COVERALLS_REPO_TOKEN) instead of hardcoding the token.
type CoverageConfig struct {
	RepoToken       string             `yaml:"repo_token,omitempty"`
	ServiceName     string             `yaml:"service_name,omitempty"`
	ServiceJobID    string             `yaml:"service_job_id,omitempty"`
	Parallel        bool               `yaml:"parallel,omitempty"`
	Endpoint        string             `yaml:"endpoint,omitempty"`
	Output          string             `yaml:"output,omitempty"`
	BaseDir         string             `yaml:"base_dir,omitempty"`
	Extensions      []string           `yaml:"extensions,omitempty"`
	Excludes        []string           `yaml:"excludes,omitempty"`
	ExcludePatterns []string           `yaml:"exclude_patterns,omitempty"`
	GcovDir         string             `yaml:"gcov_dir,omitempty"`
	Profdata        string             `yaml:"profdata,omitempty"`
	Binaries        []string           `yaml:"binaries,omitempty"`
	GitHubStatus    GitHubStatusConfig `yaml:"github_status,omitempty"`
}

// GitHubStatusConfig controls the commit status posted after an upload
type GitHubStatusConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Token      string `yaml:"token,omitempty"`
	Context    string `yaml:"context,omitempty"`
	Repository string `yaml:"repository,omitempty"` // owner/repo, default from the fetch remote
}

// BuildSetting is one rendered entry of TaskConfig.BuildSettings
type BuildSetting struct {
	Key   string
	Value string
}

// Settings renders build_settings in document order. Booleans become
// YES/NO, the spelling xcodebuild expects.
func (t TaskConfig) Settings() []BuildSetting {
	settings := make([]BuildSetting, 0, len(t.BuildSettings))
	for _, item := range t.BuildSettings {
		settings = append(settings, BuildSetting{
			Key:   fmt.Sprint(item.Key),
			Value: settingValue(item.Value),
		})
	}
	return settings
}

func settingValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "YES"
		}
		return "NO"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// DefaultPath is the configuration file used when --config is not given
const DefaultPath = ".xctask.yaml"

// maxConfigSize caps the configuration file at 1MB
const maxConfigSize = 1 << 20

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	cleanPath, err := validateConfigPath(path)
	if err != nil {
		return nil, err
	}

	data, err := readConfigFile(cleanPath)
	if err != nil {
		return nil, err
	}

	return Parse(data, nil)
}

// Parse decodes configuration bytes, resolving env(VAR) references through
// lookup (the process environment when nil). Unknown keys are rejected.
func Parse(data []byte, lookup env.LookupFunc) (*Config, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, fmt.Errorf("failed to parse config: empty document")
	}

	if err := env.SubstituteEnvVarsNode(file.Docs[0].Body, lookup); err != nil {
		return nil, fmt.Errorf("environment variable substitution failed: %w", err)
	}

	var config Config
	if err := yaml.NodeToValue(file.Docs[0].Body, &config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes a configuration file readable only by the owner, since
// it may hold tokens.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfigPath rejects relative paths that climb out of the working
// directory. Absolute paths elsewhere are allowed.
func validateConfigPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	wd = filepath.Clean(wd)

	if cleanPath == wd || strings.HasPrefix(cleanPath, wd+string(filepath.Separator)) {
		rel, err := filepath.Rel(wd, cleanPath)
		if err != nil {
			return "", fmt.Errorf("invalid config path: %w", err)
		}
		if !filepath.IsLocal(rel) {
			return "", fmt.Errorf("invalid config path: path traversal detected")
		}
	}

	return cleanPath, nil
}

func readConfigFile(cleanPath string) ([]byte, error) {
	// Stat follows symlinks so the target itself must be a regular file.
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config path is not a regular file")
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: maximum size is 1MB")
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return data, nil
}

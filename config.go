package termux_installer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

const configFilename = "config.yml"

// Environment variables read by the installer.
const (
	EnvRepoURL     = "REPO_URL"
	EnvBranch      = "BRANCH"
	EnvInstallDir  = "INSTALL_DIR"
	EnvFullUpgrade = "FULL_UPGRADE"
	EnvMode        = "ENV_MODE"
	EnvLanguage    = "INSTALLER_LANG"
)

// EnvFileMode selects how a missing .env file is created.
type EnvFileMode string

const (
	// EnvModeAuto prompts when a terminal is available and writes a template otherwise.
	EnvModeAuto     EnvFileMode = "auto"
	EnvModePrompt   EnvFileMode = "prompt"
	EnvModeTemplate EnvFileMode = "template"
)

// ErrInvalidSetting is returned for settings that can't be used.
var ErrInvalidSetting = errors.New("invalid setting")

// Config holds everything one installer run needs. Defaults come from the bundled
// config.yml, environment variables override them.
type Config struct {
	Product        string   `yaml:"product"`
	RepoURL        string   `yaml:"repo_url"`
	Branch         string   `yaml:"branch"`
	InstallDir     string   `yaml:"install_dir"`
	PackageManager string   `yaml:"package_manager"`
	Packages       []string `yaml:"packages"`
	VenvDir        string   `yaml:"venv_dir"`
	Requirements   string   `yaml:"requirements"`
	FallbackDeps   []string `yaml:"fallback_deps"`
	EntryPoint     string   `yaml:"entry_point"`
	EnvFile        string   `yaml:"env_file"`
	ShortcutName   string   `yaml:"shortcut_name"`
	Languages      []string `yaml:"languages"`

	FullUpgrade bool        `yaml:"-"`
	EnvMode     EnvFileMode `yaml:"-"`
	Language    string      `yaml:"-"`
	DryRun      bool        `yaml:"-"`
}

// NewConfig reads the bundled defaults and applies the process environment.
func NewConfig() (*Config, error) {
	return NewConfigFrom(MustGetResource(configFilename), os.Getenv)
}

// NewConfigFrom parses the yaml defaults in source and overlays the environment as
// seen through getenv.
func NewConfigFrom(source string, getenv func(string) string) (*Config, error) {
	config := &Config{EnvMode: EnvModeAuto}
	err := yaml.Unmarshal([]byte(source), config)
	if err != nil {
		log.Printf("Unable to parse config file %s\n", configFilename)
		return config, err
	}
	if v := getenv(EnvRepoURL); v != "" {
		config.RepoURL = v
	}
	if v := getenv(EnvBranch); v != "" {
		config.Branch = v
	}
	if v := getenv(EnvInstallDir); v != "" {
		config.InstallDir = v
	}
	if v := getenv(EnvFullUpgrade); v != "" {
		config.FullUpgrade, err = parseToggle(v)
		if err != nil {
			return config, fmt.Errorf("%s: %w", EnvFullUpgrade, err)
		}
	}
	if v := getenv(EnvMode); v != "" {
		config.EnvMode = EnvFileMode(strings.ToLower(v))
	}
	config.Language = getenv(EnvLanguage)

	home := getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	config.InstallDir = expandHome(ExpandVariables(config.InstallDir, StringMap{"home": home}), home)
	return config, config.Validate()
}

// Validate checks that the settings describe an installable target. It is called by
// NewConfigFrom and again after command line flags are applied.
func (c *Config) Validate() error {
	switch {
	case c.RepoURL == "":
		return fmt.Errorf("%w: empty repository URL", ErrInvalidSetting)
	case c.Branch == "":
		return fmt.Errorf("%w: empty branch", ErrInvalidSetting)
	case c.InstallDir == "":
		return fmt.Errorf("%w: empty install directory", ErrInvalidSetting)
	case c.PackageManager == "":
		return fmt.Errorf("%w: no package manager configured", ErrInvalidSetting)
	case c.VenvDir == "" || c.EnvFile == "":
		return fmt.Errorf("%w: venv or env file name missing", ErrInvalidSetting)
	}
	switch c.EnvMode {
	case EnvModeAuto, EnvModePrompt, EnvModeTemplate:
	default:
		return fmt.Errorf("%w: unknown %s %q (want auto, prompt or template)", ErrInvalidSetting, EnvMode, c.EnvMode)
	}
	if !filepath.IsAbs(c.InstallDir) {
		abs, err := filepath.Abs(c.InstallDir)
		if err != nil {
			return fmt.Errorf("%w: install directory: %v", ErrInvalidSetting, err)
		}
		c.InstallDir = abs
	}
	return nil
}

// VenvPath is the absolute path of the virtual environment.
func (c *Config) VenvPath() string { return filepath.Join(c.InstallDir, c.VenvDir) }

// VenvPython is the interpreter inside the virtual environment.
func (c *Config) VenvPython() string { return filepath.Join(c.VenvPath(), "bin", "python") }

// EnvFilePath is the absolute path of the application's .env file.
func (c *Config) EnvFilePath() string { return filepath.Join(c.InstallDir, c.EnvFile) }

// Variables returns the template variables used by the translator and the shortcut
// template.
func (c *Config) Variables() StringMap {
	return StringMap{
		"product":    c.Product,
		"repoUrl":    c.RepoURL,
		"branch":     c.Branch,
		"installDir": c.InstallDir,
		"venvDir":    c.VenvDir,
		"venvPython": c.VenvPython(),
		"entryPoint": c.EntryPoint,
		"envFile":    c.EnvFilePath(),
	}
}

// parseToggle accepts the usual shell spellings of a boolean.
func parseToggle(value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidSetting, value)
	}
	return b, nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

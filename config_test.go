package termux_installer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getenvFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestConfigDefaults(t *testing.T) {
	config, err := NewConfigFrom(MustGetResource(configFilename), getenvFrom(map[string]string{"HOME": "/home/u"}))
	require.NoError(t, err)

	assert.Equal(t, "main", config.Branch)
	assert.Equal(t, "/home/u/tg-userbot", config.InstallDir)
	assert.Equal(t, "pkg", config.PackageManager)
	assert.Equal(t, []string{"python", "git"}, config.Packages)
	assert.Equal(t, EnvModeAuto, config.EnvMode)
	assert.False(t, config.FullUpgrade)
	assert.NotEmpty(t, config.RepoURL)
	assert.Equal(t, "/home/u/tg-userbot/.venv/bin/python", config.VenvPython())
	assert.Equal(t, "/home/u/tg-userbot/.env", config.EnvFilePath())
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	config, err := NewConfigFrom(MustGetResource(configFilename), getenvFrom(map[string]string{
		"HOME":         "/home/u",
		EnvRepoURL:     "https://example.com/fork.git",
		EnvBranch:      "dev",
		EnvInstallDir:  "~/bots/ub",
		EnvFullUpgrade: "yes",
		EnvMode:        "TEMPLATE",
		EnvLanguage:    "ru",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/fork.git", config.RepoURL)
	assert.Equal(t, "dev", config.Branch)
	assert.Equal(t, "/home/u/bots/ub", config.InstallDir)
	assert.True(t, config.FullUpgrade)
	assert.Equal(t, EnvModeTemplate, config.EnvMode)
	assert.Equal(t, "ru", config.Language)
}

func TestConfigRelativeInstallDir(t *testing.T) {
	config, err := NewConfigFrom(MustGetResource(configFilename), getenvFrom(map[string]string{EnvInstallDir: "app"}))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(config.InstallDir))
	assert.Equal(t, "app", filepath.Base(config.InstallDir))
}

func TestConfigInvalidSettings(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"bad toggle":   {EnvFullUpgrade: "maybe"},
		"bad env mode": {EnvMode: "ask"},
	} {
		t.Run(name, func(t *testing.T) {
			env["HOME"] = "/home/u"
			_, err := NewConfigFrom(MustGetResource(configFilename), getenvFrom(env))
			assert.ErrorIs(t, err, ErrInvalidSetting)
			assert.Equal(t, ExitSetting, exitCode(err))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	config, err := NewConfigFrom(MustGetResource(configFilename), getenvFrom(map[string]string{"HOME": "/home/u"}))
	require.NoError(t, err)
	config.RepoURL = ""
	assert.ErrorIs(t, config.Validate(), ErrInvalidSetting)
}

func TestConfigParseError(t *testing.T) {
	_, err := NewConfigFrom("packages: [", getenvFrom(nil))
	assert.Error(t, err)
}

func TestParseToggle(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "YES": true, "on": true, " y ": true,
		"0": false, "false": false, "no": false, "off": false, "": false,
	} {
		got, err := parseToggle(value)
		require.NoError(t, err, value)
		assert.Equal(t, want, got, value)
	}
}

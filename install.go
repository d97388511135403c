package termux_installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Translation keys of the installer steps, also used as step names.
const (
	StepPackages     = "step_packages"
	StepRepository   = "step_repository"
	StepVenv         = "step_venv"
	StepDependencies = "step_dependencies"
	StepConfig       = "step_config"
	StepShortcut     = "step_shortcut"
)

const pythonBinary = "python"

// ErrNotCheckout is returned when the install directory exists, is not empty and is
// not a git checkout. Nothing is deleted in that case.
var ErrNotCheckout = errors.New("install directory exists and is not a git checkout")

type (
	// InstallStatus is a message struct that gets passed to the progress function at
	// the start and the end of every step. All fields except Step, Index and Total
	// are optional.
	InstallStatus struct {
		Step     string
		Index    int
		Total    int
		Done     bool
		Skipped  bool
		Warning  string
		Finished bool
	}
	installStep struct {
		name string
		run  func(ctx context.Context) (skipped bool, err error)
	}
	// Installer brings an install directory to a runnable state. Every step checks
	// for its own result first, so an Installer can be run any number of times
	// against the same directory.
	Installer struct {
		Config     *Config
		Runner     Runner
		Translator *Translator
		// EnvInput is where .env lines are read from. If nil, or if the config asks
		// for it, a template is written instead of prompting.
		EnvInput io.Reader
		Out      io.Writer
		// Home is the user's home directory, for the widget shortcut.
		Home string
		// Environ is the environment the commands start from.
		Environ []string

		progressFunction func(InstallStatus)
		steps            []installStep
	}
)

// NewInstaller creates an installer for the given config that writes its messages to
// stdout and runs commands through runner.
func NewInstaller(config *Config, runner Runner, translator *Translator) *Installer {
	home, _ := os.UserHomeDir()
	i := &Installer{
		Config:           config,
		Runner:           runner,
		Translator:       translator,
		Out:              os.Stdout,
		Home:             home,
		Environ:          os.Environ(),
		progressFunction: func(status InstallStatus) {},
	}
	i.steps = []installStep{
		{StepPackages, i.installPackages},
		{StepRepository, i.syncRepository},
		{StepVenv, i.ensureVenv},
		{StepDependencies, i.installDependencies},
		{StepConfig, i.ensureEnvFile},
		{StepShortcut, i.ensureShortcut},
	}
	return i
}

func (i *Installer) SetProgressFunction(function func(InstallStatus)) {
	i.progressFunction = function
}

// Install runs all steps in order and stops at the first fatal error.
func (i *Installer) Install(ctx context.Context) error {
	return i.runSteps(ctx, i.steps)
}

// InstallEnvFile runs only the configuration step.
func (i *Installer) InstallEnvFile(ctx context.Context) error {
	return i.runSteps(ctx, []installStep{{StepConfig, i.ensureEnvFile}})
}

func (i *Installer) runSteps(ctx context.Context, steps []installStep) error {
	for n, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		status := InstallStatus{Step: step.name, Index: n + 1, Total: len(steps)}
		i.progressFunction(status)
		log.Printf("Step %d/%d: %s", status.Index, status.Total, step.name)
		skipped, err := step.run(ctx)
		if err != nil {
			log.Printf("Step %s failed: %v", step.name, err)
			return fmt.Errorf("%s: %w", i.Translator.Get(step.name), err)
		}
		status.Done, status.Skipped = true, skipped
		i.progressFunction(status)
	}
	i.progressFunction(InstallStatus{Finished: true})
	return nil
}

// warn reports a best-effort failure and lets the installer continue.
func (i *Installer) warn(step, message string, err error) {
	log.Printf("%s: %v", message, err)
	i.progressFunction(InstallStatus{Step: step, Warning: fmt.Sprintf("%s: %v", message, err)})
}

func (i *Installer) run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	return i.Runner.Run(ctx, Command{Name: name, Args: args, Dir: dir, Env: env})
}

func (i *Installer) installPackages(ctx context.Context) (bool, error) {
	pm := i.Config.PackageManager
	if err := i.run(ctx, "", i.Environ, pm, "update", "-y"); err != nil {
		return false, err
	}
	if i.Config.FullUpgrade {
		if err := i.run(ctx, "", i.Environ, pm, "upgrade", "-y"); err != nil {
			return false, err
		}
	}
	if len(i.Config.Packages) == 0 {
		return false, nil
	}
	args := append([]string{"install", "-y"}, i.Config.Packages...)
	return false, i.run(ctx, "", i.Environ, pm, args...)
}

// syncRepository fast-forwards an existing checkout, or makes a shallow clone. The
// refresh is a convenience: if it fails, the existing checkout is used as is.
func (i *Installer) syncRepository(ctx context.Context) (bool, error) {
	dir := i.Config.InstallDir
	if isDir(filepath.Join(dir, ".git")) {
		err := i.run(ctx, "", i.Environ, "git", "-C", dir, "pull", "--ff-only")
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			i.warn(StepRepository, i.Translator.Get("warn_refresh_failed"), err)
		}
		return false, nil
	}
	if empty, err := isEmptyOrMissing(dir); err != nil {
		return false, err
	} else if !empty {
		return false, fmt.Errorf("%w: %s", ErrNotCheckout, dir)
	}
	if err := i.CheckInstallDir(dir); err != nil {
		return false, err
	}
	return false, i.run(ctx, "", i.Environ,
		"git", "clone", "--depth", "1", "--branch", i.Config.Branch, i.Config.RepoURL, dir)
}

func (i *Installer) ensureVenv(ctx context.Context) (bool, error) {
	if isFile(i.Config.VenvPython()) {
		return true, nil
	}
	return false, i.run(ctx, i.Config.InstallDir, i.Environ, pythonBinary, "-m", "venv", i.Config.VenvPath())
}

func (i *Installer) installDependencies(ctx context.Context) (bool, error) {
	env := ActivatedEnv(i.Environ, i.Config.VenvPath())
	python := i.Config.VenvPython()
	dir := i.Config.InstallDir
	if err := i.run(ctx, dir, env, python, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return false, err
	}
	requirements := filepath.Join(dir, i.Config.Requirements)
	if i.Config.Requirements != "" && isFile(requirements) {
		return false, i.run(ctx, dir, env, python, "-m", "pip", "install", "-r", requirements)
	}
	if len(i.Config.FallbackDeps) == 0 {
		return false, nil
	}
	args := append([]string{"-m", "pip", "install"}, i.Config.FallbackDeps...)
	return false, i.run(ctx, dir, env, python, args...)
}

// ensureEnvFile creates the .env file if there is none. An existing file is never
// overwritten.
func (i *Installer) ensureEnvFile(ctx context.Context) (bool, error) {
	path := i.Config.EnvFilePath()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(i.Out, i.Translator.Get("env_exists"))
		return true, nil
	}
	if i.Config.DryRun {
		return true, nil
	}
	if i.EnvInput == nil || i.Config.EnvMode == EnvModeTemplate {
		return i.writeEnvFile(path, TemplateLines(), "env_template_written")
	}
	prompt := EnvPrompt{In: i.EnvInput, Out: i.Out, Translator: i.Translator}
	lines, err := prompt.Ask(ctx)
	if err != nil {
		return false, err
	}
	for _, warning := range CheckEnvLines(lines) {
		log.Println("env:", warning)
		fmt.Fprintln(i.Out, i.Translator.Get("env_warning"), warning)
	}
	return i.writeEnvFile(path, lines, "env_created")
}

func (i *Installer) writeEnvFile(path string, lines []string, message string) (bool, error) {
	err := WriteEnvFile(path, lines)
	if errors.Is(err, os.ErrExist) {
		fmt.Fprintln(i.Out, i.Translator.Get("env_exists"))
		return true, nil
	}
	if err != nil {
		return false, err
	}
	log.Printf("Wrote %s (%d lines)", path, len(lines))
	fmt.Fprintln(i.Out, i.Translator.Get(message))
	return false, nil
}

func (i *Installer) ensureShortcut(ctx context.Context) (bool, error) {
	if i.Config.ShortcutName == "" || i.Home == "" || i.Config.DryRun {
		return true, nil
	}
	shell := shortcutShell(lookupEnv(i.Environ, "PREFIX"))
	created, err := osCreateShortcut(
		ShortcutPath(i.Config, i.Home),
		i.Config.Variables(),
		StringMap{"shell": shell},
	)
	if err != nil {
		i.warn(StepShortcut, i.Translator.Get("warn_shortcut_failed"), err)
		return false, nil
	}
	return !created, nil
}

// CheckInstallDir checks that the parent of dirName exists, creating it if needed,
// and is writeable.
func (i *Installer) CheckInstallDir(dirName string) error {
	parent := filepath.Dir(dirName)
	if !i.Config.DryRun {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return fmt.Errorf("install parent: %w", err)
		}
	}
	log.Printf("Checking install location: '%s'", dirName)
	parentInfo, err := os.Stat(parent)
	if err != nil || !parentInfo.IsDir() {
		if i.Config.DryRun {
			return nil
		}
		return fmt.Errorf("install parent is not dir: '%s'", parent)
	} else if !osFileWriteAccess(parent) {
		return fmt.Errorf("install location is not writeable: '%s' -> '%s'", parent, parentInfo.Mode().Perm())
	}
	return nil
}

// ActivatedEnv returns environ with the virtual environment at venv activated, the
// same way the venv's activate script does it: VIRTUAL_ENV is set, the venv's bin
// directory is put first on PATH and PYTHONHOME is removed.
func ActivatedEnv(environ []string, venv string) []string {
	path := lookupEnv(environ, "PATH")
	env := make([]string, 0, len(environ)+2)
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH", "VIRTUAL_ENV", "PYTHONHOME":
			continue
		}
		env = append(env, kv)
	}
	venvBin := filepath.Join(venv, "bin")
	if path != "" {
		venvBin += string(os.PathListSeparator) + path
	}
	return append(env, "VIRTUAL_ENV="+venv, "PATH="+venvBin)
}

// lookupEnv returns the last value of key in environ.
func lookupEnv(environ []string, key string) (value string) {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			value = v
		}
	}
	return value
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isEmptyOrMissing(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

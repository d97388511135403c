//go:build unix

package termux_installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "git", Args: []string{"commit", "-m", "a message"}}
	assert.Equal(t, "git commit -m 'a message'", cmd.String())
}

func TestExecRunnerDryRun(t *testing.T) {
	var echoed []Command
	runner := &ExecRunner{DryRun: true, Echo: func(cmd Command) { echoed = append(echoed, cmd) }}
	err := runner.Run(context.Background(), Command{Name: "no-such-program-here"})
	require.NoError(t, err)
	assert.Len(t, echoed, 1)
}

func TestExecRunnerNotFound(t *testing.T) {
	runner := &ExecRunner{}
	err := runner.Run(context.Background(), Command{Name: "no-such-program-here"})
	assert.ErrorIs(t, err, ErrCommandNotFound)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 0, cmdErr.ExitCode)
}

func TestExecRunnerExitCode(t *testing.T) {
	runner := &ExecRunner{}
	err := runner.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "sh -c 'exit 3': exit status 3", cmdErr.Error())
}

func TestExecRunnerDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	runner := &ExecRunner{Stdout: out}
	err := runner.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `printf '%s %s' "$PWD" "$GREETING"`},
		Dir:  dir,
		Env:  []string{"GREETING=hi", "PATH=/usr/bin:/bin"},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), " hi")
}

func TestExecRunnerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&ExecRunner{}).Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecRunnerUsesCommandPath(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "only-on-command-path")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0755))

	runner := &ExecRunner{}
	require.NoError(t, runner.Run(context.Background(), Command{
		Name: "only-on-command-path",
		Env:  []string{"PATH=" + dir},
	}))

	err := runner.Run(context.Background(), Command{Name: "only-on-command-path"})
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exe"), nil, 0755))

	_, err := lookPath("tool", []string{"PATH=" + dir})
	assert.Error(t, err, "files without the executable bit are skipped")
	path, err := lookPath("exe", []string{"PATH=relative:" + dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exe"), path)
	_, err = lookPath("sh", []string{"PATH=" + dir})
	assert.Error(t, err)
	path, err = lookPath("sh", nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
}

func TestChildStdin(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.Nil(t, childStdin(r, func(int) bool { return false }))
	assert.Nil(t, childStdin(nil, func(int) bool { return true }))
	assert.Equal(t, r, childStdin(r, func(int) bool { return true }))
}

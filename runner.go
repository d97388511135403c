package termux_installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

type (
	// Command is one external program invocation. Dir and Env are optional, an empty
	// Env inherits the installer's environment.
	Command struct {
		Name string
		Args []string
		Dir  string
		Env  []string
	}
	// Runner executes commands. The installer only talks to the outside world
	// through a Runner, which keeps the steps testable.
	Runner interface {
		Run(ctx context.Context, cmd Command) error
	}
	// ExecRunner runs commands as child processes with inherited stdio.
	ExecRunner struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// DryRun only prints the command lines.
		DryRun bool
		// Echo, if set, is called with every command before it runs.
		Echo func(Command)
	}
	// CommandError is returned when a command could not be started or exited with a
	// non-zero status.
	CommandError struct {
		Command  string
		ExitCode int
		Err      error
	}
)

// ErrCommandNotFound is wrapped by the CommandError of a program that isn't on PATH.
var ErrCommandNotFound = errors.New("command not found")

func (e *CommandError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// String returns the command line, quoted for a POSIX shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Name))
	for _, arg := range c.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// NewExecRunner returns a runner attached to the process' standard streams. Children
// only get stdin when it is a terminal, so piped input is left for the .env prompt.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  childStdin(os.Stdin, term.IsTerminal),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// childStdin returns in if it is a terminal and nil otherwise, which exec turns into
// the null device.
func childStdin(in *os.File, isTerminal func(fd int) bool) io.Reader {
	if in == nil || !isTerminal(int(in.Fd())) {
		return nil
	}
	return in
}

// lookPath resolves name against the PATH in env, or the installer's own PATH when env
// doesn't set one.
func lookPath(name string, env []string) (string, error) {
	path := lookupEnv(env, "PATH")
	if path == "" || strings.ContainsRune(name, os.PathSeparator) {
		return exec.LookPath(name)
	}
	for _, dir := range filepath.SplitList(path) {
		if !filepath.IsAbs(dir) {
			continue
		}
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

// Run starts the command and waits for it. Cancelling ctx kills the child.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if r.Echo != nil {
		r.Echo(cmd)
	}
	log.Println("Running:", cmd.String())
	if r.DryRun {
		return nil
	}
	path, err := lookPath(cmd.Name, cmd.Env)
	if err != nil {
		return &CommandError{Command: cmd.String(), Err: fmt.Errorf("%w: %s", ErrCommandNotFound, cmd.Name)}
	}
	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = cmd.Env
	}
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	err = c.Run()
	if err == nil {
		return nil
	}
	cmdErr := &CommandError{Command: cmd.String(), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		cmdErr.Err = ctx.Err()
	}
	log.Println("Command failed:", cmdErr)
	return cmdErr
}

package termux_installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	logFilename = "installer.log"
	ttyPath     = "/dev/tty"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitInput   = 2
	ExitSetting = 3
)

// Run parses the commandline, runs the requested command and returns the process exit
// code.
//
// Without a subcommand the full installation runs. Subcommands are:
//
//	env     // only create the .env file
//	doctor  // check the environment without changing anything
//
// All settings can be given as environment variables, the flags are a convenience on
// top of those.
func Run() int {
	logfile := startLogging(logFilename)
	if logfile != nil {
		defer logfile.Close()
	}

	if err := openBoxes(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitFailed
	}
	config, err := NewConfig()
	translator := NewTranslatorVar(config.Variables(), config.Languages)
	if translator == nil {
		fmt.Fprintln(os.Stderr, "no language files found")
		return ExitFailed
	}
	if err != nil {
		log.Println(err)
		printer{os.Stderr, translator}.failure(err)
		return exitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(config, translator)
	root.SetArgs(os.Args[1:])
	err = root.ExecuteContext(ctx)
	if err != nil {
		log.Println(err)
		printer{os.Stderr, translator}.failure(err)
	}
	return exitCode(err)
}

func newRootCommand(config *Config, translator *Translator) *cobra.Command {
	root := &cobra.Command{
		Use:           "termux-installer",
		Short:         translator.Get("cli_short"),
		Long:          translator.Get("cli_long"),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, config, translator, false)
		},
	}
	flags := root.PersistentFlags()
	flags.BoolVar(&config.DryRun, "dry-run", false, translator.Get("cli_help_dryrun"))
	flags.StringVar(&config.InstallDir, "dir", config.InstallDir, translator.Get("cli_help_dir"))
	flags.StringVar(&config.Branch, "branch", config.Branch, translator.Get("cli_help_branch"))
	flags.StringVar(&config.RepoURL, "repo", config.RepoURL, translator.Get("cli_help_repo"))
	flags.BoolVar(&config.FullUpgrade, "full-upgrade", config.FullUpgrade, translator.Get("cli_help_fullupgrade"))
	flags.StringVar((*string)(&config.EnvMode), "env-mode", string(config.EnvMode), translator.Get("cli_help_envmode"))
	lang := flags.String("lang", config.Language, translator.Get("cli_help_lang")+" ("+languageOptions(translator)+")")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *lang != "" {
			if err := translator.SetLanguage(*lang); err != nil {
				log.Printf("Language '%s' not available", *lang)
				fmt.Fprintf(cmd.ErrOrStderr(), "Language '%s' not available\n", *lang)
			}
		}
		if err := config.Validate(); err != nil {
			return err
		}
		translator.SetVariables(config.Variables())
		log.Printf("Settings: repo=%s branch=%s dir=%s full-upgrade=%v env-mode=%s dry-run=%v lang=%s",
			config.RepoURL, config.Branch, config.InstallDir, config.FullUpgrade, config.EnvMode,
			config.DryRun, translator.GetLanguage())
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "env",
			Short: translator.Get("cli_env_short"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInstall(cmd, config, translator, true)
			},
		},
		&cobra.Command{
			Use:   "doctor",
			Short: translator.Get("cli_doctor_short"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDoctor(cmd, config, translator)
			},
		},
	)
	return root
}

func runInstall(cmd *cobra.Command, config *Config, translator *Translator, envOnly bool) error {
	out := cmd.OutOrStdout()
	p := printer{out, translator}
	runner := NewExecRunner()
	runner.DryRun = config.DryRun
	runner.Echo = p.command

	installer := NewInstaller(config, runner, translator)
	installer.Out = out
	installer.SetProgressFunction(p.progress)
	input, closeInput := openEnvInput(config.EnvMode)
	defer closeInput()
	installer.EnvInput = input

	if envOnly {
		if !config.DryRun {
			if err := os.MkdirAll(config.InstallDir, 0755); err != nil {
				return err
			}
		}
		return installer.InstallEnvFile(cmd.Context())
	}
	if err := installer.Install(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if config.DryRun {
		p.header(translator.Get("done_dryrun"))
		return nil
	}
	p.header(translator.Get("done_header"))
	fmt.Fprintln(out, translator.Get("done_run"))
	return nil
}

func runDoctor(cmd *cobra.Command, config *Config, translator *Translator) error {
	p := printer{cmd.OutOrStdout(), translator}
	p.header(translator.Get("doctor_header"))
	results := (&Doctor{Config: config, Translator: translator}).Run()
	p.checks(results)
	if !Healthy(results) {
		return errors.New("environment check failed")
	}
	return nil
}

// openEnvInput picks where .env lines are read from. Stdin is used when it is a
// terminal; when it isn't (the installer was piped into a shell), the controlling
// terminal is tried. In auto mode without any terminal nil is returned, which makes
// the installer write a template. Prompt mode falls back to stdin, so answers can be
// piped in.
func openEnvInput(mode EnvFileMode) (io.Reader, func()) {
	noop := func() {}
	if mode == EnvModeTemplate {
		return nil, noop
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return os.Stdin, noop
	}
	if tty, err := os.Open(ttyPath); err == nil {
		if term.IsTerminal(int(tty.Fd())) {
			return tty, func() { tty.Close() }
		}
		tty.Close()
	}
	if mode == EnvModePrompt {
		return os.Stdin, noop
	}
	return nil, noop
}

// languageOptions lists the available languages for the --lang help, e.g.
// "en English, ru Русский".
func languageOptions(translator *Translator) string {
	options := []string{}
	for _, lang := range translator.GetLanguages() {
		options = append(options, lang+" "+translator.GetLanguageName(lang))
	}
	return strings.Join(options, ", ")
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInputAborted), errors.Is(err, ErrEmptyConfig):
		return ExitInput
	case errors.Is(err, ErrInvalidSetting):
		return ExitSetting
	default:
		return ExitFailed
	}
}

// startLogging sets up the logging. If the log file can't be opened, log output is
// discarded and nil is returned.
func startLogging(logFilename string) *os.File {
	log.SetFlags(log.Ldate | log.Ltime)
	logfile, err := os.OpenFile(logFilename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(logfile)
	return logfile
}

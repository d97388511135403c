package termux_installer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const maxLineLen = 80

var (
	colorAccent  = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#06B6D4")

	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)

func markSuccess() string { return successStyle.Render("✓") }
func markWarning() string { return warningStyle.Render("!") }
func markFailure() string { return errorStyle.Render("✗") }

// printer renders installer progress for a terminal.
type printer struct {
	out        io.Writer
	translator *Translator
}

func (p printer) header(text string) {
	fmt.Fprintln(p.out, headerStyle.Render(text))
}

// progress is the installer's progress function.
func (p printer) progress(status InstallStatus) {
	switch {
	case status.Finished:
	case status.Warning != "":
		fmt.Fprintf(p.out, "      %s %s\n", markWarning(), warningStyle.Render(status.Warning))
	case !status.Done:
		fmt.Fprintf(p.out, "%s %s\n",
			dimStyle.Render(fmt.Sprintf("[%d/%d]", status.Index, status.Total)),
			p.translator.Get(status.Step))
	case status.Skipped:
		fmt.Fprintf(p.out, "      %s %s\n", markSuccess(), dimStyle.Render(p.translator.Get("status_skipped")))
	default:
		fmt.Fprintf(p.out, "      %s %s\n", markSuccess(), p.translator.Get("status_done"))
	}
}

// command echoes a command line before it runs, shortened to one terminal line.
func (p printer) command(cmd Command) {
	line := []rune(cmd.String())
	if len(line) > maxLineLen {
		line = append(line[:maxLineLen-3], []rune("...")...)
	}
	fmt.Fprintln(p.out, dimStyle.Render("      $ "+string(line)))
}

func (p printer) failure(err error) {
	fmt.Fprintf(p.out, "%s %s %v\n", markFailure(), errorStyle.Render(p.translator.Get("failed")), err)
}

func (p printer) checks(results []CheckResult) {
	width := 0
	for _, r := range results {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}
	for _, r := range results {
		mark := markSuccess()
		switch r.Status {
		case CheckWarn:
			mark = markWarning()
		case CheckFail:
			mark = markFailure()
		}
		name := r.Name + strings.Repeat(" ", width-len(r.Name))
		fmt.Fprintf(p.out, "  %s %s  %s\n", mark, name, dimStyle.Render(r.Message))
	}
}

package termux_installer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// ErrInputAborted is returned when the input ends or is interrupted before the
	// terminating blank line.
	ErrInputAborted = errors.New("configuration input aborted")
	// ErrEmptyConfig is returned when a blank line is entered before any setting.
	ErrEmptyConfig = errors.New("no configuration entered")
)

// EnvKey is one setting of the application's .env file.
type EnvKey struct {
	Name    string
	Example string
	Default string
}

// EnvSchema lists the keys the application reads, in file order.
var EnvSchema = []EnvKey{
	{Name: "API_ID", Example: "1234567"},
	{Name: "API_HASH", Example: "0123456789abcdef0123456789abcdef"},
	{Name: "SESSION_NAME", Example: "userbot_session", Default: "userbot_session"},
	{Name: "NTP_HOST", Example: "pool.ntp.org", Default: "pool.ntp.org"},
}

// TemplateLines returns the lines of a .env file for manual editing: every key, with
// the application's default where one exists.
func TemplateLines() []string {
	lines := make([]string, 0, len(EnvSchema))
	for _, key := range EnvSchema {
		lines = append(lines, key.Name+"="+key.Default)
	}
	return lines
}

// ExampleLines returns one example line per key, shown before prompting.
func ExampleLines() []string {
	lines := make([]string, 0, len(EnvSchema))
	for _, key := range EnvSchema {
		lines = append(lines, key.Name+"="+key.Example)
	}
	return lines
}

// ReadEnvLines reads lines from r until a line that is blank after trimming. The
// returned lines are verbatim except for a trailing carriage return. Reaching the
// end of input or cancellation of ctx before the blank line yields ErrInputAborted,
// a blank line before any content yields ErrEmptyConfig.
func ReadEnvLines(ctx context.Context, r io.Reader) ([]string, error) {
	type result struct {
		lines []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		lines, err := scanEnvLines(r)
		done <- result{lines, err}
	}()
	select {
	case res := <-done:
		return res.lines, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrInputAborted, ctx.Err())
	}
}

func scanEnvLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(lines) == 0 {
				return nil, ErrEmptyConfig
			}
			return lines, nil
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputAborted, err)
	}
	return nil, ErrInputAborted
}

// CheckEnvLines returns human readable warnings about lines that don't parse, keys
// the application doesn't know and schema keys that are missing. The lines are not
// changed and nothing here is fatal.
func CheckEnvLines(lines []string) (warnings []string) {
	known := make(map[string]bool, len(EnvSchema))
	for _, key := range EnvSchema {
		known[key.Name] = true
	}
	seen := make(map[string]bool)
	for n, line := range lines {
		values, err := godotenv.Unmarshal(line)
		if err != nil || len(values) == 0 {
			if !strings.HasPrefix(strings.TrimSpace(line), "#") {
				warnings = append(warnings, fmt.Sprintf("line %d is not KEY=VALUE: %q", n+1, line))
			}
			continue
		}
		for key := range values {
			seen[key] = true
			if !known[key] {
				warnings = append(warnings, fmt.Sprintf("line %d: unknown key %s", n+1, key))
			}
		}
	}
	for _, key := range EnvSchema {
		if !seen[key.Name] && key.Default == "" {
			warnings = append(warnings, fmt.Sprintf("%s is missing", key.Name))
		}
	}
	return warnings
}

// WriteEnvFile creates path with the given lines, each terminated by a newline. An
// existing file is never touched: the file is opened with O_EXCL, so a file that
// appeared after the existence check is reported as os.ErrExist as well.
func WriteEnvFile(path string, lines []string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err = w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadEnvFile parses an existing .env file.
func ReadEnvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// EnvPrompt asks the user for the .env content.
type EnvPrompt struct {
	In         io.Reader
	Out        io.Writer
	Translator *Translator
}

// Ask prints the expected format and reads the lines.
func (p *EnvPrompt) Ask(ctx context.Context) ([]string, error) {
	fmt.Fprintln(p.Out, p.Translator.Get("env_intro"))
	for _, line := range ExampleLines() {
		fmt.Fprintln(p.Out, line)
	}
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, p.Translator.Get("env_finish"))
	lines, err := ReadEnvLines(ctx, p.In)
	switch {
	case errors.Is(err, ErrInputAborted):
		fmt.Fprintln(p.Out)
		fmt.Fprintln(p.Out, p.Translator.Get("env_aborted"))
	case errors.Is(err, ErrEmptyConfig):
		fmt.Fprintln(p.Out, p.Translator.Get("env_empty"))
	}
	return lines, err
}

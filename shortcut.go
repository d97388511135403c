package termux_installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	shortcutTemplateFile = "shortcut.sh.tmpl"
	// Termux:Widget lists the scripts in this directory.
	shortcutDir   = ".shortcuts"
	termuxPrefix  = "/data/data/com.termux/files/usr"
	shortcutPerms = 0700
)

// ShortcutPath is where the widget launcher for the given config is written.
func ShortcutPath(config *Config, home string) string {
	return filepath.Join(home, shortcutDir, config.ShortcutName)
}

// shortcutShell picks the interpreter line for the launcher script. Termux has no
// /bin/sh, so it is taken from $PREFIX when set.
func shortcutShell(prefix string) string {
	if prefix == "" {
		if _, err := os.Stat(termuxPrefix); err == nil {
			prefix = termuxPrefix
		}
	}
	if prefix == "" {
		return "/bin/sh"
	}
	return filepath.Join(prefix, "bin", "sh")
}

// osCreateShortcut writes the launcher script unless it already exists. It returns
// false if an existing file was left alone.
func osCreateShortcut(path string, variables ...StringMap) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	template, err := GetResource(shortcutTemplateFile)
	if err != nil {
		return false, err
	}
	content := ExpandVariables(template, MergeVariables(variables...))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("shortcut directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, shortcutPerms)
	if err != nil {
		return false, err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return false, err
	}
	return true, f.Close()
}

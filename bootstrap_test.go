//go:build unix

package termux_installer

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapScript = "install.sh"

func TestBootstrapScriptSyntax(t *testing.T) {
	out, err := exec.Command("sh", "-n", bootstrapScript).CombinedOutput()
	require.NoError(t, err, string(out))

	script, err := os.ReadFile(bootstrapScript)
	require.NoError(t, err)
	assert.Contains(t, string(script), `exec termux-installer "$@" </dev/tty`)
}

func TestBootstrapScriptPassesSettingsThrough(t *testing.T) {
	home := t.TempDir()
	binDir := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	fake := "#!/bin/sh\nprintf '%s|%s|%s|%s|%s\\n' \"$REPO_URL\" \"$BRANCH\" \"$INSTALL_DIR\" \"$FULL_UPGRADE\" \"$*\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "termux-installer"), []byte(fake), 0755))

	cmd := exec.Command("sh", bootstrapScript, "--dry-run", "--lang", "ru")
	cmd.Env = []string{
		"PATH=/usr/bin:/bin",
		"HOME=" + home,
		"BIN_DIR=" + binDir,
		"REPO_URL=https://example.com/fork.git",
		"BRANCH=dev",
		"INSTALL_DIR=" + filepath.Join(home, "app"),
		"FULL_UPGRADE=1",
	}
	out := &bytes.Buffer{}
	cmd.Stdout = out
	cmd.Stderr = out
	require.NoError(t, cmd.Run(), out.String())

	assert.Equal(t,
		"https://example.com/fork.git|dev|"+filepath.Join(home, "app")+"|1|--dry-run --lang ru",
		strings.TrimSpace(out.String()))
}

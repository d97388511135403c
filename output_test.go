package termux_installer

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPrinterCommandTruncatesByRune(t *testing.T) {
	out := &bytes.Buffer{}
	p := printer{out: out, translator: testTranslator(t, StringMap{})}
	dir := "/data/data/com.termux/files/home/папка/проект/юзербот/очень/длинный/путь/к/каталогу"
	p.command(Command{Name: "git", Args: []string{"clone", "--depth", "1", "https://example.com/r.git", dir}})

	line := strings.TrimSpace(out.String())
	assert.True(t, utf8.ValidString(line))
	assert.True(t, strings.HasSuffix(line, "..."))
	assert.Equal(t, maxLineLen, utf8.RuneCountInString(strings.TrimPrefix(line, "$ ")))
}

func TestPrinterCommandShortLine(t *testing.T) {
	out := &bytes.Buffer{}
	p := printer{out: out, translator: testTranslator(t, StringMap{})}
	p.command(Command{Name: "pkg", Args: []string{"update", "-y"}})
	assert.Equal(t, "      $ pkg update -y\n", out.String())
}

package termux_installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandVariables(t *testing.T) {
	vars := StringMap{"name": "bot", "dir": "/my dir"}
	assert.Equal(t, "hello bot", ExpandVariables("hello {{.name}}", vars))
	assert.Equal(t, "BOT", ExpandVariables("{{upper .name}}", vars))
	assert.Equal(t, "cd '/my dir'", ExpandVariables("cd {{quote .dir}}", vars))
	assert.Equal(t, "missing: ", ExpandVariables("missing: {{.nope}}", vars))
	assert.Equal(t, "broken {{.name", ExpandVariables("broken {{.name", vars))
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(StringMap{"a": "1", "b": "1"}, StringMap{"b": "2"}, nil)
	assert.Equal(t, StringMap{"a": "1", "b": "2"}, merged)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "plain/path-1.2", shellQuote("plain/path-1.2"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'a b'", shellQuote("a b"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
	assert.Equal(t, "'$HOME'", shellQuote("$HOME"))
}

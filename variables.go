package termux_installer

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"text/template"
)

type StringMap map[string]string

// ExpandVariables takes a string with template variables like {{.var}} and expands them
// with the given map. Unknown variables expand to the empty string. If the template is
// invalid the input is returned unchanged.
func ExpandVariables(str string, variables StringMap) (expanded string) {
	functions := template.FuncMap{
		"replace": func(from, to, input string) string { return strings.Replace(input, from, to, -1) },
		"trim":    func(input string) string { return strings.Trim(input, " \r\n\t") },
		"upper":   func(input string) string { return strings.ToUpper(input) },
		"lower":   func(input string) string { return strings.ToLower(input) },
		"quote":   shellQuote,
	}
	templ, err := template.New("").Option("missingkey=zero").Funcs(functions).Parse(str)
	if err != nil {
		log.Println(fmt.Sprintf("Invalid string template: '%s'", err))
		return str
	}
	var buf bytes.Buffer
	err = templ.Execute(&buf, map[string]string(variables))
	if err != nil {
		log.Println(fmt.Sprintf("Error executing template: '%s'", err))
		return str
	}
	return buf.String()
}

// MergeVariables combines several variable maps into a single one. Duplicate keys will
// be overridden by the value in the last map which has the key.
func MergeVariables(varMaps ...StringMap) StringMap {
	merged := make(StringMap)
	for _, vars := range varMaps {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}

// shellQuote wraps s in single quotes for POSIX sh, escaping embedded single quotes.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./:=@+,%", r):
		return false
	}
	return true
}

package options

import (
	"strings"
	"unicode"
)

// Flags the bootstrap consumes itself. Anything else in the argument
// vector passes through to the hosted server unexamined.
const (
	FlagProgramData = "programdata"
	FlagVersion     = "v"
	FlagRestartPath = "restartpath"
	FlagRestartArgs = "restartargs"
)

// Options is the parsed argument vector: a flag-to-optional-value map
// plus the raw arguments retained for restart reconstruction. Built
// once at process entry, read-only afterwards.
type Options struct {
	values map[string]string
	raw    []string
}

// Parse scans args (the argument vector minus the program name). A
// token starting with '-' names a flag; the following token is its
// value unless it is itself a flag.
func Parse(args []string) *Options {
	o := &Options{
		values: make(map[string]string),
		raw:    append([]string(nil), args...),
	}
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if !strings.HasPrefix(tok, "-") {
			continue
		}
		name := strings.TrimLeft(tok, "-")
		if name == "" {
			continue
		}
		value := ""
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			value = args[i+1]
			i++
		}
		o.values[name] = value
	}
	return o
}

// Has reports whether the flag appeared at all, with or without a value.
func (o *Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Value returns the flag's value, or "" when absent or valueless.
func (o *Options) Value(name string) string {
	return o.values[name]
}

// Raw returns a copy of the original arguments minus the program name.
func (o *Options) Raw() []string {
	return append([]string(nil), o.raw...)
}

// QuoteArgs renders an argument vector as a single command-line string.
// An argument is quoted iff it contains whitespace.
func QuoteArgs(args []string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if strings.ContainsFunc(a, unicode.IsSpace) {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// SplitArgs is the inverse of QuoteArgs: it splits a command-line
// string on whitespace, honoring double quotes.
func SplitArgs(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	o := Parse([]string{"-programdata", "/tmp/data", "-v", "-restartargs", "-noautorunwebapp", "positional"})

	assert.True(t, o.Has(FlagProgramData))
	assert.Equal(t, "/tmp/data", o.Value(FlagProgramData))

	assert.True(t, o.Has(FlagVersion))
	assert.Equal(t, "", o.Value(FlagVersion))

	// The token after -restartargs starts with '-', so it is a flag of
	// its own, not a value.
	assert.True(t, o.Has(FlagRestartArgs))
	assert.Equal(t, "", o.Value(FlagRestartArgs))
	assert.True(t, o.Has("noautorunwebapp"))

	assert.False(t, o.Has(FlagRestartPath))
	assert.Equal(t, "", o.Value("missing"))
}

func TestParseKeepsRawArgs(t *testing.T) {
	args := []string{"-programdata", "/tmp/my data", "-ffmpeg", "/usr/bin/ffmpeg"}
	o := Parse(args)
	assert.Equal(t, args, o.Raw())

	// Raw returns a copy; mutating it must not leak back.
	raw := o.Raw()
	raw[0] = "mutated"
	assert.Equal(t, args, o.Raw())
}

func TestParseDoubleDash(t *testing.T) {
	o := Parse([]string{"--programdata", "/srv/lumen"})
	assert.Equal(t, "/srv/lumen", o.Value(FlagProgramData))
}

func TestQuoteArgs(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"foo bar"}, `"foo bar"`},
		{[]string{"--flag=1"}, "--flag=1"},
		{[]string{"-programdata", "/tmp/my data", "--flag=1"}, `-programdata "/tmp/my data" --flag=1`},
		{[]string{"tab\there"}, "\"tab\there\""},
		{nil, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QuoteArgs(tc.in), "args=%v", tc.in)
	}
}

func TestSplitArgsRoundTrip(t *testing.T) {
	args := []string{"-programdata", "/tmp/my data", "--flag=1", "plain"}
	assert.Equal(t, args, SplitArgs(QuoteArgs(args)))
	assert.Nil(t, SplitArgs(""))
	assert.Nil(t, SplitArgs("   "))
}

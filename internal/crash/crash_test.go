package crash

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenserver/lumen/internal/apppaths"
)

func TestShouldExit(t *testing.T) {
	cases := []struct {
		name     string
		rendered string
		debugger bool
		want     bool
	}{
		{"plain fault", "runtime error: index out of range", false, true},
		{"plain fault with debugger", "runtime error: index out of range", true, false},
		{"watcher fault", "media library watcher: inotify overflow", false, false},
		{"io completion fault", "disk io completion callback failed", false, false},
		{"watcher-adjacent but different", "library scan failed", false, true},
		{"empty message", "", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldExit(tc.rendered, tc.debugger))
		})
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "boom", Render(errors.New("boom")))
	assert.Equal(t, "boom", Render("boom"))
	assert.Equal(t, "42", Render(42))
}

type codedFault struct{ code int }

func (f codedFault) Error() string { return "coded fault" }
func (f codedFault) ExitCode() int { return f.code }

func TestCode(t *testing.T) {
	assert.Equal(t, 1, Code(errors.New("boom")))
	assert.Equal(t, 1, Code("boom"))
	assert.Equal(t, 7, Code(codedFault{code: 7}))
	assert.Equal(t, 7, Code(fmt.Errorf("startup: %w", codedFault{code: 7})))
}

func TestHandleSuppressedFaultDoesNotExit(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter()
	exited := false
	r.exit = func(int) { exited = true }
	p, err := apppaths.Resolve("/opt/lumen/bin/lumen", dir)
	require.NoError(t, err)
	r.SetPaths(p)

	r.Handle(errors.New("media library watcher: lost path"), nil)
	assert.False(t, exited)

	// The report is still written for suppressed faults.
	reports, err := filepath.Glob(filepath.Join(p.Log, "crash-*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	b, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	var rep Report
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Contains(t, rep.Fault, "media library watcher")
	assert.NotEmpty(t, rep.Version)
}

func TestHandleFatalFaultExitsWithCode(t *testing.T) {
	r := NewReporter()
	if DebuggerAttached() {
		t.Skip("debugger attached, exit decision differs")
	}
	code := -1
	r.exit = func(c int) { code = c }
	r.SetPaths(apppaths.Paths{Log: t.TempDir()})

	r.Handle(codedFault{code: 3}, []byte("goroutine 1 [running]"))
	assert.Equal(t, 3, code)
}

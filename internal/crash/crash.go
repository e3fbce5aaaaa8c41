// Package crash is the process-wide fault boundary: it persists a
// diagnostic report for faults nothing else caught and then decides
// whether the process lives or dies.
package crash

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/lumenserver/lumen/internal/apppaths"
	"github.com/lumenserver/lumen/internal/version"
)

// ExitCoder lets a fault carry the exit status the process should
// terminate with.
type ExitCoder interface {
	ExitCode() int
}

// Report is the persisted diagnostic record for an unhandled fault.
type Report struct {
	Time          time.Time `json:"time"`
	Version       string    `json:"version"`
	Fault         string    `json:"fault"`
	Stack         string    `json:"stack,omitempty"`
	OS            string    `json:"os,omitempty"`
	Platform      string    `json:"platform,omitempty"`
	KernelVersion string    `json:"kernel_version,omitempty"`
}

// Reporter handles faults at the process boundary. It is registered
// before any other startup work and may run on any goroutine, so it
// never assumes the lifecycle state machine is in a particular phase.
// Paths are attached later, once resolved; until then reports land in
// the system temp directory.
type Reporter struct {
	paths atomic.Pointer[apppaths.Paths]
	exit  func(int)
}

func NewReporter() *Reporter {
	return &Reporter{exit: os.Exit}
}

// SetPaths attaches the resolved application paths so reports land in
// the log directory.
func (r *Reporter) SetPaths(p apppaths.Paths) {
	r.paths.Store(&p)
}

// Recover is deferred at the top of every goroutine the bootstrap owns.
func (r *Reporter) Recover() {
	if v := recover(); v != nil {
		r.Handle(v, debug.Stack())
	}
}

// Handle captures the fault, writes the diagnostic report best-effort,
// and governs process exit.
func (r *Reporter) Handle(fault any, stack []byte) {
	msg := Render(fault)
	log.Error().Str("fault", msg).Msg("unhandled fault")
	if path, err := r.write(msg, stack); err != nil {
		log.Error().Err(err).Msg("crash report write failed")
	} else {
		log.Info().Str("report", path).Msg("crash report written")
	}
	if !ShouldExit(msg, DebuggerAttached()) {
		log.Warn().Str("fault", msg).Msg("fault suppressed, process continues")
		return
	}
	r.exit(Code(fault))
}

func (r *Reporter) write(msg string, stack []byte) (string, error) {
	rep := Report{
		Time:    time.Now().UTC(),
		Version: version.Version,
		Fault:   msg,
		Stack:   string(stack),
	}
	if hi, err := host.Info(); err == nil {
		rep.OS = hi.OS
		rep.Platform = hi.Platform
		rep.KernelVersion = hi.KernelVersion
	}
	dir := os.TempDir()
	if p := r.paths.Load(); p != nil {
		dir = p.Log
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%d.json", rep.Time.UnixNano()))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	return path, os.Rename(tmp, path)
}

// Render produces the fault's message string.
func Render(fault any) string {
	switch f := fault.(type) {
	case error:
		return f.Error()
	case string:
		return f
	default:
		return fmt.Sprintf("%v", f)
	}
}

// Faults from these background subsystems are logged but must not take
// the process down; both fail transiently on some platforms. Matched
// by substring on the rendered message, nothing cleverer.
var benignSignatures = []string{
	"media library watcher",
	"io completion callback",
}

// ShouldExit decides whether a fault forces process exit. An attached
// debugger always suppresses the exit so the fault can be inspected.
func ShouldExit(rendered string, debuggerAttached bool) bool {
	if debuggerAttached {
		return false
	}
	for _, sig := range benignSignatures {
		if strings.Contains(rendered, sig) {
			return false
		}
	}
	return true
}

// Code maps a fault to the process exit status.
func Code(fault any) int {
	if ec, ok := fault.(ExitCoder); ok {
		return ec.ExitCode()
	}
	if err, ok := fault.(error); ok {
		var ec ExitCoder
		if errors.As(err, &ec) {
			return ec.ExitCode()
		}
	}
	return 1
}

// Package lifecycle drives the bootstrap state sequence:
// initializing -> running -> shutting_down -> terminated.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lumenserver/lumen/internal/apppaths"
	"github.com/lumenserver/lumen/internal/crash"
	"github.com/lumenserver/lumen/internal/host"
	"github.com/lumenserver/lumen/internal/metrics"
	"github.com/lumenserver/lumen/internal/options"
	"github.com/lumenserver/lumen/internal/platform"
	"github.com/lumenserver/lumen/internal/storage"
	"github.com/lumenserver/lumen/internal/version"
)

// State of the bootstrap. Transitions are monotonic and one-directional.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StateShuttingDown State = "shutting_down"
	StateTerminated   State = "terminated"
)

// Builder constructs the application host once paths and environment
// are known.
type Builder func(host.Params) host.Host

// Controller owns the lifecycle state, the shutdown signal and the
// restart intent for the lifetime of the process. One instance per
// process; Run must not be called twice.
type Controller struct {
	opts     *options.Options
	builder  Builder
	reporter *crash.Reporter

	mu      sync.Mutex
	state   State
	restart bool

	fireOnce sync.Once
	signal   chan struct{}

	// Stubbed in tests.
	executable func() (string, error)
	spawn      func(path string, args []string) error
}

// New creates the controller. opts is the parsed argument vector and
// builder produces the host to drive.
func New(opts *options.Options, builder Builder, reporter *crash.Reporter) *Controller {
	return &Controller{
		opts:       opts,
		builder:    builder,
		reporter:   reporter,
		state:      StateInitializing,
		signal:     make(chan struct{}),
		executable: os.Executable,
		spawn:      spawnDetached,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	metrics.ObserveState(string(s))
	log.Info().Str("state", string(s)).Msg("state change")
}

// Shutdown fires the shutdown signal. Safe to call from any goroutine,
// any number of times; only the first call transitions the signal.
func (c *Controller) Shutdown() {
	c.fireOnce.Do(func() { close(c.signal) })
}

// Restart records the restart intent and then shuts down. The intent
// is honored as long as it lands before host disposal completes.
func (c *Controller) Restart() {
	c.mu.Lock()
	if !c.restart {
		c.restart = true
		metrics.IncRestarts()
	}
	c.mu.Unlock()
	c.Shutdown()
}

// Run executes the full lifecycle: construct and start the host, block
// until the shutdown signal, dispose the host, then spawn the restart
// successor if one was requested. Returns nil on a clean exit; any
// error is a fatal startup failure.
func (c *Controller) Run(ctx context.Context) error {
	// The storage engine must be selected before any persistent-storage
	// access. Idempotent, so repeated bootstraps are harmless.
	storage.Register(storage.SQLite{})

	exe, err := c.executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	paths, err := apppaths.Resolve(exe, c.opts.Value(options.FlagProgramData))
	if err != nil {
		return err
	}
	c.reporter.SetPaths(paths)

	env := platform.Probe()
	h := c.builder(host.NewParams(paths, env))

	if c.opts.Has(options.FlagVersion) {
		fmt.Printf("lumen %s (%s)\n", h.Version(), version.Commit)
		_ = h.Close()
		c.setState(StateTerminated)
		return nil
	}

	// Two-phase startup, each awaited to completion. No watchdog: a
	// hang here blocks forever.
	if err := h.Init(ctx, logProgress); err != nil {
		_ = h.Close()
		return fmt.Errorf("host init: %w", err)
	}
	if err := h.RunStartupTasks(ctx); err != nil {
		_ = h.Close()
		return fmt.Errorf("host startup tasks: %w", err)
	}
	c.setState(StateRunning)

	<-c.signal

	c.setState(StateShuttingDown)
	if err := h.Close(); err != nil {
		log.Error().Err(err).Msg("host close error")
	}

	// Read only after the host is fully torn down, so the successor
	// never races us for ports, lock files or the data directory.
	c.mu.Lock()
	restart := c.restart
	c.mu.Unlock()
	c.setState(StateTerminated)

	if restart {
		path, args := c.resolveRestart(exe)
		log.Info().Str("path", path).Strs("args", args).Msg("spawning restart successor")
		if err := c.spawn(path, args); err != nil {
			// Single-shot: log and exit anyway, no retry.
			log.Error().Err(err).Msg("restart spawn failed")
		}
	}
	return nil
}

// resolveRestart picks the successor's executable and arguments:
// explicit overrides win, otherwise the original invocation is
// reconstructed with space-containing arguments re-quoted.
func (c *Controller) resolveRestart(exe string) (string, []string) {
	path := c.opts.Value(options.FlagRestartPath)
	if path == "" {
		path = exe
	}
	var argLine string
	if c.opts.Has(options.FlagRestartArgs) {
		argLine = c.opts.Value(options.FlagRestartArgs)
	} else {
		argLine = options.QuoteArgs(c.opts.Raw())
	}
	return path, options.SplitArgs(argLine)
}

func logProgress(percent float64) {
	log.Debug().Float64("percent", percent).Msg("startup progress")
}

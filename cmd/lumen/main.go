package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumenserver/lumen/internal/crash"
	"github.com/lumenserver/lumen/internal/host"
	"github.com/lumenserver/lumen/internal/lifecycle"
	"github.com/lumenserver/lumen/internal/options"
	"github.com/lumenserver/lumen/internal/version"
)

func main() {
	// The fault boundary comes first so no startup failure window is
	// uncovered. Paths are attached once the controller resolves them.
	reporter := crash.NewReporter()
	defer reporter.Recover()

	opts := options.Parse(os.Args[1:])
	setupLogging(opts)

	ctrl := lifecycle.New(opts, func(p host.Params) host.Host {
		return host.NewCore(p)
	}, reporter)

	// SIGINT/SIGTERM feed the controller's shutdown signal; the hosted
	// server can call Shutdown/Restart itself from any goroutine.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer reporter.Recover()
		if sig, ok := <-sigCh; ok {
			log.Info().Str("signal", sig.String()).Msg("shutdown signal received, draining...")
			ctrl.Shutdown()
		}
	}()

	log.Info().Str("version", version.Version).Str("commit", version.Commit).Msg("lumen starting")
	if err := ctrl.Run(context.Background()); err != nil {
		// Startup failures surface at the fault boundary like any other
		// unhandled fault: diagnosed, persisted, then the process dies.
		reporter.Handle(err, debug.Stack())
		return
	}
	log.Info().Msg("bye")
}

func setupLogging(opts *options.Options) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.Has("loglevel") {
		if lvl, err := zerolog.ParseLevel(opts.Value("loglevel")); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

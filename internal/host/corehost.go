package host

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lumenserver/lumen/internal/config"
	"github.com/lumenserver/lumen/internal/metrics"
	"github.com/lumenserver/lumen/internal/storage"
	"github.com/lumenserver/lumen/internal/version"
)

// Core is the in-tree application host: enough of the server to boot,
// serve health and metrics, and hold the storage engine open.
type Core struct {
	params Params
	cfg    config.Config
	db     *sql.DB

	srv          *http.Server
	addr         atomic.Value // string, set once the listener is bound
	releasePower func()
	stopSampler  context.CancelFunc
	closed       atomic.Bool
}

// NewCore creates the core host. Nothing is opened until Init.
func NewCore(p Params) *Core {
	return &Core{params: p}
}

func (c *Core) Version() *semver.Version { return version.Semver() }

// Init creates the writable directories, loads configuration, and opens
// the storage engine through the registered provider.
func (c *Core) Init(ctx context.Context, progress Progress) error {
	if progress == nil {
		progress = func(float64) {}
	}
	paths := c.params.Paths
	for _, dir := range []string{paths.Data, paths.Temp, paths.Log, paths.ConfigDir()} {
		if err := c.params.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	progress(25)

	cfg, err := config.Load(filepath.Join(paths.ConfigDir(), "server.toml"))
	if err != nil {
		return err
	}
	c.cfg = cfg
	progress(60)

	provider := storage.Active()
	if provider == nil {
		return errors.New("no storage provider registered")
	}
	db, err := provider.Open(filepath.Join(paths.Data, cfg.Database.File))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	c.db = db
	progress(100)

	log.Info().
		Str("os", string(c.params.Env.OS)).
		Str("arch", string(c.params.Env.Arch)).
		Str("data", paths.Data).
		Strs("image_formats", c.params.Images.SupportedFormats()).
		Msg("host initialized")
	return nil
}

// RunStartupTasks starts the health/metrics listener and the process
// sampler, and engages the sleep inhibitor.
func (c *Core) RunStartupTasks(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q,"time_utc":%q}`,
			version.Version, time.Now().UTC().Format(time.RFC3339))
	})
	mux.Handle("/metrics", promhttp.Handler())

	ln, err := net.Listen("tcp", c.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.cfg.HTTPAddr, err)
	}
	c.addr.Store(ln.Addr().String())
	c.srv = &http.Server{Handler: mux}
	go func() {
		if err := c.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	if ips, err := c.params.Network.LocalAddresses(); err == nil {
		log.Info().Str("addr", ln.Addr().String()).Int("interfaces", len(ips)).Msg("server reachable")
	} else {
		log.Warn().Err(err).Msg("could not enumerate local addresses")
	}

	c.releasePower = c.params.Power.PreventSleep()

	sctx, cancel := context.WithCancel(context.Background())
	c.stopSampler = cancel
	go metrics.SampleSelf(sctx)
	return nil
}

// HTTPAddr returns the bound listen address, or "" before startup.
func (c *Core) HTTPAddr() string {
	if v := c.addr.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// Close releases everything the host owns. Idempotent.
func (c *Core) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.stopSampler != nil {
		c.stopSampler()
	}
	if c.releasePower != nil {
		c.releasePower()
	}
	if c.srv != nil {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.srv.Shutdown(shutCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown error")
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	log.Info().Msg("host closed")
	return nil
}

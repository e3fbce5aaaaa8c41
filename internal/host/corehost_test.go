package host

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenserver/lumen/internal/apppaths"
	"github.com/lumenserver/lumen/internal/platform"
	"github.com/lumenserver/lumen/internal/storage"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	storage.Register(storage.SQLite{})

	data := t.TempDir()
	paths, err := apppaths.Resolve("/opt/lumen/bin/lumen", data)
	require.NoError(t, err)

	// Port 0 so parallel test runs never collide.
	require.NoError(t, os.MkdirAll(paths.ConfigDir(), 0o755))
	cfgFile := filepath.Join(paths.ConfigDir(), "server.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`http_addr = "127.0.0.1:0"`), 0o644))

	return NewCore(NewParams(paths, platform.Descriptor{OS: platform.OSLinux, Arch: platform.ArchX64}))
}

func TestCoreInit(t *testing.T) {
	c := newTestCore(t)
	t.Cleanup(func() { _ = c.Close() })

	var seen []float64
	err := c.Init(context.Background(), func(p float64) { seen = append(seen, p) })
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	assert.Equal(t, float64(100), seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1], "progress must not go backwards")
	}

	assert.Equal(t, "127.0.0.1:0", c.cfg.HTTPAddr)
	require.NotNil(t, c.db)
	assert.NoError(t, c.db.Ping())

	// Writable directories exist after Init.
	for _, dir := range []string{c.params.Paths.Temp, c.params.Paths.Log} {
		st, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
}

func TestCoreServesHealthAndMetrics(t *testing.T) {
	c := newTestCore(t)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Init(context.Background(), nil))
	require.NoError(t, c.RunStartupTasks(context.Background()))
	require.NotEmpty(t, c.HTTPAddr())

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", c.HTTPAddr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	resp, err = http.Get(fmt.Sprintf("http://%s/metrics", c.HTTPAddr()))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "lumen_process_cpu_percent")
	assert.Contains(t, string(body), "lumen_lifecycle_restarts_total")
}

func TestCoreCloseIdempotent(t *testing.T) {
	c := newTestCore(t)
	require.NoError(t, c.Init(context.Background(), nil))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestCoreInitRejectsInvalidConfig(t *testing.T) {
	c := newTestCore(t)
	t.Cleanup(func() { _ = c.Close() })
	cfgFile := filepath.Join(c.params.Paths.ConfigDir(), "server.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`log_level = "loud"`), 0o644))

	err := c.Init(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestCoreVersion(t *testing.T) {
	c := newTestCore(t)
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Version())
}

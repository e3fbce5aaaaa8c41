package metrics

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/process"
)

var (
	selfCPU = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "lumen", Subsystem: "process", Name: "cpu_percent", Help: "Server process CPU percent"},
	)
	selfRSS = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "lumen", Subsystem: "process", Name: "memory_rss_bytes", Help: "Server process RSS bytes"},
	)
)

// SampleSelf samples the server's own CPU and RSS once per second until
// the context is canceled.
func SampleSelf(ctx context.Context) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	// Warm-up for CPU percent baseline
	_, _ = p.CPUPercentWithContext(ctx)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
				selfCPU.Set(cpu)
			}
			if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
				selfRSS.Set(float64(mi.RSS))
			}
		}
	}
}

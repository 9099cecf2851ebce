package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/wumbolauncher/wumbo/internal/config"
)

// Manager collects loader metrics into its own registry and writes them as a
// Prometheus textfile. A nil *Manager is valid and records nothing.
type Manager struct {
	path string
	reg  *prometheus.Registry

	pagesFetched  prometheus.Counter
	pageDuration  prometheus.Histogram
	rowsAdmitted  prometheus.Counter
	rowsExcluded  prometheus.Counter
	reloads       *prometheus.CounterVec
	cacheRows     prometheus.Gauge
	lastReloadSec prometheus.Gauge
	written       prometheus.Gauge
}

// New returns nil unless the textfile exporter is enabled in cfg.
func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.PrometheusTextfile.Enabled || cfg.Metrics.PrometheusTextfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.PrometheusTextfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return NewWithPath(p)
}

// NewWithPath builds a manager writing to path.
func NewWithPath(path string) *Manager {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Manager{
		path: path,
		reg:  reg,
		pagesFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "wumbo_pages_fetched_total",
			Help: "Total catalog pages fetched.",
		}),
		pageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wumbo_page_fetch_duration_seconds",
			Help:    "Time spent fetching one catalog page.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		rowsAdmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "wumbo_rows_admitted_total",
			Help: "Rows appended to the query cache.",
		}),
		rowsExcluded: f.NewCounter(prometheus.CounterOpts{
			Name: "wumbo_rows_excluded_total",
			Help: "Rows dropped by the tag filter.",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wumbo_reloads_total",
			Help: "Reload cycles by outcome.",
		}, []string{"result"}),
		cacheRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "wumbo_cache_rows",
			Help: "Rows in the cache after the last completed reload.",
		}),
		lastReloadSec: f.NewGauge(prometheus.GaugeOpts{
			Name: "wumbo_last_reload_seconds",
			Help: "Duration of the last completed reload in seconds.",
		}),
		written: f.NewGauge(prometheus.GaugeOpts{
			Name: "wumbo_metrics_timestamp_seconds",
			Help: "UNIX timestamp when this file was written.",
		}),
	}
}

// ObservePage records one fetched page.
func (m *Manager) ObservePage(d time.Duration) {
	if m == nil { return }
	m.pagesFetched.Inc()
	m.pageDuration.Observe(d.Seconds())
}

func (m *Manager) AddAdmitted(n int) {
	if m == nil { return }
	m.rowsAdmitted.Add(float64(n))
}

func (m *Manager) AddExcluded(n int) {
	if m == nil { return }
	m.rowsExcluded.Add(float64(n))
}

// ObserveReload records the outcome of a cycle: "ok", "error" or "superseded".
func (m *Manager) ObserveReload(result string, rows int, d time.Duration) {
	if m == nil { return }
	m.reloads.WithLabelValues(result).Inc()
	if result == "ok" {
		m.cacheRows.Set(float64(rows))
		m.lastReloadSec.Set(d.Seconds())
	}
}

// Registry exposes the collectors, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil { return nil }
	return m.reg
}

// Write atomically replaces the textfile.
func (m *Manager) Write() error {
	if m == nil { return nil }
	m.written.SetToCurrentTime()
	return prometheus.WriteToTextfile(m.path, m.reg)
}

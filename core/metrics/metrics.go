package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Sync names used as label values.
const (
	SyncContent = "content"
	SyncDNS     = "dns"
)

// Content object outcomes.
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomePlanned  = "planned"
)

// Metrics holds the counters of both syncs. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	cfg            Config
	syncRuns       *prometheus.CounterVec   // sync runs by sync and status
	syncDuration   *prometheus.HistogramVec // run duration by sync
	contentObjects *prometheus.CounterVec   // content objects by outcome
	dnsChanges     *prometheus.CounterVec   // record changes by zone, kind, operation
	dnsRequests    *prometheus.CounterVec   // provider requests by operation, zone, status
}

// New creates the metrics and registers them on a fresh registry.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "pcadmin"
	}

	m := &Metrics{
		registry: registry,
		cfg:      cfg,

		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of synchronization runs",
		}, []string{"sync", "status"}),

		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of synchronization runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sync"}),

		contentObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_objects_total",
			Help:      "Storage objects handled by content sync",
		}, []string{"outcome"}),

		dnsChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dns_changes_total",
			Help:      "DNS record changes applied",
		}, []string{"zone", "kind", "operation"}),

		dnsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dns_requests_total",
			Help:      "Total DNS provider requests",
		}, []string{"operation", "zone", "status"}),
	}

	registry.MustRegister(
		m.syncRuns,
		m.syncDuration,
		m.contentObjects,
		m.dnsChanges,
		m.dnsRequests,
	)
	return m
}

// IncSyncRun counts a finished run.
func (m *Metrics) IncSyncRun(sync string, success bool) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(sync, boolToResult(success)).Inc()
}

// ObserveSyncDuration records the duration of a run.
func (m *Metrics) ObserveSyncDuration(sync string, d time.Duration) {
	if m == nil {
		return
	}
	m.syncDuration.WithLabelValues(sync).Observe(d.Seconds())
}

// IncContentObject counts a storage object by outcome.
func (m *Metrics) IncContentObject(outcome string) {
	if m == nil {
		return
	}
	m.contentObjects.WithLabelValues(outcome).Inc()
}

// AddDNSChanges counts n record changes of one kind and operation.
func (m *Metrics) AddDNSChanges(zone, kind, operation string, n int) {
	if m == nil || n <= 0 || zone == "" {
		return
	}
	m.dnsChanges.WithLabelValues(zone, kind, operation).Add(float64(n))
}

// IncDNSRequest counts a provider request.
func (m *Metrics) IncDNSRequest(operation, zone string, success bool) {
	if m == nil || zone == "" {
		return
	}
	m.dnsRequests.WithLabelValues(operation, zone, boolToResult(success)).Inc()
}

// WithRuntime adds the Go runtime and process collectors. Long-running
// processes such as the status API use it; CLI runs do not.
func (m *Metrics) WithRuntime() *Metrics {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the registry to the configured Pushgateway. It is a no-op
// when no Pushgateway is configured.
func (m *Metrics) Push(ctx context.Context) error {
	if m == nil || m.cfg.PushgatewayURL == "" {
		return nil
	}
	job := m.cfg.Job
	if job == "" {
		job = "pcadmin"
	}
	if err := push.New(m.cfg.PushgatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

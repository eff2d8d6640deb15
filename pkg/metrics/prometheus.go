package metrics

import (
	"fmt"
	"io"
	"maps"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Build outcomes used as the outcome label of builds_total.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Build metrics
	builds           *prometheus.CounterVec
	buildErrors      *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	predictionsScore prometheus.Counter
	leaderboardSize  *prometheus.GaugeVec

	// Recompute requests
	recomputeRequests  prometheus.Counter
	recomputeCoalesced prometheus.Counter

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerActiveCount  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "prono",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) labels() prometheus.Labels {
	if len(m.customLabels) == 0 {
		return nil
	}
	return maps.Clone(m.customLabels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.builds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("builds_total"),
		Help:        "Total number of leaderboard builds by outcome",
		ConstLabels: m.labels(),
	}, []string{"outcome"})

	m.buildErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("build_errors_total"),
		Help:        "Total number of failed builds by error kind",
		ConstLabels: m.labels(),
	}, []string{"kind"})

	m.buildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("build_duration_milliseconds"),
		Help:        "Histogram of leaderboard build duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.labels(),
	})

	m.predictionsScore = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("predictions_scored_total"),
		Help:        "Total number of predictions scored by successful builds",
		ConstLabels: m.labels(),
	})

	m.leaderboardSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("leaderboard_size"),
		Help:        "Number of ranked users in the latest leaderboard of a contest",
		ConstLabels: m.labels(),
	}, []string{"contest"})

	m.recomputeRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recompute_requests_total"),
		Help:        "Total number of asynchronous recompute requests",
		ConstLabels: m.labels(),
	})

	m.recomputeCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recompute_coalesced_total"),
		Help:        "Recompute requests folded into an already pending one",
		ConstLabels: m.labels(),
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current number of queued recompute requests",
		ConstLabels: m.labels(),
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum number of queued recompute requests",
		ConstLabels: m.labels(),
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_errors_total"),
		Help:        "Recompute requests refused because the queue was full or closed",
		ConstLabels: m.labels(),
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Number of build workers",
		ConstLabels: m.labels(),
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_active_count"),
		Help:        "Number of workers currently building",
		ConstLabels: m.labels(),
	})
}

// RecordBuild records the outcome of one build. kind is the error kind for
// failed builds and ignored otherwise.
func (m *Manager) RecordBuild(outcome, kind string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.builds.WithLabelValues(outcome).Inc()
	m.buildDuration.Observe(durationMs)
	if outcome != OutcomeSuccess {
		m.buildErrors.WithLabelValues(kind).Inc()
	}
}

// RecordPredictionsScored adds n scored predictions.
func (m *Manager) RecordPredictionsScored(n int) {
	if m.enabled && n > 0 {
		m.predictionsScore.Add(float64(n))
	}
}

// UpdateLeaderboardSize sets the latest leaderboard size of a contest.
func (m *Manager) UpdateLeaderboardSize(contestID string, size int) {
	if m.enabled {
		m.leaderboardSize.WithLabelValues(contestID).Set(float64(size))
	}
}

// RecordRecomputeRequest counts a recompute request; coalesced marks one
// that joined a pending request instead of queuing.
func (m *Manager) RecordRecomputeRequest(coalesced bool) {
	if !m.enabled {
		return
	}
	m.recomputeRequests.Inc()
	if coalesced {
		m.recomputeCoalesced.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func (m *Manager) UpdateQueueSize(size int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func (m *Manager) UpdateQueueCapacity(capacity int) {
	if m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError counts a refused enqueue.
func (m *Manager) RecordQueueEnqueueError() {
	if m.enabled {
		m.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount sets the number of workers.
func (m *Manager) UpdateWorkerCount(count int) {
	if m.enabled {
		m.workerCount.Set(float64(count))
	}
}

// AddWorkerActive moves the active worker gauge by delta.
func (m *Manager) AddWorkerActive(delta int) {
	if m.enabled {
		m.workerActiveCount.Add(float64(delta))
	}
}

// WriteText renders the manager's registry in the Prometheus text format.
func (m *Manager) WriteText(w io.Writer) error {
	g, ok := m.registry.(prometheus.Gatherer)
	if !ok {
		return ErrNoGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteText, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteText, err)
		}
	}
	return nil
}

// RecordBuild records a build on the global manager.
func RecordBuild(outcome, kind string, durationMs float64) {
	globalManager.RecordBuild(outcome, kind, durationMs)
}

// RecordPredictionsScored adds scored predictions on the global manager.
func RecordPredictionsScored(n int) {
	globalManager.RecordPredictionsScored(n)
}

// UpdateLeaderboardSize sets a contest's leaderboard size on the global manager.
func UpdateLeaderboardSize(contestID string, size int) {
	globalManager.UpdateLeaderboardSize(contestID, size)
}

// RecordRecomputeRequest counts a recompute request on the global manager.
func RecordRecomputeRequest(coalesced bool) {
	globalManager.RecordRecomputeRequest(coalesced)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.UpdateQueueSize(size)
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.UpdateQueueCapacity(capacity)
}

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError() {
	globalManager.RecordQueueEnqueueError()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.UpdateWorkerCount(count)
}

// AddWorkerActive moves the active worker gauge.
func AddWorkerActive(delta int) {
	globalManager.AddWorkerActive(delta)
}

// WriteText renders the global registry in the Prometheus text format.
func WriteText(w io.Writer) error {
	return globalManager.WriteText(w)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

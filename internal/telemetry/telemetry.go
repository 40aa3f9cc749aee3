// Package telemetry provides OpenTelemetry instrumentation for the suggester service.
// It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "category_suggester"

// Metrics holds all suggester Prometheus metrics
type Metrics struct {
	// Classification metrics
	ClassificationsTotal   *prometheus.CounterVec
	ClassificationsFailed  *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	SuggestionsByMatchType *prometheus.CounterVec

	// Document cache metrics
	CacheRefreshes prometheus.Counter
	CacheFallbacks prometheus.Counter

	// Sync metrics
	SyncedCategories *prometheus.CounterVec
	SyncDuration     prometheus.Histogram

	// Change listener metrics
	NotificationsTotal  *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	ListenerReconnects  prometheus.Counter

	// Training metrics
	TrainingRuns     *prometheus.CounterVec
	TrainingDuration *prometheus.HistogramVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initClassificationMetrics(m)
	initCacheMetrics(m)
	initSyncMetrics(m)
	initListenerMetrics(m)
	initTrainingMetrics(m)
	return m
}

func initClassificationMetrics(m *Metrics) {
	m.ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_classifications_total",
		Help: "Total classification requests served",
	}, []string{"language", "intent"})

	m.ClassificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_classifications_failed_total",
		Help: "Total classification requests that failed",
	}, []string{"language", "error_code"})

	m.ClassificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "suggester_classification_duration_seconds",
		Help:    "Time to classify a single input text",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"language"})

	m.SuggestionsByMatchType = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_suggestions_total",
		Help: "Total suggestions returned by match type (substring, model)",
	}, []string{"match_type"})
}

func initCacheMetrics(m *Metrics) {
	m.CacheRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggester_document_cache_refreshes_total",
		Help: "Total successful document snapshot refreshes",
	})

	m.CacheFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggester_document_cache_fallbacks_total",
		Help: "Total classifications served from the cached snapshot after a store failure",
	})
}

func initSyncMetrics(m *Metrics) {
	m.SyncedCategories = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_synced_categories_total",
		Help: "Total categories processed by full sync, by result (synced, failed)",
	}, []string{"result"})

	m.SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "suggester_sync_duration_seconds",
		Help:    "Time to run a full category sync",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
}

func initListenerMetrics(m *Metrics) {
	m.NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_notifications_total",
		Help: "Total change notifications received, by channel",
	}, []string{"channel"})

	m.NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_notifications_failed_total",
		Help: "Total change notifications dropped or failed to apply, by channel",
	}, []string{"channel"})

	m.ListenerReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggester_listener_reconnects_total",
		Help: "Total reconnection attempts by the change listener",
	})
}

func initTrainingMetrics(m *Metrics) {
	m.TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggester_training_runs_total",
		Help: "Total model training runs, by language and result (ok, failed)",
	}, []string{"language", "result"})

	m.TrainingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "suggester_training_duration_seconds",
		Help:    "Time to train a per-language model",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"language"})
}

// RecordClassification records metrics for a single served classification
func (p *Provider) RecordClassification(ctx context.Context, language, intent string, duration time.Duration) {
	p.Metrics.ClassificationsTotal.WithLabelValues(language, intent).Inc()
	p.Metrics.ClassificationDuration.WithLabelValues(language).Observe(duration.Seconds())
}

// RecordClassificationFailure records a failed classification with error code
func (p *Provider) RecordClassificationFailure(ctx context.Context, language, errorCode string) {
	p.Metrics.ClassificationsFailed.WithLabelValues(language, errorCode).Inc()
}

// RecordSuggestions increments the per-match-type suggestion counters
func (p *Provider) RecordSuggestions(ctx context.Context, matchTypes []string) {
	for _, mt := range matchTypes {
		p.Metrics.SuggestionsByMatchType.WithLabelValues(mt).Inc()
	}
}

// RecordSync records the outcome of a full sync run
func (p *Provider) RecordSync(ctx context.Context, synced, failed int, duration time.Duration) {
	p.Metrics.SyncedCategories.WithLabelValues("synced").Add(float64(synced))
	p.Metrics.SyncedCategories.WithLabelValues("failed").Add(float64(failed))
	p.Metrics.SyncDuration.Observe(duration.Seconds())
}

// RecordNotification records a received change notification
func (p *Provider) RecordNotification(ctx context.Context, channel string, ok bool) {
	p.Metrics.NotificationsTotal.WithLabelValues(channel).Inc()
	if !ok {
		p.Metrics.NotificationsFailed.WithLabelValues(channel).Inc()
	}
}

// RecordTraining records the outcome of a per-language training run
func (p *Provider) RecordTraining(ctx context.Context, language string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	p.Metrics.TrainingRuns.WithLabelValues(language, result).Inc()
	p.Metrics.TrainingDuration.WithLabelValues(language).Observe(duration.Seconds())
}

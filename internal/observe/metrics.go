// Package observe provides application-wide observability primitives for the
// pronunciation grading service: OpenTelemetry metrics, tracing helpers,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. Tests should use [NewMetrics]
// with a custom [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/Achu067/speak"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AnalysisDuration tracks end-to-end grading latency (transcript in,
	// result out), excluding audio decode and transcription.
	AnalysisDuration metric.Float64Histogram

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// Analyses counts completed analyses. Attributes:
	//   attribute.String("language", ...), attribute.String("status", ...)
	Analyses metric.Int64Counter

	// AnalysisScore distributes the final 0–100 scores by language.
	AnalysisScore metric.Float64Histogram

	// PhonemizerErrors counts skipped pronunciation escalations due to
	// phonemizer failures or timeouts.
	PhonemizerErrors metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// grading-pipeline latencies.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// scoreBuckets defines histogram bucket boundaries for the 0–100 score.
var scoreBuckets = []float64{
	0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("speak.analysis.duration",
		metric.WithDescription("Latency of transcript grading."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("speak.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Analyses, err = m.Int64Counter("speak.analyses",
		metric.WithDescription("Total completed analyses by language and status."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisScore, err = m.Float64Histogram("speak.analysis.score",
		metric.WithDescription("Distribution of final scores by language."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PhonemizerErrors, err = m.Int64Counter("speak.phonemizer.errors",
		metric.WithDescription("Total phonemization failures (escalation skipped)."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("speak.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordAnalysis records the latency and score of one completed analysis.
func (m *Metrics) RecordAnalysis(ctx context.Context, language string, d time.Duration, score float64) {
	attrs := metric.WithAttributes(attribute.String("language", language))
	m.AnalysisDuration.Record(ctx, d.Seconds(), attrs)
	m.AnalysisScore.Record(ctx, score, attrs)
	m.Analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("status", "ok"),
	))
}

// RecordAnalysisError counts a failed analysis by error kind.
func (m *Metrics) RecordAnalysisError(ctx context.Context, language, kind string) {
	m.Analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("language", language),
		attribute.String("status", kind),
	))
}

// RecordSTT records the latency of one transcription call.
func (m *Metrics) RecordSTT(ctx context.Context, d time.Duration) {
	m.STTDuration.Record(ctx, d.Seconds())
}

// RecordPhonemizerError counts one skipped escalation.
func (m *Metrics) RecordPhonemizerError(ctx context.Context) {
	m.PhonemizerErrors.Add(ctx, 1)
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

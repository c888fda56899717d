package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all engine metrics.
type Registry struct {
	meter metric.Meter

	// Evaluation metrics
	EvaluationDuration metric.Float64Histogram
	RiskScore          metric.Int64Histogram
	EvaluationCounter  metric.Int64Counter
	FailsafeCounter    metric.Int64Counter

	// Analyzer metrics
	AnalyzerFallbackCounter metric.Int64Counter

	// Audit metrics
	AuditQueueDepth     metric.Int64ObservableGauge
	AuditDroppedCounter metric.Int64Counter
	FeedbackCounter     metric.Int64Counter

	auditQueueDepth int64
}

// NewRegistry creates a registry with all engine metrics registered on the
// named meter.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	var err error

	r.EvaluationDuration, err = meter.Float64Histogram(
		"fraud.evaluation.duration",
		metric.WithDescription("Time to evaluate one transaction"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	r.RiskScore, err = meter.Int64Histogram(
		"fraud.evaluation.risk_score",
		metric.WithDescription("Distribution of overall risk scores"),
	)
	if err != nil {
		return nil, err
	}

	r.EvaluationCounter, err = meter.Int64Counter(
		"fraud.evaluation.total",
		metric.WithDescription("Total evaluations by risk level"),
	)
	if err != nil {
		return nil, err
	}

	r.FailsafeCounter, err = meter.Int64Counter(
		"fraud.evaluation.failsafe_total",
		metric.WithDescription("Evaluations that fell back to the failsafe result"),
	)
	if err != nil {
		return nil, err
	}

	r.AnalyzerFallbackCounter, err = meter.Int64Counter(
		"fraud.analyzer.fallback_total",
		metric.WithDescription("Analyzer runs that used their conservative fallback score"),
	)
	if err != nil {
		return nil, err
	}

	r.AuditDroppedCounter, err = meter.Int64Counter(
		"fraud.audit.dropped_total",
		metric.WithDescription("Audit events dropped because the queue was saturated"),
	)
	if err != nil {
		return nil, err
	}

	r.FeedbackCounter, err = meter.Int64Counter(
		"fraud.feedback.total",
		metric.WithDescription("Fraud feedback reports by label"),
	)
	if err != nil {
		return nil, err
	}

	r.AuditQueueDepth, err = meter.Int64ObservableGauge(
		"fraud.audit.queue_depth",
		metric.WithDescription("Pending events in the audit queue"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(atomic.LoadInt64(&r.auditQueueDepth))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RecordEvaluation records one completed evaluation.
func (r *Registry) RecordEvaluation(ctx context.Context, duration time.Duration, score int, level string) {
	if r == nil {
		return
	}
	r.EvaluationDuration.Record(ctx, float64(duration.Milliseconds()))
	r.RiskScore.Record(ctx, int64(score))
	r.EvaluationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_level", level)))
}

// RecordFailsafe records an orchestration failure that produced the
// failsafe result.
func (r *Registry) RecordFailsafe(ctx context.Context) {
	if r == nil {
		return
	}
	r.FailsafeCounter.Add(ctx, 1)
}

// RecordAnalyzerFallback records one analyzer falling back to its
// conservative score.
func (r *Registry) RecordAnalyzerFallback(ctx context.Context, analyzer string) {
	if r == nil {
		return
	}
	r.AnalyzerFallbackCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("analyzer", analyzer)))
}

// RecordAuditDropped records an audit event lost to queue saturation.
func (r *Registry) RecordAuditDropped(ctx context.Context) {
	if r == nil {
		return
	}
	r.AuditDroppedCounter.Add(ctx, 1)
}

// RecordFeedback records one ground-truth feedback report.
func (r *Registry) RecordFeedback(ctx context.Context, isFraud bool) {
	if r == nil {
		return
	}
	r.FeedbackCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("is_fraud", isFraud)))
}

// SetAuditQueueDepth updates the observable audit queue depth.
func (r *Registry) SetAuditQueueDepth(depth int) {
	if r == nil {
		return
	}
	atomic.StoreInt64(&r.auditQueueDepth, int64(depth))
}

package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names for batch dispatch.
const (
	InvocationsCounterName          = "dispatch_invocations_total"
	InvocationResultsCounterName    = "dispatch_invocation_results_total"
	InvocationDurationHistogramName = "dispatch_invocation_duration_seconds"
	BatchRejectionsCounterName      = "dispatch_batch_rejections_total"
)

// Attribute keys.
const (
	AttrLanguage = "language"
	AttrResult   = "result"
	AttrReason   = "reason"
)

// Result attribute values.
const (
	ResultSuccess       = "success"
	ResultExitFailure   = "exit_failure"
	ResultLaunchFailure = "launch_failure"
)

// DispatchMetrics records OpenTelemetry instruments for the batch dispatcher.
type DispatchMetrics struct {
	invocations metric.Int64Counter
	results     metric.Int64Counter
	duration    metric.Float64Histogram
	rejections  metric.Int64Counter
}

// NewDispatchMetrics creates instruments on provider, or on the global provider when nil.
func NewDispatchMetrics(provider metric.MeterProvider) (*DispatchMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("vertextester/dispatcher")

	invocations, err := meter.Int64Counter(
		InvocationsCounterName,
		metric.WithDescription("Total number of external processes launched"),
	)
	if err != nil {
		return nil, err
	}
	results, err := meter.Int64Counter(
		InvocationResultsCounterName,
		metric.WithDescription("Completed invocations by result"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		InvocationDurationHistogramName,
		metric.WithDescription("Wall time of external processes"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	rejections, err := meter.Int64Counter(
		BatchRejectionsCounterName,
		metric.WithDescription("Batches aborted before any process was spawned"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		invocations: invocations,
		results:     results,
		duration:    duration,
		rejections:  rejections,
	}, nil
}

// RecordLaunch counts one submitted invocation.
func (m *DispatchMetrics) RecordLaunch(ctx context.Context, language string) {
	if m == nil {
		return
	}
	m.invocations.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrLanguage, language)))
}

// RecordResult counts a completed invocation and its duration.
func (m *DispatchMetrics) RecordResult(ctx context.Context, language, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrLanguage, language),
		attribute.String(AttrResult, result),
	)
	m.results.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRejection counts a batch aborted by a failed precondition.
func (m *DispatchMetrics) RecordRejection(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/krew-solutions/ascetic-mediator-go"

// MetricsRecorder records mediator activity.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one event entering the queue.
	RecordPublish(ctx context.Context)

	// RecordDispatch records one drained event and how many listeners saw it.
	RecordDispatch(ctx context.Context, listeners int)

	// RecordRequest records one Send with its duration and error status.
	RecordRequest(ctx context.Context, requestType string, duration time.Duration, err error)
}

type otelMetrics struct {
	published       metric.Int64Counter
	dispatched      metric.Int64Counter
	requests        metric.Int64Counter
	requestErrors   metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewMetricsRecorder builds an OTel recorder on provider, or on the global
// provider when provider is nil.
func NewMetricsRecorder(provider metric.MeterProvider) (MetricsRecorder, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	published, err := meter.Int64Counter("mediator.events.published",
		metric.WithDescription("Number of events published"),
	)
	if err != nil {
		return nil, err
	}

	dispatched, err := meter.Int64Counter("mediator.events.dispatched",
		metric.WithDescription("Number of events drained and handed to listeners"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("mediator.requests",
		metric.WithDescription("Number of requests sent"),
	)
	if err != nil {
		return nil, err
	}

	requestErrors, err := meter.Int64Counter("mediator.request.errors",
		metric.WithDescription("Number of requests whose handler failed"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram("mediator.request.duration_ms",
		metric.WithDescription("Request handling latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		published:       published,
		dispatched:      dispatched,
		requests:        requests,
		requestErrors:   requestErrors,
		requestDuration: requestDuration,
	}, nil
}

func (m *otelMetrics) RecordPublish(ctx context.Context) {
	m.published.Add(ctx, 1)
}

func (m *otelMetrics) RecordDispatch(ctx context.Context, listeners int) {
	m.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("listeners", listeners),
	))
}

func (m *otelMetrics) RecordRequest(ctx context.Context, requestType string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("request_type", requestType))
	m.requests.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.requestErrors.Add(ctx, 1, attrs)
	}
}

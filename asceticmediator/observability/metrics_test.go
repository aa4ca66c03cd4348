package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetricsTest(t *testing.T) (MetricsRecorder, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})

	recorder, err := NewMetricsRecorder(provider)
	require.NoError(t, err)
	return recorder, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorderWithGlobalProvider(t *testing.T) {
	recorder, err := NewMetricsRecorder(nil)
	require.NoError(t, err)
	assert.NotNil(t, recorder)
}

func TestRecordPublishAndDispatch(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	recorder.RecordPublish(ctx)
	recorder.RecordPublish(ctx)
	recorder.RecordDispatch(ctx, 3)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, rm, "mediator.events.published"))
	assert.Equal(t, int64(1), sumOf(t, rm, "mediator.events.dispatched"))
}

func TestRecordRequest(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	ctx := context.Background()

	t.Run("records count and latency", func(t *testing.T) {
		recorder.RecordRequest(ctx, "main.IncrementRequest", 5*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		assert.Equal(t, int64(1), sumOf(t, rm, "mediator.requests"))

		metric := findMetric(rm, "mediator.request.duration_ms")
		require.NotNil(t, metric)
		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		recorder.RecordRequest(ctx, "main.IncrementRequest", time.Millisecond, errors.New("handler failed"))

		rm := collectMetrics(t, reader)
		assert.Equal(t, int64(1), sumOf(t, rm, "mediator.request.errors"))

		m := findMetric(rm, "mediator.request.errors")
		sum := m.Data.(metricdata.Sum[int64])
		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "request_type" && attr.Value.AsString() == "main.IncrementRequest" {
					found = true
				}
			}
		}
		assert.True(t, found, "Expected datapoint for request_type=main.IncrementRequest")
	})
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	m.RecordPublish(ctx)
	m.RecordDispatch(ctx, 1)
	m.RecordRequest(ctx, "x", time.Second, errors.New("ignored"))
}

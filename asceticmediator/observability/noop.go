package observability

import (
	"context"
	"time"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) RecordPublish(_ context.Context) {}

func (NoopMetrics) RecordDispatch(_ context.Context, _ int) {}

func (NoopMetrics) RecordRequest(_ context.Context, _ string, _ time.Duration, _ error) {}

package observability

import (
	"context"
	"log/slog"
	"time"
)

// ObserveRequest runs fn, records it as one request of requestType and
// logs its error, which is returned untouched.
func ObserveRequest(ctx context.Context, logger *slog.Logger, metrics MetricsRecorder, requestType string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordRequest(ctx, requestType, time.Since(start), err)
	if err != nil {
		LogRequestFailed(logger, requestType, err)
	}
	return err
}

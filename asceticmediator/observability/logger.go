// Package observability holds the logging and metrics hooks shared by the
// mediator variants. Both are opt-in: a nil logger logs nothing and
// NoopMetrics records nothing.
package observability

import (
	"log/slog"

	"github.com/google/uuid"
)

// DiscardLogger is the default logger of every builder.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// EnrichLogger tags logger with the mediator instance.
func EnrichLogger(logger *slog.Logger, mediatorID uuid.UUID) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("mediator_id", mediatorID.String()))
}

// LogBuilt logs a finished build.
func LogBuilt(logger *slog.Logger, listeners int, handlers int) {
	if logger == nil {
		return
	}
	logger.Debug("mediator built",
		slog.Int("listeners", listeners),
		slog.Int("handlers", handlers),
	)
}

// LogHandlerReplaced logs a second registration for the same request type.
func LogHandlerReplaced(logger *slog.Logger, requestType string) {
	if logger == nil {
		return
	}
	logger.Warn("request handler replaced",
		slog.String("request_type", requestType),
	)
}

// LogEventDropped logs an event published after the mediator was closed.
func LogEventDropped(logger *slog.Logger, event any) {
	if logger == nil {
		return
	}
	logger.Debug("event dropped, mediator closed",
		slog.Any("event", event),
	)
}

// LogRequestFailed logs a handler error before it is returned to the caller.
func LogRequestFailed(logger *slog.Logger, requestType string, err error) {
	if logger == nil {
		return
	}
	logger.Debug("request failed",
		slog.String("request_type", requestType),
		slog.String("error", err.Error()),
	)
}

// LogRunStarted logs the start of a consumer loop.
func LogRunStarted(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("event loop starting")
}

// LogRunStopped logs the end of a consumer loop.
func LogRunStopped(logger *slog.Logger, dispatched int, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Info("event loop stopped",
			slog.Int("dispatched", dispatched),
			slog.String("reason", err.Error()),
		)
		return
	}
	logger.Info("event loop stopped",
		slog.Int("dispatched", dispatched),
		slog.String("reason", "closed"),
	)
}

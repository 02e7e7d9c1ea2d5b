// Package observability provides structured logging, metrics, and tracing
// for funcreg registries.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds registry scope fields to a logger.
// Returns a new logger with type_key and, when set, related fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "request", "api")
//	enriched.Info("dispatching") // includes type_key, related
func EnrichLogger(logger *slog.Logger, typeKey, related string) *slog.Logger {
	if logger == nil {
		return nil
	}
	attrs := []any{slog.String("type_key", typeKey)}
	if related != "" {
		attrs = append(attrs, slog.String("related", related))
	}
	return logger.With(attrs...)
}

// LogRegister logs a successful registration.
func LogRegister(logger *slog.Logger, typeKey, related, name string, position int) {
	if logger == nil {
		return
	}
	logger.Debug("handler registered",
		slog.String("type_key", typeKey),
		slog.String("related", related),
		slog.String("name", name),
		slog.Int("position", position),
	)
}

// LogConflict logs a rejected duplicate registration.
func LogConflict(logger *slog.Logger, typeKey, related, name string) {
	if logger == nil {
		return
	}
	logger.Error("handler name conflict",
		slog.String("type_key", typeKey),
		slog.String("related", related),
		slog.String("name", name),
	)
}

// LogRegisterError logs a registration rejected for a reason other than a
// name conflict, such as a handler without a name.
func LogRegisterError(logger *slog.Logger, typeKey, related string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler registration failed",
		slog.String("type_key", typeKey),
		slog.String("related", related),
		slog.String("error", err.Error()),
	)
}

// LogUnregister logs the removal of a handler.
// removed is false when nothing was registered under the name.
func LogUnregister(logger *slog.Logger, typeKey, related, name string, removed bool) {
	if logger == nil {
		return
	}
	logger.Debug("handler unregistered",
		slog.String("type_key", typeKey),
		slog.String("related", related),
		slog.String("name", name),
		slog.Bool("removed", removed),
	)
}

// LogMerge logs a registry merge.
func LogMerge(logger *slog.Logger, handlers int) {
	if logger == nil {
		return
	}
	logger.Debug("registry merged",
		slog.Int("handlers", handlers),
	)
}

// LogImport logs a completed module import.
func LogImport(logger *slog.Logger, specs []string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("modules imported",
		slog.Any("specs", specs),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogImportSkipped logs an import call ignored because modules were
// already imported.
func LogImportSkipped(logger *slog.Logger, specs []string) {
	if logger == nil {
		return
	}
	logger.Debug("modules already imported, skipping",
		slog.Any("specs", specs),
	)
}

// LogImportError logs a module resolution failure.
func LogImportError(logger *slog.Logger, spec string, err error) {
	if logger == nil {
		return
	}
	logger.Error("module import failed",
		slog.String("spec", spec),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}

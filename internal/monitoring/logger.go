package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides enhanced structured logging with context
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new enhanced logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// StageLogger logs one pipeline stage completing
func (l *Logger) StageLogger(stage string, rowsIn, rowsOut int, duration time.Duration) {
	l.Info("Pipeline Stage",
		"stage", stage,
		"rows_in", rowsIn,
		"rows_out", rowsOut,
		"duration_ms", duration.Milliseconds(),
	)
}

// PipelineLogger logs a full scoring run
func (l *Logger) PipelineLogger(records, severe, earlyWarnings int, duration time.Duration) {
	l.Info("Pipeline Completed",
		"records", records,
		"severe", severe,
		"early_warnings", earlyWarnings,
		"duration_ms", duration.Milliseconds(),
	)
}

// ExportLogger logs one exported artifact
func (l *Logger) ExportLogger(artifact string, rows int, path string) {
	l.Info("Artifact Exported",
		"artifact", artifact,
		"rows", rows,
		"path", path,
	)
}

// StoreLogger logs run-archive operations
func (l *Logger) StoreLogger(operation, runID string, rows int, duration time.Duration) {
	l.Info("Store Operation",
		"operation", operation,
		"run_id", runID,
		"rows", rows,
		"duration_ms", duration.Milliseconds(),
	)
}

// RequestLogger logs HTTP request details for the report server
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	l.Logger = slog.New(handler)
}

package helpers

import "log/slog"

// NewNoopLogger returns a logger that discards every record.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LoggerOrNoop returns logger, or a discarding logger when logger is nil.
func LoggerOrNoop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNoopLogger()
	}
	return logger
}

package ports

// Logger is the logging interface components depend on. Args are alternating
// key-value pairs, matching log/slog's convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

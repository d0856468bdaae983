package sahara

// Logger is an optional logging interface the client reports protocol
// progress through. This allows integration with any logging framework;
// ZeroLogger adapts zerolog.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

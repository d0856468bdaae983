package sahara

import "github.com/rs/zerolog"

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
//
// Example:
//
//	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
//	client := sahara.New(device, sahara.WithLogger(sahara.NewZeroLogger(log)))
type ZeroLogger struct {
	log zerolog.Logger
}

// NewZeroLogger wraps a zerolog.Logger as a Logger.
func NewZeroLogger(log zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{log: log}
}

// Debug logs a debug message with optional key-value pairs.
func (z *ZeroLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.log.Debug().Fields(keysAndValues).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (z *ZeroLogger) Info(msg string, keysAndValues ...interface{}) {
	z.log.Info().Fields(keysAndValues).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (z *ZeroLogger) Error(msg string, keysAndValues ...interface{}) {
	z.log.Error().Fields(keysAndValues).Msg(msg)
}

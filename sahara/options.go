package sahara

import "github.com/moffa90/go-sahara/protocol"

// Config holds the client configuration.
type Config struct {
	// Logger is used for protocol progress logging (optional)
	Logger Logger

	// MaxTransfer is the largest single bulk transfer requested from the
	// transport. Defaults to the maximum every known EDL ROM advertises.
	MaxTransfer int
}

func defaultConfig() Config {
	return Config{
		MaxTransfer: protocol.MaxTransferSize,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithLogger sets a logger for protocol operations.
//
// Example:
//
//	client := sahara.New(device, sahara.WithLogger(sahara.NewZeroLogger(log)))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMaxTransfer overrides the maximum single transfer size, for devices
// advertising a max_len other than the usual 0x400.
func WithMaxTransfer(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.MaxTransfer = size
		}
	}
}

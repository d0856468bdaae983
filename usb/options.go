package usb

import (
	"time"

	"github.com/google/gousb"
	"github.com/rs/zerolog"
)

// Qualcomm EDL-mode USB identity.
const (
	QualcommVendor = gousb.ID(0x05C6)
	EDLProduct     = gousb.ID(0x9008)
)

// Default timing. A transfer that gets no completion within the transfer
// timeout is reported, never retried; claiming is the one retried step.
const (
	DefaultTransferTimeout = 5 * time.Second
	DefaultClaimTimeout    = 1 * time.Second
	DefaultClaimPeriod     = 200 * time.Microsecond
)

// Config holds the session configuration.
type Config struct {
	// Vendor and Product select the device on the bus
	Vendor  gousb.ID
	Product gousb.ID

	// TransferTimeout bounds each single bulk transfer
	TransferTimeout time.Duration

	// ClaimTimeout bounds the interface claim retry loop
	ClaimTimeout time.Duration

	// ClaimPeriod is the sleep between claim attempts
	ClaimPeriod time.Duration

	// Logger receives enumeration and transfer diagnostics
	Logger zerolog.Logger
}

func defaultConfig() Config {
	return Config{
		Vendor:          QualcommVendor,
		Product:         EDLProduct,
		TransferTimeout: DefaultTransferTimeout,
		ClaimTimeout:    DefaultClaimTimeout,
		ClaimPeriod:     DefaultClaimPeriod,
		Logger:          zerolog.Nop(),
	}
}

// Option is a functional option for configuring Open.
type Option func(*Config)

// WithIdentity overrides the vendor/product filter, for ROMs enumerating
// under a non-standard identity.
func WithIdentity(vendor, product gousb.ID) Option {
	return func(c *Config) {
		c.Vendor = vendor
		c.Product = product
	}
}

// WithTransferTimeout sets the per-transfer timeout.
func WithTransferTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.TransferTimeout = timeout
		}
	}
}

// WithClaimTimeout sets the interface claim retry budget.
func WithClaimTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ClaimTimeout = timeout
		}
	}
}

// WithLogger sets a zerolog logger for enumeration and transfer
// diagnostics. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

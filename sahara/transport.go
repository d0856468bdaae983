package sahara

import "context"

// Transport performs single bulk transfers against a device in EDL mode.
// The protocol is half-duplex: at most one transfer is in flight at a time,
// and the client never retries a transfer on its own.
//
// The usb package provides the hardware implementation; tests use scripted
// in-memory transports.
type Transport interface {
	// Read performs one bulk-IN transfer, returning the bytes the device
	// sent, at most max. It blocks until the device answers or the
	// transport's deadline expires.
	Read(ctx context.Context, max int) ([]byte, error)

	// Write performs one bulk-OUT transfer, returning the number of bytes
	// actually transmitted.
	Write(ctx context.Context, data []byte) (int, error)
}

package usb

import (
	"fmt"
	"time"

	"github.com/google/gousb"
)

// DeviceNotFoundError indicates no attached device matched the identity
// filter. This is fatal: the device is either plugged in and in EDL mode
// or it is not, so there is nothing to retry.
type DeviceNotFoundError struct {
	Vendor  gousb.ID
	Product gousb.ID
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %s:%s not found, is it connected and in EDL mode?",
		e.Vendor, e.Product)
}

// ClaimTimeoutError indicates the interface could not be claimed within
// the retry budget.
type ClaimTimeoutError struct {
	Interface int
	Elapsed   time.Duration
}

func (e *ClaimTimeoutError) Error() string {
	return fmt.Sprintf("failed to claim interface %d within %s", e.Interface, e.Elapsed)
}

// TimeoutError indicates a bulk transfer got no completion within the
// transfer timeout.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s transfer timed out", e.Op)
}

// TransportError wraps an underlying USB I/O failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transfer failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

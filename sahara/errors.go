package sahara

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-sahara/protocol"
)

// ErrNoSession is returned when an operation runs before the hello
// exchange has completed.
var ErrNoSession = errors.New("sahara: no session, hello exchange not completed")

// ModeSwitchError indicates the device rejected a mode switch with an
// end-of-transfer packet.
type ModeSwitchError struct {
	// Mode is the protocol mode that was requested
	Mode uint32

	// Status is the status code the device reported
	Status uint32
}

func (e *ModeSwitchError) Error() string {
	return fmt.Sprintf("mode switch to %s failed: %s (0x%02X)",
		protocol.ModeName(e.Mode), protocol.StatusMessage(e.Status), e.Status)
}

// CommandError indicates the device rejected a client command with an
// end-of-transfer packet. It is recoverable: an unsupported command on one
// device variant does not poison the session, and callers may skip it.
type CommandError struct {
	// Command is the client command that failed
	Command uint32

	// Status is the status code the device reported
	Status uint32
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)",
		protocol.CommandName(e.Command), protocol.StatusMessage(e.Status), e.Status)
}

// DeviceError indicates the device reported a failure for an operation
// other than a mode switch or client command (reset, done, memory read).
type DeviceError struct {
	// Op is the operation the failure relates to
	Op string

	// Status is the status code the device reported
	Status uint32
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)",
		e.Op, protocol.StatusMessage(e.Status), e.Status)
}

// UnexpectedMessageError indicates the device sent a message type that is
// invalid for the current protocol state.
type UnexpectedMessageError struct {
	// Op is the operation that received the message
	Op string

	// Expected is the message type the state machine was waiting for
	Expected uint32

	// Got is the message type the device actually sent
	Got uint32
}

func (e *UnexpectedMessageError) Error() string {
	return fmt.Sprintf("%s: unexpected message: got 0x%02X (%s), expected 0x%02X (%s)",
		e.Op, e.Got, protocol.MessageTypeName(e.Got),
		e.Expected, protocol.MessageTypeName(e.Expected))
}

// ShortReadError indicates a memory read returned a different number of
// bytes than requested. The truncated buffer is never passed off as valid
// data.
type ShortReadError struct {
	// Address is the physical address of the failed read
	Address uint32

	// Want is the number of bytes requested
	Want int

	// Got is the number of bytes the device returned
	Got int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("incomplete memory read at 0x%08X: got %d bytes, requested %d",
		e.Address, e.Got, e.Want)
}

// UnsupportedCommandError indicates a command was requested that the
// negotiated protocol version does not define.
type UnsupportedCommandError struct {
	// Command is the gated client command
	Command uint32

	// Version is the negotiated protocol version
	Version uint32
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("%s is not available on protocol version %d",
		protocol.CommandName(e.Command), e.Version)
}

package sahara

import (
	"context"
	"errors"
	"fmt"

	"github.com/moffa90/go-sahara/hwids"
	"github.com/moffa90/go-sahara/protocol"
)

// Session states. The device drives the first transition: it sends the
// hello request, so the client starts out waiting rather than talking.
type state int

const (
	stateAwaitHello state = iota
	stateNegotiated
	stateReady
	stateClosed
)

// Client drives the Sahara protocol state machine over a Transport.
//
// The protocol is half-duplex and strictly ordered: every operation is a
// blocking call performing one or more request/reply exchanges, and no two
// exchanges ever overlap. A Client owns its transport for the lifetime of
// the session and is not safe for concurrent use.
type Client struct {
	transport Transport
	config    Config

	state state
	hello protocol.HelloRequest
	caps  Capabilities
}

// New creates a Client over the given transport.
//
// Example:
//
//	device, err := usb.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer device.Close()
//
//	client := sahara.New(device, sahara.WithLogger(sahara.NewZeroLogger(log)))
func New(transport Transport, opts ...Option) *Client {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		transport: transport,
		config:    cfg,
	}
}

// Version returns the protocol version the device reported in its hello
// request. Zero before Hello has run.
func (c *Client) Version() uint32 {
	return c.hello.Version
}

// Capabilities returns the capability set computed from the negotiated
// protocol version.
func (c *Client) Capabilities() Capabilities {
	return c.caps
}

// Hello consumes the device's unsolicited hello request, the first packet
// of every session. It caches the reported protocol version and computes
// the capability set that gates version-dependent commands for the rest of
// the session.
func (c *Client) Hello(ctx context.Context) (protocol.HelloRequest, error) {
	buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return protocol.HelloRequest{}, fmt.Errorf("read hello: %w", err)
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil {
		return protocol.HelloRequest{}, fmt.Errorf("decode hello: %w", err)
	}

	if h.MessageType != protocol.MsgHelloRequest {
		return protocol.HelloRequest{}, &UnexpectedMessageError{
			Op:       "hello",
			Expected: protocol.MsgHelloRequest,
			Got:      h.MessageType,
		}
	}

	req, err := protocol.DecodeHelloRequest(buf)
	if err != nil {
		return protocol.HelloRequest{}, fmt.Errorf("decode hello: %w", err)
	}

	c.hello = req
	c.caps = capabilitiesFor(req.Version)
	c.state = stateNegotiated

	c.logDebug("hello received",
		"version", req.Version,
		"compatible", req.Compatible,
		"max_len", req.MaxLen,
		"mode", protocol.ModeName(req.Mode),
	)

	return req, nil
}

// SwitchMode answers the hello exchange with the given protocol mode and
// waits for the device to report ready. The hello response carries the
// fixed negotiated version pair; only the mode varies per call.
func (c *Client) SwitchMode(ctx context.Context, mode uint32) error {
	if c.state == stateAwaitHello {
		return ErrNoSession
	}

	res := protocol.NewHelloResponse(mode)
	if _, err := c.transport.Write(ctx, res.Encode()); err != nil {
		return fmt.Errorf("send hello response: %w", err)
	}

	buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return fmt.Errorf("read mode switch reply: %w", err)
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil {
		return fmt.Errorf("decode mode switch reply: %w", err)
	}

	switch h.MessageType {
	case protocol.MsgEndOfTransfer:
		eot, err := protocol.DecodeEndOfTransfer(buf)
		if err != nil {
			return fmt.Errorf("decode end of transfer: %w", err)
		}
		return &ModeSwitchError{Mode: mode, Status: eot.Status}

	case protocol.MsgReady:
		c.state = stateReady
		c.logDebug("mode switched", "mode", protocol.ModeName(mode))
		return nil

	default:
		return &UnexpectedMessageError{
			Op:       "mode switch",
			Expected: protocol.MsgReady,
			Got:      h.MessageType,
		}
	}
}

// Exec runs one client command as a single logical transaction: the
// response phase (execute request, await acknowledgement) followed by the
// data phase (execute data, read the raw payload). The data phase is
// structurally unreachable unless the response phase succeeded.
//
// A device rejection surfaces as a *CommandError, which is recoverable:
// the session stays usable and the caller may skip the command.
func (c *Client) Exec(ctx context.Context, command uint32) ([]byte, error) {
	if c.state != stateReady {
		return nil, ErrNoSession
	}

	if !c.caps.DeviceInfo &&
		(command == protocol.CmdGetHardwareId || command == protocol.CmdGetOemPkHash) {
		return nil, &UnsupportedCommandError{Command: command, Version: c.hello.Version}
	}

	exec := protocol.Exec{Command: command}

	// Response phase.
	if _, err := c.transport.Write(ctx, exec.EncodeRequest()); err != nil {
		return nil, fmt.Errorf("send execute request: %w", err)
	}

	buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return nil, fmt.Errorf("read execute reply: %w", err)
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("decode execute reply: %w", err)
	}

	switch h.MessageType {
	case protocol.MsgExecuteResponse:
		// fall through to the data phase

	case protocol.MsgEndOfTransfer:
		eot, err := protocol.DecodeEndOfTransfer(buf)
		if err != nil {
			return nil, fmt.Errorf("decode end of transfer: %w", err)
		}
		return nil, &CommandError{Command: command, Status: eot.Status}

	default:
		return nil, &UnexpectedMessageError{
			Op:       "execute",
			Expected: protocol.MsgExecuteResponse,
			Got:      h.MessageType,
		}
	}

	// Data phase.
	if _, err := c.transport.Write(ctx, exec.EncodeData()); err != nil {
		return nil, fmt.Errorf("send execute data: %w", err)
	}

	payload, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return nil, fmt.Errorf("read command payload: %w", err)
	}

	if eot, ok := asEndOfTransfer(payload); ok {
		return nil, &CommandError{Command: command, Status: eot.Status}
	}

	c.logDebug("command executed", "command", protocol.CommandName(command), "payload_len", len(payload))
	return payload, nil
}

// Info switches to command mode and collects the device's diagnostic
// information. The serial number is read on every protocol version; the
// hardware ID and OEM key hashes exist only below version 3, a gate
// evaluated once from the hello exchange, never per call. Commands the
// device itself rejects are skipped, not fatal.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	if err := c.SwitchMode(ctx, protocol.ModeCommand); err != nil {
		return nil, err
	}

	payload, err := c.Exec(ctx, protocol.CmdGetSerialNum)
	if err != nil {
		return nil, err
	}
	serial, err := protocol.DecodeSerialNo(payload)
	if err != nil {
		return nil, fmt.Errorf("decode serial number: %w", err)
	}

	info := &Info{Serial: serial}

	if !c.caps.DeviceInfo {
		c.logDebug("skipping device info commands", "version", c.hello.Version)
		return info, nil
	}

	payload, err = c.Exec(ctx, protocol.CmdGetHardwareId)
	switch {
	case isCommandError(err):
		c.logInfo("device rejected hardware ID read", "error", err.Error())
	case err != nil:
		return nil, err
	default:
		hw, err := protocol.DecodeHardwareId(payload)
		if err != nil {
			return nil, fmt.Errorf("decode hardware ID: %w", err)
		}
		info.HardwareId = &hw
		info.HardwareName = hwids.Name(hw.Id)
	}

	payload, err = c.Exec(ctx, protocol.CmdGetOemPkHash)
	switch {
	case isCommandError(err):
		c.logInfo("device rejected OEM PK hash read", "error", err.Error())
	case err != nil:
		return nil, err
	default:
		hash, err := protocol.DecodeOemPkHash(payload)
		if err != nil {
			return nil, fmt.Errorf("decode OEM PK hash: %w", err)
		}
		info.OemPkHash = &hash
	}

	return info, nil
}

// ReadMemory switches to memory-debug mode and reads size bytes starting
// at the given physical address, splitting the request into transfers of
// at most the negotiated maximum. A device refusal or a reply of the wrong
// length is always surfaced; a short buffer is never returned as data.
func (c *Client) ReadMemory(ctx context.Context, address, size uint32) ([]byte, error) {
	if err := c.SwitchMode(ctx, protocol.ModeMemoryDebug); err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	for off := uint32(0); off < size; {
		chunk := size - off
		if chunk > uint32(c.config.MaxTransfer) {
			chunk = uint32(c.config.MaxTransfer)
		}

		req := protocol.MemoryRead{Address: address + off, Size: chunk}
		if _, err := c.transport.Write(ctx, req.Encode()); err != nil {
			return nil, fmt.Errorf("send memory read: %w", err)
		}

		buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
		if err != nil {
			return nil, fmt.Errorf("read memory data: %w", err)
		}

		if eot, ok := asEndOfTransfer(buf); ok {
			return nil, &DeviceError{Op: "memory read", Status: eot.Status}
		}

		if len(buf) != int(chunk) {
			return nil, &ShortReadError{Address: address + off, Want: int(chunk), Got: len(buf)}
		}

		out = append(out, buf...)
		off += chunk
	}

	c.logDebug("memory read", "address", fmt.Sprintf("0x%08X", address), "size", size)
	return out, nil
}

// Reset asks the device to reset. A device-reported failure surfaces as a
// typed error; an unrecognized reply is logged but treated as success,
// since the device may already be on its way down.
func (c *Client) Reset(ctx context.Context) error {
	if c.state == stateAwaitHello {
		return ErrNoSession
	}

	if _, err := c.transport.Write(ctx, protocol.ResetRequest{}.Encode()); err != nil {
		return fmt.Errorf("send reset request: %w", err)
	}

	buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return fmt.Errorf("read reset reply: %w", err)
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil {
		return fmt.Errorf("decode reset reply: %w", err)
	}

	switch h.MessageType {
	case protocol.MsgEndOfTransfer:
		eot, err := protocol.DecodeEndOfTransfer(buf)
		if err != nil {
			return fmt.Errorf("decode end of transfer: %w", err)
		}
		return &DeviceError{Op: "reset", Status: eot.Status}

	case protocol.MsgResetResponse:
		c.state = stateClosed
		c.logInfo("device reset")
		return nil

	default:
		c.logError("unexpected reply to reset",
			"message_type", protocol.MessageTypeName(h.MessageType))
		c.state = stateClosed
		return nil
	}
}

// Done finalizes the session: it switches to image-transfer-pending mode
// and sends the done request, terminating the pending transfer cleanly.
func (c *Client) Done(ctx context.Context) error {
	if err := c.SwitchMode(ctx, protocol.ModeImageTxPending); err != nil {
		return err
	}

	if _, err := c.transport.Write(ctx, protocol.DoneRequest{}.Encode()); err != nil {
		return fmt.Errorf("send done request: %w", err)
	}

	buf, err := c.transport.Read(ctx, c.config.MaxTransfer)
	if err != nil {
		return fmt.Errorf("read done reply: %w", err)
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil {
		return fmt.Errorf("decode done reply: %w", err)
	}

	switch h.MessageType {
	case protocol.MsgEndOfTransfer:
		eot, err := protocol.DecodeEndOfTransfer(buf)
		if err != nil {
			return fmt.Errorf("decode end of transfer: %w", err)
		}
		return &DeviceError{Op: "done", Status: eot.Status}

	case protocol.MsgDoneResponse:
		res, err := protocol.DecodeDoneResponse(buf)
		if err != nil {
			return fmt.Errorf("decode done response: %w", err)
		}
		c.state = stateClosed
		c.logInfo("session done", "status", res.Status)
		return nil

	default:
		c.logError("unexpected reply to done",
			"message_type", protocol.MessageTypeName(h.MessageType))
		c.state = stateClosed
		return nil
	}
}

// asEndOfTransfer reports whether buf is exactly an end-of-transfer packet.
// Raw data payloads pass through here too, so the match requires the exact
// wire size, not just a plausible first word.
func asEndOfTransfer(buf []byte) (protocol.EndOfTransfer, bool) {
	if len(buf) != protocol.EndOfTransferSize {
		return protocol.EndOfTransfer{}, false
	}

	h, err := protocol.DecodeHeader(buf)
	if err != nil || h.MessageType != protocol.MsgEndOfTransfer || int(h.Length) != protocol.EndOfTransferSize {
		return protocol.EndOfTransfer{}, false
	}

	eot, err := protocol.DecodeEndOfTransfer(buf)
	if err != nil {
		return protocol.EndOfTransfer{}, false
	}
	return eot, true
}

func isCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}

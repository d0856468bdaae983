package protocol

import (
	"encoding/binary"
	"fmt"
)

// Header is the 8-byte preamble every Sahara packet starts with.
//
// Wire layout (little-endian):
//
//	[MSG_TYPE(4)][LENGTH(4)]
//
// The length field always equals the full wire size of the packet it heads.
type Header struct {
	// MessageType identifies the packet (one of the Msg* constants)
	MessageType uint32

	// Length is the total packet size in bytes, header included
	Length uint32
}

// DecodeHeader extracts the packet header from the start of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("packet too short for header: got %d bytes, need %d", len(buf), HeaderSize)
	}

	return Header{
		MessageType: binary.LittleEndian.Uint32(buf[0:4]),
		Length:      binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// putHeader writes a packet header at the start of buf.
func putHeader(buf []byte, messageType, length uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], messageType)
	binary.LittleEndian.PutUint32(buf[4:8], length)
}

// checkPacket validates the header at the start of buf against the expected
// message type and wire size. Device transfers may carry trailing padding,
// so buf is allowed to be longer than size; the length field is not.
func checkPacket(buf []byte, messageType uint32, size int) error {
	h, err := DecodeHeader(buf)
	if err != nil {
		return err
	}

	if h.MessageType != messageType {
		return fmt.Errorf("unexpected message type: got 0x%02X (%s), expected 0x%02X (%s)",
			h.MessageType, messageTypeName(h.MessageType), messageType, messageTypeName(messageType))
	}

	if int(h.Length) != size {
		return fmt.Errorf("%s length mismatch: header says %d bytes, wire size is %d",
			messageTypeName(messageType), h.Length, size)
	}

	if len(buf) < size {
		return fmt.Errorf("%s truncated: got %d bytes, need %d",
			messageTypeName(messageType), len(buf), size)
	}

	return nil
}

// HelloRequest is the device's unsolicited first packet, advertising the
// protocol version range, maximum command length and current mode.
//
// Wire layout (HelloRequestSize bytes):
//
//	[HEADER(8)][VERSION(4)][COMPATIBLE(4)][MAX_LEN(4)][MODE(4)][RESERVED(24)]
type HelloRequest struct {
	// Version is the protocol version the device speaks
	Version uint32

	// Compatible is the lowest protocol version the device accepts
	Compatible uint32

	// MaxLen is the maximum command packet length the device accepts
	MaxLen uint32

	// Mode is the protocol mode the device is waiting in
	Mode uint32

	// Reserved is the six-word tail the ROM sends after the mode field
	Reserved [6]uint32
}

// Encode serializes the hello request into a fresh buffer.
func (p HelloRequest) Encode() []byte {
	buf := make([]byte, HelloRequestSize)
	putHeader(buf, MsgHelloRequest, HelloRequestSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Version)
	binary.LittleEndian.PutUint32(buf[12:16], p.Compatible)
	binary.LittleEndian.PutUint32(buf[16:20], p.MaxLen)
	binary.LittleEndian.PutUint32(buf[20:24], p.Mode)
	for i, w := range p.Reserved {
		binary.LittleEndian.PutUint32(buf[24+4*i:28+4*i], w)
	}
	return buf
}

// DecodeHelloRequest parses and validates a hello request.
func DecodeHelloRequest(buf []byte) (HelloRequest, error) {
	if err := checkPacket(buf, MsgHelloRequest, HelloRequestSize); err != nil {
		return HelloRequest{}, err
	}

	p := HelloRequest{
		Version:    binary.LittleEndian.Uint32(buf[8:12]),
		Compatible: binary.LittleEndian.Uint32(buf[12:16]),
		MaxLen:     binary.LittleEndian.Uint32(buf[16:20]),
		Mode:       binary.LittleEndian.Uint32(buf[20:24]),
	}
	for i := range p.Reserved {
		p.Reserved[i] = binary.LittleEndian.Uint32(buf[24+4*i : 28+4*i])
	}
	return p, nil
}

// HelloResponse is the host's reply to a hello request, selecting the
// protocol mode for the rest of the session.
//
// Wire layout (HelloResponseSize bytes):
//
//	[HEADER(8)][VERSION(4)][COMPATIBLE(4)][STATUS(4)][MODE(4)][RESERVED(24)]
type HelloResponse struct {
	// Version is the protocol version the host speaks
	Version uint32

	// Compatible is the lowest protocol version the host accepts
	Compatible uint32

	// Status is always StatusSuccess on the host side
	Status uint32

	// Mode is the protocol mode the host requests
	Mode uint32

	// Reserved is the six-word tail echoed back to the device
	Reserved [6]uint32
}

// NewHelloResponse builds the canonical hello response for the given mode,
// carrying the fixed negotiated version pair and the counting reserved tail
// observed in known-good host implementations.
func NewHelloResponse(mode uint32) HelloResponse {
	return HelloResponse{
		Version:    ProtocolVersion,
		Compatible: ProtocolCompatible,
		Status:     StatusSuccess,
		Mode:       mode,
		Reserved:   [6]uint32{1, 2, 3, 4, 5, 6},
	}
}

// Encode serializes the hello response into a fresh buffer.
func (p HelloResponse) Encode() []byte {
	buf := make([]byte, HelloResponseSize)
	putHeader(buf, MsgHelloResponse, HelloResponseSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Version)
	binary.LittleEndian.PutUint32(buf[12:16], p.Compatible)
	binary.LittleEndian.PutUint32(buf[16:20], p.Status)
	binary.LittleEndian.PutUint32(buf[20:24], p.Mode)
	for i, w := range p.Reserved {
		binary.LittleEndian.PutUint32(buf[24+4*i:28+4*i], w)
	}
	return buf
}

// DecodeHelloResponse parses and validates a hello response.
func DecodeHelloResponse(buf []byte) (HelloResponse, error) {
	if err := checkPacket(buf, MsgHelloResponse, HelloResponseSize); err != nil {
		return HelloResponse{}, err
	}

	p := HelloResponse{
		Version:    binary.LittleEndian.Uint32(buf[8:12]),
		Compatible: binary.LittleEndian.Uint32(buf[12:16]),
		Status:     binary.LittleEndian.Uint32(buf[16:20]),
		Mode:       binary.LittleEndian.Uint32(buf[20:24]),
	}
	for i := range p.Reserved {
		p.Reserved[i] = binary.LittleEndian.Uint32(buf[24+4*i : 28+4*i])
	}
	return p, nil
}

// ResetRequest asks the device to reset. Header only.
type ResetRequest struct{}

// Encode serializes the reset request into a fresh buffer.
func (ResetRequest) Encode() []byte {
	buf := make([]byte, ResetRequestSize)
	putHeader(buf, MsgResetRequest, ResetRequestSize)
	return buf
}

// DecodeResetRequest parses and validates a reset request.
func DecodeResetRequest(buf []byte) (ResetRequest, error) {
	if err := checkPacket(buf, MsgResetRequest, ResetRequestSize); err != nil {
		return ResetRequest{}, err
	}
	return ResetRequest{}, nil
}

// ResetResponse acknowledges a reset request. Header only.
type ResetResponse struct{}

// Encode serializes the reset response into a fresh buffer.
func (ResetResponse) Encode() []byte {
	buf := make([]byte, ResetResponseSize)
	putHeader(buf, MsgResetResponse, ResetResponseSize)
	return buf
}

// DecodeResetResponse parses and validates a reset response.
func DecodeResetResponse(buf []byte) (ResetResponse, error) {
	if err := checkPacket(buf, MsgResetResponse, ResetResponseSize); err != nil {
		return ResetResponse{}, err
	}
	return ResetResponse{}, nil
}

// DoneRequest asks the device to finalize the session. Header only.
type DoneRequest struct{}

// Encode serializes the done request into a fresh buffer.
func (DoneRequest) Encode() []byte {
	buf := make([]byte, DoneRequestSize)
	putHeader(buf, MsgDoneRequest, DoneRequestSize)
	return buf
}

// DecodeDoneRequest parses and validates a done request.
func DecodeDoneRequest(buf []byte) (DoneRequest, error) {
	if err := checkPacket(buf, MsgDoneRequest, DoneRequestSize); err != nil {
		return DoneRequest{}, err
	}
	return DoneRequest{}, nil
}

// DoneResponse acknowledges session finalization.
//
// Wire layout (DoneResponseSize bytes):
//
//	[HEADER(8)][STATUS(4)]
type DoneResponse struct {
	// Status reports whether a pending image transfer completed
	Status uint32
}

// Encode serializes the done response into a fresh buffer.
func (p DoneResponse) Encode() []byte {
	buf := make([]byte, DoneResponseSize)
	putHeader(buf, MsgDoneResponse, DoneResponseSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Status)
	return buf
}

// DecodeDoneResponse parses and validates a done response.
func DecodeDoneResponse(buf []byte) (DoneResponse, error) {
	if err := checkPacket(buf, MsgDoneResponse, DoneResponseSize); err != nil {
		return DoneResponse{}, err
	}
	return DoneResponse{Status: binary.LittleEndian.Uint32(buf[8:12])}, nil
}

// Exec carries a client command. The same payload is sent twice per command:
// first tagged MsgExecuteRequest (response phase), then MsgExecuteData
// (data phase) once the device has acknowledged.
//
// Wire layout (ExecSize bytes):
//
//	[HEADER(8)][COMMAND(4)]
type Exec struct {
	// Command is one of the Cmd* constants
	Command uint32
}

// EncodeRequest serializes the response-phase packet for the command.
func (p Exec) EncodeRequest() []byte {
	return p.encode(MsgExecuteRequest)
}

// EncodeData serializes the data-phase packet for the command.
func (p Exec) EncodeData() []byte {
	return p.encode(MsgExecuteData)
}

func (p Exec) encode(messageType uint32) []byte {
	buf := make([]byte, ExecSize)
	putHeader(buf, messageType, ExecSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Command)
	return buf
}

// DecodeExec parses an execute packet of either phase, returning the command
// and the phase tag it was sent under.
func DecodeExec(buf []byte) (Exec, uint32, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Exec{}, 0, err
	}

	if h.MessageType != MsgExecuteRequest && h.MessageType != MsgExecuteData {
		return Exec{}, 0, fmt.Errorf("unexpected message type: got 0x%02X (%s), expected an execute packet",
			h.MessageType, messageTypeName(h.MessageType))
	}

	if err := checkPacket(buf, h.MessageType, ExecSize); err != nil {
		return Exec{}, 0, err
	}

	return Exec{Command: binary.LittleEndian.Uint32(buf[8:12])}, h.MessageType, nil
}

// MemoryRead requests a 32-bit addressed memory read while the session is
// in memory-debug mode. The device replies with the raw bytes.
//
// Wire layout (MemoryReadSize bytes):
//
//	[HEADER(8)][ADDRESS(4)][SIZE(4)]
type MemoryRead struct {
	// Address is the physical address to read from
	Address uint32

	// Size is the number of bytes to read, at most MaxTransferSize
	Size uint32
}

// Encode serializes the memory read request into a fresh buffer.
func (p MemoryRead) Encode() []byte {
	buf := make([]byte, MemoryReadSize)
	putHeader(buf, MsgMemoryRead, MemoryReadSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Address)
	binary.LittleEndian.PutUint32(buf[12:16], p.Size)
	return buf
}

// DecodeMemoryRead parses and validates a memory read request.
func DecodeMemoryRead(buf []byte) (MemoryRead, error) {
	if err := checkPacket(buf, MsgMemoryRead, MemoryReadSize); err != nil {
		return MemoryRead{}, err
	}

	return MemoryRead{
		Address: binary.LittleEndian.Uint32(buf[8:12]),
		Size:    binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// EndOfTransfer is the device's failure report. It may arrive in place of
// any expected reply; the status field says why.
//
// Wire layout (EndOfTransferSize bytes):
//
//	[HEADER(8)][IMAGE(4)][STATUS(4)]
type EndOfTransfer struct {
	// Image is the image identifier the failure relates to, if any
	Image uint32

	// Status is one of the Status* constants
	Status uint32
}

// Encode serializes the end-of-transfer packet into a fresh buffer.
func (p EndOfTransfer) Encode() []byte {
	buf := make([]byte, EndOfTransferSize)
	putHeader(buf, MsgEndOfTransfer, EndOfTransferSize)
	binary.LittleEndian.PutUint32(buf[8:12], p.Image)
	binary.LittleEndian.PutUint32(buf[12:16], p.Status)
	return buf
}

// DecodeEndOfTransfer parses and validates an end-of-transfer packet.
func DecodeEndOfTransfer(buf []byte) (EndOfTransfer, error) {
	if err := checkPacket(buf, MsgEndOfTransfer, EndOfTransferSize); err != nil {
		return EndOfTransfer{}, err
	}

	return EndOfTransfer{
		Image:  binary.LittleEndian.Uint32(buf[8:12]),
		Status: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

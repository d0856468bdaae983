// Package protocol implements the wire format of the Qualcomm Sahara
// boot-loader protocol spoken by SoCs in emergency download (EDL) mode.
//
// # Protocol Overview
//
// Every packet begins with an 8-byte header:
//
//	[MSG_TYPE(4)][LENGTH(4)]
//
// followed by fixed-size, little-endian fields with no implicit padding.
// The length field always equals the full wire size of the packet; a
// mismatch is a malformed packet and decoding rejects it.
//
// Unusually, the device initiates the exchange: the first packet on the
// wire is the device's HelloRequest, which the host answers with a
// HelloResponse selecting a protocol mode. All further exchanges are
// strictly half-duplex request/reply pairs, except that client commands
// use two phases (execute request, then execute data) before the device
// sends the command payload.
//
// # Encoding and Decoding
//
// Packet types provide an Encode method producing a fresh wire buffer,
// and a matching Decode* function that validates the header before
// extracting fields:
//
//	res := protocol.NewHelloResponse(protocol.ModeCommand)
//	frame := res.Encode()
//
//	req, err := protocol.DecodeHelloRequest(buf)
//
// Encoding and decoding use explicit per-field offsets rather than native
// struct layout, so the wire format is exact on every platform.
//
// # Status Codes
//
// Device failures arrive as EndOfTransfer packets carrying a status code.
// StatusMessage maps codes to readable text:
//
//	eot, err := protocol.DecodeEndOfTransfer(buf)
//	msg := protocol.StatusMessage(eot.Status)
//
// # Reference
//
// Packet layouts and constants follow the Sahara protocol specification
// (Qualcomm document 80-N1008-1) as observed on EDL-mode ROMs.
package protocol

package protocol

import (
	"encoding/binary"
	"fmt"
)

// Data-phase payloads carry no packet header; the device sends the raw
// bytes straight after the host's execute data packet.

// HardwareId is the payload of a successful GetHardwareId command.
//
// Wire layout (HardwareIdSize bytes):
//
//	[MODEL(2)][OEM(2)][ID(4)]
type HardwareId struct {
	// Model is the OEM-assigned model number
	Model uint16

	// Oem is the OEM identifier
	Oem uint16

	// Id is the MSM hardware identifier
	Id uint32
}

// DecodeHardwareId parses a GetHardwareId payload.
func DecodeHardwareId(buf []byte) (HardwareId, error) {
	if len(buf) < HardwareIdSize {
		return HardwareId{}, fmt.Errorf("hardware ID payload too short: got %d bytes, need %d", len(buf), HardwareIdSize)
	}

	return HardwareId{
		Model: binary.LittleEndian.Uint16(buf[0:2]),
		Oem:   binary.LittleEndian.Uint16(buf[2:4]),
		Id:    binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// Encode serializes the hardware ID the way the device sends it.
func (p HardwareId) Encode() []byte {
	buf := make([]byte, HardwareIdSize)
	binary.LittleEndian.PutUint16(buf[0:2], p.Model)
	binary.LittleEndian.PutUint16(buf[2:4], p.Oem)
	binary.LittleEndian.PutUint32(buf[4:8], p.Id)
	return buf
}

// SerialNo is the payload of a successful GetSerialNum command.
type SerialNo struct {
	// Serial is the raw 8-byte serial number
	Serial [SerialNoSize]byte
}

// DecodeSerialNo parses a GetSerialNum payload.
func DecodeSerialNo(buf []byte) (SerialNo, error) {
	if len(buf) < SerialNoSize {
		return SerialNo{}, fmt.Errorf("serial number payload too short: got %d bytes, need %d", len(buf), SerialNoSize)
	}

	var p SerialNo
	copy(p.Serial[:], buf[:SerialNoSize])
	return p, nil
}

// Encode serializes the serial number the way the device sends it.
func (p SerialNo) Encode() []byte {
	buf := make([]byte, SerialNoSize)
	copy(buf, p.Serial[:])
	return buf
}

// String formats the serial number as upper-case hex in wire order.
func (p SerialNo) String() string {
	return fmt.Sprintf("%02X%02X%02X%02X%02X%02X%02X%02X",
		p.Serial[0], p.Serial[1], p.Serial[2], p.Serial[3],
		p.Serial[4], p.Serial[5], p.Serial[6], p.Serial[7])
}

// OemPkHash is the payload of a successful GetOemPkHash command: three
// 32-byte hash blocks. On most devices all three are copies of the same
// hash, but some variants differ, so the blocks are kept distinct and any
// equality check is left to the caller.
type OemPkHash struct {
	Hash1 [OemPkHashBlockSize]byte
	Hash2 [OemPkHashBlockSize]byte
	Hash3 [OemPkHashBlockSize]byte
}

// DecodeOemPkHash parses a GetOemPkHash payload.
func DecodeOemPkHash(buf []byte) (OemPkHash, error) {
	if len(buf) < OemPkHashSize {
		return OemPkHash{}, fmt.Errorf("OEM PK hash payload too short: got %d bytes, need %d", len(buf), OemPkHashSize)
	}

	var p OemPkHash
	copy(p.Hash1[:], buf[0:OemPkHashBlockSize])
	copy(p.Hash2[:], buf[OemPkHashBlockSize:2*OemPkHashBlockSize])
	copy(p.Hash3[:], buf[2*OemPkHashBlockSize:3*OemPkHashBlockSize])
	return p, nil
}

// Encode serializes the hash blocks the way the device sends them.
func (p OemPkHash) Encode() []byte {
	buf := make([]byte, OemPkHashSize)
	copy(buf[0:OemPkHashBlockSize], p.Hash1[:])
	copy(buf[OemPkHashBlockSize:2*OemPkHashBlockSize], p.Hash2[:])
	copy(buf[2*OemPkHashBlockSize:3*OemPkHashBlockSize], p.Hash3[:])
	return buf
}

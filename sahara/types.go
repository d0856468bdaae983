package sahara

import "github.com/moffa90/go-sahara/protocol"

// Capabilities describes which operations the negotiated protocol version
// defines. It is computed exactly once, from the device's hello request.
type Capabilities struct {
	// DeviceInfo reports whether the hardware-ID and OEM key-hash
	// commands exist. Protocol version 3 removed them.
	DeviceInfo bool
}

func capabilitiesFor(version uint32) Capabilities {
	return Capabilities{
		DeviceInfo: version < 3,
	}
}

// Info is the diagnostic information collected by Client.Info.
//
// HardwareId and OemPkHash are nil when the negotiated protocol version
// does not define them, or when the device rejected the command.
type Info struct {
	// Serial is the device serial number
	Serial protocol.SerialNo

	// HardwareId identifies the SoC; nil when unavailable
	HardwareId *protocol.HardwareId

	// HardwareName is the SoC name resolved from the hardware ID
	HardwareName string

	// OemPkHash holds the three OEM public key hash blocks; nil when
	// unavailable. The blocks are surfaced distinctly; whether they must
	// match is a policy decision for the caller.
	OemPkHash *protocol.OemPkHash
}

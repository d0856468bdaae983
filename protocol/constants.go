package protocol

// ProtocolVersion is the Sahara protocol version this library negotiates
// in its HelloResponse. Version 2 is what every known EDL-mode ROM accepts.
const (
	ProtocolVersion    = 2
	ProtocolCompatible = 1
)

// Message types per the Sahara protocol specification (80-N1008-1).
const (
	// MsgHelloRequest is the device's unsolicited first packet
	MsgHelloRequest = 0x01

	// MsgHelloResponse is the host's reply selecting a protocol mode
	MsgHelloResponse = 0x02

	// MsgReadData is a device request for image data (image upload only)
	MsgReadData = 0x03

	// MsgEndOfTransfer signals any device-side failure, carrying a status code
	MsgEndOfTransfer = 0x04

	// MsgDoneRequest asks the device to finalize the session
	MsgDoneRequest = 0x05

	// MsgDoneResponse acknowledges session finalization
	MsgDoneResponse = 0x06

	// MsgResetRequest asks the device to reset
	MsgResetRequest = 0x07

	// MsgResetResponse acknowledges a reset request
	MsgResetResponse = 0x08

	// MsgMemoryDebug announces memory-debug table information
	MsgMemoryDebug = 0x09

	// MsgMemoryRead requests a 32-bit addressed memory read
	MsgMemoryRead = 0x0A

	// MsgReady indicates the device accepted the negotiated mode
	MsgReady = 0x0B

	// MsgSwitchMode requests a mode change outside the hello exchange
	MsgSwitchMode = 0x0C

	// MsgExecuteRequest starts the response phase of a client command
	MsgExecuteRequest = 0x0D

	// MsgExecuteResponse acknowledges a client command
	MsgExecuteResponse = 0x0E

	// MsgExecuteData starts the data phase of a client command
	MsgExecuteData = 0x0F

	// MsgMemoryDebug64 is the 64-bit addressed variant of MsgMemoryDebug
	MsgMemoryDebug64 = 0x10

	// MsgMemoryRead64 is the 64-bit addressed variant of MsgMemoryRead
	MsgMemoryRead64 = 0x11

	// MsgMemoryReadData64 carries data for a 64-bit addressed memory read
	MsgMemoryReadData64 = 0x12

	// MsgResetStateMachine resets the device's protocol state machine
	MsgResetStateMachine = 0x13
)

// Protocol modes negotiated via the hello exchange.
const (
	// ModeImageTxPending waits for an image transfer to start
	ModeImageTxPending = 0x00

	// ModeImageTxComplete indicates an image transfer finished
	ModeImageTxComplete = 0x01

	// ModeMemoryDebug enables raw memory reads
	ModeMemoryDebug = 0x02

	// ModeCommand enables client command execution
	ModeCommand = 0x03
)

// Client commands carried by execute packets.
const (
	// CmdGetSerialNum reads the device serial number (8 bytes)
	CmdGetSerialNum = 0x01

	// CmdGetHardwareId reads the MSM hardware ID (8 bytes)
	CmdGetHardwareId = 0x02

	// CmdGetOemPkHash reads the OEM public key hash (3 x 32 bytes)
	CmdGetOemPkHash = 0x03

	// CmdGetSblVersion reads the secondary boot loader version
	CmdGetSblVersion = 0x07

	// CmdGetCommandIdList reads the list of supported command IDs
	CmdGetCommandIdList = 0x08

	// CmdGetTrainingData reads DDR training data
	CmdGetTrainingData = 0x09
)

// Status codes carried by EndOfTransfer packets.
const (
	// StatusSuccess indicates the exchange completed without error
	StatusSuccess = 0x00

	// StatusInvalidCmd indicates the command was not recognized
	StatusInvalidCmd = 0x01

	// StatusProtocolMismatch indicates a protocol version mismatch
	StatusProtocolMismatch = 0x02

	// StatusInvalidTargetProtocol indicates an invalid target protocol version
	StatusInvalidTargetProtocol = 0x03

	// StatusInvalidHostProtocol indicates an invalid host protocol version
	StatusInvalidHostProtocol = 0x04

	// StatusInvalidPacketSize indicates a malformed packet length
	StatusInvalidPacketSize = 0x05

	// StatusUnexpectedImageId indicates an unexpected image identifier
	StatusUnexpectedImageId = 0x06

	// StatusInvalidHeaderSize indicates an invalid image header size
	StatusInvalidHeaderSize = 0x07

	// StatusInvalidDataSize indicates an invalid image data size
	StatusInvalidDataSize = 0x08

	// StatusInvalidImageType indicates an unsupported image type
	StatusInvalidImageType = 0x09

	// StatusInvalidTxLength indicates an invalid transmit length
	StatusInvalidTxLength = 0x0A

	// StatusInvalidRxLength indicates an invalid receive length
	StatusInvalidRxLength = 0x0B

	// StatusTxRxError indicates a general transmit/receive failure
	StatusTxRxError = 0x0C

	// StatusReadDataError indicates the device failed to read image data
	StatusReadDataError = 0x0D

	// StatusUnsupportedNumPhdrs indicates too many ELF program headers
	StatusUnsupportedNumPhdrs = 0x0E

	// StatusInvalidPhdrSize indicates an invalid ELF program header size
	StatusInvalidPhdrSize = 0x0F

	// StatusMultipleSharedSeg indicates multiple shared segments
	StatusMultipleSharedSeg = 0x10

	// StatusUninitPhdrLoc indicates an uninitialized program header location
	StatusUninitPhdrLoc = 0x11

	// StatusInvalidDestAddr indicates an invalid destination address
	StatusInvalidDestAddr = 0x12

	// StatusInvalidImgHdrDataSize indicates an invalid image header data size
	StatusInvalidImgHdrDataSize = 0x13

	// StatusInvalidElfHdr indicates an invalid ELF header
	StatusInvalidElfHdr = 0x14

	// StatusUnknownHostError indicates an unknown host-side error
	StatusUnknownHostError = 0x15

	// StatusTimeoutRx indicates a device receive timeout
	StatusTimeoutRx = 0x16

	// StatusTimeoutTx indicates a device transmit timeout
	StatusTimeoutTx = 0x17

	// StatusInvalidHostMode indicates an invalid mode requested by the host
	StatusInvalidHostMode = 0x18

	// StatusInvalidMemoryRead indicates an invalid memory read request
	StatusInvalidMemoryRead = 0x19

	// StatusInvalidDataSizeRequest indicates an invalid data size request
	StatusInvalidDataSizeRequest = 0x1A

	// StatusMemoryDebugNotSupported indicates memory debug is unavailable
	StatusMemoryDebugNotSupported = 0x1B

	// StatusInvalidModeSwitch indicates an invalid mode switch
	StatusInvalidModeSwitch = 0x1C

	// StatusCmdExecFailure indicates a client command failed to execute
	StatusCmdExecFailure = 0x1D

	// StatusExecCmdInvalidParam indicates invalid client command parameters
	StatusExecCmdInvalidParam = 0x1E

	// StatusExecCmdUnsupported indicates an unsupported client command
	StatusExecCmdUnsupported = 0x1F

	// StatusExecDataInvalidClientCmd indicates an invalid data-phase command
	StatusExecDataInvalidClientCmd = 0x20

	// StatusHashTableAuthFailure indicates hash table authentication failed
	StatusHashTableAuthFailure = 0x21

	// StatusHashVerificationFailure indicates image hash verification failed
	StatusHashVerificationFailure = 0x22

	// StatusHashTableNotFound indicates the image hash table is missing
	StatusHashTableNotFound = 0x23
)

// Wire sizes in bytes. Every packet is fixed-size with no implicit padding;
// the header's length field must equal the packet's wire size exactly.
const (
	// HeaderSize is the size of the common packet header
	HeaderSize = 8

	// HelloRequestSize is the size of a hello request, including the
	// six reserved words the ROM sends after the mode field
	HelloRequestSize = 0x30

	// HelloResponseSize mirrors HelloRequestSize; the host echoes the
	// same reserved tail back
	HelloResponseSize = 0x30

	// ResetRequestSize is the size of a reset request (header only)
	ResetRequestSize = HeaderSize

	// ResetResponseSize is the size of a reset response (header only)
	ResetResponseSize = HeaderSize

	// DoneRequestSize is the size of a done request (header only)
	DoneRequestSize = HeaderSize

	// DoneResponseSize is the size of a done response
	DoneResponseSize = HeaderSize + 4

	// ExecSize is the size of both execute-phase packets
	ExecSize = HeaderSize + 4

	// MemoryReadSize is the size of a 32-bit memory read request
	MemoryReadSize = HeaderSize + 8

	// EndOfTransferSize is the size of an end-of-transfer packet
	EndOfTransferSize = HeaderSize + 8

	// HardwareIdSize is the payload size of a GetHardwareId data phase
	HardwareIdSize = 8

	// SerialNoSize is the payload size of a GetSerialNum data phase
	SerialNoSize = 8

	// OemPkHashBlockSize is the size of a single OEM public key hash block
	OemPkHashBlockSize = 32

	// OemPkHashSize is the payload size of a GetOemPkHash data phase
	OemPkHashSize = 3 * OemPkHashBlockSize
)

// MaxTransferSize is the largest single bulk transfer the device accepts,
// derived from the max_len every known EDL ROM advertises in its hello.
const MaxTransferSize = 0x400

func messageTypeName(mt uint32) string {
	switch mt {
	case MsgHelloRequest:
		return "hello request"
	case MsgHelloResponse:
		return "hello response"
	case MsgReadData:
		return "read data"
	case MsgEndOfTransfer:
		return "end of transfer"
	case MsgDoneRequest:
		return "done request"
	case MsgDoneResponse:
		return "done response"
	case MsgResetRequest:
		return "reset request"
	case MsgResetResponse:
		return "reset response"
	case MsgMemoryDebug:
		return "memory debug"
	case MsgMemoryRead:
		return "memory read"
	case MsgReady:
		return "ready"
	case MsgSwitchMode:
		return "switch mode"
	case MsgExecuteRequest:
		return "execute request"
	case MsgExecuteResponse:
		return "execute response"
	case MsgExecuteData:
		return "execute data"
	case MsgMemoryDebug64:
		return "64-bit memory debug"
	case MsgMemoryRead64:
		return "64-bit memory read"
	case MsgMemoryReadData64:
		return "64-bit memory read data"
	case MsgResetStateMachine:
		return "reset state machine"
	default:
		return "unknown"
	}
}

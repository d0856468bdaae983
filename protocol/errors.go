package protocol

import "fmt"

// StatusMessage returns a human-readable message for a device status code.
// Unknown codes are formatted as hex rather than rejected, since ROMs keep
// growing the status table.
func StatusMessage(status uint32) string {
	switch status {
	case StatusSuccess:
		return "success"
	case StatusInvalidCmd:
		return "invalid command"
	case StatusProtocolMismatch:
		return "protocol mismatch"
	case StatusInvalidTargetProtocol:
		return "invalid target protocol version"
	case StatusInvalidHostProtocol:
		return "invalid host protocol version"
	case StatusInvalidPacketSize:
		return "invalid packet size"
	case StatusUnexpectedImageId:
		return "unexpected image ID"
	case StatusInvalidHeaderSize:
		return "invalid header size"
	case StatusInvalidDataSize:
		return "invalid data size"
	case StatusInvalidImageType:
		return "invalid image type"
	case StatusInvalidTxLength:
		return "invalid transmit length"
	case StatusInvalidRxLength:
		return "invalid receive length"
	case StatusTxRxError:
		return "general transmit/receive error"
	case StatusReadDataError:
		return "error reading image data"
	case StatusUnsupportedNumPhdrs:
		return "unsupported number of program headers"
	case StatusInvalidPhdrSize:
		return "invalid program header size"
	case StatusMultipleSharedSeg:
		return "multiple shared segments"
	case StatusUninitPhdrLoc:
		return "uninitialized program header location"
	case StatusInvalidDestAddr:
		return "invalid destination address"
	case StatusInvalidImgHdrDataSize:
		return "invalid image header data size"
	case StatusInvalidElfHdr:
		return "invalid ELF header"
	case StatusUnknownHostError:
		return "unknown host error"
	case StatusTimeoutRx:
		return "receive timeout"
	case StatusTimeoutTx:
		return "transmit timeout"
	case StatusInvalidHostMode:
		return "invalid host mode"
	case StatusInvalidMemoryRead:
		return "invalid memory read"
	case StatusInvalidDataSizeRequest:
		return "invalid data size request"
	case StatusMemoryDebugNotSupported:
		return "memory debug not supported"
	case StatusInvalidModeSwitch:
		return "invalid mode switch"
	case StatusCmdExecFailure:
		return "command execution failure"
	case StatusExecCmdInvalidParam:
		return "invalid command parameter"
	case StatusExecCmdUnsupported:
		return "command unsupported"
	case StatusExecDataInvalidClientCmd:
		return "invalid client command in data phase"
	case StatusHashTableAuthFailure:
		return "hash table authentication failure"
	case StatusHashVerificationFailure:
		return "hash verification failure"
	case StatusHashTableNotFound:
		return "hash table not found"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", status)
	}
}

// MessageTypeName returns a human-readable name for a message type.
// Unknown values report as "unknown".
func MessageTypeName(messageType uint32) string {
	return messageTypeName(messageType)
}

// ModeName returns a human-readable name for a protocol mode.
func ModeName(mode uint32) string {
	switch mode {
	case ModeImageTxPending:
		return "image transfer pending"
	case ModeImageTxComplete:
		return "image transfer complete"
	case ModeMemoryDebug:
		return "memory debug"
	case ModeCommand:
		return "command"
	default:
		return fmt.Sprintf("unknown mode 0x%02X", mode)
	}
}

// CommandName returns a human-readable name for a client command.
func CommandName(command uint32) string {
	switch command {
	case CmdGetSerialNum:
		return "get serial number"
	case CmdGetHardwareId:
		return "get hardware ID"
	case CmdGetOemPkHash:
		return "get OEM PK hash"
	case CmdGetSblVersion:
		return "get SBL version"
	case CmdGetCommandIdList:
		return "get command ID list"
	case CmdGetTrainingData:
		return "get training data"
	default:
		return fmt.Sprintf("unknown command 0x%02X", command)
	}
}

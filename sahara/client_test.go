package sahara

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-sahara/protocol"
)

// mockTransport scripts the device side of a session: each Read pops the
// next canned reply, each Write is captured for assertions.
type mockTransport struct {
	responses [][]byte
	respIdx   int
	writes    [][]byte
	readErr   error
	writeErr  error
}

func (m *mockTransport) Read(ctx context.Context, max int) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.respIdx >= len(m.responses) {
		return nil, errors.New("mock: no scripted response left")
	}
	resp := m.responses[m.respIdx]
	m.respIdx++
	if len(resp) > max {
		resp = resp[:max]
	}
	return resp, nil
}

func (m *mockTransport) Write(ctx context.Context, data []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, append([]byte(nil), data...))
	return len(data), nil
}

func (m *mockTransport) respond(packets ...[]byte) {
	m.responses = append(m.responses, packets...)
}

// execWrites counts captured writes that are execute-phase packets.
func (m *mockTransport) execWrites() int {
	n := 0
	for _, w := range m.writes {
		if len(w) < 4 {
			continue
		}
		mt := binary.LittleEndian.Uint32(w[0:4])
		if mt == protocol.MsgExecuteRequest || mt == protocol.MsgExecuteData {
			n++
		}
	}
	return n
}

type testLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *testLogger) Debug(msg string, kv ...interface{}) { l.debugMsgs = append(l.debugMsgs, msg) }
func (l *testLogger) Info(msg string, kv ...interface{})  { l.infoMsgs = append(l.infoMsgs, msg) }
func (l *testLogger) Error(msg string, kv ...interface{}) { l.errorMsgs = append(l.errorMsgs, msg) }

// rawPacket builds a header-only device packet for types the host never
// encodes itself (ready, execute response, ...).
func rawPacket(messageType, length uint32, body ...byte) []byte {
	buf := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], messageType)
	binary.LittleEndian.PutUint32(buf[4:8], length)
	copy(buf[8:], body)
	return buf
}

func readyPacket() []byte {
	return rawPacket(protocol.MsgReady, 8)
}

// executeResponsePacket mimics the device's acknowledgement, which carries
// the command and the upcoming payload length after the header.
func executeResponsePacket(command, dataLen uint32) []byte {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint32(body[0:4], command)
	binary.LittleEndian.PutUint32(body[4:8], dataLen)
	return rawPacket(protocol.MsgExecuteResponse, 16, body...)
}

func deviceHello(version, mode uint32) []byte {
	return protocol.HelloRequest{
		Version:    version,
		Compatible: 1,
		MaxLen:     protocol.MaxTransferSize,
		Mode:       mode,
	}.Encode()
}

// negotiated returns a client that has completed the hello exchange.
func negotiated(t *testing.T, m *mockTransport, version uint32, opts ...Option) *Client {
	t.Helper()

	m.respond(deviceHello(version, protocol.ModeImageTxPending))
	c := New(m, opts...)
	if _, err := c.Hello(context.Background()); err != nil {
		t.Fatalf("Hello: %v", err)
	}
	return c
}

func TestHello(t *testing.T) {
	m := &mockTransport{}
	m.respond(deviceHello(2, protocol.ModeImageTxPending))

	c := New(m)
	req, err := c.Hello(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Version != 2 {
		t.Errorf("version = %d, want 2", req.Version)
	}
	if c.Version() != 2 {
		t.Errorf("cached version = %d, want 2", c.Version())
	}
	if !c.Capabilities().DeviceInfo {
		t.Error("version 2 should have device info capability")
	}
}

func TestHelloCapabilityGate(t *testing.T) {
	tests := []struct {
		version uint32
		want    bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{4, false},
	}

	for _, tt := range tests {
		m := &mockTransport{}
		c := negotiated(t, m, tt.version)
		if got := c.Capabilities().DeviceInfo; got != tt.want {
			t.Errorf("version %d: DeviceInfo = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestHelloRejectsWrongMessageType(t *testing.T) {
	// Any first packet other than a hello request is a protocol violation.
	wrongTypes := []uint32{
		protocol.MsgHelloResponse,
		protocol.MsgReadData,
		protocol.MsgEndOfTransfer,
		protocol.MsgDoneResponse,
		protocol.MsgResetResponse,
		protocol.MsgReady,
		protocol.MsgExecuteResponse,
		0x42,
	}

	for _, mt := range wrongTypes {
		m := &mockTransport{}
		m.respond(rawPacket(mt, 8))

		c := New(m)
		_, err := c.Hello(context.Background())
		if err == nil {
			t.Fatalf("type 0x%02X: expected error, got nil", mt)
		}

		var umErr *UnexpectedMessageError
		if !errors.As(err, &umErr) {
			t.Fatalf("type 0x%02X: error = %v, want UnexpectedMessageError", mt, err)
		}
		if umErr.Got != mt || umErr.Expected != protocol.MsgHelloRequest {
			t.Errorf("type 0x%02X: got %+v", mt, umErr)
		}
	}
}

func TestHelloRejectsMalformedLength(t *testing.T) {
	m := &mockTransport{}
	buf := deviceHello(2, protocol.ModeImageTxPending)
	binary.LittleEndian.PutUint32(buf[4:8], 0x28)
	m.respond(buf)

	c := New(m)
	if _, err := c.Hello(context.Background()); err == nil {
		t.Fatal("expected error for malformed hello length, got nil")
	}
}

func TestSwitchMode(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(readyPacket())

	if err := c.SwitchMode(context.Background(), protocol.ModeCommand); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(m.writes))
	}

	sent, err := protocol.DecodeHelloResponse(m.writes[0])
	if err != nil {
		t.Fatalf("host sent malformed hello response: %v", err)
	}
	if sent.Version != 2 || sent.Compatible != 1 || sent.Mode != protocol.ModeCommand {
		t.Errorf("hello response = %+v", sent)
	}
}

func TestSwitchModeDeviceRejection(t *testing.T) {
	// Scenario: the device answers the mode switch with an end-of-transfer
	// carrying status 0x06; the client must surface it and go no further.
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(protocol.EndOfTransfer{Status: protocol.StatusUnexpectedImageId}.Encode())

	_, err := c.Info(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var msErr *ModeSwitchError
	if !errors.As(err, &msErr) {
		t.Fatalf("error = %v, want ModeSwitchError", err)
	}
	if msErr.Status != 0x06 {
		t.Errorf("status = 0x%02X, want 0x06", msErr.Status)
	}
	if !strings.Contains(msErr.Error(), "unexpected image ID") {
		t.Errorf("error message lacks mapped status text: %v", msErr)
	}
	if n := m.execWrites(); n != 0 {
		t.Errorf("exec writes after failed mode switch = %d, want 0", n)
	}
}

func TestSwitchModeUnexpectedReply(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(rawPacket(protocol.MsgMemoryDebug, 8))

	err := c.SwitchMode(context.Background(), protocol.ModeCommand)

	var umErr *UnexpectedMessageError
	if !errors.As(err, &umErr) {
		t.Fatalf("error = %v, want UnexpectedMessageError", err)
	}
	if umErr.Expected != protocol.MsgReady || umErr.Got != protocol.MsgMemoryDebug {
		t.Errorf("got %+v", umErr)
	}
}

func TestExecTwoPhase(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(
		readyPacket(),
		executeResponsePacket(protocol.CmdGetSerialNum, 8),
		[]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x11, 0x22, 0x33},
	)

	if err := c.SwitchMode(context.Background(), protocol.ModeCommand); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	payload, err := c.Exec(context.Background(), protocol.CmdGetSerialNum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serial, err := protocol.DecodeSerialNo(payload)
	if err != nil {
		t.Fatalf("DecodeSerialNo: %v", err)
	}
	if got := serial.String(); got != "DEADBEEF00112233" {
		t.Errorf("serial = %q, want %q", got, "DEADBEEF00112233")
	}

	// One mode switch write plus exactly the two execute phases.
	if n := m.execWrites(); n != 2 {
		t.Fatalf("exec writes = %d, want 2", n)
	}

	_, reqPhase, err := protocol.DecodeExec(m.writes[1])
	if err != nil || reqPhase != protocol.MsgExecuteRequest {
		t.Errorf("first exec write: phase 0x%02X, err %v", reqPhase, err)
	}
	_, dataPhase, err := protocol.DecodeExec(m.writes[2])
	if err != nil || dataPhase != protocol.MsgExecuteData {
		t.Errorf("second exec write: phase 0x%02X, err %v", dataPhase, err)
	}
}

func TestExecHaltsBeforeDataPhase(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
	}{
		{
			name:  "end of transfer",
			reply: protocol.EndOfTransfer{Status: protocol.StatusExecCmdUnsupported}.Encode(),
		},
		{
			name:  "unrecognized reply",
			reply: rawPacket(protocol.MsgReadData, 8),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{}
			c := negotiated(t, m, 2)
			m.respond(readyPacket(), tt.reply)

			if err := c.SwitchMode(context.Background(), protocol.ModeCommand); err != nil {
				t.Fatalf("SwitchMode: %v", err)
			}

			_, err := c.Exec(context.Background(), protocol.CmdGetTrainingData)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			// The data phase must be structurally unreachable: exactly one
			// execute write went out.
			if n := m.execWrites(); n != 1 {
				t.Errorf("exec writes = %d, want 1", n)
			}
		})
	}
}

func TestExecRequiresReadyState(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2)

	if _, err := c.Exec(context.Background(), protocol.CmdGetSerialNum); !errors.Is(err, ErrNoSession) {
		t.Errorf("error = %v, want ErrNoSession", err)
	}
}

func TestExecEnforcesVersionGate(t *testing.T) {
	// The capability check is evaluated from the hello exchange, so gated
	// commands never reach the wire on protocol version 3.
	m := &mockTransport{}
	c := negotiated(t, m, 3)
	m.respond(readyPacket())

	if err := c.SwitchMode(context.Background(), protocol.ModeCommand); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	_, err := c.Exec(context.Background(), protocol.CmdGetHardwareId)

	var ucErr *UnsupportedCommandError
	if !errors.As(err, &ucErr) {
		t.Fatalf("error = %v, want UnsupportedCommandError", err)
	}
	if n := m.execWrites(); n != 0 {
		t.Errorf("exec writes = %d, want 0", n)
	}
}

func TestOperationsRequireHello(t *testing.T) {
	ctx := context.Background()

	if err := New(&mockTransport{}).SwitchMode(ctx, protocol.ModeCommand); !errors.Is(err, ErrNoSession) {
		t.Errorf("SwitchMode: error = %v, want ErrNoSession", err)
	}
	if err := New(&mockTransport{}).Reset(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Reset: error = %v, want ErrNoSession", err)
	}
	if _, err := New(&mockTransport{}).Info(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Info: error = %v, want ErrNoSession", err)
	}
}

func TestInfoVersionGating(t *testing.T) {
	serialPayload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x11, 0x22, 0x33}
	hwPayload := protocol.HardwareId{Model: 0x1A, Oem: 0x2B, Id: 0x000840E1}.Encode()
	hashPayload := make([]byte, protocol.OemPkHashSize)

	t.Run("version 3 issues exactly one command", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 3)
		m.respond(
			readyPacket(),
			executeResponsePacket(protocol.CmdGetSerialNum, 8),
			serialPayload,
		)

		info, err := c.Info(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if n := m.execWrites(); n != 2 {
			t.Errorf("exec writes = %d, want 2 (one command)", n)
		}
		if info.HardwareId != nil || info.OemPkHash != nil {
			t.Error("version-gated fields must stay nil on version 3")
		}
		if got := info.Serial.String(); got != "DEADBEEF00112233" {
			t.Errorf("serial = %q", got)
		}
	})

	t.Run("version 2 issues exactly three commands", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 2)
		m.respond(
			readyPacket(),
			executeResponsePacket(protocol.CmdGetSerialNum, 8),
			serialPayload,
			executeResponsePacket(protocol.CmdGetHardwareId, 8),
			hwPayload,
			executeResponsePacket(protocol.CmdGetOemPkHash, protocol.OemPkHashSize),
			hashPayload,
		)

		info, err := c.Info(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if n := m.execWrites(); n != 6 {
			t.Errorf("exec writes = %d, want 6 (three commands)", n)
		}
		if info.HardwareId == nil {
			t.Fatal("hardware ID missing")
		}
		if info.HardwareId.Id != 0x000840E1 {
			t.Errorf("hardware ID = 0x%08X", info.HardwareId.Id)
		}
		if info.HardwareName != "SDM845" {
			t.Errorf("hardware name = %q, want SDM845", info.HardwareName)
		}
		if info.OemPkHash == nil {
			t.Error("OEM PK hash missing")
		}
	})
}

func TestInfoSkipsRejectedCommands(t *testing.T) {
	// A device that refuses a version-gated command does not abort the
	// whole info collection.
	serialPayload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	hashPayload := make([]byte, protocol.OemPkHashSize)

	m := &mockTransport{}
	log := &testLogger{}
	c := negotiated(t, m, 2, WithLogger(log))
	m.respond(
		readyPacket(),
		executeResponsePacket(protocol.CmdGetSerialNum, 8),
		serialPayload,
		protocol.EndOfTransfer{Status: protocol.StatusExecCmdUnsupported}.Encode(),
		executeResponsePacket(protocol.CmdGetOemPkHash, protocol.OemPkHashSize),
		hashPayload,
	)

	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.HardwareId != nil {
		t.Error("rejected hardware ID should stay nil")
	}
	if info.OemPkHash == nil {
		t.Error("OEM PK hash should still be collected")
	}
	if len(log.infoMsgs) == 0 {
		t.Error("skipped command should be logged")
	}
}

func TestReadMemory(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}

	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(readyPacket(), data)

	got, err := c.ReadMemory(context.Background(), 0x1000, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 16 || got[15] != 0x0F {
		t.Errorf("data = %02x", got)
	}

	req, err := protocol.DecodeMemoryRead(m.writes[1])
	if err != nil {
		t.Fatalf("host sent malformed memory read: %v", err)
	}
	if req.Address != 0x1000 || req.Size != 16 {
		t.Errorf("memory read = %+v", req)
	}
}

func TestReadMemoryChunksLargeRequests(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2, WithMaxTransfer(32))
	m.respond(readyPacket(), make([]byte, 32), make([]byte, 32), make([]byte, 16))

	got, err := c.ReadMemory(context.Background(), 0x4000, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 80 {
		t.Fatalf("data length = %d, want 80", len(got))
	}

	// Hello response write plus three memory read requests.
	if len(m.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(m.writes))
	}
	last, err := protocol.DecodeMemoryRead(m.writes[3])
	if err != nil {
		t.Fatalf("DecodeMemoryRead: %v", err)
	}
	if last.Address != 0x4040 || last.Size != 16 {
		t.Errorf("final chunk request = %+v", last)
	}
}

func TestReadMemoryShortRead(t *testing.T) {
	// Scenario: the device returns fewer bytes than requested; the short
	// buffer must be flagged, never interpreted as valid data.
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(readyPacket(), make([]byte, 12))

	_, err := c.ReadMemory(context.Background(), 0x1000, 64)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var srErr *ShortReadError
	if !errors.As(err, &srErr) {
		t.Fatalf("error = %v, want ShortReadError", err)
	}
	if srErr.Want != 64 || srErr.Got != 12 || srErr.Address != 0x1000 {
		t.Errorf("got %+v", srErr)
	}
}

func TestReadMemoryDeviceRefusal(t *testing.T) {
	m := &mockTransport{}
	c := negotiated(t, m, 2)
	m.respond(readyPacket(), protocol.EndOfTransfer{Status: protocol.StatusMemoryDebugNotSupported}.Encode())

	_, err := c.ReadMemory(context.Background(), 0x1000, 64)

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("error = %v, want DeviceError", err)
	}
	if devErr.Status != protocol.StatusMemoryDebugNotSupported {
		t.Errorf("status = 0x%02X", devErr.Status)
	}
}

func TestReset(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 2)
		m.respond(protocol.ResetResponse{}.Encode())

		if err := c.Reset(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("device failure", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 2)
		m.respond(protocol.EndOfTransfer{Status: protocol.StatusTxRxError}.Encode())

		err := c.Reset(context.Background())
		var devErr *DeviceError
		if !errors.As(err, &devErr) {
			t.Fatalf("error = %v, want DeviceError", err)
		}
	})

	t.Run("unexpected reply is logged, not fatal", func(t *testing.T) {
		m := &mockTransport{}
		log := &testLogger{}
		c := negotiated(t, m, 2, WithLogger(log))
		m.respond(rawPacket(protocol.MsgReadData, 8))

		if err := c.Reset(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(log.errorMsgs) == 0 {
			t.Error("unexpected reply should be logged")
		}
	})
}

func TestDone(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 2)
		m.respond(readyPacket(), protocol.DoneResponse{Status: 0}.Encode())

		if err := c.Done(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Mode switch first, then the done request.
		if len(m.writes) != 2 {
			t.Fatalf("writes = %d, want 2", len(m.writes))
		}
		if _, err := protocol.DecodeDoneRequest(m.writes[1]); err != nil {
			t.Errorf("host sent malformed done request: %v", err)
		}
	})

	t.Run("device failure", func(t *testing.T) {
		m := &mockTransport{}
		c := negotiated(t, m, 2)
		m.respond(readyPacket(), protocol.EndOfTransfer{Status: protocol.StatusInvalidHostMode}.Encode())

		err := c.Done(context.Background())
		var devErr *DeviceError
		if !errors.As(err, &devErr) {
			t.Fatalf("error = %v, want DeviceError", err)
		}
	})
}

func TestTransportErrorsPropagate(t *testing.T) {
	m := &mockTransport{readErr: errors.New("bulk transfer failed")}
	c := New(m)

	if _, err := c.Hello(context.Background()); err == nil || !strings.Contains(err.Error(), "bulk transfer failed") {
		t.Errorf("error = %v, want wrapped transport failure", err)
	}
}

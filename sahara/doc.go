// Package sahara provides a high-level client for the Qualcomm Sahara
// boot-loader protocol spoken by SoCs in emergency download (EDL) mode.
//
// # Overview
//
// The client drives the full handshake and every subsequent exchange:
//   - Consuming the device's unsolicited hello request
//   - Negotiating a protocol mode
//   - Executing read-only diagnostic commands (serial number, hardware
//     ID, OEM public key hashes)
//   - Reading raw device memory in memory-debug mode
//   - Terminating the session via reset or done
//
// The protocol is half-duplex and device-initiated: the very first packet
// on the wire comes from the device, and the host reacts. Command
// availability depends on the protocol version the device reports; the
// client computes that capability set once per session.
//
// # Basic Usage
//
//	device, err := usb.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer device.Close()
//
//	client := sahara.New(device)
//
//	if _, err := client.Hello(ctx); err != nil {
//	    return err
//	}
//
//	info, err := client.Info(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("serial:", info.Serial)
//
//	_ = client.Reset(ctx)
//
// # Error Handling
//
// Every device-reported failure is a typed, recoverable error
// (*ModeSwitchError, *CommandError, *DeviceError); whether to abort the
// process is the caller's decision, not the library's. Transport timeouts
// and I/O failures propagate wrapped from the transport. No protocol
// exchange is ever silently retried.
package sahara

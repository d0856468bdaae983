// Package usb provides the hardware transport for Sahara sessions: it
// locates a device in EDL mode on the bus, claims its vendor interface
// and performs single bulk transfers with a bounded per-transfer timeout.
//
// The package is a thin layer over github.com/google/gousb. It performs
// no protocol interpretation and never retries a transfer; the only retry
// anywhere is interface claiming, which a device briefly rejects after a
// mode switch or a prior session's reset.
//
//	device, err := usb.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer device.Close()
//
//	client := sahara.New(device)
package usb

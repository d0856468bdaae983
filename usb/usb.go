package usb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/gousb"

	"github.com/moffa90/go-sahara/sahara"
)

var _ sahara.Transport = (*Device)(nil)

// Device is an open Sahara session transport: a claimed EDL-mode USB
// interface with one bulk-IN and one bulk-OUT endpoint. It is exclusively
// owned by its session; no sharing across goroutines is supported, and at
// most one transfer is ever in flight.
type Device struct {
	config Config

	usbCtx *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	in     *gousb.InEndpoint
	out    *gousb.OutEndpoint
}

// Open enumerates attached USB devices, opens the first one matching the
// configured vendor/product identity, selects the first configuration's
// first interface and alternate setting, locates its bulk endpoints and
// claims the interface with bounded retry.
func Open(ctx context.Context, opts ...Option) (*Device, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	usbCtx := gousb.NewContext()

	dev, err := openMatching(usbCtx, cfg)
	if err != nil {
		usbCtx.Close()
		return nil, err
	}

	d := &Device{config: cfg, usbCtx: usbCtx, dev: dev}
	if err := d.setup(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func openMatching(usbCtx *gousb.Context, cfg Config) (*gousb.Device, error) {
	devs, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == cfg.Vendor && desc.Product == cfg.Product
	})
	if len(devs) == 0 {
		if err != nil {
			return nil, &TransportError{Op: "enumerate", Err: err}
		}
		return nil, &DeviceNotFoundError{Vendor: cfg.Vendor, Product: cfg.Product}
	}

	// One EDL device at a time; extra matches are closed, not guessed at.
	for _, extra := range devs[1:] {
		extra.Close()
	}
	return devs[0], nil
}

func (d *Device) setup(ctx context.Context) error {
	log := d.config.Logger

	if err := d.dev.SetAutoDetach(true); err != nil {
		return &TransportError{Op: "auto-detach", Err: err}
	}

	manufacturer, err := d.dev.Manufacturer()
	if err != nil {
		manufacturer = "[no manufacturer]"
	}
	product, err := d.dev.Product()
	if err != nil {
		product = "[no product]"
	}
	log.Info().Str("manufacturer", manufacturer).Str("product", product).Msg("found device")

	desc := d.dev.Desc
	log.Debug().
		Stringer("speed", desc.Speed).
		Int("max_packet_size", packetSizeFor(desc.Speed)).
		Msg("device speed")

	cfgDesc, err := firstConfig(desc)
	if err != nil {
		return err
	}
	if len(cfgDesc.Interfaces) == 0 {
		return fmt.Errorf("configuration %d has no interfaces", cfgDesc.Number)
	}

	// First interface, first alternate setting. EDL ROMs report exactly
	// one vendor-specific interface; no class filtering is applied.
	ifDesc := cfgDesc.Interfaces[0]
	alt := ifDesc.AltSettings[0]

	inDesc, outDesc, err := bulkEndpoints(alt)
	if err != nil {
		return err
	}

	gcfg, err := d.dev.Config(cfgDesc.Number)
	if err != nil {
		return &TransportError{Op: "set configuration", Err: err}
	}
	d.cfg = gcfg

	intf, err := claimInterface(ctx, d.config, ifDesc.Number, func() (*gousb.Interface, error) {
		return gcfg.Interface(ifDesc.Number, 0)
	})
	if err != nil {
		return err
	}
	d.intf = intf

	in, err := intf.InEndpoint(inDesc.Number)
	if err != nil {
		return &TransportError{Op: "open bulk-in endpoint", Err: err}
	}
	out, err := intf.OutEndpoint(outDesc.Number)
	if err != nil {
		return &TransportError{Op: "open bulk-out endpoint", Err: err}
	}
	d.in, d.out = in, out

	log.Debug().
		Int("interface", ifDesc.Number).
		Uint8("in", uint8(inDesc.Address)).
		Uint8("out", uint8(outDesc.Address)).
		Msg("interface claimed")

	return nil
}

// firstConfig picks the device's first configuration by number.
func firstConfig(desc *gousb.DeviceDesc) (gousb.ConfigDesc, error) {
	nums := make([]int, 0, len(desc.Configs))
	for num := range desc.Configs {
		nums = append(nums, num)
	}
	if len(nums) == 0 {
		return gousb.ConfigDesc{}, fmt.Errorf("device reports no configurations")
	}
	sort.Ints(nums)
	return desc.Configs[nums[0]], nil
}

// bulkEndpoints finds the first bulk endpoint in each direction, ordered
// by endpoint number.
func bulkEndpoints(alt gousb.InterfaceSetting) (in, out gousb.EndpointDesc, err error) {
	eps := make([]gousb.EndpointDesc, 0, len(alt.Endpoints))
	for _, ep := range alt.Endpoints {
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].Number < eps[j].Number })

	var haveIn, haveOut bool
	for _, ep := range eps {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionIn && !haveIn:
			in, haveIn = ep, true
		case ep.Direction == gousb.EndpointDirectionOut && !haveOut:
			out, haveOut = ep, true
		}
	}

	if !haveIn {
		return in, out, fmt.Errorf("no bulk-in endpoint on alternate setting %d", alt.Alternate)
	}
	if !haveOut {
		return in, out, fmt.Errorf("no bulk-out endpoint on alternate setting %d", alt.Alternate)
	}
	return in, out, nil
}

// claimInterface attempts the claim in a bounded loop. The device rejects
// claims for a short window after enumeration and after a prior session's
// reset or done sequence.
func claimInterface(ctx context.Context, cfg Config, number int, claim func() (*gousb.Interface, error)) (*gousb.Interface, error) {
	start := time.Now()
	deadline := start.Add(cfg.ClaimTimeout)

	for {
		intf, err := claim()
		if err == nil {
			return intf, nil
		}

		if time.Now().After(deadline) {
			return nil, &ClaimTimeoutError{Interface: number, Elapsed: time.Since(start)}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.ClaimPeriod):
		}
	}
}

func packetSizeFor(speed gousb.Speed) int {
	switch speed {
	case gousb.SpeedLow, gousb.SpeedFull:
		return 64
	case gousb.SpeedHigh:
		return 512
	case gousb.SpeedSuper:
		return 1024
	default:
		return 0
	}
}

// Read performs one bulk-IN transfer, returning at most max bytes. The
// transfer races the configured timeout; expiry reports a TimeoutError
// and failure a TransportError, both immediately, with no retry.
func (d *Device) Read(ctx context.Context, max int) ([]byte, error) {
	buf := make([]byte, max)

	tctx, cancel := context.WithTimeout(ctx, d.config.TransferTimeout)
	defer cancel()

	n, err := d.in.ReadContext(tctx, buf)
	if err != nil {
		if tctx.Err() != nil {
			return nil, &TimeoutError{Op: "bulk-in"}
		}
		return nil, &TransportError{Op: "bulk-in", Err: err}
	}

	head := n
	if head > 64 {
		head = 64
	}
	d.config.Logger.Debug().Int("len", n).Hex("head", buf[:head]).Msg("device says")

	return buf[:n], nil
}

// Write performs one bulk-OUT transfer, returning the number of bytes
// actually transmitted.
func (d *Device) Write(ctx context.Context, data []byte) (int, error) {
	tctx, cancel := context.WithTimeout(ctx, d.config.TransferTimeout)
	defer cancel()

	n, err := d.out.WriteContext(tctx, data)
	if err != nil {
		if tctx.Err() != nil {
			return 0, &TimeoutError{Op: "bulk-out"}
		}
		return n, &TransportError{Op: "bulk-out", Err: err}
	}
	return n, nil
}

// Close releases the claimed interface and every USB handle. The Device
// must not be used afterwards.
func (d *Device) Close() error {
	var firstErr error

	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		if err := d.cfg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.cfg = nil
	}
	if d.dev != nil {
		if err := d.dev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.dev = nil
	}
	if d.usbCtx != nil {
		if err := d.usbCtx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.usbCtx = nil
	}
	return firstErr
}

//go:build !darwin && !windows && cgo
// +build !darwin,!windows,cgo

// Package midirtmidi reads MIDI input through RtMidi on platforms without a
// native driver (ALSA on Linux).
package midirtmidi

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type listener struct {
	in   drivers.In
	stop func()
}

// Driver listens to RtMidi input ports.
type Driver struct {
	logger    contracts.Logger
	drv       *rtmididrv.Driver
	onPacket  contracts.PacketHandler
	mu        sync.Mutex
	listeners map[string]listener // keyed by port name
}

// NewDriver initializes the RtMidi driver.
func NewDriver(options *contracts.ClientOptions, onPacket contracts.PacketHandler) (contracts.MIDIDriver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: rtmididrv: %v", contracts.ErrClientCreate, err)
	}
	options.Logger.Info("RtMidi driver created")

	return &Driver{
		logger:    options.Logger,
		drv:       drv,
		onPacket:  onPacket,
		listeners: make(map[string]listener),
	}, nil
}

// Sources lists the RtMidi input ports.
func (d *Driver) Sources() ([]contracts.MidiDevice, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}

	devices := make([]contracts.MidiDevice, len(ins))
	for i, in := range ins {
		devices[i] = contracts.MidiDevice{Index: i, Handle: in.String(), Name: in.String()}
	}
	return devices, nil
}

// Connect opens the port and starts listening.
func (d *Driver) Connect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.listeners[device.Handle]; ok {
		return nil
	}

	ins, err := d.drv.Ins()
	if err != nil {
		return fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	if device.Index < 0 || device.Index >= len(ins) || ins[device.Index].String() != device.Handle {
		return fmt.Errorf("%w: %s", contracts.ErrUnknownDevice, device.Name)
	}

	in := ins[device.Index]
	if err := in.Open(); err != nil {
		return fmt.Errorf("%w: open %q: %v", contracts.ErrConnect, device.Name, err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		d.onPacket(msg)
	}, midi.HandleError(func(listenErr error) {
		d.logger.Warn("MIDI listener error",
			d.logger.Field().String("device", device.Name),
			d.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("%w: listen %q: %v", contracts.ErrConnect, device.Name, err)
	}

	d.listeners[device.Handle] = listener{in: in, stop: stop}
	return nil
}

// Disconnect stops listening and closes the port.
func (d *Driver) Disconnect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.listeners[device.Handle]
	if !ok {
		return nil
	}
	delete(d.listeners, device.Handle)
	l.stop()
	return l.in.Close()
}

// Close closes every port and the RtMidi driver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for handle, l := range d.listeners {
		l.stop()
		_ = l.in.Close()
		delete(d.listeners, handle)
	}
	return d.drv.Close()
}

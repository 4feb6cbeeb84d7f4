//go:build darwin
// +build darwin

package mididarwin

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Driver connects CoreMIDI sources to a single input port on macOS.
type Driver struct {
	logger    contracts.Logger
	client    coremidi.Client
	inputPort coremidi.InputPort
	onPacket  contracts.PacketHandler
	mu        sync.Mutex
	conns     map[string]internalPortConnection // keyed by source handle
}

// NewDriver creates the CoreMIDI client and input port. Packets from every
// connected source are passed to onPacket on the CoreMIDI delivery thread.
func NewDriver(options *contracts.ClientOptions, onPacket contracts.PacketHandler) (contracts.MIDIDriver, error) {
	config := contracts.DefaultMIDIConfig()
	if options.MIDIConfig != nil {
		config = *options.MIDIConfig
	}

	client, err := coremidi.NewClient(config.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrClientCreate, err)
	}
	options.Logger.Info("CoreMIDI client created", options.Logger.Field().String("client", config.ClientName))

	d := &Driver{
		logger:   options.Logger,
		client:   client,
		onPacket: onPacket,
		conns:    make(map[string]internalPortConnection),
	}

	d.inputPort, err = coremidi.NewInputPort(client, config.PortName, d.handleMIDIMessage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrPortCreate, err)
	}
	options.Logger.Info("CoreMIDI input port created", options.Logger.Field().String("port", config.PortName))
	return d, nil
}

// Sources lists all CoreMIDI sources.
func (d *Driver) Sources() ([]contracts.MidiDevice, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}

	devices := make([]contracts.MidiDevice, len(sources))
	for i, source := range sources {
		devices[i] = contracts.MidiDevice{
			Index:  i,
			Handle: sourceHandle(source),
			Name:   source.Name(),
		}
	}
	return devices, nil
}

// Connect attaches the source to the input port.
func (d *Driver) Connect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	source, err := d.lookup(device)
	if err != nil {
		return err
	}
	if _, ok := d.conns[device.Handle]; ok {
		return nil
	}

	conn, err := d.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrConnect, err)
	}
	d.conns[device.Handle] = conn
	return nil
}

// Disconnect detaches the source from the input port. Unknown sources are ignored.
func (d *Driver) Disconnect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if conn, ok := d.conns[device.Handle]; ok {
		conn.Disconnect()
		delete(d.conns, device.Handle)
	}
	return nil
}

// Close disconnects every source.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for handle, conn := range d.conns {
		conn.Disconnect()
		delete(d.conns, handle)
	}
	d.logger.Info("CoreMIDI driver closed")
	return nil
}

func (d *Driver) lookup(device contracts.MidiDevice) (coremidi.Source, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return coremidi.Source{}, fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if device.Index < 0 || device.Index >= len(sources) || sourceHandle(sources[device.Index]) != device.Handle {
		return coremidi.Source{}, fmt.Errorf("%w: %s", contracts.ErrUnknownDevice, device.Name)
	}
	return sources[device.Index], nil
}

// handleMIDIMessage runs on the CoreMIDI delivery thread.
func (d *Driver) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	d.onPacket(packet.Data)
}

func sourceHandle(source coremidi.Source) string {
	entity := source.Entity()
	return fmt.Sprintf("%s/%s/%s", entity.Manufacturer(), entity.Name(), source.Name())
}

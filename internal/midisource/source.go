// Package midisource bridges the host MIDI subsystem to a stream of pedal values.
package midisource

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// Source manages the device list and the single active MIDI connection.
//
// Scan and Select mutate state and must be called from the processing
// goroutine. Packets arrive on the driver's delivery context and are handed
// over through Values without ever blocking the driver.
type Source struct {
	logger contracts.Logger
	config contracts.MIDIConfig
	driver contracts.MIDIDriver

	devices   []contracts.MidiDevice
	selected  *contracts.MidiDevice
	connected bool
	attached  []contracts.MidiDevice // sources currently connected to the input port

	values chan contracts.RawPedalValue
}

// New creates the source and initializes its driver. Driver initialization
// failures are logged and leave the source permanently disconnected.
func New(factory contracts.DriverFactory, opts *contracts.ClientOptions) *Source {
	config := contracts.DefaultMIDIConfig()
	if opts.MIDIConfig != nil {
		config = *opts.MIDIConfig
	}
	if config.BufferSize <= 0 {
		config.BufferSize = contracts.DefaultMIDIConfig().BufferSize
	}

	s := &Source{
		logger: opts.Logger,
		config: config,
		values: make(chan contracts.RawPedalValue, config.BufferSize),
	}

	if factory == nil {
		s.logger.Warn("no MIDI driver available; running disconnected")
		return s
	}
	driver, err := factory(opts, s.handlePacket)
	if err != nil {
		s.logger.Error("MIDI initialization failed; running disconnected", s.logger.Field().Error("error", err))
		return s
	}
	s.driver = driver
	s.logger.Info("MIDI client successfully created", s.logger.Field().String("client", config.ClientName))
	return s
}

// Values delivers decoded pedal values in arrival order.
func (s *Source) Values() <-chan contracts.RawPedalValue {
	return s.values
}

// Available reports whether the MIDI subsystem initialized.
func (s *Source) Available() bool {
	return s.driver != nil
}

// Devices returns the result of the last scan.
func (s *Source) Devices() []contracts.MidiDevice {
	return append([]contracts.MidiDevice(nil), s.devices...)
}

// Selected returns the selected device, if any.
func (s *Source) Selected() (contracts.MidiDevice, bool) {
	if s.selected == nil {
		return contracts.MidiDevice{}, false
	}
	return *s.selected, true
}

// Connected reports whether the selected device is connected.
func (s *Source) Connected() bool {
	return s.connected
}

// Scan enumerates input sources and replaces the device list. A selected
// device missing from the new list is dropped. When nothing is selected and
// auto-connect is enabled, the first device matching a preferred name is selected.
func (s *Source) Scan() []contracts.MidiDevice {
	if s.driver == nil {
		return nil
	}

	devices, err := s.driver.Sources()
	if err != nil {
		s.logger.Warn("failed to enumerate MIDI sources", s.logger.Field().Error("error", err))
		devices = nil
	}
	for i := range devices {
		if devices[i].Name == "" {
			devices[i].Name = fmt.Sprintf("Unknown Device %d", devices[i].Index)
		}
	}
	s.devices = devices
	s.logger.Info("MIDI sources scanned", s.logger.Field().Int("count", len(devices)))

	if s.selected != nil && !s.contains(*s.selected) {
		s.logger.Info("selected MIDI device disappeared", s.logger.Field().String("device", s.selected.Name))
		s.detach(*s.selected)
		s.selected = nil
		s.connected = false
	}

	if s.selected == nil && s.config.AutoConnect {
		if dev, ok := s.preferred(); ok {
			s.logger.Info("auto-selecting MIDI device", s.logger.Field().String("device", dev.Name))
			s.Select(dev)
		}
	}

	return s.Devices()
}

// Select disconnects every connected source, then connects device. A failed
// connection leaves the source disconnected; there is no retry and no
// fallback to the previous device.
func (s *Source) Select(device contracts.MidiDevice) {
	if s.driver == nil {
		return
	}

	for _, d := range append([]contracts.MidiDevice(nil), s.attached...) {
		s.detach(d)
	}
	s.connected = false
	s.selected = &device

	if err := s.driver.Connect(device); err != nil {
		s.logger.Error("failed to connect MIDI device",
			s.logger.Field().String("device", device.Name),
			s.logger.Field().Error("error", err))
		return
	}

	s.attached = append(s.attached, device)
	s.connected = true
	s.logger.Info("MIDI device successfully connected",
		s.logger.Field().Int("index", device.Index),
		s.logger.Field().String("device", device.Name))
}

// Close disconnects all sources and releases the driver.
func (s *Source) Close() error {
	if s.driver == nil {
		return nil
	}
	for _, d := range append([]contracts.MidiDevice(nil), s.attached...) {
		s.detach(d)
	}
	s.connected = false
	return s.driver.Close()
}

func (s *Source) detach(device contracts.MidiDevice) {
	if err := s.driver.Disconnect(device); err != nil {
		s.logger.Debug("disconnect failed",
			s.logger.Field().String("device", device.Name),
			s.logger.Field().Error("error", err))
	}
	for i, d := range s.attached {
		if d.Same(device) {
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			break
		}
	}
}

func (s *Source) contains(device contracts.MidiDevice) bool {
	for _, d := range s.devices {
		if d.Same(device) {
			return true
		}
	}
	return false
}

func (s *Source) preferred() (contracts.MidiDevice, bool) {
	for _, d := range s.devices {
		name := strings.ToLower(d.Name)
		for _, fragment := range s.config.PreferredDevices {
			if fragment != "" && strings.Contains(name, strings.ToLower(fragment)) {
				return d, true
			}
		}
	}
	return contracts.MidiDevice{}, false
}

// handlePacket runs on the driver's delivery context.
func (s *Source) handlePacket(data []byte) {
	s.logger.Debug("MIDI packet", s.logger.Field().Stringer("bytes", hexBytes(data)))

	value, ok := Decode(data)
	if !ok {
		return
	}
	select {
	case s.values <- value:
	default:
		s.logger.Warn("pedal buffer full; dropping value", s.logger.Field().Uint8("value", uint8(value)))
	}
}

type hexBytes []byte

func (h hexBytes) String() string {
	return fmt.Sprintf("% X", []byte(h))
}

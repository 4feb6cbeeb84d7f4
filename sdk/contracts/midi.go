package contracts

import "errors"

// Errors reported by MIDI drivers. None of them is fatal to the pedal source.
var (
	ErrClientCreate  = errors.New("client creation failed")
	ErrPortCreate    = errors.New("port creation failed")
	ErrConnect       = errors.New("connect failed")
	ErrUnknownDevice = errors.New("unknown MIDI device")
)

const (
	// ControlChange is the status high nibble of a Control Change message (0xB0-0xBF).
	ControlChange byte = 0xB0
	// ModWheelController is controller number 1.
	ModWheelController uint8 = 1
	// ExpressionController is controller number 11.
	ExpressionController uint8 = 11
	// VolumeController is controller number 7.
	VolumeController uint8 = 7
	// SustainController is controller number 64.
	SustainController uint8 = 64

	// MaxPacketLength bounds how many bytes of a delivered packet are parsed.
	MaxPacketLength = 256
)

// RawPedalValue is a 7-bit controller value in [0, 127].
type RawPedalValue uint8

// PacketHandler receives the bytes of one delivered packet on the driver's
// delivery context. Implementations must not block.
type PacketHandler func(data []byte)

// MIDIDriver is the host MIDI subsystem as seen by the pedal source.
// A driver owns one client and one input port; packets from every connected
// source are delivered to the PacketHandler it was created with.
type MIDIDriver interface {
	Sources() ([]MidiDevice, error)     // Enumerates all available input sources.
	Connect(device MidiDevice) error    // Connects a source to the input port.
	Disconnect(device MidiDevice) error // Disconnects a source from the input port.
	Close() error                       // Releases the port and client.
}

// DriverFactory creates a driver bound to onPacket. Client or port creation
// failures are reported wrapped in ErrClientCreate or ErrPortCreate.
type DriverFactory func(opts *ClientOptions, onPacket PacketHandler) (MIDIDriver, error)

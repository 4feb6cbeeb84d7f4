//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// midiCallback is shared by every open device; the instance pointer selects the Driver.
var midiCallback = windows.NewCallback(midiInCallback)

// Driver opens winmm MIDI input devices on Windows.
type Driver struct {
	logger   contracts.Logger
	onPacket contracts.PacketHandler
	mu       sync.Mutex
	handles  map[string]HMIDIIN // keyed by device handle
}

// NewDriver loads winmm.dll. A missing library is reported as a client creation failure.
func NewDriver(options *contracts.ClientOptions, onPacket contracts.PacketHandler) (contracts.MIDIDriver, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrClientCreate, err)
	}
	if err := procMidiInOpen.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrPortCreate, err)
	}
	options.Logger.Info("MIDI client created for Windows")

	return &Driver{
		logger:   options.Logger,
		onPacket: onPacket,
		handles:  make(map[string]HMIDIIN),
	}, nil
}

// Sources lists the available MIDI input devices.
func (d *Driver) Sources() ([]contracts.MidiDevice, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	devices := make([]contracts.MidiDevice, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			d.logger.Warn("Failed to get information for MIDI device", d.logger.Field().Int("index", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.MidiDevice{
			Index:  int(i),
			Handle: fmt.Sprintf("%04x:%04x/%s", caps.wMid, caps.wPid, name),
			Name:   name,
		})
	}
	return devices, nil
}

// Connect opens and starts the device.
func (d *Driver) Connect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.handles[device.Handle]; ok {
		return nil
	}

	var handle HMIDIIN
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(device.Index),
		midiCallback,
		uintptr(unsafe.Pointer(d)),
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		return fmt.Errorf("%w: midiInOpen %d: %v", contracts.ErrConnect, device.Index, err)
	}

	r1, _, err = procMidiInStart.Call(uintptr(handle))
	if r1 != 0 {
		procMidiInClose.Call(uintptr(handle))
		return fmt.Errorf("%w: midiInStart %d: %v", contracts.ErrConnect, device.Index, err)
	}

	d.handles[device.Handle] = handle
	return nil
}

// Disconnect stops and closes the device if it is open.
func (d *Driver) Disconnect(device contracts.MidiDevice) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle, ok := d.handles[device.Handle]
	if !ok {
		return nil
	}
	delete(d.handles, device.Handle)
	return closeHandle(handle)
}

// Close stops and closes every open device.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for key, handle := range d.handles {
		if err := closeHandle(handle); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.handles, key)
	}
	return firstErr
}

func closeHandle(handle HMIDIIN) error {
	if r1, _, err := procMidiInStop.Call(uintptr(handle)); r1 != 0 {
		return fmt.Errorf("midiInStop: %v", err)
	}
	if r1, _, err := procMidiInClose.Call(uintptr(handle)); r1 != 0 {
		return fmt.Errorf("midiInClose: %v", err)
	}
	return nil
}

// midiInCallback runs on the winmm delivery thread and must not block.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	d := (*Driver)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		d.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		d.logger.Debug("MIDI device closed")
	case MIM_DATA:
		d.onPacket([]byte{
			byte(dwParam1 & 0xFF),
			byte((dwParam1 >> 8) & 0xFF),
			byte((dwParam1 >> 16) & 0xFF),
		})
	case MIM_ERROR, MIM_LONGERROR:
		d.logger.Debug("MIDI error message", d.logger.Field().Int("msg", int(wMsg)))
	case MIM_MOREDATA:
		d.logger.Debug("Received MIM_MOREDATA message; ignored")
	}

	return 0
}

package pedal

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/pedalbridge/internal/midi/mididarwin"
	"github.com/leandrodaf/pedalbridge/internal/midi/midirtmidi"
	"github.com/leandrodaf/pedalbridge/internal/midi/midiwindows"
	"github.com/leandrodaf/pedalbridge/internal/target/targetdarwin"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no target platform.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to MIDI driver initializers. Other systems use RtMidi.
var driverInitializers = map[string]contracts.DriverFactory{
	"darwin":  mididarwin.NewDriver,  // macOS (CoreMIDI).
	"windows": midiwindows.NewDriver, // Windows (winmm).
}

// platformInitializers maps OS names to target platform initializers.
var platformInitializers = map[string]func(contracts.Logger) (contracts.TargetPlatform, error){
	"darwin": func(l contracts.Logger) (contracts.TargetPlatform, error) {
		p, err := targetdarwin.New(l)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
}

// driverFor returns the MIDI driver initializer for the current operating system.
func driverFor(opts *contracts.ClientOptions) contracts.DriverFactory {
	if opts.Driver != nil {
		return opts.Driver
	}
	if initializer, exists := driverInitializers[runtime.GOOS]; exists {
		return initializer
	}
	return midirtmidi.NewDriver
}

// platformFor returns the target platform for the current operating system.
func platformFor(opts *contracts.ClientOptions) (contracts.TargetPlatform, error) {
	if opts.Platform != nil {
		return opts.Platform, nil
	}
	if initializer, exists := platformInitializers[runtime.GOOS]; exists {
		return initializer(opts.Logger)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

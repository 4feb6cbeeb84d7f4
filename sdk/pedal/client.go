// Package pedal is the public entry point: it wires the MIDI source, the
// zone classifier, the dispatcher and the target bridge for the current OS.
package pedal

import (
	"context"

	"github.com/leandrodaf/pedalbridge/internal/engine"
	"github.com/leandrodaf/pedalbridge/internal/midisource"
	"github.com/leandrodaf/pedalbridge/internal/target"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// Bridge turns expression-pedal movement into transport commands.
// Status, Subscribe, SelectDevice and RefreshDevices are safe for
// concurrent use once Run has been started.
type Bridge struct {
	*engine.Engine
	logger   contracts.Logger
	source   *midisource.Source
	platform contracts.TargetPlatform
}

// NewPedalBridge creates a bridge with the specified options.
// MIDI and target platform failures are logged and degrade the bridge to a
// disconnected, no-op mode rather than returning an error.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - *Bridge: The wired bridge.
//   - error: An error if the options could not be applied.
func NewPedalBridge(opts ...contracts.Option) (*Bridge, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	log := options.Logger

	platform, err := platformFor(&options)
	if err != nil {
		log.Warn("target application control unavailable", log.Field().Error("error", err))
		platform = nil
	}

	source := midisource.New(driverFor(&options), &options)
	b := target.NewBridge(platform, *options.TargetConfig, log)

	return &Bridge{
		Engine:   engine.New(source, b, log),
		logger:   log,
		source:   source,
		platform: platform,
	}, nil
}

// Run processes pedal input until ctx is done. On platforms whose process
// notifications need a host run loop, Run services it on the calling
// goroutine, which must then be locked to the main OS thread.
func (b *Bridge) Run(ctx context.Context) error {
	looper, ok := b.platform.(contracts.MainLooper)
	if !ok {
		return b.Engine.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Engine.Run(ctx)
		cancel()
	}()
	looper.RunMainLoop(ctx)
	return <-errCh
}

// Close disconnects MIDI sources and releases the driver. Call it after Run returns.
func (b *Bridge) Close() error {
	return b.source.Close()
}

// ListDevices enumerates MIDI inputs without starting the bridge. Nothing is
// connected.
func ListDevices(opts ...contracts.Option) ([]contracts.MidiDevice, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	midi := *options.MIDIConfig
	midi.AutoConnect = false
	options.MIDIConfig = &midi

	source := midisource.New(driverFor(&options), &options)
	defer source.Close()
	if !source.Available() {
		return nil, contracts.ErrClientCreate
	}
	return source.Scan(), nil
}

//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// NewDriver reports that CoreMIDI is not available on this platform.
func NewDriver(options *contracts.ClientOptions, _ contracts.PacketHandler) (contracts.MIDIDriver, error) {
	options.Logger.Warn("CoreMIDI driver requested on a non-macOS system")
	return nil, fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrClientCreate)
}

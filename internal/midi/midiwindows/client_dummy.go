//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// NewDriver reports that winmm is not available on this platform.
func NewDriver(options *contracts.ClientOptions, _ contracts.PacketHandler) (contracts.MIDIDriver, error) {
	options.Logger.Warn("winmm driver requested on a non-Windows system")
	return nil, fmt.Errorf("%w: winmm is not available on this platform", contracts.ErrClientCreate)
}

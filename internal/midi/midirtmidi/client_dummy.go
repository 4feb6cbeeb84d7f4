//go:build darwin || windows || !cgo
// +build darwin windows !cgo

package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// NewDriver reports that the RtMidi driver is not built into this binary.
func NewDriver(options *contracts.ClientOptions, _ contracts.PacketHandler) (contracts.MIDIDriver, error) {
	options.Logger.Warn("RtMidi driver is not available in this build")
	return nil, fmt.Errorf("%w: RtMidi is not available in this build", contracts.ErrClientCreate)
}

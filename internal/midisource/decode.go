package midisource

import (
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// Decode extracts a pedal value from one delivered packet. It accepts only
// Control Change messages on controller 1 or 11, on any channel, with 7-bit
// data bytes. Anything else, including short packets, is rejected without error.
func Decode(data []byte) (contracts.RawPedalValue, bool) {
	if len(data) > contracts.MaxPacketLength {
		data = data[:contracts.MaxPacketLength]
	}
	if len(data) < 3 {
		return 0, false
	}
	if data[0]&0xF0 != contracts.ControlChange {
		return 0, false
	}
	// Data bytes must be 7-bit and the controller is compared unmasked.
	if data[1]&0x80 != 0 || data[2]&0x80 != 0 {
		return 0, false
	}
	if data[1] != contracts.ModWheelController && data[1] != contracts.ExpressionController {
		return 0, false
	}

	var channel, controller, value uint8
	if !midi.Message(data[:3]).GetControlChange(&channel, &controller, &value) {
		return 0, false
	}
	return contracts.RawPedalValue(value), true
}

package contracts

// MidiDevice identifies a MIDI input source found by a scan.
// Identity is the (Index, Handle) pair; Name is for display only.
type MidiDevice struct {
	Index  int    `json:"index"`  // Position of the source in the scan result.
	Handle string `json:"handle"` // Driver-specific source handle.
	Name   string `json:"name"`   // Display name of the source.
}

// Same reports whether d and other refer to the same source.
func (d MidiDevice) Same(other MidiDevice) bool {
	return d.Index == other.Index && d.Handle == other.Handle
}

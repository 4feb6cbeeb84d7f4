package contracts

// Status is the read-only view exposed to presentation surfaces.
type Status struct {
	AvailableDevices  []MidiDevice      `json:"available_devices"`
	SelectedDevice    *MidiDevice       `json:"selected_device,omitempty"`
	IsConnected       bool              `json:"is_connected"`
	MIDIAvailable     bool              `json:"midi_available"`
	CurrentPedalValue RawPedalValue     `json:"current_pedal_value"`
	CurrentZone       Zone              `json:"current_zone"`
	TargetAppRunning  bool              `json:"target_app_running"`
	LastTransition    *TransitionRecord `json:"last_transition,omitempty"`
}

// Clone returns a deep copy of s.
func (s Status) Clone() Status {
	out := s
	if s.AvailableDevices != nil {
		out.AvailableDevices = append([]MidiDevice(nil), s.AvailableDevices...)
	}
	if s.SelectedDevice != nil {
		d := *s.SelectedDevice
		out.SelectedDevice = &d
	}
	if s.LastTransition != nil {
		rec := *s.LastTransition
		rec.Sequence = append([]Command(nil), rec.Sequence...)
		rec.Issued = append([]Command(nil), rec.Issued...)
		out.LastTransition = &rec
	}
	return out
}

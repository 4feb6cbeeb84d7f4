package contracts

import "fmt"

// Zone is one of the three pedal-position ranges driving playback mode.
type Zone int

const (
	ZoneStopped Zone = iota
	ZoneSoloing
	ZonePlaying
)

func (z Zone) String() string {
	switch z {
	case ZoneStopped:
		return "Stopped"
	case ZoneSoloing:
		return "Solo"
	case ZonePlaying:
		return "Playing"
	default:
		return fmt.Sprintf("Zone(%d)", int(z))
	}
}

// MarshalText encodes the zone by name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// ZoneTransition is emitted when the classified zone changes.
type ZoneTransition struct {
	Previous Zone `json:"previous"`
	Next     Zone `json:"next"`
}

func (t ZoneTransition) String() string {
	return t.Previous.String() + "->" + t.Next.String()
}

// Command is an atomic playback-control action sent to the target application.
type Command int

const (
	CommandUnsolo Command = iota
	CommandSolo
	CommandPlay
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandUnsolo:
		return "Unsolo"
	case CommandSolo:
		return "Solo"
	case CommandPlay:
		return "Play"
	case CommandStop:
		return "Stop"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// MarshalText encodes the command by name.
func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// TransitionRecord is one entry of the transition log.
type TransitionRecord struct {
	Transition ZoneTransition `json:"transition"`
	Sequence   []Command      `json:"sequence"` // Command sequence selected by the new zone.
	Issued     []Command      `json:"issued"`   // Commands left after duplicate suppression.
}

// Package dispatch turns zone transitions into playback commands.
package dispatch

import "github.com/leandrodaf/pedalbridge/sdk/contracts"

// Executor runs a single command against the target application and reports
// whether it was handed to the target. Failures are never retried.
type Executor interface {
	Execute(cmd contracts.Command) bool
}

// Sequence returns the command sequence for entering zone.
func Sequence(zone contracts.Zone) []contracts.Command {
	switch zone {
	case contracts.ZonePlaying:
		return []contracts.Command{contracts.CommandUnsolo, contracts.CommandPlay}
	case contracts.ZoneSoloing:
		return []contracts.Command{contracts.CommandSolo}
	case contracts.ZoneStopped:
		return []contracts.Command{contracts.CommandUnsolo, contracts.CommandStop}
	default:
		return nil
	}
}

// Dispatcher issues command sequences in arrival order and suppresses
// duplicate solo toggles. The solo flag is a belief about the target's state
// that is never checked against it.
//
// A Dispatcher must be driven from a single goroutine.
type Dispatcher struct {
	logger contracts.Logger
	exec   Executor
	soloed bool
}

// New creates a dispatcher sending commands to exec.
func New(exec Executor, logger contracts.Logger) *Dispatcher {
	return &Dispatcher{exec: exec, logger: logger}
}

// Soloed reports whether a Solo has been issued without a matching Unsolo.
func (d *Dispatcher) Soloed() bool {
	return d.soloed
}

// Dispatch runs the sequence selected by the transition's new zone.
func (d *Dispatcher) Dispatch(tr contracts.ZoneTransition) contracts.TransitionRecord {
	rec := contracts.TransitionRecord{
		Transition: tr,
		Sequence:   Sequence(tr.Next),
	}

	for _, cmd := range rec.Sequence {
		switch cmd {
		case contracts.CommandSolo:
			if d.soloed {
				d.logger.Debug("solo already active, skipping", d.logger.Field().Stringer("transition", tr))
				continue
			}
			d.soloed = true
		case contracts.CommandUnsolo:
			if !d.soloed {
				continue
			}
			d.soloed = false
		}

		delivered := d.exec.Execute(cmd)
		rec.Issued = append(rec.Issued, cmd)
		d.logger.Debug("command issued",
			d.logger.Field().Stringer("command", cmd),
			d.logger.Field().Bool("delivered", delivered))
	}

	return rec
}

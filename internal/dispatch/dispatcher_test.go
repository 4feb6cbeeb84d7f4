package dispatch

import (
	"reflect"
	"testing"

	"github.com/leandrodaf/pedalbridge/internal/logger"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

type recordingExecutor struct {
	commands  []contracts.Command
	delivered bool
}

func (r *recordingExecutor) Execute(cmd contracts.Command) bool {
	r.commands = append(r.commands, cmd)
	return r.delivered
}

func tr(prev, next contracts.Zone) contracts.ZoneTransition {
	return contracts.ZoneTransition{Previous: prev, Next: next}
}

func TestSequenceByDestinationZone(t *testing.T) {
	tests := []struct {
		zone contracts.Zone
		want []contracts.Command
	}{
		{contracts.ZonePlaying, []contracts.Command{contracts.CommandUnsolo, contracts.CommandPlay}},
		{contracts.ZoneSoloing, []contracts.Command{contracts.CommandSolo}},
		{contracts.ZoneStopped, []contracts.Command{contracts.CommandUnsolo, contracts.CommandStop}},
	}

	for _, tt := range tests {
		t.Run(tt.zone.String(), func(t *testing.T) {
			if got := Sequence(tt.zone); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sequence(%v) = %v, want %v", tt.zone, got, tt.want)
			}
		})
	}
}

func TestDispatchIntoPlayingClearsSolo(t *testing.T) {
	for _, from := range []contracts.Zone{contracts.ZoneStopped, contracts.ZoneSoloing} {
		t.Run(from.String(), func(t *testing.T) {
			exec := &recordingExecutor{delivered: true}
			d := New(exec, logger.NewNop())
			d.soloed = true

			rec := d.Dispatch(tr(from, contracts.ZonePlaying))

			want := []contracts.Command{contracts.CommandUnsolo, contracts.CommandPlay}
			if !reflect.DeepEqual(rec.Issued, want) || !reflect.DeepEqual(exec.commands, want) {
				t.Errorf("issued %v (executed %v), want %v", rec.Issued, exec.commands, want)
			}
			if d.Soloed() {
				t.Error("solo state still set after entering Playing")
			}
		})
	}
}

func TestDispatchSoloIsIdempotent(t *testing.T) {
	exec := &recordingExecutor{delivered: true}
	d := New(exec, logger.NewNop())

	first := d.Dispatch(tr(contracts.ZoneStopped, contracts.ZoneSoloing))
	if !reflect.DeepEqual(first.Issued, []contracts.Command{contracts.CommandSolo}) {
		t.Fatalf("first solo issued %v", first.Issued)
	}
	if !d.Soloed() {
		t.Fatal("solo state not set")
	}

	second := d.Dispatch(tr(contracts.ZonePlaying, contracts.ZoneSoloing))
	if len(second.Issued) != 0 {
		t.Errorf("second solo issued %v, want nothing", second.Issued)
	}
	if !reflect.DeepEqual(second.Sequence, []contracts.Command{contracts.CommandSolo}) {
		t.Errorf("sequence = %v, want [Solo]", second.Sequence)
	}
	if len(exec.commands) != 1 {
		t.Errorf("executor saw %v", exec.commands)
	}
}

func TestDispatchIntoStopped(t *testing.T) {
	exec := &recordingExecutor{delivered: true}
	d := New(exec, logger.NewNop())

	d.Dispatch(tr(contracts.ZoneStopped, contracts.ZoneSoloing))
	rec := d.Dispatch(tr(contracts.ZoneSoloing, contracts.ZoneStopped))

	want := []contracts.Command{contracts.CommandUnsolo, contracts.CommandStop}
	if !reflect.DeepEqual(rec.Issued, want) {
		t.Errorf("issued %v, want %v", rec.Issued, want)
	}
	if d.Soloed() {
		t.Error("solo state still set after entering Stopped")
	}
}

func TestDispatchUnsoloSkippedWhenNotSoloed(t *testing.T) {
	exec := &recordingExecutor{delivered: true}
	d := New(exec, logger.NewNop())

	rec := d.Dispatch(tr(contracts.ZonePlaying, contracts.ZoneStopped))

	if !reflect.DeepEqual(rec.Sequence, []contracts.Command{contracts.CommandUnsolo, contracts.CommandStop}) {
		t.Errorf("sequence = %v", rec.Sequence)
	}
	if !reflect.DeepEqual(rec.Issued, []contracts.Command{contracts.CommandStop}) {
		t.Errorf("issued %v, want [Stop]", rec.Issued)
	}
}

// Solo state follows what was issued even when the target is not reachable.
func TestDispatchTracksStateWithoutDelivery(t *testing.T) {
	exec := &recordingExecutor{delivered: false}
	d := New(exec, logger.NewNop())

	d.Dispatch(tr(contracts.ZoneStopped, contracts.ZoneSoloing))
	if !d.Soloed() {
		t.Error("solo state not set after undelivered Solo")
	}
	if len(exec.commands) != 1 {
		t.Errorf("executor called %d times, want 1", len(exec.commands))
	}
}

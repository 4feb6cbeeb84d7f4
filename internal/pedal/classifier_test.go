package pedal

import (
	"testing"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		value contracts.RawPedalValue
		want  contracts.Zone
	}{
		{0, contracts.ZoneStopped},
		{25, contracts.ZoneStopped},
		{26, contracts.ZoneSoloing},
		{60, contracts.ZoneSoloing},
		{101, contracts.ZoneSoloing},
		{102, contracts.ZonePlaying},
		{127, contracts.ZonePlaying},
	}

	for _, tt := range tests {
		if got := Classify(tt.value); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestClassifyCoversFullRange(t *testing.T) {
	for v := 0; v <= 127; v++ {
		var want contracts.Zone
		switch {
		case v < 26:
			want = contracts.ZoneStopped
		case v < 102:
			want = contracts.ZoneSoloing
		default:
			want = contracts.ZonePlaying
		}
		if got := Classify(contracts.RawPedalValue(v)); got != want {
			t.Fatalf("Classify(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestFeedSameZoneEmitsNothing(t *testing.T) {
	c := NewClassifier()

	for _, v := range []contracts.RawPedalValue{0, 3, 25, 10, 0} {
		if tr, ok := c.Feed(v); ok {
			t.Fatalf("Feed(%d) emitted %v while staying in Stopped", v, tr)
		}
	}
	if c.Current() != contracts.ZoneStopped {
		t.Errorf("Current() = %v, want Stopped", c.Current())
	}
}

func TestFeedEmitsOneTransitionPerChange(t *testing.T) {
	c := NewClassifier()

	steps := []struct {
		value  contracts.RawPedalValue
		ok     bool
		expect contracts.ZoneTransition
	}{
		{60, true, contracts.ZoneTransition{Previous: contracts.ZoneStopped, Next: contracts.ZoneSoloing}},
		{70, false, contracts.ZoneTransition{}},
		{120, true, contracts.ZoneTransition{Previous: contracts.ZoneSoloing, Next: contracts.ZonePlaying}},
		{0, true, contracts.ZoneTransition{Previous: contracts.ZonePlaying, Next: contracts.ZoneStopped}},
		{127, true, contracts.ZoneTransition{Previous: contracts.ZoneStopped, Next: contracts.ZonePlaying}},
	}

	for i, s := range steps {
		tr, ok := c.Feed(s.value)
		if ok != s.ok {
			t.Fatalf("step %d: Feed(%d) ok = %v, want %v", i, s.value, ok, s.ok)
		}
		if ok && tr != s.expect {
			t.Errorf("step %d: Feed(%d) = %v, want %v", i, s.value, tr, s.expect)
		}
	}
}

// A sweep dithering on the solo threshold emits a transition on every crossing.
func TestFeedDitherAtThresholdFloods(t *testing.T) {
	c := NewClassifier()

	count := 0
	for i := 0; i < 10; i++ {
		v := SoloThreshold
		if i%2 == 1 {
			v = SoloThreshold - 1
		}
		if _, ok := c.Feed(v); ok {
			count++
		}
	}
	if count != 10 {
		t.Errorf("got %d transitions, want 10", count)
	}
}

// Package pedal maps raw pedal values onto playback zones.
package pedal

import "github.com/leandrodaf/pedalbridge/sdk/contracts"

// Zone thresholds. [0,26) is Stopped, [26,102) is Soloing, [102,127] is Playing.
// There is no hysteresis band: a value dithering on a threshold emits a
// transition on every crossing.
const (
	SoloThreshold contracts.RawPedalValue = 26
	PlayThreshold contracts.RawPedalValue = 102
)

// Classify returns the zone for a raw pedal value.
func Classify(v contracts.RawPedalValue) contracts.Zone {
	switch {
	case v < SoloThreshold:
		return contracts.ZoneStopped
	case v < PlayThreshold:
		return contracts.ZoneSoloing
	default:
		return contracts.ZonePlaying
	}
}

// Classifier holds the current zone and reports changes.
// It is not safe for concurrent use; feed it from a single goroutine.
type Classifier struct {
	current contracts.Zone
}

// NewClassifier returns a classifier starting in ZoneStopped.
func NewClassifier() *Classifier {
	return &Classifier{current: contracts.ZoneStopped}
}

// Current returns the zone held by the classifier.
func (c *Classifier) Current() contracts.Zone {
	return c.current
}

// Feed classifies v. When the zone differs from the current one, the current
// zone is updated and the transition is returned with ok set.
func (c *Classifier) Feed(v contracts.RawPedalValue) (tr contracts.ZoneTransition, ok bool) {
	next := Classify(v)
	if next == c.current {
		return contracts.ZoneTransition{}, false
	}
	tr = contracts.ZoneTransition{Previous: c.current, Next: next}
	c.current = next
	return tr, true
}

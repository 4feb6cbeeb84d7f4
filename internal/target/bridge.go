// Package target drives the external application with synthetic key input.
package target

import (
	"errors"
	"time"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// Bridge addresses one instance of the target application by bundle identity.
//
// The bridge never polls. It looks the target up once at Discover and again
// whenever a launch notification for the same bundle identity arrives.
// Commands are toggles delivered as key strokes; nothing confirms that the
// target received them or what state it is in.
//
// A Bridge must be driven from a single goroutine.
type Bridge struct {
	logger   contracts.Logger
	platform contracts.TargetPlatform
	config   contracts.TargetConfig
	sleep    func(time.Duration)

	process contracts.Process
	running bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSleep replaces the function used to wait for the settle delay.
func WithSleep(sleep func(time.Duration)) Option {
	return func(b *Bridge) {
		b.sleep = sleep
	}
}

// NewBridge creates a bridge. A nil platform leaves the bridge permanently
// not running.
func NewBridge(platform contracts.TargetPlatform, config contracts.TargetConfig, logger contracts.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		logger:   logger,
		platform: platform,
		config:   config,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Running reports whether a target process handle is held.
func (b *Bridge) Running() bool {
	return b.running
}

// Process returns the held process handle.
func (b *Bridge) Process() (contracts.Process, bool) {
	return b.process, b.running
}

// Discover looks up the target among running processes and refreshes the handle.
func (b *Bridge) Discover() bool {
	if b.platform == nil {
		b.running = false
		return false
	}

	p, err := b.platform.FindByBundleID(b.config.BundleID)
	if err != nil {
		b.process = contracts.Process{}
		b.running = false
		if errors.Is(err, contracts.ErrTargetNotRunning) {
			b.logger.Warn("target application not running", b.logger.Field().String("bundleID", b.config.BundleID))
		} else {
			b.logger.Error("target discovery failed",
				b.logger.Field().String("bundleID", b.config.BundleID),
				b.logger.Field().Error("error", err))
		}
		return false
	}

	b.process = p
	b.running = true
	b.logger.Info("target application found",
		b.logger.Field().String("bundleID", b.config.BundleID),
		b.logger.Field().Int("pid", p.PID))
	return true
}

// Subscribe starts listening for process launches. Events must be passed back
// to HandleLaunch on the goroutine driving the bridge.
func (b *Bridge) Subscribe() (<-chan contracts.ProcessEvent, func(), error) {
	if b.platform == nil {
		return nil, func() {}, nil
	}
	return b.platform.SubscribeLaunches()
}

// HandleLaunch re-runs discovery when ev is a launch of the target. It reports
// whether discovery ran.
func (b *Bridge) HandleLaunch(ev contracts.ProcessEvent) bool {
	if ev.Process.BundleID != b.config.BundleID {
		return false
	}
	b.logger.Info("target application launched", b.logger.Field().Int("pid", ev.Process.PID))
	b.Discover()
	return true
}

// Execute sends cmd to the target. Without a handle it is a no-op and
// returns false.
func (b *Bridge) Execute(cmd contracts.Command) bool {
	if !b.running {
		b.logger.Debug("target not running, dropping command", b.logger.Field().Stringer("command", cmd))
		return false
	}

	key := b.keyFor(cmd)
	if err := b.platform.Activate(b.process); err != nil {
		b.logger.Debug("activation failed", b.logger.Field().Error("error", err))
	}
	b.sleep(b.config.SettleDelay)
	b.platform.PostKey(b.process, key, true)
	b.platform.PostKey(b.process, key, false)
	return true
}

// Play and Stop share the transport toggle; Solo and Unsolo share the solo toggle.
func (b *Bridge) keyFor(cmd contracts.Command) contracts.KeyStroke {
	switch cmd {
	case contracts.CommandSolo, contracts.CommandUnsolo:
		return b.config.SoloKey
	default:
		return b.config.TransportKey
	}
}

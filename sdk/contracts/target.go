package contracts

import (
	"context"
	"errors"
)

// ErrTargetNotRunning is reported when no process with the target bundle identity exists.
var ErrTargetNotRunning = errors.New("target application not running")

// KeyCode is a host virtual key code.
type KeyCode uint16

// Virtual key codes used by the target bridge.
const (
	KeyS      KeyCode = 1
	KeyReturn KeyCode = 36
	KeySpace  KeyCode = 49
)

// KeyStroke is a virtual key plus an explicit modifier mask (possibly empty).
type KeyStroke struct {
	Code      KeyCode `yaml:"code" json:"code"`
	Modifiers uint64  `yaml:"modifiers" json:"modifiers"`
}

// Process is a running application instance.
type Process struct {
	PID      int
	BundleID string
}

// ProcessEvent reports that a process was launched.
type ProcessEvent struct {
	Process Process
}

// ProcessLocator finds running processes by bundle identity.
type ProcessLocator interface {
	FindByBundleID(bundleID string) (Process, error)
}

// ProcessEventSource delivers process-launch notifications. The returned
// function cancels the subscription.
type ProcessEventSource interface {
	SubscribeLaunches() (<-chan ProcessEvent, func(), error)
}

// InputSynthesizer drives a process with synthetic keyboard input.
// Key delivery is fire-and-forget: there is no receipt.
type InputSynthesizer interface {
	Activate(p Process) error
	PostKey(p Process, key KeyStroke, down bool)
}

// TargetPlatform bundles the host capabilities the bridge needs.
type TargetPlatform interface {
	ProcessLocator
	ProcessEventSource
	InputSynthesizer
}

// MainLooper is implemented by platforms that must service a host run loop
// on the main thread for notifications to arrive.
type MainLooper interface {
	RunMainLoop(ctx context.Context)
}

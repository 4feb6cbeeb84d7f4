//go:build !darwin || !cgo
// +build !darwin !cgo

package targetdarwin

import (
	"context"
	"errors"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// ErrUnsupportedPlatform is returned where NSWorkspace is not available.
var ErrUnsupportedPlatform = errors.New("target control is only available on macOS")

// Platform is a placeholder on non-macOS systems.
type Platform struct{}

// New reports that target control is unavailable.
func New(logger contracts.Logger) (*Platform, error) {
	logger.Warn("target application control is not available on this platform")
	return nil, ErrUnsupportedPlatform
}

func (p *Platform) FindByBundleID(bundleID string) (contracts.Process, error) {
	return contracts.Process{}, ErrUnsupportedPlatform
}

func (p *Platform) Activate(contracts.Process) error { return ErrUnsupportedPlatform }

func (p *Platform) PostKey(contracts.Process, contracts.KeyStroke, bool) {}

func (p *Platform) SubscribeLaunches() (<-chan contracts.ProcessEvent, func(), error) {
	return nil, func() {}, ErrUnsupportedPlatform
}

func (p *Platform) RunMainLoop(ctx context.Context) {
	<-ctx.Done()
}

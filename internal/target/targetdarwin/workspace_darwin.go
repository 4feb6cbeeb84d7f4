//go:build darwin && cgo
// +build darwin,cgo

// Package targetdarwin provides NSWorkspace process discovery and CGEvent key
// synthesis for the target bridge.
package targetdarwin

/*
#cgo CFLAGS: -fobjc-arc
#cgo LDFLAGS: -framework AppKit -framework ApplicationServices -framework CoreFoundation
#include <stdint.h>
#include <stdlib.h>

int pbFindPid(const char *bundleID);
int pbActivate(int pid);
void pbPostKey(int pid, uint16_t key, uint64_t flags, int down);
void *pbObserveLaunches(uintptr_t handle);
void pbStopObserving(void *token);
void pbRunMainLoopOnce(double seconds);
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"runtime/cgo"
	"sync"
	"time"
	"unsafe"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

var errActivate = errors.New("activation refused")

const runLoopSlice = 250 * time.Millisecond

// Platform implements contracts.TargetPlatform and contracts.MainLooper on macOS.
type Platform struct {
	logger contracts.Logger
}

// New returns the macOS platform.
func New(logger contracts.Logger) (*Platform, error) {
	return &Platform{logger: logger}, nil
}

// FindByBundleID returns the first running application with the bundle identity.
func (p *Platform) FindByBundleID(bundleID string) (contracts.Process, error) {
	cs := C.CString(bundleID)
	defer C.free(unsafe.Pointer(cs))

	pid := int(C.pbFindPid(cs))
	if pid < 0 {
		return contracts.Process{}, fmt.Errorf("%w: %s", contracts.ErrTargetNotRunning, bundleID)
	}
	return contracts.Process{PID: pid, BundleID: bundleID}, nil
}

// Activate brings the process to the foreground.
func (p *Platform) Activate(proc contracts.Process) error {
	if C.pbActivate(C.int(proc.PID)) == 0 {
		return fmt.Errorf("%w: pid %d", errActivate, proc.PID)
	}
	return nil
}

// PostKey posts one keyboard event directly to the process.
func (p *Platform) PostKey(proc contracts.Process, key contracts.KeyStroke, down bool) {
	d := C.int(0)
	if down {
		d = 1
	}
	C.pbPostKey(C.int(proc.PID), C.uint16_t(key.Code), C.uint64_t(key.Modifiers), d)
}

type launchSubscription struct {
	events chan contracts.ProcessEvent
	logger contracts.Logger
	once   sync.Once
}

// SubscribeLaunches observes NSWorkspace launch notifications. They are only
// delivered while the main run loop is serviced; see RunMainLoop.
func (p *Platform) SubscribeLaunches() (<-chan contracts.ProcessEvent, func(), error) {
	sub := &launchSubscription{
		events: make(chan contracts.ProcessEvent, 8),
		logger: p.logger,
	}
	handle := cgo.NewHandle(sub)
	token := C.pbObserveLaunches(C.uintptr_t(handle))

	cancel := func() {
		sub.once.Do(func() {
			C.pbStopObserving(token)
			handle.Delete()
		})
	}
	return sub.events, cancel, nil
}

// RunMainLoop services the main run loop until ctx is done. It must be called
// from the main OS thread.
func (p *Platform) RunMainLoop(ctx context.Context) {
	for ctx.Err() == nil {
		C.pbRunMainLoopOnce(C.double(runLoopSlice.Seconds()))
	}
}

//export pbAppLaunched
func pbAppLaunched(handle C.uintptr_t, bundleID *C.char, pid C.int) {
	sub, ok := cgo.Handle(handle).Value().(*launchSubscription)
	if !ok {
		return
	}
	ev := contracts.ProcessEvent{Process: contracts.Process{PID: int(pid), BundleID: C.GoString(bundleID)}}
	select {
	case sub.events <- ev:
	default:
		sub.logger.Warn("launch event buffer full; dropping event", sub.logger.Field().String("bundleID", ev.Process.BundleID))
	}
}

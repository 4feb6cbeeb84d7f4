// Package engine runs the single serialized processing context that connects
// the MIDI source, the zone classifier, the dispatcher and the target bridge.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/leandrodaf/pedalbridge/internal/dispatch"
	"github.com/leandrodaf/pedalbridge/internal/midisource"
	"github.com/leandrodaf/pedalbridge/internal/pedal"
	"github.com/leandrodaf/pedalbridge/internal/target"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// ErrEngineStopped is returned by requests made after Run has returned.
var ErrEngineStopped = errors.New("engine stopped")

type request struct {
	fn   func()
	done chan struct{}
}

// Engine owns every piece of mutable pipeline state. Only the goroutine
// running Run writes to the source, classifier, dispatcher and bridge;
// everything else talks to it through requests and reads Status snapshots.
type Engine struct {
	logger     contracts.Logger
	source     *midisource.Source
	classifier *pedal.Classifier
	dispatcher *dispatch.Dispatcher
	bridge     *target.Bridge

	requests     chan request
	stopped      chan struct{}
	stopOnce     sync.Once
	onTransition func(contracts.TransitionRecord)

	mu     sync.RWMutex
	status contracts.Status

	subsMu     sync.Mutex
	subs       map[chan contracts.Status]struct{}
	subsClosed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransitionHook registers fn to be called on the processing goroutine
// after every dispatched transition.
func WithTransitionHook(fn func(contracts.TransitionRecord)) Option {
	return func(e *Engine) {
		e.onTransition = fn
	}
}

// New wires an engine. The dispatcher is created here around the bridge.
func New(source *midisource.Source, bridge *target.Bridge, logger contracts.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:     logger,
		source:     source,
		classifier: pedal.NewClassifier(),
		dispatcher: dispatch.New(bridge, logger),
		bridge:     bridge,
		requests:   make(chan request, 16),
		stopped:    make(chan struct{}),
		subs:       make(map[chan contracts.Status]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.status = e.snapshot()
	return e
}

// Run discovers the target, scans devices and processes events until ctx is
// done. It returns ErrEngineStopped if called again after returning.
func (e *Engine) Run(ctx context.Context) error {
	select {
	case <-e.stopped:
		return ErrEngineStopped
	default:
	}
	defer e.stopOnce.Do(func() {
		close(e.stopped)
		e.closeSubscribers()
	})

	launches, unsubscribe, err := e.bridge.Subscribe()
	if err != nil {
		e.logger.Warn("process launch notifications unavailable", e.logger.Field().Error("error", err))
		launches = nil
	}
	if unsubscribe != nil {
		defer unsubscribe()
	}

	e.bridge.Discover()
	e.source.Scan()
	e.publish()

	values := e.source.Values()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("processing stopped")
			return nil

		case v := <-values:
			e.handleValue(v)

		case ev, ok := <-launches:
			if !ok {
				launches = nil
				continue
			}
			if e.bridge.HandleLaunch(ev) {
				e.publish()
			}

		case req := <-e.requests:
			req.fn()
			close(req.done)
			e.publish()
		}
	}
}

func (e *Engine) handleValue(v contracts.RawPedalValue) {
	e.mu.Lock()
	e.status.CurrentPedalValue = v
	e.mu.Unlock()

	tr, ok := e.classifier.Feed(v)
	if !ok {
		e.publish()
		return
	}

	rec := e.dispatcher.Dispatch(tr)
	e.logger.Info("zone transition",
		e.logger.Field().Stringer("transition", tr),
		e.logger.Field().Uint8("value", uint8(v)),
		e.logger.Field().Int("issued", len(rec.Issued)))

	if e.onTransition != nil {
		e.onTransition(rec)
	}

	e.mu.Lock()
	e.status.LastTransition = &rec
	e.mu.Unlock()
	e.publish()
}

// SelectDevice asks the processing goroutine to select device and waits for it.
func (e *Engine) SelectDevice(ctx context.Context, device contracts.MidiDevice) error {
	return e.do(ctx, func() { e.source.Select(device) })
}

// RefreshDevices asks the processing goroutine to rescan and waits for it.
func (e *Engine) RefreshDevices(ctx context.Context) error {
	return e.do(ctx, func() { e.source.Scan() })
}

func (e *Engine) do(ctx context.Context, fn func()) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case e.requests <- req:
	case <-e.stopped:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-e.stopped:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the latest snapshot.
func (e *Engine) Status() contracts.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status.Clone()
}

// Subscribe returns a channel receiving status snapshots. Slow readers only
// see the most recent one. The channel is closed once Run returns. The
// returned function ends the subscription.
func (e *Engine) Subscribe() (<-chan contracts.Status, func()) {
	ch := make(chan contracts.Status, 1)
	ch <- e.Status()

	e.subsMu.Lock()
	if e.subsClosed {
		close(ch)
	} else {
		e.subs[ch] = struct{}{}
	}
	e.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subsMu.Lock()
			delete(e.subs, ch)
			e.subsMu.Unlock()
		})
	}
}

// snapshot reads pipeline state; it must run on the processing goroutine
// (or before Run starts).
func (e *Engine) snapshot() contracts.Status {
	st := contracts.Status{
		AvailableDevices: e.source.Devices(),
		IsConnected:      e.source.Connected(),
		MIDIAvailable:    e.source.Available(),
		CurrentZone:      e.classifier.Current(),
		TargetAppRunning: e.bridge.Running(),
	}
	if d, ok := e.source.Selected(); ok {
		st.SelectedDevice = &d
	}
	return st
}

func (e *Engine) publish() {
	next := e.snapshot()

	e.mu.Lock()
	next.CurrentPedalValue = e.status.CurrentPedalValue
	next.LastTransition = e.status.LastTransition
	e.status = next
	out := e.status.Clone()
	e.mu.Unlock()

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- out.Clone():
		default:
			// Replace the stale snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- out.Clone():
			default:
			}
		}
	}
}

// closeSubscribers closes every subscription channel after the last publish.
func (e *Engine) closeSubscribers() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	e.subsClosed = true
	for ch := range e.subs {
		close(ch)
		delete(e.subs, ch)
	}
}

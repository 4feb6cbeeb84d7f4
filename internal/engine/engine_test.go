package engine

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/pedalbridge/internal/logger"
	"github.com/leandrodaf/pedalbridge/internal/midisource"
	"github.com/leandrodaf/pedalbridge/internal/target"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

const testTimeout = 2 * time.Second

type fakeDriver struct {
	mu       sync.Mutex
	sources  []contracts.MidiDevice
	ops      []string
	onPacket contracts.PacketHandler
}

func (f *fakeDriver) Sources() ([]contracts.MidiDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contracts.MidiDevice(nil), f.sources...), nil
}

func (f *fakeDriver) Connect(d contracts.MidiDevice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "connect "+d.Handle)
	return nil
}

func (f *fakeDriver) Disconnect(d contracts.MidiDevice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "disconnect "+d.Handle)
	return nil
}

func (f *fakeDriver) Close() error { return nil }

func (f *fakeDriver) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

type fakePlatform struct {
	mu       sync.Mutex
	running  map[string]int
	launches chan contracts.ProcessEvent
	keys     []contracts.KeyCode
}

func (p *fakePlatform) FindByBundleID(bundleID string) (contracts.Process, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pid, ok := p.running[bundleID]
	if !ok {
		return contracts.Process{}, contracts.ErrTargetNotRunning
	}
	return contracts.Process{PID: pid, BundleID: bundleID}, nil
}

func (p *fakePlatform) SubscribeLaunches() (<-chan contracts.ProcessEvent, func(), error) {
	return p.launches, func() {}, nil
}

func (p *fakePlatform) Activate(contracts.Process) error { return nil }

func (p *fakePlatform) PostKey(_ contracts.Process, key contracts.KeyStroke, down bool) {
	if !down {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key.Code)
}

func (p *fakePlatform) Keys() []contracts.KeyCode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.KeyCode(nil), p.keys...)
}

type harness struct {
	driver   *fakeDriver
	platform *fakePlatform
	engine   *Engine
	records  chan contracts.TransitionRecord
	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once
}

func newHarness(t *testing.T, devices []contracts.MidiDevice, logicRunning bool) *harness {
	t.Helper()

	h := &harness{
		driver: &fakeDriver{sources: devices},
		platform: &fakePlatform{
			running:  map[string]int{},
			launches: make(chan contracts.ProcessEvent, 4),
		},
		records: make(chan contracts.TransitionRecord, 16),
		done:    make(chan error, 1),
	}
	if logicRunning {
		h.platform.running["com.apple.logic10"] = 501
	}

	log := logger.NewNop()
	opts := &contracts.ClientOptions{Logger: log}
	factory := func(_ *contracts.ClientOptions, onPacket contracts.PacketHandler) (contracts.MIDIDriver, error) {
		h.driver.onPacket = onPacket
		return h.driver, nil
	}
	source := midisource.New(factory, opts)
	bridge := target.NewBridge(h.platform, contracts.DefaultTargetConfig(), log, target.WithSleep(func(time.Duration) {}))
	h.engine = New(source, bridge, log, WithTransitionHook(func(rec contracts.TransitionRecord) {
		h.records <- rec
	}))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.engine.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done
	})
}

func (h *harness) pedal(values ...byte) {
	for _, v := range values {
		h.driver.onPacket([]byte{0xB0, 11, v})
	}
}

func (h *harness) nextRecord(t *testing.T) contracts.TransitionRecord {
	t.Helper()
	select {
	case rec := <-h.records:
		return rec
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a transition")
		return contracts.TransitionRecord{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEndToEndTransitionLog(t *testing.T) {
	h := newHarness(t, nil, true)

	h.pedal(0, 60, 120, 0)

	want := []contracts.TransitionRecord{
		{
			Transition: contracts.ZoneTransition{Previous: contracts.ZoneStopped, Next: contracts.ZoneSoloing},
			Sequence:   []contracts.Command{contracts.CommandSolo},
			Issued:     []contracts.Command{contracts.CommandSolo},
		},
		{
			Transition: contracts.ZoneTransition{Previous: contracts.ZoneSoloing, Next: contracts.ZonePlaying},
			Sequence:   []contracts.Command{contracts.CommandUnsolo, contracts.CommandPlay},
			Issued:     []contracts.Command{contracts.CommandUnsolo, contracts.CommandPlay},
		},
		{
			Transition: contracts.ZoneTransition{Previous: contracts.ZonePlaying, Next: contracts.ZoneStopped},
			Sequence:   []contracts.Command{contracts.CommandUnsolo, contracts.CommandStop},
			Issued:     []contracts.Command{contracts.CommandStop},
		},
	}
	for i, w := range want {
		got := h.nextRecord(t)
		if !reflect.DeepEqual(got, w) {
			t.Errorf("record %d = %+v, want %+v", i, got, w)
		}
	}

	select {
	case extra := <-h.records:
		t.Errorf("unexpected extra transition %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}

	wantKeys := []contracts.KeyCode{contracts.KeyS, contracts.KeyS, contracts.KeySpace, contracts.KeySpace}
	if got := h.platform.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("keys = %v, want %v", got, wantKeys)
	}

	waitFor(t, "status to settle", func() bool {
		st := h.engine.Status()
		return st.CurrentZone == contracts.ZoneStopped && st.LastTransition != nil &&
			st.LastTransition.Transition.Next == contracts.ZoneStopped
	})
}

func TestTargetNotRunningStillTracksZones(t *testing.T) {
	h := newHarness(t, nil, false)

	h.pedal(120)
	rec := h.nextRecord(t)

	if rec.Transition.Next != contracts.ZonePlaying {
		t.Errorf("transition = %v", rec.Transition)
	}
	if len(h.platform.Keys()) != 0 {
		t.Errorf("keys sent to a target that is not running: %v", h.platform.Keys())
	}
	if h.engine.Status().TargetAppRunning {
		t.Error("status reports target running")
	}
}

func TestLaunchEventReacquiresTarget(t *testing.T) {
	h := newHarness(t, nil, false)

	h.platform.mu.Lock()
	h.platform.running["com.apple.logic10"] = 777
	h.platform.mu.Unlock()
	h.platform.launches <- contracts.ProcessEvent{Process: contracts.Process{PID: 777, BundleID: "com.apple.logic10"}}

	waitFor(t, "target to be running", func() bool { return h.engine.Status().TargetAppRunning })

	h.pedal(60)
	h.nextRecord(t)
	if got := h.platform.Keys(); !reflect.DeepEqual(got, []contracts.KeyCode{contracts.KeyS}) {
		t.Errorf("keys = %v", got)
	}
}

func TestSelectDeviceRunsOnProcessingContext(t *testing.T) {
	a := contracts.MidiDevice{Index: 0, Handle: "A", Name: "MiniLab 3"}
	b := contracts.MidiDevice{Index: 1, Handle: "B", Name: "Keystep"}
	h := newHarness(t, []contracts.MidiDevice{a, b}, false)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	// The first request is queued behind the startup scan, which auto-selects A.
	if err := h.engine.RefreshDevices(ctx); err != nil {
		t.Fatalf("RefreshDevices() = %v", err)
	}
	if err := h.engine.SelectDevice(ctx, b); err != nil {
		t.Fatalf("SelectDevice() = %v", err)
	}

	want := []string{"connect A", "disconnect A", "connect B"}
	if got := h.driver.Ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}

	st := h.engine.Status()
	if !st.IsConnected || st.SelectedDevice == nil || st.SelectedDevice.Handle != "B" {
		t.Errorf("status = %+v", st)
	}
	if len(st.AvailableDevices) != 2 {
		t.Errorf("devices = %v", st.AvailableDevices)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	h := newHarness(t, nil, false)

	updates, unsubscribe := h.engine.Subscribe()
	defer unsubscribe()

	h.pedal(90)

	deadline := time.After(testTimeout)
	for {
		select {
		case st := <-updates:
			if st.CurrentPedalValue == 90 && st.CurrentZone == contracts.ZoneSoloing {
				return
			}
		case <-deadline:
			t.Fatal("no snapshot with the pedal value arrived")
		}
	}
}

func TestRequestsAfterStopFail(t *testing.T) {
	h := newHarness(t, nil, false)
	h.stop()

	if err := h.engine.RefreshDevices(context.Background()); err != ErrEngineStopped {
		t.Errorf("RefreshDevices() = %v, want ErrEngineStopped", err)
	}
	if err := h.engine.Run(context.Background()); err != ErrEngineStopped {
		t.Errorf("Run() = %v, want ErrEngineStopped", err)
	}
}

func TestSubscriptionsCloseWhenRunReturns(t *testing.T) {
	h := newHarness(t, nil, false)

	updates, unsubscribe := h.engine.Subscribe()
	defer unsubscribe()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range updates {
		}
	}()

	h.stop()
	select {
	case <-drained:
	case <-time.After(testTimeout):
		t.Fatal("subscription channel still open after Run returned")
	}

	late, cancel := h.engine.Subscribe()
	defer cancel()
	if _, ok := <-late; !ok {
		t.Error("late subscriber got no initial snapshot")
	}
	if _, ok := <-late; ok {
		t.Error("late subscription channel is not closed")
	}
}

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

type fakeController struct {
	selected  []contracts.MidiDevice
	refreshes int
	err       error
}

func (f *fakeController) SelectDevice(_ context.Context, d contracts.MidiDevice) error {
	f.selected = append(f.selected, d)
	return f.err
}

func (f *fakeController) RefreshDevices(context.Context) error {
	f.refreshes++
	return f.err
}

var twoDevices = contracts.Status{
	AvailableDevices: []contracts.MidiDevice{
		{Index: 0, Handle: "iac", Name: "IAC Bus 1"},
		{Index: 1, Handle: "minilab", Name: "Arturia MiniLab 3"},
	},
	MIDIAvailable:     true,
	CurrentPedalValue: 110,
	CurrentZone:       contracts.ZonePlaying,
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStatusUpdateKeepsListening(t *testing.T) {
	updates := make(chan contracts.Status, 1)
	m := New(&fakeController{}, updates)

	m, cmd := update(t, m, statusMsg(twoDevices))
	if len(m.status.AvailableDevices) != 2 {
		t.Fatalf("devices = %v", m.status.AvailableDevices)
	}
	if cmd == nil {
		t.Fatal("status update did not resubscribe")
	}

	next := twoDevices.Clone()
	next.CurrentZone = contracts.ZoneSoloing
	updates <- next
	msg := cmd()
	if st, ok := msg.(statusMsg); !ok || st.CurrentZone != contracts.ZoneSoloing {
		t.Errorf("cmd() = %#v", msg)
	}
}

func TestNavigateAndSelect(t *testing.T) {
	ctrl := &fakeController{}
	m := New(ctrl, nil)
	m, _ = update(t, m, statusMsg(twoDevices))

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want clamped to 1", m.cursor)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	done := cmd().(actionDoneMsg)
	if done.err != nil || len(ctrl.selected) != 1 || ctrl.selected[0].Handle != "minilab" {
		t.Errorf("selected = %v err = %v", ctrl.selected, done.err)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestRefreshErrorIsShown(t *testing.T) {
	ctrl := &fakeController{err: errors.New("engine stopped")}
	m := New(ctrl, nil)

	m, cmd := update(t, m, runes("r"))
	m, _ = update(t, m, cmd())
	if ctrl.refreshes != 1 {
		t.Errorf("refreshes = %d", ctrl.refreshes)
	}
	if !strings.Contains(m.View(), "engine stopped") {
		t.Error("view does not show the action error")
	}
}

func TestQuit(t *testing.T) {
	m := New(&fakeController{}, nil)

	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestCursorClampsWhenDevicesShrink(t *testing.T) {
	m := New(&fakeController{}, nil)
	m, _ = update(t, m, statusMsg(twoDevices))
	m, _ = update(t, m, runes("j"))

	m, _ = update(t, m, statusMsg(contracts.Status{MIDIAvailable: true}))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter with no devices produced a command")
	}
}

func TestView(t *testing.T) {
	m := New(&fakeController{}, nil)
	st := twoDevices.Clone()
	st.SelectedDevice = &st.AvailableDevices[1]
	st.IsConnected = true
	m, _ = update(t, m, statusMsg(st))

	view := m.View()
	for _, want := range []string{"Playing", "IAC Bus 1", "Arturia MiniLab 3", "not running", "110"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

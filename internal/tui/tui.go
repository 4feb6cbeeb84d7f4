// Package tui provides a terminal dashboard for the pedal bridge.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

var (
	accent    = lipgloss.Color("#39FF14")
	warning   = lipgloss.Color("#FFFF00")
	muted     = lipgloss.Color("#666666")
	silver    = lipgloss.Color("#C0C0C0")
	darkGray  = lipgloss.Color("#333333")
	errorRed  = lipgloss.Color("#FF0000")
	playGreen = lipgloss.Color("#00D75F")
	soloAmber = lipgloss.Color("#FFAF00")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle    = lipgloss.NewStyle().Foreground(muted).Width(10)
	menuStyle     = lipgloss.NewStyle().Foreground(silver).PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true).PaddingLeft(2)
	errorStyle    = lipgloss.NewStyle().Foreground(errorRed).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(muted).MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)

const actionTimeout = 5 * time.Second

// Controller is what the dashboard needs from the running bridge.
type Controller interface {
	SelectDevice(ctx context.Context, device contracts.MidiDevice) error
	RefreshDevices(ctx context.Context) error
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() string {
	parts := make([]string, 0, 5)
	for _, b := range []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

type statusMsg contracts.Status

type actionDoneMsg struct {
	err error
}

// Model is the dashboard state.
type Model struct {
	ctrl    Controller
	updates <-chan contracts.Status
	status  contracts.Status
	cursor  int
	keys    keyMap
	pedal   progress.Model
	err     error
}

// New creates a dashboard fed by a status subscription.
func New(ctrl Controller, updates <-chan contracts.Status) Model {
	return Model{
		ctrl:    ctrl,
		updates: updates,
		keys:    defaultKeyMap(),
		pedal:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
	}
}

// Init starts listening for status updates.
func (m Model) Init() tea.Cmd {
	return waitForStatus(m.updates)
}

func waitForStatus(updates <-chan contracts.Status) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return statusMsg(st)
	}
}

// Update handles key presses and status updates.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = contracts.Status(msg)
		if n := len(m.status.AvailableDevices); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, waitForStatus(m.updates)

	case actionDoneMsg:
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.pedal.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.status.AvailableDevices)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			if m.cursor < len(m.status.AvailableDevices) {
				return m, m.selectDevice(m.status.AvailableDevices[m.cursor])
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m Model) selectDevice(d contracts.MidiDevice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: m.ctrl.SelectDevice(ctx, d)}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: m.ctrl.RefreshDevices(ctx)}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" PEDAL BRIDGE "))
	s.WriteString("\n")

	s.WriteString(row("Target", m.targetLine()))
	s.WriteString(row("MIDI", m.midiLine()))
	s.WriteString(row("Pedal", fmt.Sprintf("%s %3d", m.pedal.ViewAs(float64(m.status.CurrentPedalValue)/127), m.status.CurrentPedalValue)))
	s.WriteString(row("Zone", zoneStyle(m.status.CurrentZone).Render(m.status.CurrentZone.String())))
	if rec := m.status.LastTransition; rec != nil {
		s.WriteString(row("Last", fmt.Sprintf("%s  %v", rec.Transition, rec.Issued)))
	}

	s.WriteString("\n")
	s.WriteString(m.viewDevices())

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.keys.help()))

	return boxStyle.Render(s.String())
}

func (m Model) targetLine() string {
	if m.status.TargetAppRunning {
		return lipgloss.NewStyle().Foreground(accent).Render("running")
	}
	return lipgloss.NewStyle().Foreground(warning).Render("not running")
}

func (m Model) midiLine() string {
	switch {
	case !m.status.MIDIAvailable:
		return errorStyle.Render("unavailable")
	case m.status.SelectedDevice == nil:
		return lipgloss.NewStyle().Foreground(warning).Render("no device selected")
	case !m.status.IsConnected:
		return lipgloss.NewStyle().Foreground(warning).Render(m.status.SelectedDevice.Name + " (not connected)")
	default:
		return lipgloss.NewStyle().Foreground(accent).Render(m.status.SelectedDevice.Name)
	}
}

func (m Model) viewDevices() string {
	if len(m.status.AvailableDevices) == 0 {
		return menuStyle.Render("No MIDI sources found. Press r to rescan.") + "\n"
	}

	var s strings.Builder
	for i, d := range m.status.AvailableDevices {
		mark := " "
		if m.status.SelectedDevice != nil && m.status.SelectedDevice.Same(d) {
			mark = "●"
		}
		line := fmt.Sprintf("%s %s", mark, d.Name)
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			s.WriteString(menuStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}
	return s.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func zoneStyle(z contracts.Zone) lipgloss.Style {
	switch z {
	case contracts.ZonePlaying:
		return lipgloss.NewStyle().Foreground(playGreen).Bold(true)
	case contracts.ZoneSoloing:
		return lipgloss.NewStyle().Foreground(soloAmber).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(silver)
	}
}

// Run shows the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, updates <-chan contracts.Status) error {
	p := tea.NewProgram(New(ctrl, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Package tui is the terminal display surface: step count, calories, a
// running or sitting figure, and a reset key.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/step-sensor/internal/mqtt"
	"github.com/sweeney/step-sensor/internal/status"
)

// ResetSource labels resets requested from the terminal.
const ResetSource = "tui"

// FrameInterval is the redraw and animation period.
const FrameInterval = 150 * time.Millisecond

// TickMsg triggers a snapshot refresh and animation frame.
type TickMsg time.Time

// Snapshotter is satisfied by *status.Tracker.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// ResetFunc asks the event loop to reset the count; false means the
// request was dropped.
type ResetFunc func(source string) bool

// Model is the root Bubble Tea model.
type Model struct {
	width  int
	height int

	src   Snapshotter
	reset ResetFunc

	snap   status.Snapshot
	tick   int
	notice string
}

// New creates a Model reading from src. reset may be nil, in which case
// the reset key only shows a notice.
func New(src Snapshotter, reset ResetFunc) Model {
	return Model{
		src:   src,
		reset: reset,
		snap:  src.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.snap = m.src.Snapshot()
		if m.snap.Running() {
			m.tick++
		} else {
			m.tick = 0
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "r", "R":
		if m.reset != nil && m.reset(ResetSource) {
			m.notice = "reset"
		} else {
			m.notice = "reset unavailable"
		}
	}
	return m, nil
}

func (m Model) View() string {
	snap := m.snap

	var activity string
	if snap.Running() {
		activity = StyleRunning.Render("running")
	} else {
		activity = StyleSitting.Render("sitting")
	}

	fig := figure(snap.Running(), m.tick)
	if snap.Running() {
		fig = StyleRunning.Render(fig)
	} else {
		fig = StyleSitting.Render(fig)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		StyleTitle.Render("Steps Tracker"),
		"",
		StyleCount.Render(fmt.Sprintf("%d", snap.Steps)),
		StyleLabel.Render("Steps"),
		"",
		StyleLabel.Render("Estimated Calories Burnt: ")+
			StyleCalories.Render(mqtt.FormatCalories(snap.Calories())+" calories"),
		"",
		fig,
		activity,
	)

	panel := StylePanel.Render(body)
	lines := []string{panel, m.statusLine()}
	if m.notice != "" {
		lines = append(lines, StyleNotice.Render(m.notice))
	}
	lines = append(lines, StyleHelp.Render("r reset · q quit"))

	view := strings.Join(lines, "\n")
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m Model) statusLine() string {
	sensor := m.snap.SensorName
	if sensor == "" {
		sensor = "no sensor"
	}
	if m.snap.SensorAvailable {
		sensor = StyleLabel.Render(sensor)
	} else {
		sensor = StyleOffline.Render(sensor + " (unavailable)")
	}

	broker := StyleLabel.Render("mqtt connected")
	if !m.snap.MQTTConnected {
		broker = StyleOffline.Render("mqtt offline")
	}
	return sensor + StyleHelp.Render(" · ") + broker
}

func tickCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

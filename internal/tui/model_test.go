package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/step-sensor/internal/status"
)

type fakeSnapshotter struct {
	snap status.Snapshot
}

func (f *fakeSnapshotter) Snapshot() status.Snapshot {
	return f.snap
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewSitting(t *testing.T) {
	m := New(&fakeSnapshotter{}, nil)
	view := m.View()

	for _, want := range []string{
		"Steps Tracker",
		"Estimated Calories Burnt:",
		"0.00 calories",
		"sitting",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "running") {
		t.Error("sitting view should not say running")
	}
}

func TestViewRunning(t *testing.T) {
	src := &fakeSnapshotter{snap: status.Snapshot{Steps: 10, SensorName: "demo", SensorAvailable: true}}
	m := New(src, nil)
	view := m.View()

	if !strings.Contains(view, "10") {
		t.Errorf("view missing step count:\n%s", view)
	}
	if !strings.Contains(view, "0.50 calories") {
		t.Errorf("view missing calories:\n%s", view)
	}
	if !strings.Contains(view, "running") {
		t.Errorf("view missing running indicator:\n%s", view)
	}
	if !strings.Contains(view, "demo") {
		t.Errorf("view missing sensor name:\n%s", view)
	}
}

func TestTickRefreshesSnapshot(t *testing.T) {
	src := &fakeSnapshotter{}
	m := New(src, nil)

	src.snap = status.Snapshot{Steps: 3}
	next, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	nm := next.(Model)
	if nm.snap.Steps != 3 {
		t.Errorf("snapshot not refreshed: got %d steps", nm.snap.Steps)
	}
	if nm.tick != 1 {
		t.Errorf("animation should advance while running, tick=%d", nm.tick)
	}

	src.snap = status.Snapshot{}
	next, _ = nm.Update(TickMsg(time.Now()))
	if next.(Model).tick != 0 {
		t.Error("animation should rest while sitting")
	}
}

func TestFigureCycles(t *testing.T) {
	if figure(false, 5) != sittingFrame {
		t.Error("sitting should always show the sitting frame")
	}
	first := figure(true, 0)
	if figure(true, len(runningFrames)) != first {
		t.Error("running frames should wrap")
	}
	if figure(true, 1) == first {
		t.Error("consecutive running frames should differ")
	}
}

func TestResetKey(t *testing.T) {
	var sources []string
	reset := func(source string) bool {
		sources = append(sources, source)
		return true
	}
	m := New(&fakeSnapshotter{}, reset)

	next, cmd := m.Update(keyMsg("r"))
	if cmd != nil {
		t.Error("reset should not return a command")
	}
	if len(sources) != 1 || sources[0] != ResetSource {
		t.Errorf("reset calls: got %v, want [tui]", sources)
	}
	if next.(Model).notice != "reset" {
		t.Errorf("notice: got %q", next.(Model).notice)
	}
}

func TestResetKeyUnavailable(t *testing.T) {
	m := New(&fakeSnapshotter{}, func(string) bool { return false })
	next, _ := m.Update(keyMsg("r"))
	if next.(Model).notice != "reset unavailable" {
		t.Errorf("notice: got %q", next.(Model).notice)
	}

	m = New(&fakeSnapshotter{}, nil)
	next, _ = m.Update(keyMsg("R"))
	if next.(Model).notice != "reset unavailable" {
		t.Errorf("notice with no reset func: got %q", next.(Model).notice)
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []tea.KeyMsg{
		keyMsg("q"),
		keyMsg("Q"),
		{Type: tea.KeyCtrlC},
	}
	for _, k := range tests {
		m := New(&fakeSnapshotter{}, nil)
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k.String())
		}
	}
}

func TestWindowSize(t *testing.T) {
	m := New(&fakeSnapshotter{}, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	nm := next.(Model)
	if nm.width != 80 || nm.height != 24 {
		t.Errorf("size: got %dx%d", nm.width, nm.height)
	}
	if nm.View() == "" {
		t.Error("expected non-empty view")
	}
}

package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gtudan/co2monitor/internal/protocol"
)

func step(t *testing.T, m WatchModel, msg tea.Msg) (WatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WatchModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return wm, cmd
}

func TestWatchModelReadings(t *testing.T) {
	updates := make(chan Update, 1)
	m := NewWatchModel("/dev/hidraw0", updates)

	if !strings.Contains(m.View(), "waiting for the first reading") {
		t.Error("initial view should show the waiting spinner")
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m, cmd := step(t, m, updateMsg{Reading: protocol.CO2{PPM: 1013}, At: now})
	if cmd == nil {
		t.Error("a reading should schedule the next wait")
	}
	m, _ = step(t, m, updateMsg{Reading: protocol.Temperature{Celsius: 22.0375}, At: now.Add(time.Second)})

	if m.Count != 2 || m.CO2 == nil || m.CO2.PPM != 1013 || m.Temperature == nil {
		t.Fatalf("model state = %+v", m)
	}

	view := m.View()
	for _, want := range []string{"1013 ppm", "moderate", "22.0375 °C", "2 readings", "12:00:01"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "waiting") {
		t.Error("spinner should be gone after the first reading")
	}
}

func TestWatchModelStreamError(t *testing.T) {
	m := NewWatchModel("capture.txt", make(chan Update))
	boom := errors.New("read frame: device disconnected")

	m, cmd := step(t, m, updateMsg{Err: boom})
	if !errors.Is(m.Err, boom) {
		t.Errorf("Err = %v, want %v", m.Err, boom)
	}
	if cmd == nil {
		t.Fatal("stream error should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("stream error should return tea.Quit")
	}
	if !strings.Contains(m.View(), "device disconnected") {
		t.Error("view should show the error")
	}
}

func TestWatchModelKeys(t *testing.T) {
	m := NewWatchModel("x", make(chan Update))

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.help.ShowAll {
		t.Error("? should toggle the full help")
	}

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestWaitForUpdateClosed(t *testing.T) {
	updates := make(chan Update)
	close(updates)
	if _, ok := waitForUpdate(updates)().(streamClosedMsg); !ok {
		t.Error("closed channel should yield streamClosedMsg")
	}
}

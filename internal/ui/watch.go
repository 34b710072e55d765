package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// Update is one event from the reading stream. Err ends the stream.
type Update struct {
	Reading protocol.Reading
	Err     error
	At      time.Time
}

// updateMsg wraps an Update as a Bubble Tea message.
type updateMsg Update

// streamClosedMsg is sent when the updates channel is closed.
type streamClosedMsg struct{}

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Help key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Help, k.Quit}}
}

// WatchModel is the live dashboard: latest CO2 with a gauge, latest
// temperature, and a spinner while waiting for the first reading.
type WatchModel struct {
	Source string

	Width int

	CO2         *protocol.CO2
	CO2At       time.Time
	Temperature *protocol.Temperature
	TempAt      time.Time
	Count       int
	Err         error

	updates <-chan Update
	spinner spinner.Model
	gauge   progress.Model
	help    help.Model
	keys    watchKeyMap
}

// NewWatchModel creates a dashboard fed by updates. source is shown in the
// title (device path or capture file).
func NewWatchModel(source string, updates <-chan Update) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	gauge := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	gauge.Width = 40

	return WatchModel{
		Source:  source,
		Width:   GetTerminalWidth(),
		updates: updates,
		spinner: s,
		gauge:   gauge,
		help:    help.New(),
		keys: watchKeyMap{
			Help: key.NewBinding(
				key.WithKeys("?"),
				key.WithHelp("?", "help"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c", "esc"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// waitForUpdate blocks on the channel and delivers the next update.
func waitForUpdate(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return streamClosedMsg{}
		}
		return updateMsg(u)
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		m.help.Width = m.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case updateMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, tea.Quit
		}
		m.Count++
		switch r := msg.Reading.(type) {
		case protocol.CO2:
			m.CO2, m.CO2At = &r, msg.At
		case protocol.Temperature:
			m.Temperature, m.TempAt = &r, msg.At
		}
		return m, waitForUpdate(m.updates)

	case streamClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CO2 MONITOR"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(m.Source))
	b.WriteString("\n\n")

	if m.CO2 == nil && m.Temperature == nil {
		b.WriteString("  " + m.spinner.View() + " waiting for the first reading...\n")
	}

	if m.CO2 != nil {
		level := ClassifyCO2(m.CO2.PPM)
		b.WriteString(LabelStyle.Render("CO2"))
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%d ppm", m.CO2.PPM)))
		b.WriteString("  ")
		b.WriteString(level.Style().Render(level.String()))
		b.WriteString(MutedStyle.Render("  " + level.Advice()))
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(""))
		b.WriteString(m.gauge.ViewAs(GaugeFraction(m.CO2.PPM)))
		b.WriteString("\n")
	}

	if m.Temperature != nil {
		b.WriteString(LabelStyle.Render("Temperature"))
		b.WriteString(ValueStyle.Render(protocol.FormatCelsius(m.Temperature.Celsius) + " °C"))
		b.WriteString("\n")
	}

	if m.Count > 0 {
		last := m.CO2At
		if m.TempAt.After(last) {
			last = m.TempAt
		}
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d readings, last at %s", m.Count, last.Format(time.TimeOnly))))
		b.WriteString("\n")
	}

	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorMessageStyle.Render("  " + FailureMarker + " " + m.Err.Error()))
		b.WriteString("\n")
	}

	content := BoxStyle(m.Width, PrimaryColor).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, content, "  "+m.help.View(m.keys)) + "\n"
}

// RunWatch shows the dashboard until the user quits, ctx is cancelled or
// the stream fails. It returns the stream error, if any.
func RunWatch(ctx context.Context, source string, updates <-chan Update) error {
	p := tea.NewProgram(NewWatchModel(source, updates), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if m, ok := final.(WatchModel); ok {
		return m.Err
	}
	return nil
}

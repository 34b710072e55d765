package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// Printer provides methods for printing UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
	plain bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetPlain disables boxes and colors, for piping output into other tools.
func (p *Printer) SetPlain(plain bool) *Printer {
	p.plain = plain
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	if p.plain {
		return
	}
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintReading prints one reading per line:
//
//	2024-03-01T12:00:00Z  co2          1013 ppm  (moderate)
//	2024-03-01T12:00:02Z  temperature  22.0375 °C
func (p *Printer) PrintReading(r protocol.Reading, at time.Time) {
	p.Println(FormatReading(r, at, !p.plain))
}

// PrintError prints an error box with troubleshooting hint
func (p *Printer) PrintError(title string, err error, hint string) {
	if p.plain {
		p.Println(title + ": " + err.Error())
		if hint != "" {
			p.Println(hint)
		}
		return
	}
	p.Println(RenderErrorBox(title, err, hint, p.width))
}

// FormatReading renders a reading as a single line.
func FormatReading(r protocol.Reading, at time.Time, styled bool) string {
	stamp := at.Format(time.RFC3339)
	var value, note string
	switch v := r.(type) {
	case protocol.CO2:
		value = fmt.Sprintf("%d ppm", v.PPM)
		level := ClassifyCO2(v.PPM)
		note = "(" + level.String() + ")"
		if styled {
			note = level.Style().Render(note)
		}
	case protocol.Temperature:
		value = protocol.FormatCelsius(v.Celsius) + " °C"
	}

	line := fmt.Sprintf("%s  %-11s  %s", stamp, r.Kind(), value)
	if note != "" {
		line += "  " + note
	}
	return line
}

// RenderHeader renders a command header box. Parameters are listed in key
// order.
func RenderHeader(title, command string, params map[string]string, width int) string {
	titleLine := TitleStyle.Render(strings.ToUpper(title))
	commandLine := SubtitleStyle.Render(command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(params) == 0 {
		return BoxStyle(width, PrimaryColor).Render(topSection)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paramLines := make([]string, 0, len(keys))
	for _, k := range keys {
		paramLines = append(paramLines, LabelStyle.Render(k+":")+" "+ValueStyle.Render(params[k]))
	}

	// Account for border and padding
	divider := RenderHorizontalDivider(width-6, "─")
	content := lipgloss.JoinVertical(lipgloss.Left, topSection, divider, strings.Join(paramLines, "\n"))
	return BoxStyle(width, PrimaryColor).Render(content)
}

// RenderErrorBox renders an error box with an optional multi-line hint
func RenderErrorBox(title string, err error, hint string, width int) string {
	lines := []string{
		"",
		ErrorTitleStyle.Render("  " + FailureMarker + "  FAILED  ─  " + title),
		"",
	}
	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render("  Error: "+err.Error()), "")
	}
	if hint != "" {
		for _, l := range strings.Split(hint, "\n") {
			lines = append(lines, HintStyle.Render("  "+l))
		}
		lines = append(lines, "")
	}
	return BoxStyle(width, ErrorColor).Render(strings.Join(lines, "\n"))
}

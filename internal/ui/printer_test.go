package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gtudan/co2monitor/internal/protocol"
)

var at = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFormatReading(t *testing.T) {
	tests := []struct {
		r    protocol.Reading
		want string
	}{
		{protocol.CO2{PPM: 1013}, "2024-03-01T12:00:00Z  co2          1013 ppm  (moderate)"},
		{protocol.CO2{PPM: 415}, "2024-03-01T12:00:00Z  co2          415 ppm  (good)"},
		{protocol.Temperature{Celsius: 22.0375}, "2024-03-01T12:00:00Z  temperature  22.0375 °C"},
	}
	for _, tt := range tests {
		if got := FormatReading(tt.r, at, false); got != tt.want {
			t.Errorf("FormatReading(%v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestPlainPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetPlain(true)

	p.PrintHeader("read", "co2monitor read", map[string]string{"Device": "/dev/hidraw0"})
	p.PrintReading(protocol.CO2{PPM: 1300}, at)
	p.PrintError("Read failed", errors.New("device gone"), "Check the cable")

	want := "2024-03-01T12:00:00Z  co2          1300 ppm  (poor)\n" +
		"Read failed: device gone\n" +
		"Check the cable\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRenderErrorBox(t *testing.T) {
	out := RenderErrorBox("Read failed", errors.New("device gone"), "first hint\nsecond hint", 80)
	for _, want := range []string{"FAILED", "Read failed", "device gone", "first hint", "second hint"} {
		if !strings.Contains(out, want) {
			t.Errorf("error box missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHeaderSortsParams(t *testing.T) {
	out := RenderHeader("run", "co2monitor run", map[string]string{"MQTT": "off", "Device": "/dev/hidraw0"}, 80)
	d, m := strings.Index(out, "Device:"), strings.Index(out, "MQTT:")
	if d < 0 || m < 0 || d > m {
		t.Errorf("params not rendered in order:\n%s", out)
	}
}

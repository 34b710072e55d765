package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gtudan/co2monitor/internal/protocol"
)

func TestDescribeFrame(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		plaintext bool
		want      []string
	}{
		{
			name:  "co2",
			frame: "98e4662094 46bf62",
			want:  []string{"decrypted: 5003f5480d", "valid:     yes", "reading:   CO2{1013 ppm}"},
		},
		{
			name:  "unknown opcode",
			frame: "72e45121f946bfb2",
			want:  []string{"valid:     yes", "unknown opcode 0x6e"},
		},
		{
			name:      "plaintext",
			frame:     "5001c2130d000000",
			plaintext: true,
			want:      []string{"decrypted: 5001c2130d000000", "reading:   CO2{450 ppm}"},
		},
		{
			name:      "bad checksum",
			frame:     "5001c2140d000000",
			plaintext: true,
			want:      []string{"valid:     no"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := protocol.ParseRawFrame(tt.frame)
			if err != nil {
				t.Fatalf("ParseRawFrame() error = %v", err)
			}
			got := describeFrame(raw, tt.plaintext)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("describeFrame() = %q, want it to contain %q", got, w)
				}
			}
		})
	}
}

func TestParseReading(t *testing.T) {
	tests := []struct {
		input   string
		want    protocol.Reading
		wantErr bool
	}{
		{input: "co2=1013", want: protocol.CO2{PPM: 1013}},
		{input: "CO2 = 450", want: protocol.CO2{PPM: 450}},
		{input: "temperature=22.5", want: protocol.Temperature{Celsius: 22.5}},
		{input: "temp=-3", want: protocol.Temperature{Celsius: -3}},
		{input: "co2=70000", wantErr: true},
		{input: "humidity=40", wantErr: true},
		{input: "co2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseReading(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errUsage) {
					t.Errorf("parseReading() error = %v, want errUsage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReading() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseReading() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCaptureFrameRoundTrips(t *testing.T) {
	frame := protocol.BuildFrame(protocol.OpCO2, 1013)

	raw, ok := captureFrame(protocol.OutcomeOK, frame)
	if !ok {
		t.Fatal("captureFrame(ok) skipped the frame")
	}
	if got := protocol.Deobfuscate(raw); got != frame {
		t.Errorf("Deobfuscate(capture) = %s, want %s", got, frame)
	}

	raw, ok = captureFrame(protocol.OutcomePlaintext, frame)
	if !ok || protocol.DecryptedFrame(raw) != frame {
		t.Errorf("captureFrame(plaintext) = %s, %v; want the frame unchanged", raw, ok)
	}

	if _, ok := captureFrame(protocol.OutcomeNoData, frame); ok {
		t.Error("captureFrame(no_data) should skip")
	}
}

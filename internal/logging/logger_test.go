package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gtudan/co2monitor/internal/config"
)

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"", "debug", "INFO", "warn", "warning", "error"} {
		if _, err := parseLevel(lvl); err != nil {
			t.Errorf("parseLevel(%q) error = %v", lvl, err)
		}
	}
	if _, err := parseLevel("verbose"); err == nil {
		t.Error("parseLevel(verbose) should fail")
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "co2monitor.log")
	l, err := New(config.LoggingConfig{
		Format: "json",
		File:   config.FileConfig{Filename: path, MaxSizeMB: 1},
	}, "info")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("hello", zap.Uint16("ppm", 415))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"ppm":415`) {
		t.Errorf("log file = %q, want ppm field", data)
	}
}

func TestLogRawFrameOnlyAtDebug(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	LogRawFrame("frame", []byte{0x50, 0x03})
	if logs.Len() != 0 {
		t.Errorf("LogRawFrame logged at info level")
	}

	core, logs = observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	LogRawFrame("frame", []byte{0x50, 0x03})
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["hex"]; got != "5003" {
		t.Errorf("hex = %v, want 5003", got)
	}
}

func TestInitializeFileOnly(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if err := InitializeFileOnly(config.LoggingConfig{Level: "info"}); err != nil {
		t.Fatalf("InitializeFileOnly() error = %v", err)
	}
	if GetLogger().Core().Enabled(zap.ErrorLevel) {
		t.Error("logger without a file should discard everything")
	}

	path := filepath.Join(t.TempDir(), "watch.log")
	err := InitializeFileOnly(config.LoggingConfig{
		Level: "info",
		File:  config.FileConfig{Filename: path, MaxSizeMB: 1},
	})
	if err != nil {
		t.Fatalf("InitializeFileOnly() error = %v", err)
	}
	Info("dashboard started")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "dashboard started") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("file output contains color codes: %q", data)
	}
}

package device

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/gtudan/co2monitor/internal/protocol"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		step          Step
		err           error
		wantKind      ErrorKind
		wantRetryable bool
	}{
		{"no data", StepRead, protocol.ErrNoData, KindTimeout, true},
		{"eintr", StepRead, syscall.EINTR, KindInterrupted, true},
		{"eagain", StepRead, syscall.EAGAIN, KindInterrupted, true},
		{"wrapped eagain", StepRead, fmt.Errorf("read: %w", syscall.EAGAIN), KindInterrupted, true},
		{"etimedout", StepRead, syscall.ETIMEDOUT, KindTimeout, true},
		{"deadline exceeded", StepRead, os.ErrDeadlineExceeded, KindTimeout, true},
		{"enodev", StepRead, syscall.ENODEV, KindDisconnected, false},
		{"eio", StepRead, syscall.EIO, KindDisconnected, false},
		{"wrapped eio", StepRead, fmt.Errorf("read: %w", syscall.EIO), KindDisconnected, false},
		{"not found", StepOpen, &fs.PathError{Op: "open", Path: "/dev/hidraw9", Err: syscall.ENOENT}, KindNotFound, false},
		{"permission", StepOpen, syscall.EACCES, KindPermission, false},
		{"unknown", StepRead, io.ErrUnexpectedEOF, KindIO, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.step, "/dev/hidraw0", tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.Temporary() != tt.wantRetryable {
				t.Errorf("Temporary() = %v, want %v", got.Temporary(), tt.wantRetryable)
			}
			if got.Step != tt.step {
				t.Errorf("Step = %v, want %v", got.Step, tt.step)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify() does not wrap %v", tt.err)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(StepRead, "x", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestClassifyKeepsDeviceError(t *testing.T) {
	orig := newShortRead("/dev/hidraw0", 3)
	wrapped := fmt.Errorf("context: %w", orig)
	if got := Classify(StepOpen, "other", wrapped); got != orig {
		t.Errorf("Classify() = %v, want original %v", got, orig)
	}
}

func TestIsTemporaryAndFatal(t *testing.T) {
	timeout := newTimeout("/dev/hidraw0")
	if !IsTemporary(timeout) || IsFatal(timeout) {
		t.Error("timeout should be temporary")
	}
	if !errors.Is(timeout, protocol.ErrNoData) {
		t.Error("timeout should match protocol.ErrNoData")
	}

	gone := Classify(StepRead, "/dev/hidraw0", syscall.ENODEV)
	if IsTemporary(gone) || !IsFatal(gone) {
		t.Error("ENODEV should be fatal")
	}
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if IsTemporary(io.EOF) {
		t.Error("io.EOF is not temporary")
	}
}

func TestFailedStep(t *testing.T) {
	err := fmt.Errorf("read frame: %w", Classify(StepHandshake, "/dev/hidraw0", syscall.EPIPE))
	if got := FailedStep(err); got != StepHandshake {
		t.Errorf("FailedStep() = %q, want handshake", got)
	}
	if got := FailedStep(io.EOF); got != "" {
		t.Errorf("FailedStep(io.EOF) = %q, want empty", got)
	}
}

func TestDeviceErrorMessage(t *testing.T) {
	err := Classify(StepRead, "/dev/hidraw0", syscall.ENODEV)
	msg := err.Error()
	for _, want := range []string{"read", "/dev/hidraw0", "device disconnected"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Classify(StepOpen, "/dev/hidraw0", syscall.ENOENT), "co2monitor discover"},
		{Classify(StepOpen, "/dev/hidraw0", syscall.EACCES), "udev"},
		{Classify(StepRead, "/dev/hidraw0", syscall.ENODEV), "USB cable"},
		{&DeviceError{Step: StepOpen, Kind: KindUnsupported}, "--replay"},
	}
	for _, tt := range tests {
		if got := Hint(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("Hint(%v) = %q, want mention of %q", tt.err, got, tt.want)
		}
	}
	if Hint(io.EOF) != "" {
		t.Error("Hint of foreign error should be empty")
	}
}

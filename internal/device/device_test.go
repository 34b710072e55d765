package device

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingWriter struct {
	reports [][]byte
	err     error
}

func (w *recordingWriter) WriteFeatureReport(report []byte) error {
	w.reports = append(w.reports, append([]byte(nil), report...))
	return w.err
}

func TestHandshakeSendsKeyReport(t *testing.T) {
	w := &recordingWriter{}
	if err := Handshake(w); err != nil {
		t.Fatalf("Handshake() error = %v", err)
	}

	want := [][]byte{{0x00, 0xc4, 0xc6, 0xc0, 0x92, 0x40, 0x23, 0xdc, 0x96}}
	if diff := cmp.Diff(want, w.reports); diff != "" {
		t.Errorf("feature reports mismatch (-want +got):\n%s", diff)
	}
}

func TestHandshakePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	if err := Handshake(&recordingWriter{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Handshake() error = %v, want %v", err, boom)
	}
}

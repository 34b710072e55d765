package device

import (
	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/protocol"
)

// Device is a frame source that owns an underlying handle.
type Device interface {
	protocol.FrameSource
	Close() error
}

// FeatureWriter sends HID feature reports.
type FeatureWriter interface {
	WriteFeatureReport(report []byte) error
}

// Handshake sends the key feature report that switches the monitor into
// streaming mode.
func Handshake(w FeatureWriter) error {
	report := protocol.FeatureReport()
	return w.WriteFeatureReport(report[:])
}

// Connect opens the monitor at path and performs the handshake. A failed
// handshake is logged but does not fail Connect: the monitor may already be
// streaming from an earlier session, and reads are attempted either way.
func Connect(path string) (*HIDRaw, error) {
	dev, err := Open(path)
	if err != nil {
		return nil, err
	}
	logging.LogDeviceEvent(path, "opened")

	if err := Handshake(dev); err != nil {
		logging.Warn("Handshake failed, the monitor may not send valid frames",
			zap.String("device", path),
			zap.Error(err),
		)
	} else {
		logging.LogDeviceEvent(path, "handshake_complete")
	}
	return dev, nil
}

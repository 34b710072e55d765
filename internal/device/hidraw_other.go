//go:build !linux

package device

import (
	"context"
	"errors"
	"time"

	"github.com/gtudan/co2monitor/internal/protocol"
)

var errUnsupported = errors.New("hidraw is only available on linux")

// HIDRaw is unavailable on this platform; Open always fails.
type HIDRaw struct {
	path string
}

// Open always returns a KindUnsupported DeviceError.
func Open(path string) (*HIDRaw, error) {
	return nil, &DeviceError{Step: StepOpen, Kind: KindUnsupported, Path: path, Err: errUnsupported}
}

// Path returns the device node.
func (d *HIDRaw) Path() string { return d.path }

func (d *HIDRaw) WriteFeatureReport(report []byte) error {
	return &DeviceError{Step: StepHandshake, Kind: KindUnsupported, Path: d.path, Err: errUnsupported}
}

func (d *HIDRaw) ReadFrame(ctx context.Context, timeout time.Duration) (protocol.RawFrame, error) {
	return protocol.RawFrame{}, &DeviceError{Step: StepRead, Kind: KindUnsupported, Path: d.path, Err: errUnsupported}
}

func (d *HIDRaw) Close() error { return nil }

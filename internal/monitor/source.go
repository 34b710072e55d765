package monitor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/device"
	"github.com/gtudan/co2monitor/internal/discovery"
	"github.com/gtudan/co2monitor/internal/logging"
)

// SourceOptions selects where frames come from.
type SourceOptions struct {
	// Replay plays back a capture file instead of opening the device
	Replay string

	// ReplayInterval paces replayed frames
	ReplayInterval time.Duration

	// SysfsRoot overrides /sys for device discovery
	SysfsRoot string
}

// OpenSource opens the frame source described by cfg and opts. Without an
// explicit device path the first hidraw node matching the configured USB IDs
// is used. It returns the source and a label for display.
func OpenSource(cfg config.DeviceConfig, opts SourceOptions) (device.Device, string, error) {
	if opts.Replay != "" {
		r, err := device.OpenReplay(opts.Replay, opts.ReplayInterval)
		if err != nil {
			return nil, "", err
		}
		logging.Info("Replaying capture", zap.String("file", opts.Replay), zap.Duration("interval", opts.ReplayInterval))
		return r, opts.Replay, nil
	}

	path := cfg.Path
	if path == "" {
		found, err := discovery.FindMonitor(opts.SysfsRoot, cfg.VendorID, cfg.ProductID)
		if err != nil {
			return nil, "", device.Classify(device.StepOpen, fmt.Sprintf("%04x:%04x", cfg.VendorID, cfg.ProductID), err)
		}
		logging.Info("Discovered monitor", zap.String("device", found))
		path = found
	}

	dev, err := device.Connect(path)
	if err != nil {
		return nil, "", err
	}
	return dev, path, nil
}

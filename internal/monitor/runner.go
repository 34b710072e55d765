package monitor

import (
	"context"
	"encoding/hex"
	"errors"

	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/device"
	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/protocol"
	"github.com/gtudan/co2monitor/internal/sink"
)

// Runner pumps readings from a stream into a sink until the stream fails
// or the context is cancelled.
type Runner struct {
	stream *protocol.Stream
	sink   sink.Sink

	// OnReading, when set, is called for every reading after publishing
	OnReading func(protocol.Reading)

	// OnPublishError, when set, is called once per failed sink
	OnPublishError func(sinkName string, err error)
}

// NewRunner creates a runner.
func NewRunner(stream *protocol.Stream, s sink.Sink) *Runner {
	return &Runner{stream: stream, sink: s}
}

// Run blocks until the stream ends. Cancelling ctx is a clean stop and
// returns nil; a fatal stream error is returned as is. Publish failures are
// logged and never stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	for {
		reading, err := r.stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			logging.Error("Reading stream ended",
				zap.String("step", string(device.FailedStep(err))),
				zap.Error(err),
			)
			return err
		}

		logging.LogReading(reading.Kind(), Value(reading))

		if err := sink.Publish(r.sink, reading); err != nil {
			r.publishFailed(err)
		}
		if r.OnReading != nil {
			r.OnReading(reading)
		}
	}
}

func (r *Runner) publishFailed(err error) {
	failures := sink.Failures(err)
	if len(failures) == 0 {
		failures = []*sink.PublishError{{Sink: "unknown", Err: err}}
	}
	for _, f := range failures {
		logging.Warn("Failed to publish reading",
			zap.String("sink", f.Sink),
			zap.Error(f.Err),
		)
		if r.OnPublishError != nil {
			r.OnPublishError(f.Sink, f.Err)
		}
	}
}

// Value renders the numeric part of a reading the way sinks publish it.
func Value(r protocol.Reading) string {
	switch v := r.(type) {
	case protocol.CO2:
		return sink.FormatCO2(v.PPM)
	case protocol.Temperature:
		return protocol.FormatCelsius(v.Celsius)
	default:
		return r.String()
	}
}

// StreamOptions translates device settings into stream options. observers
// are called in order for every frame outcome.
func StreamOptions(cfg config.DeviceConfig, observers ...protocol.Observer) []protocol.StreamOption {
	opts := []protocol.StreamOption{protocol.WithReadTimeout(cfg.ReadTimeout)}
	if cfg.PlaintextFallback {
		opts = append(opts, protocol.WithPlaintextFallback())
	}
	all := append([]protocol.Observer{LogOutcome}, observers...)
	opts = append(opts, protocol.WithObserver(func(o protocol.Outcome, f protocol.DecryptedFrame) {
		for _, obs := range all {
			if obs != nil {
				obs(o, f)
			}
		}
	}))
	return opts
}

// LogOutcome logs discarded frames at debug level.
func LogOutcome(outcome protocol.Outcome, frame protocol.DecryptedFrame) {
	switch outcome {
	case protocol.OutcomeChecksum, protocol.OutcomeUnknownOpcode:
		raw := protocol.Obfuscate(frame)
		logging.LogRawFrame("Discarded frame", raw[:],
			zap.String("reason", string(outcome)),
			zap.String("decrypted", hex.EncodeToString(frame[:])),
		)
	case protocol.OutcomeNoData:
		logging.Debug("No frame within read timeout")
	case protocol.OutcomeTransient:
		logging.Debug("Transient read error, retrying")
	}
}

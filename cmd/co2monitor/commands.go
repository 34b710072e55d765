package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/device"
	"github.com/gtudan/co2monitor/internal/discovery"
	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/metrics"
	"github.com/gtudan/co2monitor/internal/monitor"
	"github.com/gtudan/co2monitor/internal/protocol"
	"github.com/gtudan/co2monitor/internal/server"
	"github.com/gtudan/co2monitor/internal/sink"
	"github.com/gtudan/co2monitor/internal/ui"
	"github.com/gtudan/co2monitor/internal/version"
)

// Source flags shared by run, read and watch
var (
	replayPath     string
	replayInterval time.Duration
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&replayPath, "replay", "", "Play back a capture file instead of reading the device")
	cmd.Flags().DurationVar(&replayInterval, "replay-interval", 0, "Delay between replayed frames")
}

func sourceOptions() monitor.SourceOptions {
	return monitor.SourceOptions{Replay: replayPath, ReplayInterval: replayInterval}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(watchCmd)

	addSourceFlags(runCmd)
	addSourceFlags(readCmd)
	addSourceFlags(watchCmd)
}

// runCmd streams readings to every configured sink
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream readings to the configured sinks",
	Long: `Open the monitor, perform the handshake and publish every reading until
the device goes away or the process is stopped.

Readings go to MQTT and InfluxDB when enabled in the config file. The HTTP
endpoint (enabled by default on :9233) serves /api/latest, /healthz, /metrics
and a WebSocket feed on /ws.

Timeouts and interrupted reads are retried. A disconnected device ends the
command with a non-zero exit status.`,
	Example: `  # Run with the default config file and auto-discovered device
  co2monitor run

  # Explicit device and verbose logging
  co2monitor run --device /dev/hidraw2 --log-level debug

  # Exercise the whole pipeline without hardware
  co2monitor run --replay capture.txt --replay-interval 2s`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	collector := metrics.New(reg)
	state, hub := server.NewState(), server.NewHub()

	out := sink.NewMulti()
	out.Add("metrics", collector)
	out.Add("state", state)
	out.Add("websocket", hub)
	if err := monitor.BuildSinks(cfg, out); err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	src, label, err := monitor.OpenSource(cfg.Device, sourceOptions())
	if err != nil {
		collector.RecordDeviceError(err)
		return err
	}
	defer func() { _ = src.Close() }()

	if cfg.HTTP.Enabled {
		srv := server.New(server.Config{Addr: cfg.HTTP.Addr, Metrics: metrics.Handler(reg)}, state, hub)
		if err := srv.Listen(); err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				logging.Error("HTTP server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		if cfg.HTTP.Advertise {
			adv, err := discovery.Advertise("", srv.Port(), map[string]string{
				"device":  label,
				"version": version.Version,
			})
			if err != nil {
				logging.Warn("mDNS advertisement failed", zap.Error(err))
			} else {
				defer adv.Shutdown()
			}
		}
	}

	logging.Info("Streaming readings",
		zap.String("source", label),
		zap.Strings("sinks", out.Names()),
		zap.Duration("read_timeout", cfg.Device.ReadTimeout),
	)

	stream := protocol.NewStream(collector.InstrumentSource(src), monitor.StreamOptions(cfg.Device, collector.Observe)...)
	runner := monitor.NewRunner(stream, out)
	runner.OnPublishError = func(name string, _ error) { collector.RecordPublishError(name) }

	if err := runner.Run(ctx); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	logging.Info("Stopped")
	return nil
}

// Read command flags
var (
	readCount   int
	readPlain   bool
	capturePath string
)

// readCmd prints readings to stdout
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print readings to stdout",
	Long: `Print every reading as one line: timestamp, kind and value. CO2 values are
annotated with their air quality band.

With --capture every frame the device sends, including discarded ones, is also
written to a capture file that 'co2monitor run --replay' can play back.`,
	Example: `  # Print five readings and exit
  co2monitor read --count 5

  # Record a capture for later replay
  co2monitor read --count 100 --capture capture.txt`,
	RunE: runRead,
}

func init() {
	readCmd.Flags().IntVarP(&readCount, "count", "n", 0, "Stop after this many readings (0 = forever)")
	readCmd.Flags().BoolVar(&readPlain, "plain", false, "No colors (default when stdout is not a terminal)")
	readCmd.Flags().StringVar(&capturePath, "capture", "", "Also write every received frame to this file")
}

func runRead(cmd *cobra.Command, args []string) error {
	if readCount < 0 {
		return fmt.Errorf("%w: --count must not be negative", errUsage)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, _, err := monitor.OpenSource(cfg.Device, sourceOptions())
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	var observers []protocol.Observer
	if capturePath != "" {
		f, err := os.Create(capturePath)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer func() { _ = f.Close() }()
		observers = append(observers, func(outcome protocol.Outcome, frame protocol.DecryptedFrame) {
			raw, ok := captureFrame(outcome, frame)
			if !ok {
				return
			}
			if err := device.WriteCapture(f, []protocol.RawFrame{raw}, []string{string(outcome)}); err != nil {
				logging.Warn("Failed to write capture", zap.Error(err))
			}
		})
	}

	printer := ui.NewPrinter(os.Stdout).SetPlain(readPlain || !ui.IsTerminal())
	stream := protocol.NewStream(src, monitor.StreamOptions(cfg.Device, observers...)...)

	for n := 0; readCount == 0 || n < readCount; n++ {
		reading, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		printer.PrintReading(reading, time.Now())
	}
	return nil
}

// captureFrame reconstructs the raw report behind an observed frame.
// Plaintext frames arrived unobfuscated; everything else is re-obfuscated.
func captureFrame(outcome protocol.Outcome, frame protocol.DecryptedFrame) (protocol.RawFrame, bool) {
	switch outcome {
	case protocol.OutcomePlaintext:
		return protocol.RawFrame(frame), true
	case protocol.OutcomeOK, protocol.OutcomeChecksum, protocol.OutcomeUnknownOpcode:
		return protocol.Obfuscate(frame), true
	default:
		return protocol.RawFrame{}, false
	}
}

// watchCmd shows the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live terminal dashboard",
	Long: `Show the latest CO2 concentration with its air quality band and the latest
temperature, updated as readings arrive. Press q to quit.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	// The dashboard owns the terminal; logs only go to the log file.
	cfg, err := loadConfigWith(logging.InitializeFileOnly)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, label, err := monitor.OpenSource(cfg.Device, sourceOptions())
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	updates := make(chan ui.Update)
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(updates)
		stream := protocol.NewStream(src, monitor.StreamOptions(cfg.Device)...)
		for reading, err := range stream.All(streamCtx) {
			if errors.Is(err, context.Canceled) {
				return
			}
			select {
			case updates <- ui.Update{Reading: reading, Err: err, At: time.Now()}:
			case <-streamCtx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			logging.Info("Reading stream ended", zap.Error(err))
		}
	}()

	if err := ui.RunWatch(ctx, label, updates); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

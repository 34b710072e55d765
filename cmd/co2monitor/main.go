// Co2monitor reads a ZyAura-based USB CO2 monitor (TFA AirCO2ntrol,
// Dostmann CO2-Sensor and relatives) and publishes its readings.
//
// The monitor obfuscates every 8-byte report; co2monitor deobfuscates,
// validates and decodes them into CO2 (ppm) and temperature (°C) readings and
// forwards those to MQTT, InfluxDB (UDP line protocol), Prometheus and a
// WebSocket feed.
//
// Usage:
//
//	co2monitor [command] [flags]
//
// See 'co2monitor --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/device"
	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/ui"
	"github.com/gtudan/co2monitor/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		title := "co2monitor failed"
		if step := device.FailedStep(err); step != "" {
			title = fmt.Sprintf("Device %s failed", step)
		}
		printer := ui.NewPrinter(os.Stderr).SetPlain(!ui.IsTerminal())
		printer.PrintError(title, err, device.Hint(err))
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	devicePath string
)

var rootCmd = &cobra.Command{
	Use:   "co2monitor",
	Short: "USB CO2 monitor reader and publisher",
	Long: `Read CO2 concentration and temperature from a ZyAura-based USB CO2 monitor
(vendor 04d9, product a052) and publish the readings.

Run 'co2monitor run' to stream readings to the sinks configured in the config
file, 'co2monitor read' to print them, or 'co2monitor watch' for a live
dashboard.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/co2monitor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "hidraw node, e.g. /dev/hidraw0 (default: auto-discover)")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies command line overrides, then
// initializes logging.
func loadConfig() (*config.Config, error) {
	return loadConfigWith(logging.Initialize)
}

func loadConfigWith(initLogging func(config.LoggingConfig) error) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if devicePath != "" {
		cfg.Device.Path = devicePath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := initLogging(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

var errUsage = errors.New("invalid arguments")

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("co2monitor %s\n", version.Full())
	},
}

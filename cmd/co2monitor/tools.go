package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/discovery"
	"github.com/gtudan/co2monitor/internal/protocol"
	"github.com/gtudan/co2monitor/internal/ui"
)

// Decode command flags
var (
	decodePlaintext bool
	decodeEncode    []string
)

// Discover command flags
var (
	discoverAll     bool
	discoverNetwork bool
	discoverTimeout time.Duration
	discoverSysfs   string
)

// Config command flags
var configForce bool

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	decodeCmd.Flags().BoolVar(&decodePlaintext, "plaintext", false, "Treat the input as already deobfuscated")
	decodeCmd.Flags().StringArrayVar(&decodeEncode, "encode", nil, "Print the raw frame for a reading instead (co2=1013, temperature=22.5)")

	discoverCmd.Flags().BoolVar(&discoverAll, "all", false, "List every USB hidraw node, not only CO2 monitors")
	discoverCmd.Flags().BoolVar(&discoverNetwork, "network", false, "Also browse the network for co2monitor instances (mDNS)")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 5*time.Second, "How long to browse the network")
	discoverCmd.Flags().StringVar(&discoverSysfs, "sysfs", discovery.DefaultSysfsRoot, "sysfs mount point")
	_ = discoverCmd.Flags().MarkHidden("sysfs")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

// decodeCmd runs captured frames through the decoder
var decodeCmd = &cobra.Command{
	Use:   "decode <hex-frame>...",
	Short: "Decode raw frames",
	Long: `Deobfuscate, validate and decode raw 8-byte frames given as hex, e.g. taken
from a capture file or a USB trace. Separators (space, ':' and '-') are
ignored.

With --encode the direction is reversed: print the raw frame the monitor
would send for a reading.`,
	Example: `  co2monitor decode 98e4662094 46bf62
  co2monitor decode --plaintext 5003f5480d000000
  co2monitor decode --encode co2=1013 --encode temperature=22.5`,
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(decodeEncode) > 0 {
		for _, input := range decodeEncode {
			r, err := parseReading(input)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  # %s\n", protocol.EncodeFrame(r), r)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: decode needs at least one frame", errUsage)
	}
	// Allow "98e4662094 46bf62" to be passed unquoted.
	if joined := strings.Join(args, ""); len(args) > 1 && len(joined) == protocol.FrameSize*2 {
		args = []string{joined}
	}

	var errs []error
	for _, arg := range args {
		raw, err := protocol.ParseRawFrame(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintln(out, describeFrame(raw, decodePlaintext))
	}
	return errors.Join(errs...)
}

// describeFrame renders every stage of decoding raw.
func describeFrame(raw protocol.RawFrame, plaintext bool) string {
	frame := protocol.DecryptedFrame(raw)
	if !plaintext {
		frame = protocol.Deobfuscate(raw)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "raw:       %s\n", raw)
	fmt.Fprintf(&b, "decrypted: %s  %s\n", protocol.RawFrame(frame), frame)
	if err := protocol.Validate(frame); err != nil {
		fmt.Fprintf(&b, "valid:     no (%v)", err)
		return b.String()
	}
	fmt.Fprintf(&b, "valid:     yes\n")
	r, ok := protocol.Decode(frame)
	if !ok {
		fmt.Fprintf(&b, "reading:   unknown opcode 0x%02x value %d", frame.Opcode(), frame.Value())
		return b.String()
	}
	fmt.Fprintf(&b, "reading:   %s", r)
	return b.String()
}

// parseReading parses "co2=<ppm>" or "temperature=<celsius>".
func parseReading(input string) (protocol.Reading, error) {
	kind, value, ok := strings.Cut(input, "=")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not kind=value", errUsage, input)
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "co2":
		ppm, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: co2 value %q: %v", errUsage, value, err)
		}
		return protocol.CO2{PPM: uint16(ppm)}, nil
	case "temperature", "temp":
		c, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: temperature value %q: %v", errUsage, value, err)
		}
		return protocol.Temperature{Celsius: float32(c)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown reading kind %q (want co2 or temperature)", errUsage, kind)
	}
}

// discoverCmd lists monitors attached to this machine
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List attached CO2 monitors",
	Long: `List hidraw nodes whose USB vendor and product match the configured monitor
(04d9:a052 by default). With --network, also browse for other co2monitor
instances announcing themselves via mDNS.`,
	Example: `  co2monitor discover
  co2monitor discover --all
  co2monitor discover --network --timeout 10s`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout()).SetPlain(!ui.IsTerminal())
	vendor, product := cfg.Device.VendorID, cfg.Device.ProductID
	if discoverAll {
		vendor, product = 0, 0
	}

	nodes, err := discovery.ScanHIDRaw(discoverSysfs, vendor, product)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		printer.Println("No matching hidraw nodes found.")
	}
	for _, n := range nodes {
		printer.Println(n.String())
	}

	if !discoverNetwork {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), discoverTimeout)
	defer cancel()
	peers, err := discovery.NewScanner().ScanForPeers(ctx)
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		printer.Println("No co2monitor instances found on the network.")
	}
	for _, p := range peers {
		line := p.String()
		if dev := p.GetMetadata("device"); dev != "" {
			line += " device=" + dev
		}
		printer.Println(line + "  " + p.BaseURL())
	}
	return nil
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Example: `  co2monitor config init
  co2monitor config init --config ./co2monitor.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			p, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

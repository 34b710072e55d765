package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = 1

// Default device identifiers (ZyAura ZG01 based monitors)
const (
	DefaultVendorID  = 0x04d9
	DefaultProductID = 0xa052
)

// Read timeout bounds
const (
	MinReadTimeout = 1 * time.Second
	MaxReadTimeout = 60 * time.Second
)

// Config represents the entire configuration file.
type Config struct {
	Version int           `yaml:"version"`
	Device  DeviceConfig  `yaml:"device"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Influx  InfluxConfig  `yaml:"influx"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// DeviceConfig selects and tunes the USB monitor.
type DeviceConfig struct {
	Path              string        `yaml:"path,omitempty"` // e.g. /dev/hidraw0; empty = auto-discover
	VendorID          uint16        `yaml:"vendor_id"`
	ProductID         uint16        `yaml:"product_id"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	PlaintextFallback bool          `yaml:"plaintext_fallback"` // accept unobfuscated frames from newer firmware
}

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Broker         string        `yaml:"broker"`              // e.g. tcp://homebridge.local:1883
	ClientID       string        `yaml:"client_id,omitempty"` // empty = co2monitor-<random>
	Username       string        `yaml:"username,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	TopicPrefix    string        `yaml:"topic_prefix"` // readings go to <prefix>/co2 and <prefix>/temperature
	QoS            byte          `yaml:"qos"`
	Retain         bool          `yaml:"retain"`
	KeepAlive      time.Duration `yaml:"keep_alive"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// InfluxConfig configures the InfluxDB UDP line protocol writer.
type InfluxConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Addr        string            `yaml:"addr"` // host:port of the UDP listener
	Measurement string            `yaml:"measurement"`
	Tags        map[string]string `yaml:"tags,omitempty"`
}

// HTTPConfig configures the status endpoint (metrics, latest readings, live feed).
type HTTPConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Advertise bool   `yaml:"advertise"` // announce via mDNS
}

// LoggingConfig configures zap and optional file rotation.
type LoggingConfig struct {
	Level  string     `yaml:"level"`  // debug, info, warn, error
	Format string     `yaml:"format"` // console or json
	File   FileConfig `yaml:"file"`
}

// FileConfig configures lumberjack. An empty Filename disables file output.
type FileConfig struct {
	Filename   string `yaml:"filename,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Device: DeviceConfig{
			VendorID:    DefaultVendorID,
			ProductID:   DefaultProductID,
			ReadTimeout: 10 * time.Second,
		},
		MQTT: MQTTConfig{
			Enabled:        false,
			Broker:         "tcp://localhost:1883",
			TopicPrefix:    "co2monitor",
			QoS:            1,
			KeepAlive:      5 * time.Second,
			PublishTimeout: 5 * time.Second,
		},
		Influx: InfluxConfig{
			Enabled:     false,
			Addr:        "localhost:8089",
			Measurement: "climate",
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":9233",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File: FileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion))
	}

	if c.Device.ReadTimeout < MinReadTimeout || c.Device.ReadTimeout > MaxReadTimeout {
		errs = append(errs, fmt.Errorf("device.read_timeout %v out of range [%v, %v]", c.Device.ReadTimeout, MinReadTimeout, MaxReadTimeout))
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
		}
		if strings.Trim(c.MQTT.TopicPrefix, "/") == "" {
			errs = append(errs, errors.New("mqtt.topic_prefix is required when mqtt is enabled"))
		}
		if c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
		}
	}

	if c.Influx.Enabled {
		if c.Influx.Addr == "" {
			errs = append(errs, errors.New("influx.addr is required when influx is enabled"))
		}
		if c.Influx.Measurement == "" {
			errs = append(errs, errors.New("influx.measurement is required when influx is enabled"))
		}
	}

	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required when http is enabled"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Package config loads and saves the co2monitor configuration file.
//
// The file is YAML and lives in a platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/co2monitor/config.yaml or $HOME/.config/co2monitor/config.yaml
//   - macOS: $HOME/.config/co2monitor/config.yaml
//   - Windows: %LOCALAPPDATA%\co2monitor\config.yaml
//
// A missing file is not an error: Load returns Default(). Keys present in the
// file override the defaults, unknown keys are rejected.
//
// # Example
//
//	version: 1
//	device:
//	  read_timeout: 10s
//	mqtt:
//	  enabled: true
//	  broker: tcp://homebridge.local:1883
//	  topic_prefix: wohnzimmer/co2monitor
//	  qos: 1
//	influx:
//	  enabled: true
//	  addr: influx.local:8089
//	  measurement: climate
//	  tags:
//	    room: wohnzimmer
//
// # Security
//
// The file may contain MQTT credentials. Save writes it with mode 0600 inside
// a 0700 directory.
package config

// Package metrics exposes the monitor state to Prometheus.
//
// Gauges follow the latest CO2 and temperature readings; counters track
// frame outcomes (ok, checksum, unknown_opcode, no_data, ...), device errors
// by step and kind, and failed publishes by sink.
package metrics

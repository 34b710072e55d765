// Package monitor wires the device, the decoding stream and the sinks
// together. OpenSource picks the frame source (device node, discovered node
// or replay file), BuildSinks connects the configured destinations and
// Runner moves readings from one to the other.
package monitor

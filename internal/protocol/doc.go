// Package protocol decodes the report stream of ZyAura based USB CO2
// monitors (Dostmann/TFA AirCO2ntrol and relatives, USB 04d9:a052).
//
// # Wire Format
//
// After receiving a SET_REPORT feature report carrying an 8-byte key
// (see FeatureReport) the monitor emits 8-byte HID reports. Each report is
// scrambled with a fixed scheme that Deobfuscate reverses:
//
//  1. byte transposition by a fixed shuffle table
//  2. XOR with the key
//  3. a 3-bit rotation across byte boundaries
//  4. subtraction of a nibble-swapped constant, mod 256
//
// The result is a DecryptedFrame:
//
//	[0]     opcode (0x50 CO2, 0x42 temperature, others ignored)
//	[1..3)  big-endian value
//	[3]     checksum: (b0 + b1 + b2) mod 256
//	[4]     0x0D
//	[5..8)  reserved
//
// # Usage Example
//
//	stream := protocol.NewStream(dev, protocol.WithReadTimeout(10*time.Second))
//	for reading, err := range stream.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    switch r := reading.(type) {
//	    case protocol.CO2:
//	        fmt.Println(r.PPM)
//	    case protocol.Temperature:
//	        fmt.Println(r.Celsius)
//	    }
//	}
//
// # Error Handling
//
// Checksum failures and unknown opcodes are routine and never returned to
// the caller; install an Observer to count them. Source errors that match
// ErrNoData or implement Temporary() bool returning true are retried. Any
// other source error ends the stream.
//
// # Thread Safety
//
// Deobfuscate, Obfuscate, Validate and Decode are pure and safe for
// concurrent use. A Stream must be driven from a single goroutine.
package protocol

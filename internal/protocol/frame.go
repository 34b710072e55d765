package protocol

import (
	"encoding/hex"
	"fmt"
)

// FrameSize is the length of every report the monitor emits.
const FrameSize = 8

// Byte offsets inside a DecryptedFrame
const (
	offOpcode     = 0
	offValueHi    = 1
	offValueLo    = 2
	offChecksum   = 3
	offTerminator = 4
)

// FrameTerminator is the byte every valid decrypted frame carries at offset 4.
const FrameTerminator = 0x0D

// RawFrame is a report exactly as read from the device.
type RawFrame [FrameSize]byte

// DecryptedFrame is the output of Deobfuscate.
//
//	[0]     opcode
//	[1..3)  big-endian 16-bit value
//	[3]     checksum (sum of bytes 0..2, mod 256)
//	[4]     terminator (0x0D)
//	[5..8)  reserved
type DecryptedFrame [FrameSize]byte

// Device protocol parameters. The monitor accepts any key sent in the
// feature report; this one is fixed so the tables below stay compile-time
// constants.
var (
	key     = [FrameSize]byte{0xc4, 0xc6, 0xc0, 0x92, 0x40, 0x23, 0xdc, 0x96}
	shuffle = [FrameSize]int{2, 4, 0, 7, 1, 6, 5, 3}
	cstate  = [FrameSize]byte{0x48, 0x74, 0x65, 0x6d, 0x70, 0x39, 0x39, 0x65}
)

// adjust holds the nibble-swapped cstate table, derived once.
var adjust = func() (adj [FrameSize]byte) {
	for i, c := range cstate {
		adj[i] = byte(((uint16(c) >> 4) | (uint16(c) << 4)) & 0xff)
	}
	return adj
}()

// Key returns a copy of the obfuscation key.
func Key() [FrameSize]byte {
	return key
}

// FeatureReport returns the SET_REPORT payload that switches the monitor
// into streaming mode: report id 0x00 followed by the key.
func FeatureReport() [FrameSize + 1]byte {
	var report [FrameSize + 1]byte
	report[0] = 0x00
	k := Key()
	copy(report[1:], k[:])
	return report
}

// Deobfuscate reverses the device's byte scrambling. It is defined for every
// input and has no side effects.
func Deobfuscate(raw RawFrame) DecryptedFrame {
	var phase1 [FrameSize]byte
	for i, o := range shuffle {
		phase1[o] = raw[i]
	}

	var phase2 [FrameSize]byte
	for i := range phase2 {
		phase2[i] = phase1[i] ^ key[i]
	}

	var phase3 [FrameSize]byte
	for i := range phase3 {
		cur := uint16(phase2[i])
		prev := uint16(phase2[(i+FrameSize-1)%FrameSize])
		phase3[i] = byte(((cur >> 3) | (prev << 5)) & 0xff)
	}

	var out DecryptedFrame
	for i := range out {
		out[i] = byte((0x100 + uint16(phase3[i]) - uint16(adjust[i])) & 0xff)
	}
	return out
}

// Opcode returns the measurement type byte.
func (f DecryptedFrame) Opcode() byte { return f[offOpcode] }

// Value returns the big-endian payload.
func (f DecryptedFrame) Value() uint16 {
	return uint16(f[offValueHi])<<8 | uint16(f[offValueLo])
}

// Checksum returns the checksum byte carried by the frame.
func (f DecryptedFrame) Checksum() byte { return f[offChecksum] }

// Terminator returns the terminator byte carried by the frame.
func (f DecryptedFrame) Terminator() byte { return f[offTerminator] }

// String returns a debug representation of the frame
func (f DecryptedFrame) String() string {
	return fmt.Sprintf("Frame{op=0x%02x, value=%d, checksum=0x%02x, term=0x%02x}",
		f.Opcode(), f.Value(), f.Checksum(), f.Terminator())
}

// String returns the frame as hex.
func (f RawFrame) String() string {
	return hex.EncodeToString(f[:])
}

// ParseRawFrame decodes a 16-character hex string into a RawFrame.
// Whitespace and ':' separators are ignored.
func ParseRawFrame(s string) (RawFrame, error) {
	var frame RawFrame
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', ':', '-':
			continue
		}
		clean = append(clean, s[i])
	}
	if len(clean) != FrameSize*2 {
		return frame, fmt.Errorf("frame must be %d hex bytes, got %q", FrameSize, s)
	}
	if _, err := hex.Decode(frame[:], clean); err != nil {
		return frame, fmt.Errorf("invalid frame hex %q: %w", s, err)
	}
	return frame, nil
}

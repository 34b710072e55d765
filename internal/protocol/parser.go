package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// Opcodes the decoder understands
const (
	OpCO2         = 0x50 // 'P', CO2 concentration in ppm
	OpTemperature = 0x42 // 'B', temperature in 1/16 Kelvin
)

// kelvinOffset converts Kelvin to degrees Celsius.
const kelvinOffset = 273.15

// ErrChecksum is matched by every error returned from Validate.
var ErrChecksum = errors.New("checksum validation failed")

// ChecksumError describes a frame that failed validation.
type ChecksumError struct {
	Frame DecryptedFrame
	Sum   byte // computed sum of bytes 0..2
}

func (e *ChecksumError) Error() string {
	if e.Frame.Terminator() != FrameTerminator {
		return fmt.Sprintf("%v: terminator 0x%02x, want 0x%02x", ErrChecksum, e.Frame.Terminator(), FrameTerminator)
	}
	return fmt.Sprintf("%v: sum 0x%02x, frame carries 0x%02x", ErrChecksum, e.Sum, e.Frame.Checksum())
}

func (e *ChecksumError) Unwrap() error { return ErrChecksum }

// Validate checks the terminator and checksum of a decrypted frame.
func Validate(frame DecryptedFrame) error {
	sum := byte((uint16(frame[0]) + uint16(frame[1]) + uint16(frame[2])) & 0xff)
	if frame.Terminator() != FrameTerminator || sum != frame.Checksum() {
		return &ChecksumError{Frame: frame, Sum: sum}
	}
	return nil
}

// Reading is a decoded measurement: either CO2 or Temperature.
type Reading interface {
	// Kind returns "co2" or "temperature"
	Kind() string
	String() string
	isReading()
}

// CO2 is a carbon dioxide concentration in parts per million.
type CO2 struct {
	PPM uint16
}

// Temperature is an ambient temperature in degrees Celsius.
type Temperature struct {
	Celsius float32
}

func (CO2) isReading()         {}
func (Temperature) isReading() {}

func (CO2) Kind() string         { return "co2" }
func (Temperature) Kind() string { return "temperature" }

func (r CO2) String() string {
	return fmt.Sprintf("CO2{%d ppm}", r.PPM)
}

func (r Temperature) String() string {
	return fmt.Sprintf("Temperature{%s °C}", FormatCelsius(r.Celsius))
}

// FormatCelsius renders a temperature with the shortest representation that
// round-trips through float32.
func FormatCelsius(c float32) string {
	return strconv.FormatFloat(float64(c), 'f', -1, 32)
}

// Decode turns a validated frame into a Reading. Frames with an opcode the
// decoder does not know report ok == false.
func Decode(frame DecryptedFrame) (r Reading, ok bool) {
	value := frame.Value()
	switch frame.Opcode() {
	case OpCO2:
		return CO2{PPM: value}, true
	case OpTemperature:
		return Temperature{Celsius: float32(value)/16.0 - kelvinOffset}, true
	default:
		return nil, false
	}
}

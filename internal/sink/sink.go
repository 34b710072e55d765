package sink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// Sink receives decoded readings.
type Sink interface {
	PublishCO2(ppm uint16) error
	PublishTemperature(celsius float32) error
	Close() error
}

// Publish dispatches r to the matching method of s.
func Publish(s Sink, r protocol.Reading) error {
	switch v := r.(type) {
	case protocol.CO2:
		return s.PublishCO2(v.PPM)
	case protocol.Temperature:
		return s.PublishTemperature(v.Celsius)
	default:
		return fmt.Errorf("unsupported reading %T", r)
	}
}

// FormatCO2 renders ppm as a decimal integer.
func FormatCO2(ppm uint16) string {
	return strconv.FormatUint(uint64(ppm), 10)
}

// Topic joins an MQTT topic prefix and a reading name.
func Topic(prefix, name string) string {
	return strings.TrimRight(prefix, "/") + "/" + name
}

// PublishError records which sink rejected a reading.
type PublishError struct {
	Sink string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Failures returns every PublishError contained in err.
func Failures(err error) []*PublishError {
	switch e := err.(type) {
	case nil:
		return nil
	case *PublishError:
		return []*PublishError{e}
	case interface{ Unwrap() []error }:
		var out []*PublishError
		for _, inner := range e.Unwrap() {
			out = append(out, Failures(inner)...)
		}
		return out
	}
	var pe *PublishError
	if errors.As(err, &pe) {
		return []*PublishError{pe}
	}
	return nil
}

type named struct {
	name string
	sink Sink
}

// Multi fans every reading out to a list of sinks. A failing sink does not
// prevent delivery to the others.
type Multi struct {
	sinks []named
}

// NewMulti creates an empty fan-out.
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers s under name.
func (m *Multi) Add(name string, s Sink) {
	m.sinks = append(m.sinks, named{name: name, sink: s})
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int { return len(m.sinks) }

// Names returns the registered sink names in order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.name
	}
	return names
}

func (m *Multi) each(fn func(Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s.sink); err != nil {
			errs = append(errs, &PublishError{Sink: s.name, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) PublishCO2(ppm uint16) error {
	return m.each(func(s Sink) error { return s.PublishCO2(ppm) })
}

func (m *Multi) PublishTemperature(celsius float32) error {
	return m.each(func(s Sink) error { return s.PublishTemperature(celsius) })
}

// Close closes every sink, in reverse order of registration.
func (m *Multi) Close() error {
	var errs []error
	for i := len(m.sinks) - 1; i >= 0; i-- {
		if err := m.sinks[i].sink.Close(); err != nil {
			errs = append(errs, &PublishError{Sink: m.sinks[i].name, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Discard drops every reading.
type Discard struct{}

func (Discard) PublishCO2(uint16) error          { return nil }
func (Discard) PublishTemperature(float32) error { return nil }
func (Discard) Close() error                     { return nil }

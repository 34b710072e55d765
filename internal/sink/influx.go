package sink

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/protocol"
)

// Influx field names
const (
	FieldCO2         = "CO2"
	FieldTemperature = "temperature"
)

// Influx writes one InfluxDB line protocol datagram per reading to a UDP
// listener, e.g. "climate,room=office CO2=1013".
type Influx struct {
	conn        net.Conn
	measurement string
	tags        string
}

// NewInflux dials the UDP listener at cfg.Addr.
func NewInflux(cfg config.InfluxConfig) (*Influx, error) {
	conn, err := net.Dial("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial influx %s: %w", cfg.Addr, err)
	}
	return &Influx{
		conn:        conn,
		measurement: cfg.Measurement,
		tags:        formatTags(cfg.Tags),
	}, nil
}

func (i *Influx) PublishCO2(ppm uint16) error {
	return i.send(FieldCO2, FormatCO2(ppm))
}

func (i *Influx) PublishTemperature(celsius float32) error {
	return i.send(FieldTemperature, protocol.FormatCelsius(celsius))
}

func (i *Influx) send(field, value string) error {
	line := Line(i.measurement, i.tags, field, value)
	if _, err := i.conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("write influx line: %w", err)
	}
	return nil
}

// Close closes the socket.
func (i *Influx) Close() error {
	return i.conn.Close()
}

// Line formats one line protocol record. tags is the pre-formatted
// ",k=v,..." suffix of the measurement, possibly empty.
func Line(measurement, tags, field, value string) string {
	var b strings.Builder
	b.WriteString(measurementEscaper.Replace(measurement))
	b.WriteString(tags)
	b.WriteByte(' ')
	b.WriteString(keyEscaper.Replace(field))
	b.WriteByte('=')
	b.WriteString(value)
	return b.String()
}

var (
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
	keyEscaper         = strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)
)

// formatTags renders tags sorted by key, as line protocol recommends.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if tags[k] == "" {
			continue
		}
		b.WriteByte(',')
		b.WriteString(keyEscaper.Replace(k))
		b.WriteByte('=')
		b.WriteString(keyEscaper.Replace(tags[k]))
	}
	return b.String()
}

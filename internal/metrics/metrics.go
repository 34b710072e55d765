package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gtudan/co2monitor/internal/device"
	"github.com/gtudan/co2monitor/internal/protocol"
)

const namespace = "co2monitor"

// NewRegistry creates a Prometheus registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the Prometheus HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Collector holds the monitor metrics. It is a sink (the gauges follow the
// latest reading) and a stream observer (frame outcomes are counted).
type Collector struct {
	CO2           prometheus.Gauge
	Temperature   prometheus.Gauge
	LastReading   *prometheus.GaugeVec   // labels: kind
	Frames        *prometheus.CounterVec // labels: result
	DeviceErrors  *prometheus.CounterVec // labels: step, kind
	PublishErrors *prometheus.CounterVec // labels: sink

	now func() time.Time
}

// New registers and returns the monitor metrics.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		CO2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "co2_ppm",
			Help:      "Latest CO2 concentration in ppm.",
		}),
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Latest ambient temperature in degrees Celsius.",
		}),
		LastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reading_timestamp_seconds",
			Help:      "Unix time of the latest reading by kind.",
		}, []string{"kind"}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames read from the device by result.",
		}, []string{"result"}),
		DeviceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_errors_total",
			Help:      "Device errors by failed step and kind.",
		}, []string{"step", "kind"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed publishes by sink.",
		}, []string{"sink"}),
		now: time.Now,
	}
	reg.MustRegister(c.CO2, c.Temperature, c.LastReading, c.Frames, c.DeviceErrors, c.PublishErrors)
	return c
}

func (c *Collector) PublishCO2(ppm uint16) error {
	c.CO2.Set(float64(ppm))
	c.LastReading.WithLabelValues(protocol.CO2{}.Kind()).Set(float64(c.now().Unix()))
	return nil
}

func (c *Collector) PublishTemperature(celsius float32) error {
	c.Temperature.Set(float64(celsius))
	c.LastReading.WithLabelValues(protocol.Temperature{}.Kind()).Set(float64(c.now().Unix()))
	return nil
}

func (c *Collector) Close() error { return nil }

// Observe counts a frame outcome. It has the protocol.Observer signature.
func (c *Collector) Observe(outcome protocol.Outcome, _ protocol.DecryptedFrame) {
	c.Frames.WithLabelValues(string(outcome)).Inc()
}

// RecordDeviceError counts err by step and kind.
func (c *Collector) RecordDeviceError(err error) {
	var devErr *device.DeviceError
	if errors.As(err, &devErr) {
		c.DeviceErrors.WithLabelValues(string(devErr.Step), devErr.Kind.String()).Inc()
		return
	}
	c.DeviceErrors.WithLabelValues("unknown", "unknown").Inc()
}

// RecordPublishError counts a failed publish to sink.
func (c *Collector) RecordPublishError(sink string) {
	c.PublishErrors.WithLabelValues(sink).Inc()
}

// InstrumentSource counts the errors src returns before handing them on
// unchanged. Timeouts (counted as no_data frames), the end of a replay and
// context cancellation are not device errors.
func (c *Collector) InstrumentSource(src protocol.FrameSource) protocol.FrameSource {
	return &instrumentedSource{src: src, c: c}
}

type instrumentedSource struct {
	src protocol.FrameSource
	c   *Collector
}

func (s *instrumentedSource) ReadFrame(ctx context.Context, timeout time.Duration) (protocol.RawFrame, error) {
	frame, err := s.src.ReadFrame(ctx, timeout)
	if err != nil && ctx.Err() == nil && !errors.Is(err, protocol.ErrNoData) && !errors.Is(err, io.EOF) {
		s.c.RecordDeviceError(err)
	}
	return frame, err
}

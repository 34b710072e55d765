package monitor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gtudan/co2monitor/internal/config"
	"github.com/gtudan/co2monitor/internal/logging"
	"github.com/gtudan/co2monitor/internal/sink"
)

// BuildSinks connects the sinks enabled in cfg and registers them in out.
// On error the sinks connected so far are closed.
func BuildSinks(cfg *config.Config, out *sink.Multi) error {
	if cfg.MQTT.Enabled {
		m, err := sink.NewMQTT(cfg.MQTT)
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("mqtt: %w", err)
		}
		out.Add("mqtt", m)
		logging.Info("Publishing to MQTT",
			zap.String("broker", cfg.MQTT.Broker),
			zap.String("topic_prefix", cfg.MQTT.TopicPrefix),
		)
	}

	if cfg.Influx.Enabled {
		i, err := sink.NewInflux(cfg.Influx)
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("influx: %w", err)
		}
		out.Add("influx", i)
		logging.Info("Publishing to InfluxDB over UDP",
			zap.String("addr", cfg.Influx.Addr),
			zap.String("measurement", cfg.Influx.Measurement),
		)
	}

	return nil
}

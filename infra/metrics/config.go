package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/vehiclepass/core/metrics"
)

// Config selects and configures the command metrics sink.
type Config struct {
	// Sink selects the backend: "nop", "prometheus" or "influx".
	Sink         string `json:"sink"`
	InfluxURL    string `json:"influx_url"`
	InfluxToken  string `json:"influx_token"`
	InfluxOrg    string `json:"influx_org"`
	InfluxBucket string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Sink == "" {
		c.Sink = "nop"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Sink {
	case "nop", "prometheus":
		return nil
	case "influx":
		if c.InfluxURL == "" {
			return fmt.Errorf("influx_url is required for the influx sink")
		}
		return nil
	default:
		return fmt.Errorf("unknown metrics sink %s", c.Sink)
	}
}

// NewSink builds the configured sink. Prometheus collectors register on the
// default registerer.
func NewSink(cfg Config) (coremetrics.Sink, error) {
	switch cfg.Sink {
	case "", "nop":
		return coremetrics.NopSink{}, nil
	case "prometheus":
		return NewPromSink(prometheus.DefaultRegisterer)
	case "influx":
		return NewInfluxSinkWithFallback(cfg), nil
	default:
		return nil, fmt.Errorf("unknown metrics sink %s", cfg.Sink)
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/vehiclepass/core/metrics"
)

// PromSink records command events in Prometheus metrics.
type PromSink struct {
	events  *prometheus.CounterVec
	latency *prometheus.HistogramVec
	polls   *prometheus.HistogramVec
}

// NewPromSink registers command metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vehicle_commands_total",
		Help: "Total number of vehicle commands by outcome",
	}, []string{"command", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vehicle_command_latency_seconds",
		Help:    "Time between command send and confirmation",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	}, []string{"command", "outcome"})
	polls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vehicle_command_polls",
		Help:    "Status polls needed to settle a command",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	}, []string{"command", "outcome"})

	for i, c := range []prometheus.Collector{events, latency, polls} {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				events = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				latency = are.ExistingCollector.(*prometheus.HistogramVec)
			case 2:
				polls = are.ExistingCollector.(*prometheus.HistogramVec)
			}
		}
	}

	return &PromSink{events: events, latency: latency, polls: polls}, nil
}

// RecordCommandResult updates the counters and histograms for one command.
func (s *PromSink) RecordCommandResult(r coremetrics.CommandResult) error {
	s.events.WithLabelValues(r.Command, r.Outcome).Inc()
	s.latency.WithLabelValues(r.Command, r.Outcome).Observe(r.Latency.Seconds())
	s.polls.WithLabelValues(r.Command, r.Outcome).Observe(float64(r.Polls))
	return nil
}

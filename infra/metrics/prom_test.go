package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/vehiclepass/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	err = sink.RecordCommandResult(coremetrics.CommandResult{
		Command: "lock",
		Outcome: "confirmed",
		Polls:   2,
		Latency: 4 * time.Second,
		SentAt:  time.Now(),
	})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["vehicle_commands_total"])
	assert.True(t, names["vehicle_command_latency_seconds"])
	assert.True(t, names["vehicle_command_polls"])
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err)
	assert.Equal(t, first.events, second.events)
}

func TestSinkFactory(t *testing.T) {
	sink, err := NewSink(Config{Sink: "nop"})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)

	_, err = NewSink(Config{Sink: "bogus"})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Equal(t, "nop", cfg.Sink)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, Config{Sink: "influx"}.Validate())
	assert.NoError(t, Config{Sink: "influx", InfluxURL: "http://localhost:8086"}.Validate())
}

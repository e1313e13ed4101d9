package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vehiclepass/core/units"
)

const runningDoc = `{
  "metrics": {
    "doorLockStatus": [
      {"vehicleDoor": "FRONT_LEFT", "value": "LOCKED"},
      {"vehicleDoor": "ALL_DOORS", "value": "LOCKED"}
    ],
    "doorStatus": [
      {"vehicleDoor": "FRONT_LEFT", "value": "CLOSED"},
      {"vehicleDoor": "FRONT_RIGHT", "value": "CLOSED"},
      {"vehicleDoor": "ALL_DOORS", "value": "CLOSED"}
    ],
    "ignitionStatus": {"value": "OFF"},
    "remoteStartCountdownTimer": {"value": 1719.0},
    "engineCoolantTemp": {"value": 13.0},
    "outsideTemperature": {"value": 5.5},
    "odometer": {"value": 42137.2},
    "fuelLevel": {"value": 71.4},
    "fuelRange": {"value": 412.8},
    "seatBeltStatus": [
      {"vehicleOccupantRole": "DRIVER", "value": "BUCKLED"},
      {"vehicleOccupantRole": "PASSENGER", "value": "NOT_BUCKLED"}
    ],
    "batteryStateOfCharge": {"value": 88.0},
    "batteryVoltage": {"value": 12.6},
    "engineSpeed": {"value": 612.0},
    "alarmStatus": {"value": "SET"},
    "hoodStatus": {"value": "CLOSED"},
    "compassDirection": {"value": "NORTHWEST"},
    "gearLeverPosition": {"value": "PARK"},
    "tirePressure": [
      {"vehicleWheel": "FRONT_LEFT", "value": 240.0},
      {"vehicleWheel": "FRONT_RIGHT", "value": 238.5}
    ]
  },
  "events": {
    "remoteStartEvent": {
      "conditions": {
        "remoteStartBegan": {
          "remoteStartDeviceStatus": {"value": "RUNNING"}
        }
      }
    }
  }
}`

func parseDoc(t *testing.T, doc string) *Snapshot {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))
	return New(raw, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestSnapshotAccessors(t *testing.T) {
	s := parseDoc(t, runningDoc)

	locked, err := s.IsLocked()
	require.NoError(t, err)
	assert.True(t, locked)

	ignition, err := s.IsIgnitionStarted()
	require.NoError(t, err)
	assert.False(t, ignition)

	remote, err := s.IsRemotelyStarted()
	require.NoError(t, err)
	assert.True(t, remote)

	running, err := s.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)

	countdown, err := s.ShutoffCountdown()
	require.NoError(t, err)
	assert.Equal(t, 1719.0, countdown.Magnitude())

	coolant, err := s.CoolantTemp()
	require.NoError(t, err)
	f, err := coolant.Convert(units.Fahrenheit)
	require.NoError(t, err)
	assert.InDelta(t, 55.4, f, 1e-9)

	rpm, err := s.EngineRPM()
	require.NoError(t, err)
	assert.Equal(t, 612, rpm)

	odo, err := s.Odometer()
	require.NoError(t, err)
	assert.Equal(t, 42137.2, odo.Magnitude())

	volts, err := s.BatteryVoltage()
	require.NoError(t, err)
	assert.Equal(t, 12.6, volts.Magnitude())

	hood, err := s.HoodStatus()
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", hood)

	gear, err := s.GearPosition()
	require.NoError(t, err)
	assert.Equal(t, "PARK", gear)
}

func TestSnapshotFuelRange(t *testing.T) {
	s := parseDoc(t, runningDoc)
	r, err := s.FuelRange()
	require.NoError(t, err)
	mi, err := r.Convert(units.Miles)
	require.NoError(t, err)
	assert.InDelta(t, 256.5, mi, 0.1)
}

func TestSnapshotSeatBelts(t *testing.T) {
	s := parseDoc(t, runningDoc)
	belts, err := s.SeatBelts()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"driver":    "BUCKLED",
		"passenger": "NOT_BUCKLED",
	}, belts)

	empty := parseDoc(t, `{"metrics": {}}`)
	_, err = empty.SeatBelts()
	var missing *MissingSignalError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "seatBeltStatus", missing.Signal)
}

func TestSnapshotDoorStates(t *testing.T) {
	s := parseDoc(t, runningDoc)
	doors, err := s.DoorStates()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"front_left":  "CLOSED",
		"front_right": "CLOSED",
	}, doors)
}

func TestSnapshotTirePressures(t *testing.T) {
	s := parseDoc(t, runningDoc)
	tires, err := s.TirePressures()
	require.NoError(t, err)
	require.Len(t, tires, 2)
	psi, err := tires["front_left"].Convert(units.PSI)
	require.NoError(t, err)
	assert.InDelta(t, 34.8, psi, 0.1)
}

func TestSnapshotMissingSignal(t *testing.T) {
	s := parseDoc(t, `{"metrics": {}}`)

	_, err := s.IsLocked()
	var missing *MissingSignalError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "doorLockStatus", missing.Signal)

	_, err = s.CoolantTemp()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "engineCoolantTemp", missing.Signal)

	_, err = s.IsRemotelyStarted()
	require.ErrorAs(t, err, &missing)
}

func TestSnapshotMalformedSignal(t *testing.T) {
	s := parseDoc(t, `{"metrics": {
		"engineCoolantTemp": {"value": "warm"},
		"remoteStartCountdownTimer": {"value": -5.0},
		"ignitionStatus": {"value": 1.0}
	}}`)

	var malformed *MalformedSignalError

	_, err := s.CoolantTemp()
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "engineCoolantTemp", malformed.Signal)

	_, err = s.ShutoffCountdown()
	require.ErrorAs(t, err, &malformed)

	_, err = s.IsIgnitionStarted()
	require.ErrorAs(t, err, &malformed)
}

func TestSnapshotNoRemoteStartCondition(t *testing.T) {
	s := parseDoc(t, `{
		"metrics": {"ignitionStatus": {"value": "OFF"}},
		"events": {"remoteStartEvent": {"conditions": {}}}
	}`)
	remote, err := s.IsRemotelyStarted()
	require.NoError(t, err)
	assert.False(t, remote)

	running, err := s.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestSnapshotAge(t *testing.T) {
	s := parseDoc(t, runningDoc)
	now := s.FetchedAt().Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, s.Age(now))
}

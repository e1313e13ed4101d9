// Package status exposes typed accessors over the raw vehicle telemetry
// document returned by the cloud.
package status

import (
	"strings"
	"time"

	"github.com/kilianp07/vehiclepass/core/units"
)

// Signal names as they appear under the document's "metrics" key.
const (
	signalDoorLock      = "doorLockStatus"
	signalDoorStatus    = "doorStatus"
	signalIgnition      = "ignitionStatus"
	signalCountdown     = "remoteStartCountdownTimer"
	signalCoolantTemp   = "engineCoolantTemp"
	signalOutsideTemp   = "outsideTemperature"
	signalOdometer      = "odometer"
	signalFuelLevel     = "fuelLevel"
	signalFuelRange     = "fuelRange"
	signalSeatBelt      = "seatBeltStatus"
	signalBatteryCharge = "batteryStateOfCharge"
	signalBatteryVolts  = "batteryVoltage"
	signalEngineSpeed   = "engineSpeed"
	signalAlarm         = "alarmStatus"
	signalHood          = "hoodStatus"
	signalCompass       = "compassDirection"
	signalGearPosition  = "gearLeverPosition"
	signalTirePressure  = "tirePressure"
)

// allDoors selects the aggregate entry in door-scoped metric arrays.
const allDoors = "ALL_DOORS"

// Snapshot is an immutable point-in-time view of the vehicle telemetry
// document. A refresh produces a new snapshot; existing snapshots are never
// patched.
type Snapshot struct {
	raw       map[string]any
	fetchedAt time.Time
}

// New wraps a decoded telemetry document.
func New(raw map[string]any, fetchedAt time.Time) *Snapshot {
	return &Snapshot{raw: raw, fetchedAt: fetchedAt}
}

// FetchedAt returns the time the document was fetched.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Age returns how old the snapshot is relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration { return now.Sub(s.fetchedAt) }

// Raw returns the underlying document.
func (s *Snapshot) Raw() map[string]any { return s.raw }

// metric returns metrics.<name>.value.
func (s *Snapshot) metric(name string) (any, error) {
	metrics, ok := s.raw["metrics"].(map[string]any)
	if !ok {
		return nil, &MissingSignalError{Signal: name}
	}
	entry, ok := metrics[name].(map[string]any)
	if !ok {
		return nil, &MissingSignalError{Signal: name}
	}
	value, ok := entry["value"]
	if !ok {
		return nil, &MissingSignalError{Signal: name}
	}
	return value, nil
}

func (s *Snapshot) stringMetric(name string) (string, error) {
	v, err := s.metric(name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", &MalformedSignalError{Signal: name, Want: "string", Got: v}
	}
	return str, nil
}

func (s *Snapshot) floatMetric(name string) (float64, error) {
	v, err := s.metric(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &MalformedSignalError{Signal: name, Want: "number", Got: v}
	}
	return f, nil
}

// doorMetric returns the ALL_DOORS value of a door-scoped metric array.
func (s *Snapshot) doorMetric(name string) (string, error) {
	metrics, ok := s.raw["metrics"].(map[string]any)
	if !ok {
		return "", &MissingSignalError{Signal: name}
	}
	entries, ok := metrics[name].([]any)
	if !ok {
		return "", &MissingSignalError{Signal: name}
	}
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if entry["vehicleDoor"] != allDoors {
			continue
		}
		value, ok := entry["value"].(string)
		if !ok {
			return "", &MalformedSignalError{Signal: name, Want: "string", Got: entry["value"]}
		}
		return value, nil
	}
	return "", &MissingSignalError{Signal: name}
}

// IsLocked reports whether all doors read LOCKED.
func (s *Snapshot) IsLocked() (bool, error) {
	v, err := s.doorMetric(signalDoorLock)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "LOCKED"), nil
}

// IsIgnitionStarted reports whether the engine runs from the ignition.
func (s *Snapshot) IsIgnitionStarted() (bool, error) {
	v, err := s.stringMetric(signalIgnition)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "ON"), nil
}

// IsRemotelyStarted reports whether the engine runs from a remote start
// command. The flag lives under the document's remote start event, not under
// metrics.
func (s *Snapshot) IsRemotelyStarted() (bool, error) {
	const signal = "remoteStartEvent"
	events, ok := s.raw["events"].(map[string]any)
	if !ok {
		return false, &MissingSignalError{Signal: signal}
	}
	event, ok := events[signal].(map[string]any)
	if !ok {
		return false, &MissingSignalError{Signal: signal}
	}
	conditions, ok := event["conditions"].(map[string]any)
	if !ok {
		return false, &MalformedSignalError{Signal: signal, Want: "conditions object", Got: event["conditions"]}
	}
	began, ok := conditions["remoteStartBegan"].(map[string]any)
	if !ok {
		return false, nil
	}
	device, ok := began["remoteStartDeviceStatus"].(map[string]any)
	if !ok {
		return false, &MalformedSignalError{Signal: signal, Want: "device status object", Got: began["remoteStartDeviceStatus"]}
	}
	value, ok := device["value"].(string)
	if !ok {
		return false, &MalformedSignalError{Signal: signal, Want: "string", Got: device["value"]}
	}
	return strings.EqualFold(value, "RUNNING"), nil
}

// IsRunning reports whether the engine runs from either the ignition or a
// remote start.
func (s *Snapshot) IsRunning() (bool, error) {
	ignition, err := s.IsIgnitionStarted()
	if err != nil {
		return false, err
	}
	if ignition {
		return true, nil
	}
	return s.IsRemotelyStarted()
}

// ShutoffCountdown returns the seconds remaining until automatic engine
// shutoff. Zero means no shutoff is pending.
func (s *Snapshot) ShutoffCountdown() (units.Quantity, error) {
	v, err := s.floatMetric(signalCountdown)
	if err != nil {
		return units.Quantity{}, err
	}
	if v < 0 {
		return units.Quantity{}, &MalformedSignalError{Signal: signalCountdown, Want: "non-negative number", Got: v}
	}
	return units.NewSeconds(v), nil
}

// CoolantTemp returns the engine coolant temperature.
func (s *Snapshot) CoolantTemp() (units.Quantity, error) {
	v, err := s.floatMetric(signalCoolantTemp)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewCelsius(v), nil
}

// OutsideTemp returns the ambient temperature.
func (s *Snapshot) OutsideTemp() (units.Quantity, error) {
	v, err := s.floatMetric(signalOutsideTemp)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewCelsius(v), nil
}

// Odometer returns the odometer reading.
func (s *Snapshot) Odometer() (units.Quantity, error) {
	v, err := s.floatMetric(signalOdometer)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewKilometers(v), nil
}

// FuelLevel returns the fuel level as a percentage.
func (s *Snapshot) FuelLevel() (units.Quantity, error) {
	v, err := s.floatMetric(signalFuelLevel)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewPercent(v), nil
}

// FuelRange returns the remaining driving range on the current fuel.
func (s *Snapshot) FuelRange() (units.Quantity, error) {
	v, err := s.floatMetric(signalFuelRange)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewKilometers(v), nil
}

// BatteryCharge returns the battery state of charge as a percentage.
func (s *Snapshot) BatteryCharge() (units.Quantity, error) {
	v, err := s.floatMetric(signalBatteryCharge)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewPercent(v), nil
}

// BatteryVoltage returns the 12V battery voltage.
func (s *Snapshot) BatteryVoltage() (units.Quantity, error) {
	v, err := s.floatMetric(signalBatteryVolts)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.NewVolts(v), nil
}

// EngineRPM returns the engine speed in revolutions per minute.
func (s *Snapshot) EngineRPM() (int, error) {
	v, err := s.floatMetric(signalEngineSpeed)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// AlarmStatus returns the alarm state string.
func (s *Snapshot) AlarmStatus() (string, error) {
	return s.stringMetric(signalAlarm)
}

// HoodStatus returns "OPEN" or "CLOSED".
func (s *Snapshot) HoodStatus() (string, error) {
	return s.stringMetric(signalHood)
}

// CompassDirection returns the heading as a cardinal direction.
func (s *Snapshot) CompassDirection() (string, error) {
	return s.stringMetric(signalCompass)
}

// GearPosition returns the gear lever position.
func (s *Snapshot) GearPosition() (string, error) {
	return s.stringMetric(signalGearPosition)
}

// DoorStates returns the per-door open/closed values keyed by door position,
// excluding the aggregate ALL_DOORS entry.
func (s *Snapshot) DoorStates() (map[string]string, error) {
	metrics, ok := s.raw["metrics"].(map[string]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalDoorStatus}
	}
	entries, ok := metrics[signalDoorStatus].([]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalDoorStatus}
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalDoorStatus, Want: "object", Got: e}
		}
		door, _ := entry["vehicleDoor"].(string)
		if door == "" || door == allDoors {
			continue
		}
		value, ok := entry["value"].(string)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalDoorStatus, Want: "string", Got: entry["value"]}
		}
		out[strings.ToLower(door)] = value
	}
	return out, nil
}

// SeatBelts returns per-seat belt values keyed by occupant role.
func (s *Snapshot) SeatBelts() (map[string]string, error) {
	metrics, ok := s.raw["metrics"].(map[string]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalSeatBelt}
	}
	entries, ok := metrics[signalSeatBelt].([]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalSeatBelt}
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalSeatBelt, Want: "object", Got: e}
		}
		role, _ := entry["vehicleOccupantRole"].(string)
		if role == "" {
			continue
		}
		value, ok := entry["value"].(string)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalSeatBelt, Want: "string", Got: entry["value"]}
		}
		out[strings.ToLower(role)] = value
	}
	return out, nil
}

// TirePressures returns per-wheel pressure quantities keyed by wheel
// placement.
func (s *Snapshot) TirePressures() (map[string]units.Quantity, error) {
	metrics, ok := s.raw["metrics"].(map[string]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalTirePressure}
	}
	entries, ok := metrics[signalTirePressure].([]any)
	if !ok {
		return nil, &MissingSignalError{Signal: signalTirePressure}
	}
	out := make(map[string]units.Quantity, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalTirePressure, Want: "object", Got: e}
		}
		wheel, _ := entry["vehicleWheel"].(string)
		if wheel == "" {
			continue
		}
		value, ok := entry["value"].(float64)
		if !ok {
			return nil, &MalformedSignalError{Signal: signalTirePressure, Want: "number", Got: entry["value"]}
		}
		out[strings.ToLower(wheel)] = units.NewKilopascals(value)
	}
	return out, nil
}

package vehicle

import (
	"context"
	"time"

	"github.com/kilianp07/vehiclepass/core/units"
)

// IsLocked reports whether all doors are locked.
func (v *Vehicle) IsLocked(ctx context.Context) (bool, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.IsLocked()
}

// IsRunning reports whether the engine runs from the ignition or a remote
// start.
func (v *Vehicle) IsRunning(ctx context.Context) (bool, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.IsRunning()
}

// IsRemotelyStarted reports whether the engine runs from a remote start.
func (v *Vehicle) IsRemotelyStarted(ctx context.Context) (bool, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.IsRemotelyStarted()
}

// IsIgnitionStarted reports whether the engine runs from the ignition.
func (v *Vehicle) IsIgnitionStarted(ctx context.Context) (bool, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.IsIgnitionStarted()
}

// CoolantTemp returns the engine coolant temperature.
func (v *Vehicle) CoolantTemp(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.CoolantTemp()
}

// OutsideTemp returns the ambient temperature.
func (v *Vehicle) OutsideTemp(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.OutsideTemp()
}

// Odometer returns the odometer reading.
func (v *Vehicle) Odometer(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.Odometer()
}

// FuelLevel returns the fuel level percentage.
func (v *Vehicle) FuelLevel(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.FuelLevel()
}

// FuelRange returns the remaining driving range on the current fuel.
func (v *Vehicle) FuelRange(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.FuelRange()
}

// BatteryCharge returns the battery state of charge percentage.
func (v *Vehicle) BatteryCharge(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.BatteryCharge()
}

// BatteryVoltage returns the 12V battery voltage.
func (v *Vehicle) BatteryVoltage(ctx context.Context) (units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Quantity{}, err
	}
	return s.BatteryVoltage()
}

// EngineRPM returns the engine speed.
func (v *Vehicle) EngineRPM(ctx context.Context) (int, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.EngineRPM()
}

// TirePressures returns per-wheel pressures.
func (v *Vehicle) TirePressures(ctx context.Context) (map[string]units.Quantity, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.TirePressures()
}

// ShutoffCountdown returns a live countdown to the automatic engine shutoff.
// The countdown is anchored at the snapshot's fetch time, so its remaining
// duration keeps decreasing between refreshes.
func (v *Vehicle) ShutoffCountdown(ctx context.Context) (units.Countdown, error) {
	s, err := v.snapshot(ctx)
	if err != nil {
		return units.Countdown{}, err
	}
	q, err := s.ShutoffCountdown()
	if err != nil {
		return units.Countdown{}, err
	}
	seconds, err := q.Convert(units.Seconds)
	if err != nil {
		return units.Countdown{}, err
	}
	endsAt := s.FetchedAt().Add(time.Duration(seconds * float64(time.Second)))
	return units.NewCountdownWithClock(endsAt, v.clock.Now), nil
}

// ShutoffTime returns when the engine will shut off automatically. The zero
// time means no shutoff is pending.
func (v *Vehicle) ShutoffTime(ctx context.Context) (time.Time, error) {
	cd, err := v.ShutoffCountdown(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if cd.Expired() {
		return time.Time{}, nil
	}
	return cd.EndsAt(), nil
}

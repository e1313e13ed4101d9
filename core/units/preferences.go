package units

import (
	"fmt"
	"sync/atomic"
)

// Preferences selects the display unit per family. The zero value renders
// every family in its base unit.
type Preferences struct {
	Temperature Unit
	Duration    Unit
	Distance    Unit
	Pressure    Unit
	Potential   Unit
	// HumanDuration renders durations as "1h 2m 3s" instead of a single unit.
	HumanDuration bool
}

func (p Preferences) unitFor(f Family) Unit {
	switch f {
	case Temperature:
		return p.Temperature
	case Duration:
		return p.Duration
	case Distance:
		return p.Distance
	case Pressure:
		return p.Pressure
	case Potential:
		return p.Potential
	default:
		return Percent
	}
}

// Validate checks that every preferred unit belongs to its family.
func (p Preferences) Validate() error {
	checks := []struct {
		unit Unit
		want Family
	}{
		{p.Temperature, Temperature},
		{p.Duration, Duration},
		{p.Distance, Distance},
		{p.Pressure, Pressure},
		{p.Potential, Potential},
	}
	for _, c := range checks {
		if c.unit.Family() != c.want {
			return fmt.Errorf("units: %s is not a %s unit", c.unit.Symbol(), c.want)
		}
	}
	return nil
}

func basePreferences() Preferences {
	return Preferences{
		Temperature: Celsius,
		Duration:    Seconds,
		Distance:    Kilometers,
		Pressure:    Kilopascals,
		Potential:   Volts,
	}
}

var defaultPrefs atomic.Pointer[Preferences]

func init() {
	p := basePreferences()
	defaultPrefs.Store(&p)
}

// SetDefaultPreferences installs the process-wide rendering preferences.
// Intended to be called once at startup, before quantities are rendered.
func SetDefaultPreferences(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	defaultPrefs.Store(&p)
	return nil
}

// DefaultPreferences returns the current process-wide rendering preferences.
func DefaultPreferences() Preferences {
	return *defaultPrefs.Load()
}

// Package units provides immutable unit-tagged measurements with conversion
// and preference-aware string rendering.
package units

import (
	"fmt"
	"math"
)

// Family groups units that are mutually convertible.
type Family int

const (
	Temperature Family = iota
	Duration
	Distance
	Pressure
	Potential
	Percentage
)

func (f Family) String() string {
	switch f {
	case Temperature:
		return "temperature"
	case Duration:
		return "duration"
	case Distance:
		return "distance"
	case Pressure:
		return "pressure"
	case Potential:
		return "potential"
	case Percentage:
		return "percentage"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Unit identifies a concrete measurement unit.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
	Seconds
	Minutes
	Hours
	Milliseconds
	Kilometers
	Miles
	Kilopascals
	PSI
	Bar
	Volts
	Millivolts
	Percent
)

const (
	milesPerKilometer = 0.621371
	psiPerKilopascal  = 0.145038
)

// Family returns the unit family the unit belongs to.
func (u Unit) Family() Family {
	switch u {
	case Celsius, Fahrenheit:
		return Temperature
	case Seconds, Minutes, Hours, Milliseconds:
		return Duration
	case Kilometers, Miles:
		return Distance
	case Kilopascals, PSI, Bar:
		return Pressure
	case Volts, Millivolts:
		return Potential
	default:
		return Percentage
	}
}

// Symbol returns the display symbol for the unit.
func (u Unit) Symbol() string {
	switch u {
	case Celsius:
		return "°C"
	case Fahrenheit:
		return "°F"
	case Seconds:
		return "s"
	case Minutes:
		return "m"
	case Hours:
		return "h"
	case Milliseconds:
		return "ms"
	case Kilometers:
		return "km"
	case Miles:
		return "mi"
	case Kilopascals:
		return "kPa"
	case PSI:
		return "psi"
	case Bar:
		return "bar"
	case Volts:
		return "V"
	case Millivolts:
		return "mV"
	case Percent:
		return "%"
	default:
		return "?"
	}
}

func (u Unit) String() string { return u.Symbol() }

// IncompatibleUnitError reports a unit operation across different families.
type IncompatibleUnitError struct {
	From Unit
	To   Unit
}

func (e *IncompatibleUnitError) Error() string {
	return fmt.Sprintf("units: cannot convert %s (%s) to %s (%s)",
		e.From.Symbol(), e.From.Family(), e.To.Symbol(), e.To.Family())
}

// Quantity is an immutable scalar measurement tagged with its unit.
type Quantity struct {
	magnitude float64
	unit      Unit
}

// New creates a Quantity with the given magnitude and unit.
func New(magnitude float64, unit Unit) Quantity {
	return Quantity{magnitude: magnitude, unit: unit}
}

// NewCelsius creates a temperature quantity in degrees Celsius.
func NewCelsius(v float64) Quantity { return New(v, Celsius) }

// NewFahrenheit creates a temperature quantity in degrees Fahrenheit.
func NewFahrenheit(v float64) Quantity { return New(v, Fahrenheit) }

// NewSeconds creates a duration quantity in seconds.
func NewSeconds(v float64) Quantity { return New(v, Seconds) }

// NewKilometers creates a distance quantity in kilometers.
func NewKilometers(v float64) Quantity { return New(v, Kilometers) }

// NewKilopascals creates a pressure quantity in kilopascals.
func NewKilopascals(v float64) Quantity { return New(v, Kilopascals) }

// NewVolts creates an electric potential quantity in volts.
func NewVolts(v float64) Quantity { return New(v, Volts) }

// NewPercent creates a percentage quantity.
func NewPercent(v float64) Quantity { return New(v, Percent) }

// Magnitude returns the raw magnitude in the quantity's own unit.
func (q Quantity) Magnitude() float64 { return q.magnitude }

// Unit returns the unit the quantity was constructed with.
func (q Quantity) Unit() Unit { return q.unit }

// Convert returns the magnitude expressed in the target unit. It fails when
// the target unit belongs to a different family.
func (q Quantity) Convert(to Unit) (float64, error) {
	if q.unit.Family() != to.Family() {
		return 0, &IncompatibleUnitError{From: q.unit, To: to}
	}
	if q.unit == to {
		return q.magnitude, nil
	}
	return fromBase(toBase(q.magnitude, q.unit), to), nil
}

// MustConvert is Convert for targets known at compile time to share the
// quantity's family. It panics on a family mismatch.
func (q Quantity) MustConvert(to Unit) float64 {
	v, err := q.Convert(to)
	if err != nil {
		panic(err)
	}
	return v
}

// toBase normalizes a magnitude to the family's base unit: Celsius, seconds,
// kilometers, kilopascals, volts.
func toBase(v float64, u Unit) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Minutes:
		return v * 60
	case Hours:
		return v * 3600
	case Milliseconds:
		return v / 1000
	case Miles:
		return v / milesPerKilometer
	case PSI:
		return v / psiPerKilopascal
	case Bar:
		return v * 100
	case Millivolts:
		return v / 1000
	default:
		return v
	}
}

func fromBase(v float64, u Unit) float64 {
	switch u {
	case Fahrenheit:
		return v*9/5 + 32
	case Minutes:
		return v / 60
	case Hours:
		return v / 3600
	case Milliseconds:
		return v * 1000
	case Miles:
		return v * milesPerKilometer
	case PSI:
		return v * psiPerKilopascal
	case Bar:
		return v / 100
	case Millivolts:
		return v * 1000
	default:
		return v
	}
}

// equalityTolerance bounds the float error accepted by Equal after a
// round-trip conversion.
const equalityTolerance = 1e-9

// Compare orders two quantities of the same family. It returns -1, 0 or 1.
func (q Quantity) Compare(other Quantity) (int, error) {
	ov, err := other.Convert(q.unit)
	if err != nil {
		return 0, err
	}
	switch {
	case math.Abs(q.magnitude-ov) <= equalityTolerance:
		return 0, nil
	case q.magnitude < ov:
		return -1, nil
	default:
		return 1, nil
	}
}

// Equal reports whether both quantities represent the same measurement.
func (q Quantity) Equal(other Quantity) (bool, error) {
	c, err := q.Compare(other)
	return c == 0, err
}

// Less reports whether q is strictly smaller than other.
func (q Quantity) Less(other Quantity) (bool, error) {
	c, err := q.Compare(other)
	return c < 0, err
}

// Format renders the quantity in the preferred unit for its family, as
// "<magnitude><symbol>" with one decimal place. Durations honor the
// human-readable preference.
func (q Quantity) Format(p Preferences) string {
	target := p.unitFor(q.unit.Family())
	if q.unit.Family() == Duration && p.HumanDuration {
		return humanDuration(toBase(q.magnitude, q.unit))
	}
	v, err := q.Convert(target)
	if err != nil {
		// Preferences are validated per family; fall back to the native unit.
		v = q.magnitude
		target = q.unit
	}
	return fmt.Sprintf("%.1f%s", v, target.Symbol())
}

// String renders the quantity using the process-wide default preferences,
// resolved at call time.
func (q Quantity) String() string {
	return q.Format(DefaultPreferences())
}

// humanDuration renders whole seconds as "1h 2m 3s", omitting zero parts.
func humanDuration(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	h := s / 3600
	m := s % 3600 / 60
	rest := s % 60
	out := ""
	if h > 0 {
		out = fmt.Sprintf("%dh", h)
	}
	if m > 0 {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%dm", m)
	}
	if rest > 0 || out == "" {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%ds", rest)
	}
	return out
}

package units

import "time"

// Countdown is a duration counting down to a fixed end time. The remaining
// duration is derived from the wall clock at each access and never goes
// negative.
type Countdown struct {
	endsAt time.Time
	now    func() time.Time
}

// NewCountdown creates a countdown ending at the given time.
func NewCountdown(endsAt time.Time) Countdown {
	return NewCountdownWithClock(endsAt, time.Now)
}

// NewCountdownWithClock creates a countdown with an injected time source.
func NewCountdownWithClock(endsAt time.Time, now func() time.Time) Countdown {
	return Countdown{endsAt: endsAt, now: now}
}

// EndsAt returns the countdown's end time.
func (c Countdown) EndsAt() time.Time { return c.endsAt }

// Remaining returns the duration until the end time, floored at zero.
func (c Countdown) Remaining() Quantity {
	left := c.endsAt.Sub(c.now())
	if left < 0 {
		left = 0
	}
	return NewSeconds(left.Seconds())
}

// Expired reports whether the countdown has reached zero.
func (c Countdown) Expired() bool {
	return !c.endsAt.After(c.now())
}

func (c Countdown) String() string {
	return c.Remaining().String()
}

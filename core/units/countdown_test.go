package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownRemaining(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	cd := NewCountdownWithClock(base.Add(90*time.Second), func() time.Time { return now })

	s, err := cd.Remaining().Convert(Seconds)
	require.NoError(t, err)
	assert.Equal(t, 90.0, s)
	assert.False(t, cd.Expired())

	// Remaining is non-increasing as the clock advances.
	prev := s
	for _, step := range []time.Duration{10 * time.Second, 30 * time.Second, time.Minute} {
		now = now.Add(step)
		cur, err := cd.Remaining().Convert(Seconds)
		require.NoError(t, err)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestCountdownFloorsAtZero(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cd := NewCountdownWithClock(base, func() time.Time { return base.Add(time.Hour) })
	assert.Equal(t, 0.0, cd.Remaining().Magnitude())
	assert.True(t, cd.Expired())
}

func TestCountdownEndsAt(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	cd := NewCountdown(end)
	assert.Equal(t, end, cd.EndsAt())
}

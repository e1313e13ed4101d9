package vehicle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vehiclepass/config"
	"github.com/kilianp07/vehiclepass/core/cloud"
	"github.com/kilianp07/vehiclepass/core/command"
	"github.com/kilianp07/vehiclepass/core/units"
	"github.com/kilianp07/vehiclepass/infra/fordpass"
	"github.com/kilianp07/vehiclepass/infra/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var _ command.Clock = (*fakeClock)(nil)

func statusDoc(locked, running, remote bool, countdown float64) map[string]any {
	lockState := "UNLOCKED"
	if locked {
		lockState = "LOCKED"
	}
	ignition := "OFF"
	if running && !remote {
		ignition = "ON"
	}
	conditions := map[string]any{}
	if remote {
		conditions["remoteStartBegan"] = map[string]any{
			"remoteStartDeviceStatus": map[string]any{"value": "RUNNING"},
		}
	}
	return map[string]any{
		"metrics": map[string]any{
			"doorLockStatus": []any{
				map[string]any{"vehicleDoor": "ALL_DOORS", "value": lockState},
			},
			"ignitionStatus":            map[string]any{"value": ignition},
			"remoteStartCountdownTimer": map[string]any{"value": countdown},
			"engineCoolantTemp":         map[string]any{"value": 13.0},
		},
		"events": map[string]any{
			"remoteStartEvent": map[string]any{"conditions": conditions},
		},
	}
}

func testVehicle(t *testing.T, sess *fordpass.MockSession) (*Vehicle, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	v, err := Connect(context.Background(), config.Default(),
		WithSession(sess),
		WithClock(clock),
		WithLogger(logger.NopLogger{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v, clock
}

func TestUnlockEndToEnd(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(
		statusDoc(true, false, false, 0),  // poll 1: still locked
		statusDoc(false, false, false, 0), // poll 2: unlocked
	)
	v, _ := testVehicle(t, sess)

	snap, err := v.Unlock(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, sess.FetchCalls())
	assert.Equal(t, []string{cloud.CommandUnlock}, sess.Sent)

	// The confirming snapshot is cached; no extra fetch for the property.
	locked, err := v.IsLocked(context.Background())
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Equal(t, 2, sess.FetchCalls())
}

func TestUnlockNoVerifySkipsPolling(t *testing.T) {
	sess := fordpass.NewMockSession()
	v, _ := testVehicle(t, sess)

	snap, err := v.Unlock(context.Background(), NoVerify())
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Equal(t, 0, sess.FetchCalls())
	assert.Equal(t, []string{cloud.CommandUnlock}, sess.Sent)
}

func TestLockTimeout(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(false, false, false, 0))
	v, _ := testVehicle(t, sess)

	_, err := v.Lock(context.Background(), WithTimeout(6*time.Second), WithPollInterval(2*time.Second))
	var te *command.TimeoutError
	require.ErrorAs(t, err, &te)
	require.NotNil(t, te.LastSnapshot)
	locked, serr := te.LastSnapshot.IsLocked()
	require.NoError(t, serr)
	assert.False(t, locked)
}

func TestStartVerifiedAndLimited(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(
		statusDoc(true, false, false, 0),
		statusDoc(true, true, true, 900),
	)
	v, _ := testVehicle(t, sess)

	snap, err := v.Start(context.Background())
	require.NoError(t, err)
	running, err := snap.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, []string{cloud.CommandRemoteStart}, sess.Sent)

	// Extension path counts as the second request; a third start is refused
	// locally.
	_, err = v.Start(context.Background(), NoVerify())
	require.NoError(t, err)
	_, err = v.Start(context.Background(), NoVerify())
	require.Error(t, err)
	assert.Len(t, sess.Sent, 2)
}

func TestStartWithExtendShutoff(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(
		statusDoc(true, true, true, 900),
		statusDoc(true, true, true, 1800),
	)
	v, _ := testVehicle(t, sess)

	snap, err := v.Start(context.Background(), ExtendShutoff())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []string{cloud.CommandRemoteStart, cloud.CommandRemoteStart}, sess.Sent)

	cd, err := snap.ShutoffCountdown()
	require.NoError(t, err)
	assert.Equal(t, 1800.0, cd.Magnitude())
}

func TestCancelStartResetsRemoteStartBudget(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(
		statusDoc(true, true, true, 900), // start confirmation
		statusDoc(true, false, false, 0), // cancel confirmation
		statusDoc(true, true, true, 900), // second start confirmation
	)
	v, _ := testVehicle(t, sess)

	_, err := v.Start(context.Background())
	require.NoError(t, err)
	_, err = v.CancelStart(context.Background())
	require.NoError(t, err)
	_, err = v.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		cloud.CommandRemoteStart,
		cloud.CommandCancelStart,
		cloud.CommandRemoteStart,
	}, sess.Sent)
}

func TestStartFailureReleasesBudget(t *testing.T) {
	sess := fordpass.NewMockSession().
		RejectCommand(cloud.CommandRemoteStart, 403, "not authorized")
	v, _ := testVehicle(t, sess)

	// Failed requests must not consume remote start slots.
	_, err := v.Start(context.Background())
	require.Error(t, err)
	_, err = v.Start(context.Background())
	require.Error(t, err)

	sess.AllowCommand(cloud.CommandRemoteStart).
		QueueStatus(statusDoc(true, true, true, 900))
	_, err = v.Start(context.Background())
	require.NoError(t, err)
	_, err = v.Start(context.Background(), NoVerify())
	require.NoError(t, err)
	_, err = v.Start(context.Background(), NoVerify())
	require.Error(t, err)
	assert.Len(t, sess.Sent, 2)
}

func TestRejectedCommandSurfacesWithoutPolling(t *testing.T) {
	sess := fordpass.NewMockSession().
		RejectCommand(cloud.CommandLock, 403, "not authorized")
	v, _ := testVehicle(t, sess)

	_, err := v.Lock(context.Background())
	var rejected *cloud.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 0, sess.FetchCalls())
}

func TestPropertyReadsUseFreshnessWindow(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(true, false, false, 0))
	v, clock := testVehicle(t, sess)

	locked, err := v.IsLocked(context.Background())
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, 1, sess.FetchCalls())

	// Within the TTL the cached snapshot serves reads.
	_, err = v.IsRunning(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sess.FetchCalls())

	clock.advance(5 * time.Second)
	_, err = v.IsLocked(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sess.FetchCalls())
}

func TestCoolantTempProperty(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(true, false, false, 0))
	v, _ := testVehicle(t, sess)

	temp, err := v.CoolantTemp(context.Background())
	require.NoError(t, err)
	f, err := temp.Convert(units.Fahrenheit)
	require.NoError(t, err)
	assert.InDelta(t, 55.4, f, 1e-9)
}

func TestShutoffCountdown(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(true, true, true, 900))
	v, clock := testVehicle(t, sess)

	cd, err := v.ShutoffCountdown(context.Background())
	require.NoError(t, err)
	s, err := cd.Remaining().Convert(units.Seconds)
	require.NoError(t, err)
	assert.Equal(t, 900.0, s)

	clock.advance(300 * time.Second)
	s, err = cd.Remaining().Convert(units.Seconds)
	require.NoError(t, err)
	assert.Equal(t, 600.0, s)

	end, err := v.ShutoffTime(context.Background())
	require.NoError(t, err)
	assert.False(t, end.IsZero())
}

func TestShutoffTimeZeroWhenNoShutoffPending(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(true, false, false, 0))
	v, _ := testVehicle(t, sess)

	end, err := v.ShutoffTime(context.Background())
	require.NoError(t, err)
	assert.True(t, end.IsZero())
}

func TestWithClosesSessionOnAllPaths(t *testing.T) {
	sess := fordpass.NewMockSession().QueueStatus(statusDoc(true, false, false, 0))
	err := With(context.Background(), config.Default(), func(v *Vehicle) error {
		locked, err := v.IsLocked(context.Background())
		require.NoError(t, err)
		assert.True(t, locked)
		return nil
	}, WithSession(sess), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.True(t, sess.Closed())
}

func TestConnectNilConfig(t *testing.T) {
	_, err := Connect(context.Background(), nil)
	require.Error(t, err)
}

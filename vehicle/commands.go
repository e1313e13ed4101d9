package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/vehiclepass/core/cloud"
	"github.com/kilianp07/vehiclepass/core/command"
	"github.com/kilianp07/vehiclepass/core/status"
)

type cmdOptions struct {
	verify   bool
	timeout  time.Duration
	interval time.Duration
	extend   bool
}

// CommandOption tunes a single command call.
type CommandOption func(*cmdOptions)

// NoVerify sends the command without polling for its effect. The call
// returns right after the cloud accepts the command and the result snapshot
// is nil.
func NoVerify() CommandOption {
	return func(o *cmdOptions) { o.verify = false }
}

// WithTimeout overrides the configured verification timeout.
func WithTimeout(d time.Duration) CommandOption {
	return func(o *cmdOptions) { o.timeout = d }
}

// WithPollInterval overrides the configured poll interval.
func WithPollInterval(d time.Duration) CommandOption {
	return func(o *cmdOptions) { o.interval = d }
}

// ExtendShutoff makes Start request a second remote start after confirmation,
// extending the automatic shutoff time. Ignored by other commands.
func ExtendShutoff() CommandOption {
	return func(o *cmdOptions) { o.extend = true }
}

func (v *Vehicle) commandOptions(opts []CommandOption) cmdOptions {
	o := cmdOptions{
		verify:   true,
		timeout:  v.cmdCfg.Timeout(),
		interval: v.cmdCfg.PollInterval(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// execute runs one verified command and caches the confirming snapshot.
func (v *Vehicle) execute(ctx context.Context, name string, verify func(*status.Snapshot) bool, o cmdOptions) (*status.Snapshot, error) {
	req := command.Request{
		Name:         name,
		Timeout:      o.timeout,
		PollInterval: o.interval,
	}
	if o.verify {
		req.Verify = verify
	}
	snap, err := v.exec.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	v.setSnapshot(snap)
	return snap, nil
}

// Lock locks the vehicle and waits until all doors read locked.
func (v *Vehicle) Lock(ctx context.Context, opts ...CommandOption) (*status.Snapshot, error) {
	return v.execute(ctx, cloud.CommandLock, func(s *status.Snapshot) bool {
		locked, err := s.IsLocked()
		return err == nil && locked
	}, v.commandOptions(opts))
}

// Unlock unlocks the vehicle and waits until the doors read unlocked.
func (v *Vehicle) Unlock(ctx context.Context, opts ...CommandOption) (*status.Snapshot, error) {
	return v.execute(ctx, cloud.CommandUnlock, func(s *status.Snapshot) bool {
		locked, err := s.IsLocked()
		return err == nil && !locked
	}, v.commandOptions(opts))
}

// Start requests a remote start and waits until the engine reports running
// from the remote start. With ExtendShutoff a second request is issued after
// confirmation. The cloud honors at most two remote start requests per
// running session; further ones fail without reaching the cloud.
func (v *Vehicle) Start(ctx context.Context, opts ...CommandOption) (*status.Snapshot, error) {
	o := v.commandOptions(opts)

	// The budget slot is reserved before sending so concurrent starts cannot
	// both pass the check; a failed send returns the slot.
	if err := v.reserveRemoteStart(); err != nil {
		return nil, err
	}
	snap, err := v.execute(ctx, cloud.CommandRemoteStart, func(s *status.Snapshot) bool {
		running, err := s.IsRunning()
		if err != nil || !running {
			return false
		}
		remote, err := s.IsRemotelyStarted()
		return err == nil && remote
	}, o)
	if err != nil {
		v.releaseRemoteStart()
		return nil, err
	}

	if o.extend {
		if rerr := v.reserveRemoteStart(); rerr == nil {
			v.log.Infof("requesting shutoff extension")
			if _, serr := v.session.SendCommand(ctx, cloud.CommandRemoteStart); serr != nil {
				v.releaseRemoteStart()
				return snap, fmt.Errorf("shutoff extension: %w", serr)
			}
			if o.verify {
				if refreshed, ferr := v.Refresh(ctx); ferr == nil {
					snap = refreshed
				}
			}
		}
	}
	return snap, nil
}

// reserveRemoteStart claims one of the remote start slots.
func (v *Vehicle) reserveRemoteStart() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.remoteStarts >= maxRemoteStarts {
		return fmt.Errorf("vehicle: remote start limit of %d requests reached", maxRemoteStarts)
	}
	v.remoteStarts++
	return nil
}

// releaseRemoteStart returns a slot claimed by a request that did not go
// through.
func (v *Vehicle) releaseRemoteStart() {
	v.mu.Lock()
	if v.remoteStarts > 0 {
		v.remoteStarts--
	}
	v.mu.Unlock()
}

// CancelStart cancels a remote start and waits until the engine reports
// stopped.
func (v *Vehicle) CancelStart(ctx context.Context, opts ...CommandOption) (*status.Snapshot, error) {
	snap, err := v.execute(ctx, cloud.CommandCancelStart, func(s *status.Snapshot) bool {
		running, err := s.IsRunning()
		return err == nil && !running
	}, v.commandOptions(opts))
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.remoteStarts = 0
	v.mu.Unlock()
	return snap, nil
}

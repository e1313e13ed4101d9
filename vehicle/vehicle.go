// Package vehicle is the public facade: it composes the cloud session, the
// command executor and the status snapshot behind property-style accessors
// and verified command methods.
package vehicle

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/vehiclepass/config"
	"github.com/kilianp07/vehiclepass/core/cloud"
	"github.com/kilianp07/vehiclepass/core/command"
	"github.com/kilianp07/vehiclepass/core/logger"
	"github.com/kilianp07/vehiclepass/core/metrics"
	"github.com/kilianp07/vehiclepass/core/status"
	"github.com/kilianp07/vehiclepass/core/units"
	"github.com/kilianp07/vehiclepass/infra/fordpass"
	infralogger "github.com/kilianp07/vehiclepass/infra/logger"
)

// maxRemoteStarts is the cloud-side cap on remote start requests per running
// session: one start plus one shutoff extension.
const maxRemoteStarts = 2

// Vehicle owns one cloud session for its lifetime. Close releases the
// session; callers should `defer v.Close()` right after Connect.
//
// Property reads serve the cached snapshot while it is younger than the
// configured status TTL and refresh it otherwise. Refresh forces a fetch.
type Vehicle struct {
	session cloud.Session
	exec    *command.Executor
	clock   command.Clock
	log     logger.Logger
	cmdCfg  config.CommandConfig

	mu           sync.Mutex
	snap         *status.Snapshot
	remoteStarts int
}

type options struct {
	session cloud.Session
	clock   command.Clock
	log     logger.Logger
	sink    metrics.Sink
	creds   *config.CredentialsConfig
}

// Option customizes Connect.
type Option func(*options)

// WithSession substitutes the cloud session, bypassing the FordPass dial.
func WithSession(s cloud.Session) Option {
	return func(o *options) { o.session = s }
}

// WithClock substitutes the command executor's time source.
func WithClock(c command.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger substitutes the vehicle logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetricsSink substitutes the command metrics sink.
func WithMetricsSink(s metrics.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithCredentials overrides the configuration's credentials.
func WithCredentials(username, password, vin string) Option {
	return func(o *options) {
		o.creds = &config.CredentialsConfig{Username: username, Password: password, VIN: vin}
	}
}

// Connect acquires a vehicle: it installs the configured unit preferences,
// dials the cloud (unless a session is injected) and prepares the command
// executor. The caller owns the returned vehicle and must Close it.
func Connect(ctx context.Context, cfg *config.Config, opts ...Option) (*Vehicle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("vehicle: nil config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = infralogger.New("vehicle")
	}
	if err := units.SetDefaultPreferences(cfg.Units.Preferences()); err != nil {
		return nil, err
	}

	session := o.session
	if session == nil {
		creds := cfg.Credentials
		if o.creds != nil {
			creds = *o.creds
		}
		var err error
		session, err = fordpass.Dial(ctx, creds, cfg.Cloud)
		if err != nil {
			return nil, err
		}
	}

	exec, err := command.NewExecutor(session, o.clock, o.log, o.sink)
	if err != nil {
		return nil, err
	}
	clock := o.clock
	if clock == nil {
		clock = command.WallClock()
	}
	return &Vehicle{
		session: session,
		exec:    exec,
		clock:   clock,
		log:     o.log,
		cmdCfg:  cfg.Command,
	}, nil
}

// With runs fn against a connected vehicle and releases the session on every
// exit path.
func With(ctx context.Context, cfg *config.Config, fn func(*Vehicle) error, opts ...Option) error {
	v, err := Connect(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := v.Close(); cerr != nil {
			v.log.Errorf("session close: %v", cerr)
		}
	}()
	return fn(v)
}

// Close releases the cloud session. An in-flight verification poll is not
// chased down here; cancel its context to abort it.
func (v *Vehicle) Close() error {
	return v.session.Close()
}

// Refresh fetches a new snapshot unconditionally and caches it.
func (v *Vehicle) Refresh(ctx context.Context) (*status.Snapshot, error) {
	raw, err := v.session.FetchStatus(ctx)
	if err != nil {
		return nil, err
	}
	snap := status.New(raw, v.clock.Now())
	v.mu.Lock()
	v.snap = snap
	v.mu.Unlock()
	return snap, nil
}

// Snapshot returns the cached snapshot, which may be nil before the first
// read.
func (v *Vehicle) Snapshot() *status.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// snapshot serves the cached snapshot while fresh and refreshes otherwise.
func (v *Vehicle) snapshot(ctx context.Context) (*status.Snapshot, error) {
	v.mu.Lock()
	snap := v.snap
	v.mu.Unlock()
	if snap != nil && snap.Age(v.clock.Now()) <= v.cmdCfg.StatusTTL() {
		return snap, nil
	}
	return v.Refresh(ctx)
}

func (v *Vehicle) setSnapshot(snap *status.Snapshot) {
	if snap == nil {
		return
	}
	v.mu.Lock()
	v.snap = snap
	v.mu.Unlock()
}

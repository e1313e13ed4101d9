// Package command issues remote vehicle commands and verifies their effect
// by polling vehicle state until a predicate holds or a deadline elapses.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/vehiclepass/core/cloud"
	"github.com/kilianp07/vehiclepass/core/logger"
	"github.com/kilianp07/vehiclepass/core/metrics"
	"github.com/kilianp07/vehiclepass/core/status"
)

// State tracks a command through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateSent
	StatePolling
	StateConfirmed
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSent:
		return "sent"
	case StatePolling:
		return "polling"
	case StateConfirmed:
		return "confirmed"
	case StateTimedOut:
		return "timeout"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request describes one command execution. It is built per call and not
// persisted.
type Request struct {
	// Name is the cloud wire value of the command.
	Name string
	// Verify decides whether the command's intended effect is visible in a
	// snapshot. A nil Verify skips polling entirely: the executor returns
	// right after the cloud accepts the command, claiming only Sent.
	Verify func(*status.Snapshot) bool
	// Timeout bounds the whole verification wait, measured from the send.
	Timeout time.Duration
	// PollInterval is the sleep between status fetches.
	PollInterval time.Duration
}

// ErrInProgress is returned when a command is attempted while another one is
// still executing on the same executor.
var ErrInProgress = errors.New("command: another command is in progress")

// TimeoutError reports that the cloud accepted a command but its effect was
// not observed before the deadline. LastSnapshot holds the final poll's view
// so callers can inspect partial progress.
type TimeoutError struct {
	Command      string
	Timeout      time.Duration
	Polls        int
	LastSnapshot *status.Snapshot
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command: %q unconfirmed after %s (%d polls)", e.Command, e.Timeout, e.Polls)
}

// Executor sends commands through a cloud session and polls for their effect.
// It allows one command at a time; concurrent calls fail with ErrInProgress.
type Executor struct {
	session  cloud.Session
	clock    Clock
	log      logger.Logger
	sink     metrics.Sink
	inFlight atomic.Bool
}

// NewExecutor creates an executor. A nil clock selects the wall clock and a
// nil sink disables metrics.
func NewExecutor(session cloud.Session, clock Clock, log logger.Logger, sink metrics.Sink) (*Executor, error) {
	if session == nil || log == nil {
		return nil, fmt.Errorf("command: nil parameter provided to NewExecutor")
	}
	if clock == nil {
		clock = WallClock()
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Executor{session: session, clock: clock, log: log, sink: sink}, nil
}

// Execute runs the command state machine:
//
//	Idle -> Sent -> Polling -> Confirmed | TimedOut | Failed
//
// A rejected send fails without any poll. A status fetch failure mid-poll is
// propagated immediately rather than mistaken for "still pending". On
// confirmation the confirming snapshot is returned; with a nil Verify the
// returned snapshot is nil.
func (e *Executor) Execute(ctx context.Context, req Request) (*status.Snapshot, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInProgress
	}
	defer e.inFlight.Store(false)

	id := uuid.NewString()
	sentAt := e.clock.Now()
	state := StateIdle

	transition := func(next State) {
		e.log.Debugw("command state", map[string]any{
			"command": req.Name,
			"id":      id,
			"from":    state.String(),
			"to":      next.String(),
		})
		state = next
	}
	finish := func(final State, outcome string, polls int) {
		transition(final)
		if err := e.sink.RecordCommandResult(metrics.CommandResult{
			Command: req.Name,
			Outcome: outcome,
			Polls:   polls,
			Latency: e.clock.Now().Sub(sentAt),
			SentAt:  sentAt,
		}); err != nil {
			e.log.Errorf("metrics error: %v", err)
		}
		e.log.Debugw("command finished", map[string]any{
			"command": req.Name,
			"id":      id,
			"state":   state.String(),
			"polls":   polls,
		})
	}

	e.log.Infof("sending command %s (id=%s)", req.Name, id)
	if _, err := e.session.SendCommand(ctx, req.Name); err != nil {
		outcome := StateFailed.String()
		var rejected *cloud.RejectedError
		if errors.As(err, &rejected) {
			outcome = "rejected"
		}
		finish(StateFailed, outcome, 0)
		return nil, err
	}
	transition(StateSent)

	if req.Verify == nil {
		e.log.Infof("command %s sent, verification skipped", req.Name)
		finish(StateSent, StateSent.String(), 0)
		return nil, nil
	}

	transition(StatePolling)
	deadline := sentAt.Add(req.Timeout)
	var last *status.Snapshot
	polls := 0
	for {
		if err := e.clock.Sleep(ctx, req.PollInterval); err != nil {
			finish(StateFailed, StateFailed.String(), polls)
			return nil, err
		}
		raw, err := e.session.FetchStatus(ctx)
		if err != nil {
			// A stale or unreachable status source must not pass for
			// "still pending".
			finish(StateFailed, StateFailed.String(), polls)
			return nil, err
		}
		polls++
		last = status.New(raw, e.clock.Now())
		if req.Verify(last) {
			e.log.Infof("command %s confirmed after %d polls", req.Name, polls)
			finish(StateConfirmed, StateConfirmed.String(), polls)
			return last, nil
		}
		if !e.clock.Now().Before(deadline) {
			e.log.Warnf("command %s unconfirmed after %s", req.Name, req.Timeout)
			finish(StateTimedOut, StateTimedOut.String(), polls)
			return nil, &TimeoutError{
				Command:      req.Name,
				Timeout:      req.Timeout,
				Polls:        polls,
				LastSnapshot: last,
			}
		}
		e.log.Debugf("command %s still pending after %d polls", req.Name, polls)
	}
}

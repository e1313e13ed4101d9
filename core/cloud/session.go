// Package cloud defines the contract with the vehicle cloud transport.
package cloud

import (
	"context"
	"fmt"
)

// Command wire values accepted by the cloud command endpoint.
const (
	CommandLock        = "lock"
	CommandUnlock      = "unLock"
	CommandRemoteStart = "remoteStart"
	CommandCancelStart = "cancelRemoteStart"
)

// Session is an authenticated connection to the vehicle cloud. A session is
// owned by exactly one vehicle for its lifetime; it is not safe for
// concurrent command execution.
type Session interface {
	// SendCommand asks the cloud to execute the named command on the vehicle
	// and returns the acceptance response body. A declined command yields a
	// *RejectedError; transport failures yield a *TransportError.
	SendCommand(ctx context.Context, name string) (map[string]any, error)
	// FetchStatus returns the decoded vehicle telemetry document.
	FetchStatus(ctx context.Context) (map[string]any, error)
	Close() error
}

// TransportError reports a network or authentication failure talking to the
// cloud. It is never retried by this library.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cloud: %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("cloud: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError reports that the cloud declined a command. The vehicle never
// received it, so no verification is attempted.
type RejectedError struct {
	Command string
	Status  int
	Detail  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("cloud: command %q rejected (status %d): %s", e.Command, e.Status, e.Detail)
}

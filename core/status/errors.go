package status

import "fmt"

// MissingSignalError reports a signal absent from the telemetry document.
// A missing signal indicates schema drift or a partial document, never a
// defaultable condition.
type MissingSignalError struct {
	Signal string
}

func (e *MissingSignalError) Error() string {
	return fmt.Sprintf("status: signal %q not found in telemetry document", e.Signal)
}

// MalformedSignalError reports a signal present but not coercible to the
// expected type.
type MalformedSignalError struct {
	Signal string
	Want   string
	Got    any
}

func (e *MalformedSignalError) Error() string {
	return fmt.Sprintf("status: signal %q is not a %s (got %T)", e.Signal, e.Want, e.Got)
}

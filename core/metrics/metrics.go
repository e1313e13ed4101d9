// Package metrics defines the observability contract for command execution.
package metrics

import "time"

// CommandResult represents one executed command to be recorded.
type CommandResult struct {
	Command string
	Outcome string // confirmed, timeout, rejected, failed, sent
	Polls   int
	Latency time.Duration
	SentAt  time.Time
	VIN     string
}

// Sink records command results for observability purposes.
type Sink interface {
	RecordCommandResult(CommandResult) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommandResult(CommandResult) error { return nil }

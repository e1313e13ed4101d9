package fordpass

import (
	"context"
	"sync"

	"github.com/kilianp07/vehiclepass/core/cloud"
)

// MockSession implements cloud.Session for tests and offline use. Status
// documents are served sequentially, sticking on the last one; command
// responses are scripted per command name.
type MockSession struct {
	mu        sync.Mutex
	statuses  []map[string]any
	statusIdx int
	responses map[string]map[string]any
	rejects   map[string]*cloud.RejectedError
	Sent      []string
	closed    bool
}

// NewMockSession creates an empty mock session.
func NewMockSession() *MockSession {
	return &MockSession{
		responses: make(map[string]map[string]any),
		rejects:   make(map[string]*cloud.RejectedError),
	}
}

// QueueStatus appends status documents served by subsequent FetchStatus calls.
func (m *MockSession) QueueStatus(docs ...map[string]any) *MockSession {
	m.mu.Lock()
	m.statuses = append(m.statuses, docs...)
	m.mu.Unlock()
	return m
}

// RespondTo scripts the acceptance response for a command.
func (m *MockSession) RespondTo(command string, response map[string]any) *MockSession {
	m.mu.Lock()
	m.responses[command] = response
	m.mu.Unlock()
	return m
}

// RejectCommand makes the named command fail with a rejection.
func (m *MockSession) RejectCommand(command string, status int, detail string) *MockSession {
	m.mu.Lock()
	m.rejects[command] = &cloud.RejectedError{Command: command, Status: status, Detail: detail}
	m.mu.Unlock()
	return m
}

// AllowCommand clears a scripted rejection for the named command.
func (m *MockSession) AllowCommand(command string) *MockSession {
	m.mu.Lock()
	delete(m.rejects, command)
	m.mu.Unlock()
	return m
}

// FetchCalls returns how many status fetches were served.
func (m *MockSession) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusIdx
}

// Closed reports whether Close was called.
func (m *MockSession) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockSession) SendCommand(_ context.Context, name string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rej, ok := m.rejects[name]; ok {
		return nil, rej
	}
	m.Sent = append(m.Sent, name)
	if resp, ok := m.responses[name]; ok {
		return resp, nil
	}
	return map[string]any{"currentStatus": "REQUESTED"}, nil
}

func (m *MockSession) FetchStatus(context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return nil, &cloud.TransportError{Op: "fetch status", Err: errNoStatus}
	}
	idx := m.statusIdx
	if idx >= len(m.statuses) {
		idx = len(m.statuses) - 1
	}
	m.statusIdx++
	return m.statuses[idx], nil
}

func (m *MockSession) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

var errNoStatus = &noStatusError{}

type noStatusError struct{}

func (*noStatusError) Error() string { return "no status documents queued" }

package command

import (
	"context"
	"time"
)

// Clock abstracts the executor's timing so tests can simulate elapsed time
// without real delay.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until the context is canceled, in which case it
	// returns the context's error.
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WallClock returns the real-time clock used outside of tests.
func WallClock() Clock { return wallClock{} }

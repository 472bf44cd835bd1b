package notify

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Resolution is how a shown notification ended.
type Resolution int

const (
	// Pending means neither the user nor the timeout has resolved the alarm.
	Pending Resolution = iota

	// Acknowledged means the user invoked one of the notification actions.
	Acknowledged

	// TimedOut means the wait window elapsed without a user action.
	TimedOut

	// Canceled means the wait was abandoned, by the caller's context or
	// by the user closing the prompt without acknowledging.
	Canceled
)

func (r Resolution) String() string {
	switch r {
	case Pending:
		return "pending"
	case Acknowledged:
		return "acknowledged"
	case TimedOut:
		return "timed_out"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("resolution(%d)", int(r))
	}
}

// Alarm is a timed future with two resolution paths: a user action and
// a timeout. The first Resolve wins and stops the timer; later calls are
// ignored.
type Alarm struct {
	mu       sync.Mutex
	res      Resolution
	timer    *time.Timer
	deadline time.Time
	done     chan struct{}
}

// NewAlarm arms an alarm that resolves to TimedOut after timeout.
func NewAlarm(timeout time.Duration) *Alarm {
	a := &Alarm{done: make(chan struct{})}

	a.mu.Lock()
	a.deadline = time.Now().Add(timeout)
	a.timer = time.AfterFunc(timeout, func() { a.Resolve(TimedOut) })
	a.mu.Unlock()

	return a
}

// Resolve settles the alarm with r. It reports whether this call won.
func (a *Alarm) Resolve(r Resolution) bool {
	if r == Pending {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.res != Pending {
		return false
	}
	a.res = r
	a.timer.Stop()
	close(a.done)
	return true
}

// Done is closed once the alarm is resolved.
func (a *Alarm) Done() <-chan struct{} {
	return a.done
}

// Resolution returns the current resolution, Pending until resolved.
func (a *Alarm) Resolution() Resolution {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.res
}

// Remaining returns the time left before the timeout path fires.
func (a *Alarm) Remaining() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d := time.Until(a.deadline); d > 0 {
		return d
	}
	return 0
}

// Wait blocks until the alarm resolves or ctx is done, in which case the
// alarm is resolved as Canceled. It returns the winning resolution.
func (a *Alarm) Wait(ctx context.Context) Resolution {
	select {
	case <-a.done:
	case <-ctx.Done():
		a.Resolve(Canceled)
	}
	return a.Resolution()
}

// Stop cancels a pending alarm. It is a no-op once resolved.
func (a *Alarm) Stop() {
	a.Resolve(Canceled)
}

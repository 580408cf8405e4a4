// Package scheduler provides the two suspension primitives the flyover
// controller is built on: a per-display-frame callback and a one-shot delay
// timer. Every implementation runs callbacks on a single goroutine, so a
// callback never overlaps another callback.
package scheduler

import "time"

// Handle identifies a scheduled frame callback or timer. The zero Handle is
// never returned by a scheduler and cancelling it is a no-op.
type Handle uint64

// Scheduler schedules deferred work on a single event-processing goroutine.
type Scheduler interface {
	// RequestFrame runs fn on the next display frame.
	RequestFrame(fn func()) Handle
	// CancelFrame prevents a pending frame callback from running.
	CancelFrame(h Handle)
	// AfterFunc runs fn once after d has elapsed.
	AfterFunc(d time.Duration, fn func()) Handle
	// CancelTimer prevents a pending timer from firing.
	CancelTimer(h Handle)
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// FrameInterval converts a display refresh rate to the duration of one frame.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

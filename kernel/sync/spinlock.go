// Package sync provides synchronization primitives that are safe to use from
// interrupt context before the Go scheduler is available.
package sync

import "sync/atomic"

const attemptsBeforeYielding = 64

var (
	// yieldFn is invoked after attemptsBeforeYielding failed acquisition
	// attempts. It is nil while running on a single CPU without a scheduler.
	yieldFn func()
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempt := uint32(1); ; attempt++ {
		if atomic.CompareAndSwapUint32(&l.state, 0, 1) {
			return
		}

		if attempt%attemptsBeforeYielding == 0 && yieldFn != nil {
			yieldFn()
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// ForceAcquire marks the lock as held regardless of its current state. It is
// only meant to be used by fatal-error paths that must take over a resource
// whose holder will never run again.
func (l *Spinlock) ForceAcquire() {
	atomic.StoreUint32(&l.state, 1)
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

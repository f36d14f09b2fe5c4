package sync

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestSpinlock(t *testing.T) {
	// Substitute the yieldFn with runtime.Gosched to avoid deadlocks while testing
	defer func(origYieldFn func()) { yieldFn = origYieldFn }(yieldFn)
	yieldFn = runtime.Gosched

	var (
		sl         Spinlock
		wg         sync.WaitGroup
		numWorkers = 10
	)

	sl.Acquire()

	if sl.TryToAcquire() != false {
		t.Error("expected TryToAcquire to return false when lock is held")
	}

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func(worker int) {
			sl.Acquire()
			sl.Release()
			wg.Done()
		}(i)
	}

	<-time.After(100 * time.Millisecond)
	sl.Release()
	wg.Wait()
}

func TestSpinlockForceAcquire(t *testing.T) {
	var sl Spinlock

	sl.Acquire()
	sl.ForceAcquire()
	if sl.TryToAcquire() {
		t.Fatal("expected lock to remain held after ForceAcquire")
	}

	sl.Release()
	sl.ForceAcquire()
	if sl.TryToAcquire() {
		t.Fatal("expected ForceAcquire to take a free lock")
	}

	sl.Release()
	if !sl.TryToAcquire() {
		t.Fatal("expected TryToAcquire to succeed after Release")
	}
}

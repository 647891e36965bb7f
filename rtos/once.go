package rtos

import (
	"runtime"
	"sync/atomic"
)

// OnceCell is a slot published exactly once and read many times after. Its
// intended use is handing the application root from a spawned init task to
// the later lifecycle callbacks; Wait busy-polls and is too expensive for
// general signalling.
type OnceCell[T any] struct {
	claimed atomic.Bool
	done    atomic.Bool
	val     T
}

// CallOnce evaluates f and publishes its result. Every call after the first
// claimant is a silent no-op, even while the first is still evaluating.
func (c *OnceCell[T]) CallOnce(f func() T) {
	if !c.claimed.CompareAndSwap(false, true) {
		return
	}
	c.val = f()
	c.done.Store(true)
}

// Done reports whether the value has been published.
func (c *OnceCell[T]) Done() bool {
	return c.done.Load()
}

// TryGet returns the value if published.
func (c *OnceCell[T]) TryGet() (T, bool) {
	if !c.done.Load() {
		var zero T
		return zero, false
	}
	return c.val, true
}

// Wait spins until the value is published and returns it. Startup handoff
// only; the spin yields the processor each iteration but still burns CPU.
func (c *OnceCell[T]) Wait() T {
	for !c.done.Load() {
		runtime.Gosched()
	}
	return c.val
}

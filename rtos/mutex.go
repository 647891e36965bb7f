// Package rtos wraps the kernel's multitasking surface: scoped mutexes,
// counting semaphores, one-shot publish cells, task handles and the
// Action/Select cooperative wait combinator.
package rtos

import (
	"errors"
	"time"

	"brainrtos-go/kernel"
)

// ErrKernelAlloc is returned when the kernel cannot create a sync object.
var ErrKernelAlloc = errors.New("rtos: kernel object allocation failed")

// ErrSemaphoreFull is returned by Semaphore.Post at the maximum count.
var ErrSemaphoreFull = errors.New("rtos: semaphore at maximum count")

func timeoutMS(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := uint64(d / time.Millisecond)
	if ms >= uint64(kernel.TimeoutMax) {
		return kernel.TimeoutMax - 1
	}
	return uint32(ms)
}

// Mutex owns one kernel mutex plus the value it protects. The guard returned
// by Lock is the only path to the value.
//
// Re-entrant locking from the same task is a caller obligation to avoid; the
// kernel's behaviour for it is undefined.
type Mutex[T any] struct {
	h   kernel.MutexHandle
	val T
}

// NewMutex eagerly creates the kernel mutex and fails the whole construction
// if the kernel cannot allocate one.
func NewMutex[T any](val T) (*Mutex[T], error) {
	h := kernel.Active().MutexCreate()
	if h == kernel.NilHandle {
		return nil, ErrKernelAlloc
	}
	return &Mutex[T]{h: h, val: val}, nil
}

// Lock blocks until the mutex is held and returns the scoped guard. It is
// LockTimeout with an infinite bound and must never observably time out; a
// refusal from the kernel on an infinite take is a broken handle and panics.
func (m *Mutex[T]) Lock() *Guard[T] {
	if !kernel.Active().MutexTake(m.h, kernel.TimeoutMax) {
		panic("rtos: infinite mutex take refused by kernel")
	}
	return &Guard[T]{m: m}
}

// LockTimeout blocks up to d. On timeout it reports false and no guard.
func (m *Mutex[T]) LockTimeout(d time.Duration) (*Guard[T], bool) {
	if !kernel.Active().MutexTake(m.h, timeoutMS(d)) {
		return nil, false
	}
	return &Guard[T]{m: m}, true
}

// Close releases the kernel mutex object. The mutex must be unlocked and
// never used again.
func (m *Mutex[T]) Close() {
	kernel.Active().MutexDelete(m.h)
	m.h = kernel.NilHandle
}

// Guard is a scoped borrow of the protected value, released exactly once no
// matter how many times Unlock runs. Callers hold it for the shortest scope
// that works, normally with defer:
//
//	g := m.Lock()
//	defer g.Unlock()
//	*g.Value() = next
type Guard[T any] struct {
	m        *Mutex[T]
	released bool
}

// Value returns the protected value. Must not be retained past Unlock.
func (g *Guard[T]) Value() *T {
	if g.released {
		panic("rtos: guard used after unlock")
	}
	return &g.m.val
}

// Unlock gives the mutex back. Safe to call more than once; only the first
// call releases.
func (g *Guard[T]) Unlock() {
	if g.released {
		return
	}
	g.released = true
	kernel.Active().MutexGive(g.m.h)
}

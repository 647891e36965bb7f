package rtos

import (
	"time"

	"brainrtos-go/kernel"
)

// Semaphore wraps a kernel counting semaphore. Unlike Mutex it has no tied
// value and supports non-binary counts.
type Semaphore struct {
	h kernel.SemHandle
}

// NewSemaphore creates a counting semaphore with the given maximum and
// initial counts.
func NewSemaphore(max, initial uint32) (*Semaphore, error) {
	h := kernel.Active().SemCreate(max, initial)
	if h == kernel.NilHandle {
		return nil, ErrKernelAlloc
	}
	return &Semaphore{h: h}, nil
}

// Wait decrements the count, blocking indefinitely until one is available.
func (s *Semaphore) Wait() {
	if !kernel.Active().SemWait(s.h, kernel.TimeoutMax) {
		panic("rtos: infinite semaphore wait refused by kernel")
	}
}

// WaitTimeout decrements the count, blocking up to d. Reports whether a
// count was obtained.
func (s *Semaphore) WaitTimeout(d time.Duration) bool {
	return kernel.Active().SemWait(s.h, timeoutMS(d))
}

// TryWait is the zero-timeout non-blocking decrement.
func (s *Semaphore) TryWait() bool {
	return kernel.Active().SemWait(s.h, 0)
}

// Post increments the count, failing if the semaphore is already at its
// maximum.
func (s *Semaphore) Post() error {
	if !kernel.Active().SemPost(s.h) {
		return ErrSemaphoreFull
	}
	return nil
}

// Close releases the kernel semaphore object.
func (s *Semaphore) Close() {
	kernel.Active().SemDelete(s.h)
	s.h = kernel.NilHandle
}

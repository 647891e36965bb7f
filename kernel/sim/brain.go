// Package sim is an in-process stand-in for the vendor kernel. Tasks are
// goroutines, blocking primitives are channel-backed, and time comes from an
// injected clock so tests can drive it. It implements kernel.Kernel and backs
// every host-side test and the brainsim binary.
//
// Fidelity limits: suspension, resumption and deletion are cooperative — they
// take effect when the target task next reaches a blocking call. A task that
// never blocks cannot be suspended or deleted, which matches what well-formed
// programs against the real kernel rely on anyway.
package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"brainrtos-go/kernel"
)

const smartPortMax = 21

// internalAdiPort is the synthetic smart port hosting the brain's own
// tri-port bank.
const internalAdiPort = 22

type Option func(*Brain)

// WithClock substitutes the time source. Tests use clock.NewMock.
func WithClock(c clock.Clock) Option { return func(b *Brain) { b.clk = c } }

// WithLogger attaches a logger for task and device call tracing.
func WithLogger(l *zap.Logger) Option { return func(b *Brain) { b.log = l } }

// Brain is one simulated controller: scheduler, sync objects, device
// registry and competition switch.
type Brain struct {
	clk  clock.Clock
	log  *zap.Logger
	boot time.Time

	mu        sync.Mutex
	nextMutex uint32
	nextSem   uint32
	nextTask  uint32
	mutexes   map[kernel.MutexHandle]*simMutex
	sems      map[kernel.SemHandle]*simSem
	tasks     map[kernel.TaskHandle]*simTask
	byGoid    map[int64]*simTask

	slots      [internalAdiPort + 1]*slot
	controller *ControllerState

	comp atomic.Uint32
	cbs  kernel.Lifecycle

	delays      atomic.Int64
	notifyTakes atomic.Int64
}

// New builds a powered-on brain with an empty device registry and the
// internal tri-port bank on port 22.
func New(opts ...Option) *Brain {
	b := &Brain{
		clk:     clock.New(),
		log:     zap.NewNop(),
		mutexes: map[kernel.MutexHandle]*simMutex{},
		sems:    map[kernel.SemHandle]*simSem{},
		tasks:   map[kernel.TaskHandle]*simTask{},
		byGoid:  map[int64]*simTask{},
	}
	for _, o := range opts {
		o(b)
	}
	b.boot = b.clk.Now()
	b.slots[internalAdiPort] = &slot{typ: kernel.DeviceTypeADI, adi: newAdiState()}
	b.controller = &ControllerState{}
	b.comp.Store(kernel.CompConnected | kernel.CompDisabled)
	return b
}

// Micros implements the monotonic boot clock.
func (b *Brain) Micros() uint64 {
	return uint64(b.clk.Since(b.boot) / time.Microsecond)
}

// SetLifecycle implements kernel.Kernel.
func (b *Brain) SetLifecycle(cbs kernel.Lifecycle) {
	b.mu.Lock()
	b.cbs = cbs
	b.mu.Unlock()
}

// DelayCount reports how many TaskDelay calls have been made. Test aid.
func (b *Brain) DelayCount() int64 { return b.delays.Load() }

// NotifyTakeCount reports how many TaskNotifyTake calls have been made.
func (b *Brain) NotifyTakeCount() int64 { return b.notifyTakes.Load() }

// ----------------------------------------------------------------------------
// Mutex
// ----------------------------------------------------------------------------

// simMutex holds its token in a one-slot channel: token present = unlocked.
type simMutex struct {
	tok chan struct{}
}

func (b *Brain) MutexCreate() kernel.MutexHandle {
	m := &simMutex{tok: make(chan struct{}, 1)}
	m.tok <- struct{}{}
	b.mu.Lock()
	b.nextMutex++
	h := kernel.MutexHandle(b.nextMutex)
	b.mutexes[h] = m
	b.mu.Unlock()
	return h
}

func (b *Brain) MutexTake(h kernel.MutexHandle, timeoutMS uint32) bool {
	b.mu.Lock()
	m := b.mutexes[h]
	b.mu.Unlock()
	if m == nil {
		return false
	}
	t := b.current()
	t.gate()
	return b.blockOn(t, m.tok, timeoutMS)
}

func (b *Brain) MutexGive(h kernel.MutexHandle) bool {
	b.mu.Lock()
	m := b.mutexes[h]
	b.mu.Unlock()
	if m == nil {
		return false
	}
	select {
	case m.tok <- struct{}{}:
		return true
	default:
		return false // already unlocked
	}
}

func (b *Brain) MutexDelete(h kernel.MutexHandle) {
	b.mu.Lock()
	delete(b.mutexes, h)
	b.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Semaphore
// ----------------------------------------------------------------------------

type simSem struct {
	tok chan struct{}
}

func (b *Brain) SemCreate(max, initial uint32) kernel.SemHandle {
	if max == 0 || initial > max {
		return kernel.NilHandle
	}
	s := &simSem{tok: make(chan struct{}, max)}
	for i := uint32(0); i < initial; i++ {
		s.tok <- struct{}{}
	}
	b.mu.Lock()
	b.nextSem++
	h := kernel.SemHandle(b.nextSem)
	b.sems[h] = s
	b.mu.Unlock()
	return h
}

func (b *Brain) SemWait(h kernel.SemHandle, timeoutMS uint32) bool {
	b.mu.Lock()
	s := b.sems[h]
	b.mu.Unlock()
	if s == nil {
		return false
	}
	t := b.current()
	t.gate()
	return b.blockOn(t, s.tok, timeoutMS)
}

func (b *Brain) SemPost(h kernel.SemHandle) bool {
	b.mu.Lock()
	s := b.sems[h]
	b.mu.Unlock()
	if s == nil {
		return false
	}
	select {
	case s.tok <- struct{}{}:
		return true
	default:
		return false // at max count
	}
}

func (b *Brain) SemDelete(h kernel.SemHandle) {
	b.mu.Lock()
	delete(b.sems, h)
	b.mu.Unlock()
}

// blockOn receives one token with the task marked Blocked for the duration.
func (b *Brain) blockOn(t *simTask, tok chan struct{}, timeoutMS uint32) bool {
	// Fast path: token already available.
	select {
	case <-tok:
		return true
	default:
	}
	if timeoutMS == 0 {
		return false
	}
	t.setState(kernel.RawTaskBlocked)
	defer t.setState(kernel.RawTaskRunning)

	var deadline <-chan time.Time
	if timeoutMS != kernel.TimeoutMax {
		tm := b.clk.Timer(time.Duration(timeoutMS) * time.Millisecond)
		defer tm.Stop()
		deadline = tm.C
	}
	for {
		select {
		case <-tok:
			return true
		case <-t.wake:
			// Deletion reaches a blocked waiter through its wake signal.
			t.gate()
		case <-deadline:
			return false
		}
	}
}

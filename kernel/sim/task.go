package sim

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"brainrtos-go/kernel"
)

type simTask struct {
	h     kernel.TaskHandle
	name  string
	stack uint16
	prio  uint32

	done  chan struct{}
	state atomic.Uint32

	notes atomic.Uint32
	wake  chan struct{}

	killed atomic.Bool

	sm        sync.Mutex
	scond     *sync.Cond
	suspended bool
}

func newSimTask(name string, stack uint16, prio uint32) *simTask {
	t := &simTask{
		name:  name,
		stack: stack,
		prio:  prio,
		done:  make(chan struct{}),
		wake:  make(chan struct{}, 1),
	}
	t.scond = sync.NewCond(&t.sm)
	t.state.Store(kernel.RawTaskReady)
	return t
}

func (t *simTask) setState(s uint32) {
	// A suspended or finished task keeps its terminal state.
	if cur := t.state.Load(); cur == kernel.RawTaskDeleted {
		return
	}
	t.state.Store(s)
}

// gate is the cooperative scheduling point: it parks while suspended and
// exits the goroutine once the task has been deleted.
func (t *simTask) gate() {
	if t.killed.Load() {
		runtime.Goexit()
	}
	t.sm.Lock()
	for t.suspended {
		t.state.Store(kernel.RawTaskSuspended)
		t.scond.Wait()
	}
	t.sm.Unlock()
	if t.killed.Load() {
		runtime.Goexit()
	}
	t.setState(kernel.RawTaskRunning)
}

// goid parses the current goroutine id out of the stack header. The sim keys
// its task registry on it; there is no goroutine-local storage to use instead.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		id, _ := strconv.ParseInt(string(s[:i]), 10, 64)
		return id
	}
	return 0
}

// current returns the calling goroutine's task, adopting goroutines the sim
// did not spawn (the test or host main) as implicit always-running tasks.
func (b *Brain) current() *simTask {
	gid := goid()
	b.mu.Lock()
	defer b.mu.Unlock()
	if t := b.byGoid[gid]; t != nil {
		return t
	}
	t := newSimTask("host", 0, 0)
	t.state.Store(kernel.RawTaskRunning)
	b.nextTask++
	t.h = kernel.TaskHandle(b.nextTask)
	b.tasks[t.h] = t
	b.byGoid[gid] = t
	return t
}

func (b *Brain) taskFor(h kernel.TaskHandle) *simTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks[h]
}

func (b *Brain) TaskCreate(fn func(), name string, stackSize uint16, priority uint32) kernel.TaskHandle {
	if fn == nil {
		return kernel.NilHandle
	}
	t := newSimTask(name, stackSize, priority)
	b.mu.Lock()
	b.nextTask++
	t.h = kernel.TaskHandle(b.nextTask)
	b.tasks[t.h] = t
	b.mu.Unlock()
	b.log.Debug("task created",
		zap.String("name", name),
		zap.Uint32("handle", uint32(t.h)),
		zap.Uint32("priority", priority))

	go func() {
		gid := goid()
		b.mu.Lock()
		b.byGoid[gid] = t
		b.mu.Unlock()
		defer func() {
			b.mu.Lock()
			delete(b.byGoid, gid)
			b.mu.Unlock()
			t.state.Store(kernel.RawTaskDeleted)
			close(t.done)
			b.log.Debug("task finished", zap.String("name", t.name))
		}()
		t.state.Store(kernel.RawTaskRunning)
		fn()
	}()
	return t.h
}

func (b *Brain) TaskDelay(ms uint32) {
	t := b.current()
	t.gate()
	b.delays.Add(1)
	t.setState(kernel.RawTaskBlocked)
	b.clk.Sleep(time.Duration(ms) * time.Millisecond)
	t.gate()
}

func (b *Brain) TaskJoin(h kernel.TaskHandle) {
	t := b.taskFor(h)
	if t == nil {
		return
	}
	cur := b.current()
	if t == cur {
		panic("sim: task joining itself would deadlock")
	}
	cur.gate()
	cur.setState(kernel.RawTaskBlocked)
	<-t.done
	cur.gate()
}

func (b *Brain) TaskSuspend(h kernel.TaskHandle) {
	t := b.taskFor(h)
	if t == nil {
		return
	}
	t.sm.Lock()
	t.suspended = true
	t.sm.Unlock()
}

func (b *Brain) TaskResume(h kernel.TaskHandle) {
	t := b.taskFor(h)
	if t == nil {
		return
	}
	t.sm.Lock()
	if t.suspended {
		t.suspended = false
		t.setState(kernel.RawTaskReady)
		t.scond.Broadcast()
	}
	t.sm.Unlock()
}

func (b *Brain) TaskDelete(h kernel.TaskHandle) {
	t := b.taskFor(h)
	if t == nil {
		return
	}
	t.killed.Store(true)
	// Unpark it so a suspended or notify-blocked task can reach its exit.
	t.sm.Lock()
	t.suspended = false
	t.scond.Broadcast()
	t.sm.Unlock()
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (b *Brain) TaskGetState(h kernel.TaskHandle) uint32 {
	t := b.taskFor(h)
	if t == nil {
		return kernel.RawTaskInvalid
	}
	return t.state.Load()
}

func (b *Brain) TaskGetName(h kernel.TaskHandle) string {
	t := b.taskFor(h)
	if t == nil {
		return ""
	}
	return t.name
}

func (b *Brain) TaskCurrent() kernel.TaskHandle {
	return b.current().h
}

func (b *Brain) TaskNotify(h kernel.TaskHandle) {
	t := b.taskFor(h)
	if t == nil {
		return
	}
	t.notes.Add(1)
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (b *Brain) TaskNotifyTake(clear bool, timeoutMS uint32) uint32 {
	t := b.current()
	t.gate()
	b.notifyTakes.Add(1)

	take := func() (uint32, bool) {
		for {
			v := t.notes.Load()
			if v == 0 {
				return 0, false
			}
			next := uint32(0)
			if !clear {
				next = v - 1
			}
			if t.notes.CompareAndSwap(v, next) {
				return v, true
			}
		}
	}

	if v, ok := take(); ok {
		return v
	}
	if timeoutMS == 0 {
		return 0
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
		case <-t.wake:
			t.gate()
			if v, ok := take(); ok {
				return v
			}
		case <-deadline:
			return 0
		}
	}
}

// TaskMeta exposes the stack size and priority a task was created with.
// Test aid for the clamping contract.
func (b *Brain) TaskMeta(h kernel.TaskHandle) (stack uint16, prio uint32, ok bool) {
	t := b.taskFor(h)
	if t == nil {
		return 0, 0, false
	}
	return t.stack, t.prio, true
}

package rtos

import (
	"time"

	"brainrtos-go/kernel"
	"brainrtos-go/x/assertx"
	"brainrtos-go/x/mathx"
)

// Kernel limits for spawned tasks. Out-of-range requests are clamped, not
// rejected; the kernel's failure modes for invalid values are undefined.
const (
	StackDefaultSize uint16 = 0x2000
	StackMinimumSize uint16 = 0x200

	PriorityDefault uint32 = 8
	PriorityMin     uint32 = 1
	PriorityMax     uint32 = 16
)

// TaskState is a task's scheduling state as reported by the kernel.
type TaskState uint8

const (
	// Running tasks are actively using CPU time.
	Running TaskState = iota
	// Ready tasks can be scheduled at any time.
	Ready
	// Blocked tasks are delayed or waiting on a sync object or I/O.
	Blocked
	// Suspended tasks stay off the scheduler until resumed.
	Suspended
	// Finished tasks have returned from their closure; the handle is inert.
	Finished
	// Invalid handles do not refer to a known task.
	Invalid
)

func stateFromRaw(raw uint32) TaskState {
	switch raw {
	case kernel.RawTaskRunning:
		return Running
	case kernel.RawTaskReady:
		return Ready
	case kernel.RawTaskBlocked:
		return Blocked
	case kernel.RawTaskSuspended:
		return Suspended
	case kernel.RawTaskDeleted:
		return Finished
	case kernel.RawTaskInvalid:
		return Invalid
	}
	assertx.Failf("rtos: unknown task state %d", raw)
	return Invalid
}

// Task is a handle to one kernel-scheduled unit of execution.
type Task struct {
	h     kernel.TaskHandle
	name  string
	named bool
}

// Builder configures a task before spawning it.
type Builder struct {
	name     string
	stack    uint16
	priority uint32
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) StackSize(size uint16) *Builder {
	b.stack = size
	return b
}

func (b *Builder) Priority(p uint32) *Builder {
	b.priority = p
	return b
}

// Spawn hands fn to the kernel as a new task. The callable is owned by the
// kernel for the task's lifetime and invoked exactly once; if creation fails
// ownership stays here and a typed error is returned.
func (b *Builder) Spawn(fn func()) (*Task, error) {
	stack := b.stack
	if stack == 0 {
		stack = StackDefaultSize
	}
	stack = mathx.Max(stack, StackMinimumSize)
	prio := b.priority
	if prio == 0 {
		prio = PriorityDefault
	}
	prio = mathx.Clamp(prio, PriorityMin, PriorityMax)
	name := b.name
	if name == "" {
		name = " "
	}
	h := kernel.Active().TaskCreate(fn, name, stack, prio)
	if h == kernel.NilHandle {
		return nil, ErrKernelAlloc
	}
	return &Task{h: h}, nil
}

// Spawn starts fn with the default stack size and priority, panicking if the
// kernel cannot create the task.
func Spawn(fn func()) *Task {
	t, err := NewBuilder().Spawn(fn)
	if err != nil {
		panic("rtos: failed to spawn task: " + err.Error())
	}
	return t
}

// Current returns a handle to the calling task.
func Current() *Task {
	return &Task{h: kernel.Active().TaskCurrent()}
}

// Delay suspends the calling task for at least d.
func Delay(d time.Duration) {
	ms := uint64(d / time.Millisecond)
	if ms == 0 && d > 0 {
		ms = 1
	}
	kernel.Active().TaskDelay(uint32(ms))
}

// Join blocks until the target task's closure has returned. Joining the
// calling task is always a deadlock and is a programmer error.
func (t *Task) Join() {
	assertx.Assert(t.h != kernel.Active().TaskCurrent(), "task joining itself")
	kernel.Active().TaskJoin(t.h)
}

// Suspend parks the task until Resume. No effect on a finished task.
func (t *Task) Suspend() {
	kernel.Active().TaskSuspend(t.h)
}

// Resume makes a suspended task schedulable again. It does not force an
// immediate context switch.
func (t *Task) Resume() {
	kernel.Active().TaskResume(t.h)
}

// Delete forcibly removes the task without running its remaining cleanup.
// Last resort; prefer letting the closure return so captured state is
// released in order.
func (t *Task) Delete() {
	kernel.Active().TaskDelete(t.h)
}

// State reports the task's current scheduling state.
func (t *Task) State() TaskState {
	return stateFromRaw(kernel.Active().TaskGetState(t.h))
}

// Name returns the task's kernel name, fetched on first use.
func (t *Task) Name() string {
	if !t.named {
		t.name = kernel.Active().TaskGetName(t.h)
		t.named = true
	}
	return t.name
}

// Notify increments the task's notification value, waking a pending
// NextSleep notification wait.
func (t *Task) Notify() {
	kernel.Active().TaskNotify(t.h)
}

// Done is an Action that completes once the task has finished. It reports no
// wake bound of its own (Never); pair it with an arm that has one.
func (t *Task) Done() Action[struct{}] {
	return Cond(func() bool {
		s := t.State()
		return s == Finished || s == Invalid
	})
}

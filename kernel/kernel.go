// Package kernel declares the surface of the vendor real-time kernel this
// module is hosted inside: blocking mutex/semaphore/task primitives, the
// monotonic microsecond clock, and the raw per-device calls. On the target
// these are firmware entry points; on a host they are provided by kernel/sim.
package kernel

import "sync/atomic"

// Handles are opaque kernel object identifiers. Zero is never a live object.
type (
	MutexHandle uint32
	SemHandle   uint32
	TaskHandle  uint32
)

// NilHandle is returned by the kernel when object creation fails.
const NilHandle = 0

// TimeoutMax as a wait bound blocks indefinitely.
const TimeoutMax uint32 = 0xFFFFFFFF

// Raw task state codes as reported by TaskGetState.
const (
	RawTaskRunning uint32 = iota
	RawTaskReady
	RawTaskBlocked
	RawTaskSuspended
	RawTaskDeleted
	RawTaskInvalid
)

// Competition status bits as reported by CompetitionGetStatus.
const (
	CompAutonomous uint32 = 1 << 0
	CompDisabled   uint32 = 1 << 1
	CompConnected  uint32 = 1 << 2
)

// Lifecycle carries the four callbacks the kernel invokes as the competition
// state machine advances. Each is run on a fresh kernel task.
type Lifecycle struct {
	Setup      func()
	Disabled   func()
	Autonomous func()
	Opcontrol  func()
}

// RTOS is the scheduling and synchronisation surface of the kernel.
//
// All waits take a millisecond timeout; TimeoutMax blocks indefinitely.
// Boolean returns report whether the primitive was obtained before the
// timeout. Creation calls report failure with NilHandle.
type RTOS interface {
	MutexCreate() MutexHandle
	MutexTake(h MutexHandle, timeoutMS uint32) bool
	MutexGive(h MutexHandle) bool
	MutexDelete(h MutexHandle)

	SemCreate(max, initial uint32) SemHandle
	SemWait(h SemHandle, timeoutMS uint32) bool
	SemPost(h SemHandle) bool
	SemDelete(h SemHandle)

	// TaskCreate schedules fn as a new task. The callable is owned by the
	// kernel for the task's lifetime; on NilHandle ownership stays with the
	// caller.
	TaskCreate(fn func(), name string, stackSize uint16, priority uint32) TaskHandle
	TaskDelay(ms uint32)
	TaskJoin(h TaskHandle)
	TaskSuspend(h TaskHandle)
	TaskResume(h TaskHandle)
	TaskDelete(h TaskHandle)
	TaskGetState(h TaskHandle) uint32
	TaskGetName(h TaskHandle) string
	TaskCurrent() TaskHandle

	// TaskNotify increments the target task's notification value and wakes
	// it if it is blocked in TaskNotifyTake.
	TaskNotify(h TaskHandle)
	// TaskNotifyTake blocks the calling task until its notification value is
	// nonzero or the timeout elapses, returning the value observed. With
	// clear set the value is zeroed, otherwise decremented.
	TaskNotifyTake(clear bool, timeoutMS uint32) uint32

	// Micros is the monotonic microsecond clock, zero at kernel boot.
	Micros() uint64
}

// Kernel is the full host surface: scheduling, devices and the lifecycle
// callback registry.
type Kernel interface {
	RTOS
	Devices

	// SetLifecycle registers the competition callbacks. Called once at boot
	// before the state machine starts.
	SetLifecycle(cbs Lifecycle)
}

var active atomic.Pointer[Kernel]

// Install publishes the live kernel. It is called exactly once at process
// startup, before any task, port or device object is created; tests may
// reinstall between cases.
func Install(k Kernel) {
	active.Store(&k)
}

// Active returns the installed kernel and panics if Install has not run.
// The panic is a boot-order bug, not a runtime condition.
func Active() Kernel {
	p := active.Load()
	if p == nil {
		panic("kernel: no kernel installed")
	}
	return *p
}

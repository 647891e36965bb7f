package rtos

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpawnRunsAndJoins(t *testing.T) {
	install(t)
	var ran atomic.Bool
	tk := Spawn(func() { ran.Store(true) })
	tk.Join()
	require.True(t, ran.Load())
	require.Equal(t, Finished, tk.State())
}

func TestBuilderDefaultsAndClamping(t *testing.T) {
	b := install(t)

	for _, tc := range []struct {
		name      string
		build     func() (*Task, error)
		wantStack uint16
		wantPrio  uint32
	}{
		{
			name:      "defaults",
			build:     func() (*Task, error) { return NewBuilder().Spawn(func() {}) },
			wantStack: StackDefaultSize,
			wantPrio:  PriorityDefault,
		},
		{
			name: "stack below minimum",
			build: func() (*Task, error) {
				return NewBuilder().StackSize(0x10).Spawn(func() {})
			},
			wantStack: StackMinimumSize,
			wantPrio:  PriorityDefault,
		},
		{
			name: "priority above maximum",
			build: func() (*Task, error) {
				return NewBuilder().Priority(40).Spawn(func() {})
			},
			wantStack: StackDefaultSize,
			wantPrio:  PriorityMax,
		},
		{
			name: "explicit in-range values",
			build: func() (*Task, error) {
				return NewBuilder().Name("w").StackSize(0x4000).Priority(3).Spawn(func() {})
			},
			wantStack: 0x4000,
			wantPrio:  3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tk, err := tc.build()
			require.NoError(t, err)
			tk.Join()
			stack, prio, ok := b.TaskMeta(tk.h)
			require.True(t, ok)
			require.Equal(t, tc.wantStack, stack)
			require.Equal(t, tc.wantPrio, prio)
		})
	}
}

func TestBuilderName(t *testing.T) {
	install(t)
	tk, err := NewBuilder().Name("lift-control").Spawn(func() {})
	require.NoError(t, err)
	tk.Join()
	require.Equal(t, "lift-control", tk.Name())

	// Unnamed tasks get the placeholder name.
	tk2, err := NewBuilder().Spawn(func() {})
	require.NoError(t, err)
	tk2.Join()
	require.Equal(t, " ", tk2.Name())
}

func TestTaskSuspendResume(t *testing.T) {
	install(t)
	var ticks atomic.Int64
	stop := make(chan struct{})
	tk := Spawn(func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			Delay(time.Millisecond)
			ticks.Add(1)
		}
	})

	time.Sleep(20 * time.Millisecond)
	tk.Suspend()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, Suspended, tk.State())
	frozen := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, frozen, ticks.Load())

	tk.Resume()
	time.Sleep(30 * time.Millisecond)
	if ticks.Load() == frozen {
		t.Fatal("task did not resume")
	}
	close(stop)
	tk.Join()
}

func TestTaskDelete(t *testing.T) {
	install(t)
	tk := Spawn(func() {
		for {
			Delay(time.Millisecond)
		}
	})
	time.Sleep(10 * time.Millisecond)
	tk.Delete()
	tk.Join()
	require.Equal(t, Finished, tk.State())
}

func TestCurrentIsStable(t *testing.T) {
	install(t)
	require.Equal(t, Current().h, Current().h)
}

func TestTaskDoneAction(t *testing.T) {
	install(t)
	release := make(chan struct{})
	tk := Spawn(func() { <-release })

	_, done := tk.Done().Poll()
	require.False(t, done)

	close(release)
	tk.Join()
	_, done = tk.Done().Poll()
	require.True(t, done)
}

func TestNotifyWakesNotificationSleep(t *testing.T) {
	install(t)
	got := make(chan struct{})
	tk := Spawn(func() {
		Notification(0).Sleep()
		close(got)
	})
	time.Sleep(10 * time.Millisecond)
	tk.Notify()
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}
	tk.Join()
}

func TestDelaySleepsAtLeast(t *testing.T) {
	install(t)
	start := time.Now()
	Delay(20 * time.Millisecond)
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("delay too short: %v", time.Since(start))
	}
}

package rtos

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"brainrtos-go/kernel"
	"brainrtos-go/kernel/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// install wires a fresh simulated brain in as the active kernel and returns
// it for state assertions.
func install(t *testing.T) *sim.Brain {
	t.Helper()
	b := sim.New()
	kernel.Install(b)
	return b
}

func TestMutexLockUnlock(t *testing.T) {
	install(t)
	m, err := NewMutex(10)
	require.NoError(t, err)
	defer m.Close()

	g := m.Lock()
	*g.Value() = 11
	g.Unlock()

	g = m.Lock()
	require.Equal(t, 11, *g.Value())
	g.Unlock()
}

func TestMutexGuardAfterUnlock(t *testing.T) {
	install(t)
	m, err := NewMutex(0)
	require.NoError(t, err)
	defer m.Close()

	g := m.Lock()
	g.Unlock()
	// Idempotent: the second unlock must not release someone else's hold.
	g.Unlock()

	require.Panics(t, func() { g.Value() })

	// The double unlock must not have freed an extra count: a fresh lock
	// still serializes.
	g2 := m.Lock()
	_, ok := m.LockTimeout(10 * time.Millisecond)
	require.False(t, ok)
	g2.Unlock()
}

func TestMutexLockTimeout(t *testing.T) {
	install(t)
	m, err := NewMutex(struct{}{})
	require.NoError(t, err)
	defer m.Close()

	g := m.Lock()
	start := time.Now()
	_, ok := m.LockTimeout(30 * time.Millisecond)
	require.False(t, ok)
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("timed-out lock returned too early: %v", time.Since(start))
	}
	g.Unlock()

	g2, ok := m.LockTimeout(30 * time.Millisecond)
	require.True(t, ok)
	g2.Unlock()
}

func TestMutexSerializesTasks(t *testing.T) {
	install(t)
	m, err := NewMutex(0)
	require.NoError(t, err)
	defer m.Close()

	const workers = 4
	const rounds = 50
	tasks := make([]*Task, 0, workers)
	for i := 0; i < workers; i++ {
		tasks = append(tasks, Spawn(func() {
			for j := 0; j < rounds; j++ {
				g := m.Lock()
				*g.Value()++
				g.Unlock()
			}
		}))
	}
	for _, tk := range tasks {
		tk.Join()
	}

	g := m.Lock()
	require.Equal(t, workers*rounds, *g.Value())
	g.Unlock()
}

func TestSemaphoreCounting(t *testing.T) {
	install(t)
	s, err := NewSemaphore(2, 2)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.TryWait())
	require.True(t, s.TryWait())
	require.False(t, s.TryWait())

	require.NoError(t, s.Post())
	require.NoError(t, s.Post())
	require.ErrorIs(t, s.Post(), ErrSemaphoreFull)
}

func TestSemaphoreWaitTimeout(t *testing.T) {
	install(t)
	s, err := NewSemaphore(1, 0)
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	require.False(t, s.WaitTimeout(30*time.Millisecond))
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("timed-out wait returned too early: %v", time.Since(start))
	}

	require.NoError(t, s.Post())
	require.True(t, s.WaitTimeout(time.Second))
}

func TestSemaphoreCreateRejected(t *testing.T) {
	install(t)
	_, err := NewSemaphore(0, 0)
	require.ErrorIs(t, err, ErrKernelAlloc)
	_, err = NewSemaphore(1, 2)
	require.ErrorIs(t, err, ErrKernelAlloc)
}

func TestSemaphoreHandoffBetweenTasks(t *testing.T) {
	install(t)
	s, err := NewSemaphore(1, 0)
	require.NoError(t, err)
	defer s.Close()

	tk := Spawn(func() {
		Delay(10 * time.Millisecond)
		_ = s.Post()
	})
	s.Wait()
	tk.Join()
}

func TestOnceCellPublishesExactlyOnce(t *testing.T) {
	install(t)
	var cell OnceCell[int]
	require.False(t, cell.Done())
	_, ok := cell.TryGet()
	require.False(t, ok)

	const claimants = 8
	var runs atomic.Int64
	tasks := make([]*Task, 0, claimants)
	for i := 0; i < claimants; i++ {
		v := i + 1
		tasks = append(tasks, Spawn(func() {
			cell.CallOnce(func() int {
				runs.Add(1)
				return v
			})
		}))
	}
	for _, tk := range tasks {
		tk.Join()
	}

	require.Equal(t, int64(1), runs.Load())
	first, ok := cell.TryGet()
	require.True(t, ok)
	require.Equal(t, first, cell.Wait())

	// A late claimant is a no-op.
	cell.CallOnce(func() int { runs.Add(1); return -1 })
	require.Equal(t, int64(1), runs.Load())
	require.Equal(t, first, cell.Wait())
}

func TestOnceCellWaitBlocksUntilPublished(t *testing.T) {
	install(t)
	var cell OnceCell[string]
	tk := Spawn(func() {
		Delay(20 * time.Millisecond)
		cell.CallOnce(func() string { return "root" })
	})
	require.Equal(t, "root", cell.Wait())
	tk.Join()
}

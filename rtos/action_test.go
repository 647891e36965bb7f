package rtos

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectPeriodicTickUntilCondition(t *testing.T) {
	install(t)

	var stop atomic.Bool
	tk := Spawn(func() {
		Delay(25 * time.Millisecond)
		stop.Store(true)
	})

	tick := NewInterval(10 * time.Millisecond)
	ticks := 0
	running := true
	for running {
		Select(
			When(tick.Action(), func(struct{}) { ticks++ }),
			When(Cond(stop.Load), func(struct{}) { running = false }),
		)
	}
	tk.Join()

	// Roughly 25ms of 10ms ticks; wide bounds absorb scheduler jitter.
	if ticks < 1 || ticks > 5 {
		t.Fatalf("tick count %d outside expected range", ticks)
	}
}

func TestSelectAllNeverFallsThrough(t *testing.T) {
	b := install(t)

	before := b.DelayCount()
	done := Select(
		When(Cond(func() bool { return false }), func(struct{}) {}),
		When(Cond(func() bool { return false }), func(struct{}) {}),
	)
	require.False(t, done)
	// The fall-through path must not have slept.
	require.Equal(t, before, b.DelayCount())
	require.Zero(t, b.NotifyTakeCount())

	ran := false
	SelectDefault(func() { ran = true },
		When(Cond(func() bool { return false }), func(struct{}) {}),
	)
	require.True(t, ran)
}

func TestSelectDefaultSkippedWhenArmCompletes(t *testing.T) {
	install(t)
	ran := false
	fired := false
	SelectDefault(func() { ran = true },
		When(Cond(func() bool { return true }), func(struct{}) { fired = true }),
	)
	require.True(t, fired)
	require.False(t, ran)
}

func TestSelectOrderBreaksTies(t *testing.T) {
	install(t)
	var winner string
	Select(
		When(Cond(func() bool { return true }), func(struct{}) { winner = "first" }),
		When(Cond(func() bool { return true }), func(struct{}) { winner = "second" }),
	)
	require.Equal(t, "first", winner)
}

// notifyAction completes once its flag is set and asks to sleep on the task
// notification value, the cheap wait path.
type notifyAction struct {
	flag *atomic.Bool
}

func (n notifyAction) Poll() (struct{}, bool) { return struct{}{}, n.flag.Load() }
func (n notifyAction) Next() NextSleep        { return Notification(0) }

func TestSelectNotificationPath(t *testing.T) {
	b := install(t)

	var flag atomic.Bool
	me := Current()
	before := b.DelayCount()
	tk := Spawn(func() {
		// Plain sleep so the helper does not touch the delay counter
		// asserted below.
		time.Sleep(15 * time.Millisecond)
		flag.Store(true)
		me.Notify()
	})
	ok := Select(When(notifyAction{&flag}, func(struct{}) {}))
	require.True(t, ok)
	tk.Join()

	// The wait went through the notification take, not a timed delay.
	require.Equal(t, before, b.DelayCount())
	require.NotZero(t, b.NotifyTakeCount())
}

func TestSelectMergesTimestampIntoNotificationBound(t *testing.T) {
	install(t)

	// An always-false notification arm plus a timer arm: the select must
	// still wake on the timer.
	var never atomic.Bool
	start := time.Now()
	ok := Select(
		When(notifyAction{&never}, func(struct{}) {}),
		When(After(30*time.Millisecond), func(struct{}) {}),
	)
	require.True(t, ok)
	if e := time.Since(start); e < 20*time.Millisecond || e > 500*time.Millisecond {
		t.Fatalf("select woke at %v, want about 30ms", e)
	}
}

func TestAfterCompletes(t *testing.T) {
	install(t)
	a := After(20 * time.Millisecond)
	_, done := a.Poll()
	require.False(t, done)

	start := time.Now()
	require.True(t, Select(When(a, func(struct{}) {})))
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("timer fired early after %v", time.Since(start))
	}
	_, done = a.Poll()
	require.True(t, done)
}

func TestMergeHints(t *testing.T) {
	never := Arm{poll: func() bool { return false }, next: Never}
	stamp := func(d time.Duration) Arm {
		return Arm{poll: func() bool { return false }, next: func() NextSleep { return Timestamp(d) }}
	}
	notify := func(d time.Duration) Arm {
		return Arm{poll: func() bool { return false }, next: func() NextSleep { return Notification(d) }}
	}

	_, ok := mergeHints([]Arm{never, never})
	require.False(t, ok)

	h, ok := mergeHints([]Arm{stamp(30 * time.Millisecond), stamp(10 * time.Millisecond), never})
	require.True(t, ok)
	require.Equal(t, Timestamp(10*time.Millisecond), h)

	// A notification arm converts the whole wait, bounded by the tightest
	// timer so either wake reason resumes the loop.
	h, ok = mergeHints([]Arm{notify(0), stamp(10 * time.Millisecond)})
	require.True(t, ok)
	require.Equal(t, Notification(10*time.Millisecond), h)

	h, ok = mergeHints([]Arm{notify(5 * time.Millisecond), notify(50 * time.Millisecond)})
	require.True(t, ok)
	require.Equal(t, Notification(5*time.Millisecond), h)

	// A due deadline wins outright: folding zero into the notification
	// bound would turn "re-poll now" into "wait forever".
	h, ok = mergeHints([]Arm{notify(0), stamp(0)})
	require.True(t, ok)
	require.Equal(t, Timestamp(0), h)

	h, ok = mergeHints([]Arm{notify(50 * time.Millisecond), stamp(0)})
	require.True(t, ok)
	require.Equal(t, Timestamp(0), h)
}

// dueAction misses one poll and reports a zero-duration deadline, the shape
// any deadline arm takes when its instant arrives between poll and next.
type dueAction struct {
	polls *int
}

func (d dueAction) Poll() (struct{}, bool) {
	*d.polls++
	return struct{}{}, *d.polls > 1
}
func (d dueAction) Next() NextSleep { return Timestamp(0) }

func TestSelectDueDeadlineBesideNotificationArm(t *testing.T) {
	install(t)

	var never atomic.Bool
	polls := 0
	done := make(chan bool, 1)
	tk := Spawn(func() {
		done <- Select(
			When(dueAction{&polls}, func(struct{}) {}),
			When(notifyAction{&never}, func(struct{}) {}),
		)
	})
	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatalf("select never re-polled a due arm, polls=%d", polls)
	}
	tk.Join()
	require.Equal(t, 2, polls)
}

func TestTimestampFloorsNegative(t *testing.T) {
	require.Equal(t, Timestamp(0), Timestamp(-time.Second))
}

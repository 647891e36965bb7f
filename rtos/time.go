package rtos

import (
	"time"

	"brainrtos-go/kernel"
)

// Instant is a sample of the kernel's monotonic clock, microseconds since
// boot. It marks points in the program's execution, not wall time.
type Instant uint64

// Now samples the kernel clock.
func Now() Instant {
	return Instant(kernel.Active().Micros())
}

// Micros returns the raw microsecond value.
func (i Instant) Micros() uint64 { return uint64(i) }

// Add offsets the instant forward by d.
func (i Instant) Add(d time.Duration) Instant {
	return i + Instant(d/time.Microsecond)
}

// Before reports whether i precedes o.
func (i Instant) Before(o Instant) bool { return i < o }

// Sub returns i - o, or zero when o is later.
func (i Instant) Sub(o Instant) time.Duration {
	if o > i {
		return 0
	}
	return time.Duration(i-o) * time.Microsecond
}

// Until returns the time from now to i, or zero when i has passed.
func (i Instant) Until() time.Duration {
	return i.Sub(Now())
}

// Elapsed returns how long ago the instant was sampled.
func (i Instant) Elapsed() time.Duration {
	return Now().Sub(i)
}

// Interval tracks a periodic deadline without accumulating drift: each
// period is measured from the previous deadline, not from wakeup.
type Interval struct {
	period time.Duration
	last   Instant
}

// NewInterval starts a periodic deadline of the given period, counted from
// now.
func NewInterval(period time.Duration) *Interval {
	return &Interval{period: period, last: Now()}
}

// Delay sleeps until the next deadline. When the deadline has already
// passed it advances without sleeping, letting a late caller catch up.
func (iv *Interval) Delay() {
	next := iv.last.Add(iv.period)
	if d := next.Until(); d > 0 {
		Delay(d)
	}
	iv.last = next
}

// Action exposes the interval as a select arm. Poll completes when the
// deadline has arrived and schedules the next one; Next reports exactly the
// remaining time, so a select blocks instead of spinning.
func (iv *Interval) Action() Action[struct{}] {
	return intervalAction{iv}
}

type intervalAction struct {
	iv *Interval
}

func (a intervalAction) Poll() (struct{}, bool) {
	next := a.iv.last.Add(a.iv.period)
	if next.Until() > 0 {
		return struct{}{}, false
	}
	a.iv.last = next
	return struct{}{}, true
}

func (a intervalAction) Next() NextSleep {
	return Timestamp(a.iv.last.Add(a.iv.period).Until())
}

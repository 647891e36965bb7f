package rtos

import (
	"time"

	"brainrtos-go/kernel"
)

// Action is anything pollable for completion that can report when re-polling
// is next worthwhile. It is a transient capability, built fresh per wait,
// never stored.
type Action[T any] interface {
	// Poll is a non-blocking completion check.
	Poll() (T, bool)
	// Next reports the earliest point at which re-polling could succeed.
	// Only meaningful while incomplete.
	Next() NextSleep
}

type sleepKind uint8

const (
	sleepNever sleepKind = iota
	sleepNotification
	sleepTimestamp
)

// NextSleep is an incomplete Action's earliest-wake hint.
type NextSleep struct {
	kind    sleepKind
	timeout time.Duration
}

// Never means the action has no wake bound of its own. An arm reporting it
// relies on some other arm in the same select to provide one.
func Never() NextSleep { return NextSleep{kind: sleepNever} }

// Notification asks to block until the task is notified. A timeout <= 0
// waits indefinitely.
func Notification(timeout time.Duration) NextSleep {
	return NextSleep{kind: sleepNotification, timeout: timeout}
}

// Timestamp asks to sleep for d and then re-poll.
func Timestamp(d time.Duration) NextSleep {
	if d < 0 {
		d = 0
	}
	return NextSleep{kind: sleepTimestamp, timeout: d}
}

// Sleep performs the wait this hint describes.
func (n NextSleep) Sleep() {
	switch n.kind {
	case sleepNotification:
		ms := kernel.TimeoutMax
		if n.timeout > 0 {
			ms = timeoutMS(n.timeout)
		}
		kernel.Active().TaskNotifyTake(true, ms)
	case sleepTimestamp:
		Delay(n.timeout)
	}
}

// Arm is one erased (action, consequence) pair of a select.
type Arm struct {
	poll func() bool
	next func() NextSleep
}

// When binds an action to the expression run with its value on completion.
func When[T any](a Action[T], fn func(T)) Arm {
	return Arm{
		poll: func() bool {
			v, ok := a.Poll()
			if !ok {
				return false
			}
			fn(v)
			return true
		},
		next: a.Next,
	}
}

// Select blocks until one arm completes, runs that arm's consequence, and
// reports true. Arms are polled in declaration order and ties go to the
// earliest arm, never to the most urgent. When every arm reports Never and
// none has completed it returns false instead of sleeping forever.
//
// The wait is confined to the calling task: no work is spawned, so Select
// composes with the caller's existing priority and stack budget.
func Select(arms ...Arm) bool {
	for {
		for i := range arms {
			if arms[i].poll() {
				return true
			}
		}
		sleep, ok := mergeHints(arms)
		if !ok {
			return false
		}
		sleep.Sleep()
	}
}

// SelectDefault is Select with a default arm, run when every action arm
// reports Never with none complete. The default case performs no blocking.
func SelectDefault(def func(), arms ...Arm) {
	if !Select(arms...) {
		def()
	}
}

// mergeHints folds the incomplete arms' hints into one wait: the tightest
// Timestamp wins; if any arm wants a Notification the wait becomes a
// notification take bounded by the tightest finite deadline, so either wake
// reason resumes the loop. All-Never yields no wait at all.
func mergeHints(arms []Arm) (NextSleep, bool) {
	var (
		haveStamp  bool
		minStamp   time.Duration
		haveNotify bool
		notifyCap  time.Duration // 0 = unbounded
	)
	for i := range arms {
		switch h := arms[i].next(); h.kind {
		case sleepTimestamp:
			if !haveStamp || h.timeout < minStamp {
				haveStamp = true
				minStamp = h.timeout
			}
		case sleepNotification:
			if !haveNotify {
				haveNotify = true
				notifyCap = h.timeout
			} else if h.timeout > 0 && (notifyCap <= 0 || h.timeout < notifyCap) {
				notifyCap = h.timeout
			}
		}
	}
	switch {
	case haveStamp && minStamp == 0:
		// An arm is due right now: re-poll immediately. A zero bound must
		// never reach the notification path, where zero waits forever.
		return Timestamp(0), true
	case haveNotify:
		bound := notifyCap
		if haveStamp && (bound <= 0 || minStamp < bound) {
			bound = minStamp
		}
		return Notification(bound), true
	case haveStamp:
		return Timestamp(minStamp), true
	default:
		return NextSleep{}, false
	}
}

// Cond is the degenerate pure-condition action: pred checked on every poll,
// no wake bound of its own. Using it obliges some other arm in the select to
// report a real bound.
func Cond(pred func() bool) Action[struct{}] {
	return condAction(pred)
}

type condAction func() bool

func (c condAction) Poll() (struct{}, bool) { return struct{}{}, c() }
func (c condAction) Next() NextSleep        { return Never() }

// After is a one-shot timer action counted from its creation.
func After(d time.Duration) Action[struct{}] {
	return timerAction{deadline: Now().Add(d)}
}

type timerAction struct {
	deadline Instant
}

func (t timerAction) Poll() (struct{}, bool) { return struct{}{}, t.deadline.Until() == 0 }
func (t timerAction) Next() NextSleep        { return Timestamp(t.deadline.Until()) }

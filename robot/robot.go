// Package robot wires application code to the kernel's competition
// lifecycle. The application root is built once on a spawned init task and
// published through a OnceCell; the disabled/autonomous/opcontrol callbacks
// wait on that cell, so a slow setup delays them instead of racing them.
package robot

import (
	"time"

	"brainrtos-go/kernel"
	"brainrtos-go/rtos"
)

// Robot is the application root. One value lives for the whole program; the
// kernel re-enters the mode methods each time the competition switch moves.
type Robot interface {
	Disabled()
	Autonomous()
	Opcontrol()
}

// Run installs the kernel, registers the lifecycle callbacks and arranges
// for build to run exactly once on its own task. It returns immediately;
// everything after happens on kernel-invoked tasks.
func Run(k kernel.Kernel, build func() Robot) {
	kernel.Install(k)
	root := &rtos.OnceCell[Robot]{}
	k.SetLifecycle(kernel.Lifecycle{
		Setup: func() {
			rtos.Spawn(func() {
				root.CallOnce(build)
			})
		},
		Disabled:   func() { root.Wait().Disabled() },
		Autonomous: func() { root.Wait().Autonomous() },
		Opcontrol:  func() { root.Wait().Opcontrol() },
	})
}

// Mode is the competition state as seen by the radio.
type Mode uint8

const (
	ModeDisabled Mode = iota
	ModeAutonomous
	ModeOpcontrol
)

func (m Mode) String() string {
	switch m {
	case ModeAutonomous:
		return "autonomous"
	case ModeOpcontrol:
		return "opcontrol"
	}
	return "disabled"
}

// CurrentMode reads the competition switch.
func CurrentMode() Mode {
	status := kernel.Active().CompetitionGetStatus()
	switch {
	case status&kernel.CompDisabled != 0:
		return ModeDisabled
	case status&kernel.CompAutonomous != 0:
		return ModeAutonomous
	default:
		return ModeOpcontrol
	}
}

// Connected reports whether a field controller or competition switch is
// attached.
func Connected() bool {
	return kernel.Active().CompetitionGetStatus()&kernel.CompConnected != 0
}

// modePollPeriod bounds how stale a ModeChanged arm can be. The radio
// updates at roughly this rate anyway.
const modePollPeriod = 10 * time.Millisecond

// ModeChanged is an Action completing with the new mode once the switch
// leaves from. Mode loops select on it to exit when the field moves the
// match along.
func ModeChanged(from Mode) rtos.Action[Mode] {
	return modeChanged{from: from}
}

type modeChanged struct {
	from Mode
}

func (m modeChanged) Poll() (Mode, bool) {
	cur := CurrentMode()
	if cur == m.from {
		return cur, false
	}
	return cur, true
}

func (m modeChanged) Next() rtos.NextSleep {
	return rtos.Timestamp(modePollPeriod)
}

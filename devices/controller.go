package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/x/assertx"
)

// ControllerID selects the master or partner handset. Controllers are not
// smart-port devices, so no arena token is involved; the two handles are
// freely constructible.
type ControllerID int32

const (
	Master  ControllerID = 0
	Partner ControllerID = 1
)

// Channel is one analog stick axis.
type Channel int32

const (
	LeftX Channel = iota
	LeftY
	RightX
	RightY
)

// Button is one digital input on the handset.
type Button int32

const (
	ButtonL1 Button = iota
	ButtonL2
	ButtonR1
	ButtonR2
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonX
	ButtonB
	ButtonY
	ButtonA
)

// Controller reads the competition handset.
type Controller struct {
	id ControllerID
}

// NewController returns the handle for one handset.
func NewController(id ControllerID) *Controller {
	assertx.Assert(id == Master || id == Partner, "controller id out of range")
	return &Controller{id: id}
}

// Analog reads one stick axis, -127..127. A disconnected handset reads zero.
func (c *Controller) Analog(ch Channel) (int8, error) {
	assertx.Assert(ch >= LeftX && ch <= RightY, "controller channel out of range")
	v, st := kernel.Active().ControllerGetAnalog(int32(c.id), int32(ch))
	if v == kernel.ErrValue {
		return 0, errcode.New(errcode.Generic, st, "controller.analog", 0)
	}
	return int8(v), nil
}

// Digital reads one button.
func (c *Controller) Digital(b Button) (bool, error) {
	assertx.Assert(b >= ButtonL1 && b <= ButtonA, "controller button out of range")
	v, st := kernel.Active().ControllerGetDigital(int32(c.id), int32(b))
	if v == kernel.ErrValue {
		return false, errcode.New(errcode.Generic, st, "controller.digital", 0)
	}
	return v != 0, nil
}

package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
	"brainrtos-go/x/assertx"
	"brainrtos-go/x/mathx"
)

// Gearset is a motor's installed gear cartridge; it bounds velocity.
type Gearset int32

const (
	// GearsetRed is the 100 rpm torque cartridge.
	GearsetRed Gearset = iota
	// GearsetGreen is the 200 rpm cartridge, the factory default.
	GearsetGreen
	// GearsetBlue is the 600 rpm speed cartridge.
	GearsetBlue
)

func (g Gearset) maxRPM() int32 {
	switch g {
	case GearsetRed:
		return 100
	case GearsetBlue:
		return 600
	}
	return 200
}

// BrakeMode is what the motor does at zero command.
type BrakeMode int32

const (
	BrakeCoast BrakeMode = iota
	BrakeBrake
	BrakeHold
)

// EncoderUnits selects the position-reporting unit.
type EncoderUnits int32

const (
	UnitsDegrees EncoderUnits = iota
	UnitsRotations
	UnitsCounts
)

// Motor drives one smart-port motor.
type Motor struct {
	port    uint8
	gearset Gearset
}

// NewMotor consumes the port token and configures the motor. On failure the
// classified error is returned and the port stays consumed.
func NewMotor(p ports.Port, reversed bool, gearset Gearset, units EncoderUnits) (*Motor, error) {
	m := &Motor{port: p.Index(), gearset: gearset}
	if err := m.SetBrakeMode(BrakeCoast); err != nil {
		return nil, err
	}
	if err := m.SetReversed(reversed); err != nil {
		return nil, err
	}
	if v, st := kernel.Active().MotorSetGearing(m.port, int32(gearset)); v == kernel.ErrValue {
		return nil, errcode.New(errcode.Motor, st, "motor.set_gearing", int(m.port))
	}
	if v, st := kernel.Active().MotorSetEncoderUnits(m.port, int32(units)); v == kernel.ErrValue {
		return nil, errcode.New(errcode.Motor, st, "motor.set_encoder_units", int(m.port))
	}
	return m, nil
}

// NewMotorDefault is NewMotor with the factory defaults: not reversed, green
// cartridge, degree units.
func NewMotorDefault(p ports.Port) (*Motor, error) {
	return NewMotor(p, false, GearsetGreen, UnitsDegrees)
}

// Port returns the smart port the motor occupies.
func (m *Motor) Port() uint8 { return m.port }

// Move commands an open-loop voltage, -127..127.
func (m *Motor) Move(voltage int8) error {
	if v, st := kernel.Active().MotorMove(m.port, int32(voltage)); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.move", int(m.port))
	}
	return nil
}

// MoveVelocity commands a closed-loop velocity in rpm, clamped to the
// cartridge's range.
func (m *Motor) MoveVelocity(rpm int32) error {
	limit := m.gearset.maxRPM()
	assertx.Assert(mathx.Between(rpm, -limit, limit), "motor velocity outside gearset range")
	rpm = mathx.Clamp(rpm, -limit, limit)
	if v, st := kernel.Active().MotorMoveVelocity(m.port, rpm); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.move_velocity", int(m.port))
	}
	return nil
}

// MoveAbsolute runs profiled motion to an absolute encoder position.
// Velocity must be positive.
func (m *Motor) MoveAbsolute(position float64, rpm int32) error {
	assertx.Assert(rpm > 0, "motor profiled move needs positive velocity")
	if v, st := kernel.Active().MotorMoveAbsolute(m.port, position, rpm); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.move_absolute", int(m.port))
	}
	return nil
}

// Stop commands zero velocity, engaging the configured brake mode.
func (m *Motor) Stop() error {
	return m.MoveVelocity(0)
}

// Position reads the encoder in the configured units.
func (m *Motor) Position() (float64, error) {
	v, st := kernel.Active().MotorGetPosition(m.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.Motor, st, "motor.position", int(m.port))
	}
	return v, nil
}

// Velocity reads the measured velocity in rpm.
func (m *Motor) Velocity() (float64, error) {
	v, st := kernel.Active().MotorGetActualVelocity(m.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.Motor, st, "motor.velocity", int(m.port))
	}
	return v, nil
}

// SetBrakeMode configures the zero-command behaviour.
func (m *Motor) SetBrakeMode(mode BrakeMode) error {
	if v, st := kernel.Active().MotorSetBrakeMode(m.port, int32(mode)); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.set_brake_mode", int(m.port))
	}
	return nil
}

// SetReversed flips the motor's positive direction.
func (m *Motor) SetReversed(reversed bool) error {
	raw := int32(0)
	if reversed {
		raw = 1
	}
	if v, st := kernel.Active().MotorSetReversed(m.port, raw); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.set_reversed", int(m.port))
	}
	return nil
}

// TarePosition zeroes the encoder at the current position.
func (m *Motor) TarePosition() error {
	if v, st := kernel.Active().MotorTarePosition(m.port); v == kernel.ErrValue {
		return errcode.New(errcode.Motor, st, "motor.tare_position", int(m.port))
	}
	return nil
}

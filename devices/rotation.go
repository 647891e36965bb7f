package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// RotationSensor measures absolute shaft angle in centidegrees.
type RotationSensor struct {
	port uint8
}

// NewRotationSensor consumes the port token and applies the counting
// direction. The port stays consumed on failure.
func NewRotationSensor(p ports.Port, direction Direction) (*RotationSensor, error) {
	r := &RotationSensor{port: p.Index()}
	raw := int32(0)
	if direction == Reverse {
		raw = 1
	}
	if v, st := kernel.Active().RotationSetReversed(r.port, raw); v == kernel.ErrValue {
		return nil, errcode.New(errcode.Rotation, st, "rotation.set_reversed", int(r.port))
	}
	return r, nil
}

// Port returns the smart port the sensor occupies.
func (r *RotationSensor) Port() uint8 { return r.port }

// Position reads the accumulated angle in centidegrees.
func (r *RotationSensor) Position() (int32, error) {
	v, st := kernel.Active().RotationGetPosition(r.port)
	if v == kernel.ErrValue {
		return 0, errcode.New(errcode.Rotation, st, "rotation.position", int(r.port))
	}
	return v, nil
}

// Velocity reads the angular velocity in centidegrees per second.
func (r *RotationSensor) Velocity() (int32, error) {
	v, st := kernel.Active().RotationGetVelocity(r.port)
	if v == kernel.ErrValue {
		return 0, errcode.New(errcode.Rotation, st, "rotation.velocity", int(r.port))
	}
	return v, nil
}

// Reset zeroes the accumulated position.
func (r *RotationSensor) Reset() error {
	if v, st := kernel.Active().RotationReset(r.port); v == kernel.ErrValue {
		return errcode.New(errcode.Rotation, st, "rotation.reset", int(r.port))
	}
	return nil
}

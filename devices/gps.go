package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// GPS is the field-positioning sensor. Its onboard gyro recalibrates after
// initialisation, so reads report StillCalibrating for a couple of seconds;
// callers wait it out the same way they do for an IMU.
type GPS struct {
	port uint8
}

// NewGPS consumes the port token and initialises the sensor with the robot's
// starting pose on the field: position in metres from field centre, heading
// in degrees. The port stays consumed on failure.
func NewGPS(p ports.Port, x, y, heading float64) (*GPS, error) {
	g := &GPS{port: p.Index()}
	if v, st := kernel.Active().GpsInitialize(g.port, x, y, heading); v == kernel.ErrValue {
		return nil, errcode.New(errcode.GPS, st, "gps.new", int(g.port))
	}
	return g, nil
}

// Port returns the smart port the sensor occupies.
func (g *GPS) Port() uint8 { return g.port }

// SetPosition re-seeds the robot's pose, metres from field centre and
// heading in degrees.
func (g *GPS) SetPosition(x, y, heading float64) error {
	if v, st := kernel.Active().GpsSetPosition(g.port, x, y, heading); v == kernel.ErrValue {
		return errcode.New(errcode.GPS, st, "gps.set_position", int(g.port))
	}
	return nil
}

// Heading reads the field heading in degrees, 0..360.
func (g *GPS) Heading() (float64, error) {
	v, st := kernel.Active().GpsGetHeading(g.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.GPS, st, "gps.heading", int(g.port))
	}
	return v, nil
}

// Rotation reads the unbounded accumulated rotation in degrees.
func (g *GPS) Rotation() (float64, error) {
	v, st := kernel.Active().GpsGetRotation(g.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.GPS, st, "gps.rotation", int(g.port))
	}
	return v, nil
}

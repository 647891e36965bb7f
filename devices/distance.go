package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// DistanceSensor is the time-of-flight distance sensor.
type DistanceSensor struct {
	port uint8
}

// NewDistanceSensor consumes the port token. The sensor needs no
// configuration; the constructor verifies it responds. The port stays
// consumed on failure.
func NewDistanceSensor(p ports.Port) (*DistanceSensor, error) {
	d := &DistanceSensor{port: p.Index()}
	if v, st := kernel.Active().DistanceGet(d.port); v == kernel.ErrValue {
		return nil, errcode.New(errcode.Distance, st, "distance.new", int(d.port))
	}
	return d, nil
}

// Port returns the smart port the sensor occupies.
func (d *DistanceSensor) Port() uint8 { return d.port }

// Distance reads the measured distance in millimetres.
func (d *DistanceSensor) Distance() (int32, error) {
	v, st := kernel.Active().DistanceGet(d.port)
	if v == kernel.ErrValue {
		return 0, errcode.New(errcode.Distance, st, "distance.get", int(d.port))
	}
	return v, nil
}

// Confidence reads the measurement confidence, 0..63.
func (d *DistanceSensor) Confidence() (int32, error) {
	v, st := kernel.Active().DistanceGetConfidence(d.port)
	if v == kernel.ErrValue {
		return 0, errcode.New(errcode.Distance, st, "distance.confidence", int(d.port))
	}
	return v, nil
}

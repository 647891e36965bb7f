package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// IMU is the inertial sensor. After Calibrate the sensor reports
// StillCalibrating for a couple of seconds; callers wait it out at their own
// cadence, typically with an rtos select arm on IsCalibrating.
type IMU struct {
	port uint8
}

// NewIMU consumes the port token and starts a calibration. The port stays
// consumed on failure.
func NewIMU(p ports.Port) (*IMU, error) {
	m := &IMU{port: p.Index()}
	if err := m.Calibrate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Port returns the smart port the sensor occupies.
func (m *IMU) Port() uint8 { return m.port }

// Calibrate starts a calibration cycle. The sensor must be still until it
// completes.
func (m *IMU) Calibrate() error {
	if v, st := kernel.Active().ImuReset(m.port); v == kernel.ErrValue {
		return errcode.New(errcode.IMU, st, "imu.calibrate", int(m.port))
	}
	return nil
}

// IsCalibrating reports whether a calibration cycle is still running.
func (m *IMU) IsCalibrating() (bool, error) {
	v, st := kernel.Active().ImuGetStatus(m.port)
	if v == uint32(kernel.ErrValue) {
		return false, errcode.New(errcode.IMU, st, "imu.status", int(m.port))
	}
	return v&1 != 0, nil
}

// Heading reads the yaw heading in degrees, 0..360.
func (m *IMU) Heading() (float64, error) {
	v, st := kernel.Active().ImuGetHeading(m.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.IMU, st, "imu.heading", int(m.port))
	}
	return v, nil
}

// Rotation reads the unbounded accumulated rotation in degrees.
func (m *IMU) Rotation() (float64, error) {
	v, st := kernel.Active().ImuGetRotation(m.port)
	if v == kernel.ErrValueF {
		return 0, errcode.New(errcode.IMU, st, "imu.rotation", int(m.port))
	}
	return v, nil
}

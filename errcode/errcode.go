// Package errcode defines the typed errors surfaced by ports and devices.
// Each device class has a closed set of codes; the classifiers map the
// kernel's raw status space into that set at the call site that failed.
package errcode

import "strconv"

// Code is a stable device-error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Shared across classes.
	ResourceInUse Code = "resource_in_use"
	PortRange     Code = "port_range"
	OutOfMemory   Code = "out_of_memory"

	// Per-class "wrong device" codes.
	PortNotMotor    Code = "port_not_motor"
	PortNotIMU      Code = "port_not_imu"
	PortNotGPS      Code = "port_not_gps"
	PortNotRotation Code = "port_not_rotation"
	PortNotDistance Code = "port_not_distance"
	PortNotVision   Code = "port_not_vision"
	PortNotADI      Code = "port_not_adi"

	// Domain-specific conditions.
	StillCalibrating     Code = "still_calibrating"
	VisionUnknown        Code = "vision_unknown"
	VisionObjectsDeficit Code = "vision_objects_deficit"

	// Escape hatch for status codes outside the known contract.
	Unknown Code = "unknown"
)

// DeviceError carries a code plus the operation and port it came from.
type DeviceError struct {
	C    Code
	Op   string
	Port int
}

func (e *DeviceError) Error() string {
	s := e.Op + ": " + string(e.C)
	if e.Port > 0 {
		s += " (port " + strconv.Itoa(e.Port) + ")"
	}
	return s
}

func (e *DeviceError) Code() Code { return e.C }

// Is lets errors.Is match a DeviceError against a bare Code target.
func (e *DeviceError) Is(target error) bool {
	if c, ok := target.(Code); ok {
		return e.C == c
	}
	return false
}

// Of extracts a Code from an error, defaulting to Unknown.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Unknown
}

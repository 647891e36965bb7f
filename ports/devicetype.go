package ports

import "brainrtos-go/kernel"

// DeviceType is what the firmware registry knows to be on a smart port.
type DeviceType uint8

const (
	// DeviceTypeNone means no device connected or registered.
	DeviceTypeNone DeviceType = iota
	DeviceTypeMotor
	DeviceTypeRotation
	DeviceTypeIMU
	DeviceTypeDistance
	DeviceTypeRadio
	DeviceTypeVision
	DeviceTypeADI
	DeviceTypeOptical
	DeviceTypeGPS
	DeviceTypeSerial
	DeviceTypeUndefined
	// DeviceTypeUnknown is a registry code this layer does not recognise.
	DeviceTypeUnknown
)

// DeviceTypeFromRaw translates a registry code into a DeviceType.
func DeviceTypeFromRaw(raw uint32) DeviceType {
	switch raw {
	case kernel.DeviceTypeNone:
		return DeviceTypeNone
	case kernel.DeviceTypeMotor:
		return DeviceTypeMotor
	case kernel.DeviceTypeRotation:
		return DeviceTypeRotation
	case kernel.DeviceTypeIMU:
		return DeviceTypeIMU
	case kernel.DeviceTypeDistance:
		return DeviceTypeDistance
	case kernel.DeviceTypeRadio:
		return DeviceTypeRadio
	case kernel.DeviceTypeVision:
		return DeviceTypeVision
	case kernel.DeviceTypeADI:
		return DeviceTypeADI
	case kernel.DeviceTypeOptical:
		return DeviceTypeOptical
	case kernel.DeviceTypeGPS:
		return DeviceTypeGPS
	case kernel.DeviceTypeSerial:
		return DeviceTypeSerial
	case kernel.DeviceTypeUndefined:
		return DeviceTypeUndefined
	}
	return DeviceTypeUnknown
}

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeNone:
		return "none"
	case DeviceTypeMotor:
		return "motor"
	case DeviceTypeRotation:
		return "rotation"
	case DeviceTypeIMU:
		return "imu"
	case DeviceTypeDistance:
		return "distance"
	case DeviceTypeRadio:
		return "radio"
	case DeviceTypeVision:
		return "vision"
	case DeviceTypeADI:
		return "adi"
	case DeviceTypeOptical:
		return "optical"
	case DeviceTypeGPS:
		return "gps"
	case DeviceTypeSerial:
		return "serial"
	case DeviceTypeUndefined:
		return "undefined"
	}
	return "unknown"
}

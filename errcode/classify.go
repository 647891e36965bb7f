package errcode

import (
	"brainrtos-go/kernel"
	"brainrtos-go/x/assertx"
)

// Class selects which device's status contract a raw code is read against.
// The same status value means different things per calling context.
type Class uint8

const (
	Generic Class = iota
	Motor
	IMU
	GPS // same contract shape as the IMU, its own "wrong device" code
	Rotation
	Distance
	Vision
	ADI
)

// Classify maps a raw kernel status to the calling class's closed code set.
// A status outside the class's known set yields Unknown; with assertions
// enabled that is treated as a broken classifier/firmware contract instead.
func Classify(class Class, st kernel.Status) Code {
	switch class {
	case Motor:
		switch st {
		case kernel.StatusENoDev:
			return PortNotMotor
		case kernel.StatusENxio:
			return PortRange
		}
	case IMU:
		switch st {
		case kernel.StatusENoDev:
			return PortNotIMU
		case kernel.StatusENxio:
			return PortRange
		case kernel.StatusEAgain:
			return StillCalibrating
		}
	case GPS:
		switch st {
		case kernel.StatusENoDev:
			return PortNotGPS
		case kernel.StatusENxio:
			return PortRange
		case kernel.StatusEAgain:
			return StillCalibrating
		}
	case Rotation:
		switch st {
		case kernel.StatusENoDev:
			return PortNotRotation
		case kernel.StatusENxio:
			return PortRange
		}
	case Distance:
		switch st {
		case kernel.StatusENoDev:
			return PortNotDistance
		case kernel.StatusENxio:
			return PortRange
		}
	case Vision:
		switch st {
		case kernel.StatusENoDev:
			return PortNotVision
		case kernel.StatusENxio:
			return PortRange
		case kernel.StatusEHostDown, kernel.StatusEAgain:
			return VisionUnknown
		case kernel.StatusEDom:
			return VisionObjectsDeficit
		}
	case ADI:
		switch st {
		case kernel.StatusENxio:
			return PortRange
		case kernel.StatusEInval, kernel.StatusEAddrInUse:
			return PortNotADI
		}
	default: // Generic
		switch st {
		case kernel.StatusEAccess:
			return ResourceInUse
		case kernel.StatusENxio:
			return PortRange
		case kernel.StatusENoMem:
			return OutOfMemory
		}
	}
	assertx.Failf("errcode: unclassified status %d for class %d", int32(st), class)
	return Unknown
}

// New builds a DeviceError for a failed raw call.
func New(class Class, st kernel.Status, op string, port int) *DeviceError {
	return &DeviceError{C: Classify(class, st), Op: op, Port: port}
}

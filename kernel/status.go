package kernel

import "math"

// Status is the errno-style code reported alongside the sentinel value when a
// raw device call fails. Values follow the newlib numbering the firmware uses.
type Status int32

const (
	StatusOK Status = 0

	StatusEAgain      Status = 11  // still calibrating / try again
	StatusENoMem      Status = 12  // kernel out of memory
	StatusEAccess     Status = 13  // resource already claimed
	StatusENxio       Status = 6   // port out of range
	StatusENoDev      Status = 19  // no such device on that port
	StatusEInval      Status = 22  // invalid argument / not an ADI port
	StatusEDom        Status = 33  // argument outside the sensed domain
	StatusEAddrInUse  Status = 112 // ADI port bound elsewhere
	StatusEHostDown   Status = 117 // device present but unresponsive
)

// ErrValue is the fixed sentinel raw integer calls return on failure.
const ErrValue int32 = 0x7FFFFFFF

// ErrValueF is the sentinel for raw floating-point calls.
var ErrValueF = math.Inf(1)

// Device type codes as reported by the kernel's device registry.
const (
	DeviceTypeNone      uint32 = 0
	DeviceTypeMotor     uint32 = 2
	DeviceTypeRotation  uint32 = 4
	DeviceTypeIMU       uint32 = 6
	DeviceTypeDistance  uint32 = 7
	DeviceTypeRadio     uint32 = 8
	DeviceTypeVision    uint32 = 11
	DeviceTypeADI       uint32 = 12
	DeviceTypeOptical   uint32 = 16
	DeviceTypeGPS       uint32 = 20
	DeviceTypeSerial    uint32 = 129
	DeviceTypeUndefined uint32 = 255
)

// ADI port configuration codes for AdiPortSetConfig.
const (
	AdiConfigAnalogIn int32 = iota
	AdiConfigAnalogOut
	AdiConfigDigitalIn
	AdiConfigDigitalOut
)

// Devices is the raw device-call surface of the kernel. Every call validates
// the port itself and reports failure as the sentinel value plus a Status;
// this layer never interprets the port beyond passing it through.
type Devices interface {
	// RegistryPluggedType reports what the firmware currently sees plugged
	// into a smart port. Diagnostic only; it races with hot-plugging.
	RegistryPluggedType(port uint8) uint32

	MotorMove(port uint8, voltage int32) (int32, Status)
	MotorMoveVelocity(port uint8, velocity int32) (int32, Status)
	MotorMoveAbsolute(port uint8, position float64, velocity int32) (int32, Status)
	MotorGetPosition(port uint8) (float64, Status)
	MotorGetActualVelocity(port uint8) (float64, Status)
	MotorSetBrakeMode(port uint8, mode int32) (int32, Status)
	MotorSetReversed(port uint8, reversed int32) (int32, Status)
	MotorSetGearing(port uint8, gearset int32) (int32, Status)
	MotorSetEncoderUnits(port uint8, units int32) (int32, Status)
	MotorTarePosition(port uint8) (int32, Status)

	ImuReset(port uint8) (int32, Status)
	ImuGetStatus(port uint8) (uint32, Status)
	ImuGetHeading(port uint8) (float64, Status)
	ImuGetRotation(port uint8) (float64, Status)

	GpsInitialize(port uint8, x, y, heading float64) (int32, Status)
	GpsSetPosition(port uint8, x, y, heading float64) (int32, Status)
	GpsGetHeading(port uint8) (float64, Status)
	GpsGetRotation(port uint8) (float64, Status)

	RotationGetPosition(port uint8) (int32, Status)
	RotationGetVelocity(port uint8) (int32, Status)
	RotationReset(port uint8) (int32, Status)
	RotationSetReversed(port uint8, reversed int32) (int32, Status)

	DistanceGet(port uint8) (int32, Status)
	DistanceGetConfidence(port uint8) (int32, Status)

	VisionGetObjectCount(port uint8) (int32, Status)

	AdiPortSetConfig(ext, port uint8, config int32) (int32, Status)
	AdiPortGetValue(ext, port uint8) (int32, Status)
	AdiPortSetValue(ext, port uint8, value int32) (int32, Status)
	AdiLedSet(ext, port uint8, colours []uint32) (int32, Status)

	ControllerGetAnalog(id, channel int32) (int32, Status)
	ControllerGetDigital(id, button int32) (int32, Status)

	CompetitionGetStatus() uint32
}

package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"brainrtos-go/kernel"
)

// slot is one smart port's registry entry. Exactly one device pointer is
// non-nil, matching typ.
type slot struct {
	typ   uint32
	motor *MotorState
	imu   *IMUState
	gps   *GPSState
	rot   *RotationState
	dist  *DistanceState
	vis   *VisionState
	adi   *adiState
}

// MotorState is the observable state of a simulated motor. Tests read the
// command side and may preload the feedback side.
type MotorState struct {
	Voltage    int32
	TargetVel  int32
	TargetPos  float64
	Position   float64
	Velocity   float64
	BrakeMode  int32
	Gearing    int32
	Units      int32
	Reversed   bool
	Tares      int
}

// IMUState simulates the inertial sensor, including its calibration window.
type IMUState struct {
	Heading    float64
	Rotation   float64
	calibUntil time.Time
}

// GPSState simulates the field-positioning sensor. Its onboard gyro
// recalibrates after every Initialize, so reads report busy for the same
// window an inertial sensor would.
type GPSState struct {
	X          float64
	Y          float64
	Heading    float64
	Rotation   float64
	calibUntil time.Time
}

type RotationState struct {
	Position int32 // centidegrees
	Velocity int32
	Reversed bool
}

type DistanceState struct {
	DistanceMM int32
	Confidence int32
}

type VisionState struct {
	Objects int32
}

type adiPin struct {
	config int32
	value  int32
}

type adiState struct {
	pins [9]adiPin // 1-based
	led  map[uint8][]uint32
}

func newAdiState() *adiState {
	return &adiState{led: map[uint8][]uint32{}}
}

// ControllerState holds the stick and button state fed in by tests or the
// interactive shell.
type ControllerState struct {
	Analog  [2][4]int32
	Digital [2]uint32 // bitset per controller id
}

// SetAnalog sets one stick channel for controller id (0 master, 1 partner).
func (b *Brain) SetAnalog(id, channel int, v int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id >= 0 && id < 2 && channel >= 0 && channel < 4 {
		b.controller.Analog[id][channel] = v
	}
}

// SetDigital sets one button for controller id.
func (b *Brain) SetDigital(id, button int, pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id < 0 || id >= 2 || button < 0 || button > 31 {
		return
	}
	if pressed {
		b.controller.Digital[id] |= 1 << button
	} else {
		b.controller.Digital[id] &^= 1 << button
	}
}

// ----------------------------------------------------------------------------
// Plugging (test/host setup surface)
// ----------------------------------------------------------------------------

func (b *Brain) plug(port uint8, s *slot) error {
	if port < 1 || port > smartPortMax {
		return fmt.Errorf("sim: port %d out of range", port)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.slots[port] != nil {
		return fmt.Errorf("sim: port %d already occupied", port)
	}
	b.slots[port] = s
	b.log.Debug("device plugged", zap.Uint8("port", port), zap.Uint32("type", s.typ))
	return nil
}

// Unplug removes whatever occupies a smart port.
func (b *Brain) Unplug(port uint8) {
	if port < 1 || port > smartPortMax {
		return
	}
	b.mu.Lock()
	b.slots[port] = nil
	b.mu.Unlock()
}

func (b *Brain) PlugMotor(port uint8) (*MotorState, error) {
	m := &MotorState{}
	return m, b.plug(port, &slot{typ: kernel.DeviceTypeMotor, motor: m})
}

func (b *Brain) PlugIMU(port uint8) (*IMUState, error) {
	m := &IMUState{}
	return m, b.plug(port, &slot{typ: kernel.DeviceTypeIMU, imu: m})
}

func (b *Brain) PlugGPS(port uint8) (*GPSState, error) {
	g := &GPSState{}
	return g, b.plug(port, &slot{typ: kernel.DeviceTypeGPS, gps: g})
}

func (b *Brain) PlugRotation(port uint8) (*RotationState, error) {
	r := &RotationState{}
	return r, b.plug(port, &slot{typ: kernel.DeviceTypeRotation, rot: r})
}

func (b *Brain) PlugDistance(port uint8) (*DistanceState, error) {
	d := &DistanceState{}
	return d, b.plug(port, &slot{typ: kernel.DeviceTypeDistance, dist: d})
}

func (b *Brain) PlugVision(port uint8) (*VisionState, error) {
	v := &VisionState{}
	return v, b.plug(port, &slot{typ: kernel.DeviceTypeVision, vis: v})
}

// PlugExpander attaches a tri-port expander, giving the port its own ADI bank.
func (b *Brain) PlugExpander(port uint8) error {
	return b.plug(port, &slot{typ: kernel.DeviceTypeADI, adi: newAdiState()})
}

// ----------------------------------------------------------------------------
// Raw device calls
// ----------------------------------------------------------------------------

func (b *Brain) RegistryPluggedType(port uint8) uint32 {
	if port < 1 || port > internalAdiPort {
		return kernel.DeviceTypeUndefined
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil {
		return kernel.DeviceTypeNone
	}
	return s.typ
}

func (b *Brain) withMotor(port uint8, f func(*MotorState) int32) (int32, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return kernel.ErrValue, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.motor == nil {
		return kernel.ErrValue, kernel.StatusENoDev
	}
	return f(s.motor), kernel.StatusOK
}

func (b *Brain) MotorMove(port uint8, voltage int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.Voltage = voltage; return 1 })
}

func (b *Brain) MotorMoveVelocity(port uint8, velocity int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.TargetVel = velocity; return 1 })
}

func (b *Brain) MotorMoveAbsolute(port uint8, position float64, velocity int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 {
		m.TargetPos = position
		m.TargetVel = velocity
		return 1
	})
}

func (b *Brain) MotorGetPosition(port uint8) (float64, kernel.Status) {
	var pos float64
	_, st := b.withMotor(port, func(m *MotorState) int32 { pos = m.Position; return 1 })
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	return pos, kernel.StatusOK
}

func (b *Brain) MotorGetActualVelocity(port uint8) (float64, kernel.Status) {
	var vel float64
	_, st := b.withMotor(port, func(m *MotorState) int32 { vel = m.Velocity; return 1 })
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	return vel, kernel.StatusOK
}

func (b *Brain) MotorSetBrakeMode(port uint8, mode int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.BrakeMode = mode; return 1 })
}

func (b *Brain) MotorSetReversed(port uint8, reversed int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.Reversed = reversed != 0; return 1 })
}

func (b *Brain) MotorSetGearing(port uint8, gearset int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.Gearing = gearset; return 1 })
}

func (b *Brain) MotorSetEncoderUnits(port uint8, units int32) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 { m.Units = units; return 1 })
}

func (b *Brain) MotorTarePosition(port uint8) (int32, kernel.Status) {
	return b.withMotor(port, func(m *MotorState) int32 {
		m.Position = 0
		m.Tares++
		return 1
	})
}

func (b *Brain) imuAt(port uint8) (*IMUState, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return nil, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.imu == nil {
		return nil, kernel.StatusENoDev
	}
	return s.imu, kernel.StatusOK
}

// imuCalibrationWindow is how long a reset keeps the sensor busy.
const imuCalibrationWindow = 2 * time.Second

func (b *Brain) ImuReset(port uint8) (int32, kernel.Status) {
	m, st := b.imuAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	m.calibUntil = b.clk.Now().Add(imuCalibrationWindow)
	b.mu.Unlock()
	return 1, kernel.StatusOK
}

func (b *Brain) ImuGetStatus(port uint8) (uint32, kernel.Status) {
	m, st := b.imuAt(port)
	if st != kernel.StatusOK {
		return uint32(kernel.ErrValue), st
	}
	b.mu.Lock()
	calibrating := b.clk.Now().Before(m.calibUntil)
	b.mu.Unlock()
	if calibrating {
		return 1, kernel.StatusOK
	}
	return 0, kernel.StatusOK
}

func (b *Brain) ImuGetHeading(port uint8) (float64, kernel.Status) {
	m, st := b.imuAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clk.Now().Before(m.calibUntil) {
		return kernel.ErrValueF, kernel.StatusEAgain
	}
	return m.Heading, kernel.StatusOK
}

func (b *Brain) ImuGetRotation(port uint8) (float64, kernel.Status) {
	m, st := b.imuAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clk.Now().Before(m.calibUntil) {
		return kernel.ErrValueF, kernel.StatusEAgain
	}
	return m.Rotation, kernel.StatusOK
}

func (b *Brain) gpsAt(port uint8) (*GPSState, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return nil, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.gps == nil {
		return nil, kernel.StatusENoDev
	}
	return s.gps, kernel.StatusOK
}

func (b *Brain) GpsInitialize(port uint8, x, y, heading float64) (int32, kernel.Status) {
	g, st := b.gpsAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	g.X, g.Y, g.Heading = x, y, heading
	g.calibUntil = b.clk.Now().Add(imuCalibrationWindow)
	b.mu.Unlock()
	return 1, kernel.StatusOK
}

func (b *Brain) GpsSetPosition(port uint8, x, y, heading float64) (int32, kernel.Status) {
	g, st := b.gpsAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	g.X, g.Y, g.Heading = x, y, heading
	b.mu.Unlock()
	return 1, kernel.StatusOK
}

func (b *Brain) GpsGetHeading(port uint8) (float64, kernel.Status) {
	g, st := b.gpsAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clk.Now().Before(g.calibUntil) {
		return kernel.ErrValueF, kernel.StatusEAgain
	}
	return g.Heading, kernel.StatusOK
}

func (b *Brain) GpsGetRotation(port uint8) (float64, kernel.Status) {
	g, st := b.gpsAt(port)
	if st != kernel.StatusOK {
		return kernel.ErrValueF, st
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clk.Now().Before(g.calibUntil) {
		return kernel.ErrValueF, kernel.StatusEAgain
	}
	return g.Rotation, kernel.StatusOK
}

func (b *Brain) withRotation(port uint8, f func(*RotationState) int32) (int32, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return kernel.ErrValue, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.rot == nil {
		return kernel.ErrValue, kernel.StatusENoDev
	}
	return f(s.rot), kernel.StatusOK
}

func (b *Brain) RotationGetPosition(port uint8) (int32, kernel.Status) {
	return b.withRotation(port, func(r *RotationState) int32 {
		if r.Reversed {
			return -r.Position
		}
		return r.Position
	})
}

func (b *Brain) RotationGetVelocity(port uint8) (int32, kernel.Status) {
	return b.withRotation(port, func(r *RotationState) int32 { return r.Velocity })
}

func (b *Brain) RotationReset(port uint8) (int32, kernel.Status) {
	return b.withRotation(port, func(r *RotationState) int32 { r.Position = 0; return 1 })
}

func (b *Brain) RotationSetReversed(port uint8, reversed int32) (int32, kernel.Status) {
	return b.withRotation(port, func(r *RotationState) int32 { r.Reversed = reversed != 0; return 1 })
}

func (b *Brain) DistanceGet(port uint8) (int32, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return kernel.ErrValue, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.dist == nil {
		return kernel.ErrValue, kernel.StatusENoDev
	}
	return s.dist.DistanceMM, kernel.StatusOK
}

func (b *Brain) DistanceGetConfidence(port uint8) (int32, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return kernel.ErrValue, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.dist == nil {
		return kernel.ErrValue, kernel.StatusENoDev
	}
	return s.dist.Confidence, kernel.StatusOK
}

func (b *Brain) VisionGetObjectCount(port uint8) (int32, kernel.Status) {
	if port < 1 || port > smartPortMax {
		return kernel.ErrValue, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[port]
	if s == nil || s.vis == nil {
		return kernel.ErrValue, kernel.StatusENoDev
	}
	if s.vis.Objects == 0 {
		return kernel.ErrValue, kernel.StatusEDom
	}
	return s.vis.Objects, kernel.StatusOK
}

// ----------------------------------------------------------------------------
// ADI / tri-ports
// ----------------------------------------------------------------------------

func (b *Brain) adiAt(ext, port uint8) (*adiState, kernel.Status) {
	if ext < 1 || ext > internalAdiPort || port < 1 || port > 8 {
		return nil, kernel.StatusENxio
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slots[ext]
	if s == nil || s.adi == nil {
		return nil, kernel.StatusEAddrInUse
	}
	return s.adi, kernel.StatusOK
}

func (b *Brain) AdiPortSetConfig(ext, port uint8, config int32) (int32, kernel.Status) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	if config < kernel.AdiConfigAnalogIn || config > kernel.AdiConfigDigitalOut {
		return kernel.ErrValue, kernel.StatusEInval
	}
	b.mu.Lock()
	a.pins[port].config = config
	b.mu.Unlock()
	return 1, kernel.StatusOK
}

func (b *Brain) AdiPortGetValue(ext, port uint8) (int32, kernel.Status) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.pins[port].value, kernel.StatusOK
}

func (b *Brain) AdiPortSetValue(ext, port uint8, value int32) (int32, kernel.Status) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	a.pins[port].value = value
	b.mu.Unlock()
	return 1, kernel.StatusOK
}

func (b *Brain) AdiLedSet(ext, port uint8, colours []uint32) (int32, kernel.Status) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return kernel.ErrValue, st
	}
	b.mu.Lock()
	a.led[port] = append([]uint32(nil), colours...)
	b.mu.Unlock()
	return int32(len(colours)), kernel.StatusOK
}

// AdiPin exposes a pin's config and value for assertions and the host shell.
func (b *Brain) AdiPin(ext, port uint8) (config, value int32, ok bool) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return 0, 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.pins[port].config, a.pins[port].value, true
}

// SetAdiValue drives an input pin from the outside (a pressed bumper, an
// analog pot).
func (b *Brain) SetAdiValue(ext, port uint8, value int32) {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return
	}
	b.mu.Lock()
	a.pins[port].value = value
	b.mu.Unlock()
}

// LedBuffer returns the last colour buffer written to an ADI LED strip.
func (b *Brain) LedBuffer(ext, port uint8) []uint32 {
	a, st := b.adiAt(ext, port)
	if st != kernel.StatusOK {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return a.led[port]
}

// ----------------------------------------------------------------------------
// Controller + competition
// ----------------------------------------------------------------------------

func (b *Brain) ControllerGetAnalog(id, channel int32) (int32, kernel.Status) {
	if id < 0 || id > 1 || channel < 0 || channel > 3 {
		return kernel.ErrValue, kernel.StatusEInval
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller.Analog[id][channel], kernel.StatusOK
}

func (b *Brain) ControllerGetDigital(id, button int32) (int32, kernel.Status) {
	if id < 0 || id > 1 || button < 0 || button > 31 {
		return kernel.ErrValue, kernel.StatusEInval
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.controller.Digital[id]&(1<<button) != 0 {
		return 1, kernel.StatusOK
	}
	return 0, kernel.StatusOK
}

func (b *Brain) CompetitionGetStatus() uint32 {
	return b.comp.Load()
}

// CompMode is a simulated competition-switch position.
type CompMode uint8

const (
	ModeDisabled CompMode = iota
	ModeAutonomous
	ModeOpcontrol
)

// StartSetup runs the setup callback on its own task, as firmware does at
// program start.
func (b *Brain) StartSetup() {
	b.mu.Lock()
	cb := b.cbs.Setup
	b.mu.Unlock()
	if cb != nil {
		b.TaskCreate(cb, "setup", 0x2000, 8)
	}
}

// SetMode flips the competition switch and dispatches the matching lifecycle
// callback on a fresh task.
func (b *Brain) SetMode(m CompMode) {
	var bits uint32 = kernel.CompConnected
	b.mu.Lock()
	var cb func()
	var name string
	switch m {
	case ModeAutonomous:
		bits |= kernel.CompAutonomous
		cb, name = b.cbs.Autonomous, "autonomous"
	case ModeOpcontrol:
		cb, name = b.cbs.Opcontrol, "opcontrol"
	default:
		bits |= kernel.CompDisabled
		cb, name = b.cbs.Disabled, "disabled"
	}
	b.mu.Unlock()
	b.comp.Store(bits)
	b.log.Info("competition mode", zap.String("mode", name))
	if cb != nil {
		b.TaskCreate(cb, name, 0x2000, 8)
	}
}

package devices

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/kernel/sim"
	"brainrtos-go/ports"
)

// arena is shared by the whole test binary; each test takes distinct port
// numbers so the tokens never collide.
var arena = ports.Initialize()

func install(t *testing.T) *sim.Brain {
	t.Helper()
	b := sim.New()
	kernel.Install(b)
	return b
}

func takePort(t *testing.T, index uint8) ports.Port {
	t.Helper()
	p, err := arena.Take(index)
	require.NoError(t, err)
	return p
}

func TestNewMotorAppliesConfiguration(t *testing.T) {
	b := install(t)
	state, err := b.PlugMotor(1)
	require.NoError(t, err)

	m, err := NewMotor(takePort(t, 1), true, GearsetBlue, UnitsRotations)
	require.NoError(t, err)
	require.Equal(t, uint8(1), m.Port())
	require.True(t, state.Reversed)
	require.Equal(t, int32(GearsetBlue), state.Gearing)
	require.Equal(t, int32(UnitsRotations), state.Units)
	require.Equal(t, int32(BrakeCoast), state.BrakeMode)
}

func TestMotorCommandsAndReadback(t *testing.T) {
	b := install(t)
	state, err := b.PlugMotor(2)
	require.NoError(t, err)

	m, err := NewMotorDefault(takePort(t, 2))
	require.NoError(t, err)

	require.NoError(t, m.Move(64))
	require.Equal(t, int32(64), state.Voltage)

	require.NoError(t, m.MoveVelocity(150))
	require.Equal(t, int32(150), state.TargetVel)

	require.NoError(t, m.MoveAbsolute(720, 100))
	require.Equal(t, 720.0, state.TargetPos)

	require.NoError(t, m.Stop())
	require.Equal(t, int32(0), state.TargetVel)

	state.Position = 98.5
	pos, err := m.Position()
	require.NoError(t, err)
	require.Equal(t, 98.5, pos)

	state.Velocity = 42
	vel, err := m.Velocity()
	require.NoError(t, err)
	require.Equal(t, 42.0, vel)

	require.NoError(t, m.TarePosition())
	require.Equal(t, 0.0, state.Position)

	require.NoError(t, m.SetBrakeMode(BrakeHold))
	require.Equal(t, int32(BrakeHold), state.BrakeMode)
}

func TestMotorVelocityClampedToGearset(t *testing.T) {
	b := install(t)
	state, err := b.PlugMotor(3)
	require.NoError(t, err)

	m, err := NewMotor(takePort(t, 3), false, GearsetRed, UnitsDegrees)
	require.NoError(t, err)

	// The red cartridge tops out at 100 rpm; over-asking is clamped.
	require.NoError(t, m.MoveVelocity(500))
	require.Equal(t, int32(100), state.TargetVel)
	require.NoError(t, m.MoveVelocity(-500))
	require.Equal(t, int32(-100), state.TargetVel)
}

func TestMotorOnEmptyPort(t *testing.T) {
	install(t)
	_, err := NewMotorDefault(takePort(t, 4))
	require.True(t, errors.Is(err, errcode.PortNotMotor))
}

func TestIMUCalibrationLifecycle(t *testing.T) {
	mock := clock.NewMock()
	b := sim.New(sim.WithClock(mock))
	kernel.Install(b)
	state, err := b.PlugIMU(5)
	require.NoError(t, err)
	state.Heading = 90
	state.Rotation = 450

	m, err := NewIMU(takePort(t, 5))
	require.NoError(t, err)

	busy, err := m.IsCalibrating()
	require.NoError(t, err)
	require.True(t, busy)

	_, err = m.Heading()
	require.True(t, errors.Is(err, errcode.StillCalibrating))

	mock.Add(3 * time.Second)
	busy, err = m.IsCalibrating()
	require.NoError(t, err)
	require.False(t, busy)

	h, err := m.Heading()
	require.NoError(t, err)
	require.Equal(t, 90.0, h)
	r, err := m.Rotation()
	require.NoError(t, err)
	require.Equal(t, 450.0, r)
}

func TestIMUOnEmptyPort(t *testing.T) {
	install(t)
	_, err := NewIMU(takePort(t, 6))
	require.True(t, errors.Is(err, errcode.PortNotIMU))
}

func TestGPSInitialiseAndReads(t *testing.T) {
	mock := clock.NewMock()
	b := sim.New(sim.WithClock(mock))
	kernel.Install(b)
	state, err := b.PlugGPS(12)
	require.NoError(t, err)

	g, err := NewGPS(takePort(t, 12), 1.5, -0.5, 90)
	require.NoError(t, err)
	require.Equal(t, uint8(12), g.Port())

	// The onboard gyro recalibrates after initialisation.
	_, err = g.Heading()
	require.True(t, errors.Is(err, errcode.StillCalibrating))

	mock.Add(3 * time.Second)
	h, err := g.Heading()
	require.NoError(t, err)
	require.Equal(t, 90.0, h)
	require.Equal(t, 1.5, state.X)
	require.Equal(t, -0.5, state.Y)

	require.NoError(t, g.SetPosition(0, 0, 180))
	h, err = g.Heading()
	require.NoError(t, err)
	require.Equal(t, 180.0, h)

	state.Rotation = 540
	r, err := g.Rotation()
	require.NoError(t, err)
	require.Equal(t, 540.0, r)
}

func TestGPSOnEmptyPort(t *testing.T) {
	install(t)
	_, err := NewGPS(takePort(t, 13), 0, 0, 0)
	require.True(t, errors.Is(err, errcode.PortNotGPS))
}

func TestRotationSensor(t *testing.T) {
	b := install(t)
	state, err := b.PlugRotation(7)
	require.NoError(t, err)
	state.Position = 1800
	state.Velocity = 360

	r, err := NewRotationSensor(takePort(t, 7), Reverse)
	require.NoError(t, err)
	require.True(t, state.Reversed)

	pos, err := r.Position()
	require.NoError(t, err)
	require.Equal(t, int32(-1800), pos)

	vel, err := r.Velocity()
	require.NoError(t, err)
	require.Equal(t, int32(360), vel)

	require.NoError(t, r.Reset())
	require.Equal(t, int32(0), state.Position)
}

func TestDistanceSensor(t *testing.T) {
	b := install(t)
	state, err := b.PlugDistance(8)
	require.NoError(t, err)
	state.DistanceMM = 250
	state.Confidence = 63

	d, err := NewDistanceSensor(takePort(t, 8))
	require.NoError(t, err)

	mm, err := d.Distance()
	require.NoError(t, err)
	require.Equal(t, int32(250), mm)

	c, err := d.Confidence()
	require.NoError(t, err)
	require.Equal(t, int32(63), c)
}

func TestDistanceOnEmptyPort(t *testing.T) {
	install(t)
	_, err := NewDistanceSensor(takePort(t, 9))
	require.True(t, errors.Is(err, errcode.PortNotDistance))
}

func TestVisionObjectCount(t *testing.T) {
	b := install(t)
	state, err := b.PlugVision(10)
	require.NoError(t, err)

	v, err := NewVision(takePort(t, 10))
	require.NoError(t, err)

	// An empty field of view is a distinct condition, not a zero count.
	_, err = v.ObjectCount()
	require.True(t, errors.Is(err, errcode.VisionObjectsDeficit))

	state.Objects = 2
	n, err := v.ObjectCount()
	require.NoError(t, err)
	require.Equal(t, int32(2), n)
}

func TestVisionOnEmptyPort(t *testing.T) {
	install(t)
	_, err := NewVision(takePort(t, 11))
	require.True(t, errors.Is(err, errcode.PortNotVision))
}

func TestLedStrip(t *testing.T) {
	b := install(t)
	tp, err := arena.TakeTri(1)
	require.NoError(t, err)

	s, err := NewLedStrip(tp)
	require.NoError(t, err)

	require.NoError(t, s.Set([]Colour{Red, RGB(0, 255, 0), Blue}))
	require.Equal(t, []uint32{0xFF0000, 0x00FF00, 0x0000FF},
		b.LedBuffer(ports.InternalExpanderPort, 1))

	require.NoError(t, s.Clear(2))
	require.Equal(t, []uint32{0, 0}, b.LedBuffer(ports.InternalExpanderPort, 1))
}

func TestColourChannels(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	require.Equal(t, uint8(0x12), c.R())
	require.Equal(t, uint8(0x34), c.G())
	require.Equal(t, uint8(0x56), c.B())
}

func TestController(t *testing.T) {
	b := install(t)
	c := NewController(Master)

	b.SetAnalog(0, int(LeftY), -100)
	v, err := c.Analog(LeftY)
	require.NoError(t, err)
	require.Equal(t, int8(-100), v)

	b.SetDigital(0, int(ButtonA), true)
	pressed, err := c.Digital(ButtonA)
	require.NoError(t, err)
	require.True(t, pressed)

	pressed, err = c.Digital(ButtonL1)
	require.NoError(t, err)
	require.False(t, pressed)

	// The partner handset is independent state.
	p := NewController(Partner)
	v, err = p.Analog(LeftY)
	require.NoError(t, err)
	require.Equal(t, int8(0), v)
}

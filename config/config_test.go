package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"brainrtos-go/kernel"
	"brainrtos-go/kernel/sim"
)

const sampleLayout = `
ports:
  1:
    type: motor
    reversed: true
    gearset: blue
  4:
    type: imu
  6:
    type: gps
  10:
    type: expander
adi:
  2: digital_in
controller: true
`

func TestParse(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)
	require.Len(t, l.Ports, 4)
	require.Equal(t, Device{Type: "motor", Reversed: true, Gearset: "blue"}, l.Ports[1])
	require.Equal(t, "imu", l.Ports[4].Type)
	require.Equal(t, "digital_in", l.Adi[2])
	require.True(t, l.Controller)
	require.NoError(t, l.Validate())
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("ports: {}\nprots: {}\n"))
	require.Error(t, err)
}

func TestParseRejectsMalformedYaml(t *testing.T) {
	_, err := Parse([]byte("ports: [not a map"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLayout), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "motor", l.Ports[1].Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateReportsEveryFault(t *testing.T) {
	l := &Layout{
		Ports: map[int]Device{
			0:  {Type: "motor"},             // port out of range
			3:  {Type: "sonar"},             // unknown device type
			5:  {Type: "imu", Gearset: "x"}, // gearset on a non-motor
			22: {Type: "motor"},             // port out of range
		},
		Adi: map[int]string{
			0: "digital_in", // pin out of range
			2: "pwm",        // unknown mode
		},
	}
	err := l.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 6)
}

func TestApplyPopulatesBrain(t *testing.T) {
	b := sim.New()
	kernel.Install(b)

	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)
	require.NoError(t, l.Apply(b))

	require.Equal(t, kernel.DeviceTypeMotor, b.RegistryPluggedType(1))
	require.Equal(t, kernel.DeviceTypeIMU, b.RegistryPluggedType(4))
	require.Equal(t, kernel.DeviceTypeGPS, b.RegistryPluggedType(6))
	require.Equal(t, kernel.DeviceTypeADI, b.RegistryPluggedType(10))

	// A second apply hits occupied ports.
	require.Error(t, l.Apply(b))
}

func TestApplyRefusesInvalidLayout(t *testing.T) {
	b := sim.New()
	l := &Layout{Ports: map[int]Device{3: {Type: "sonar"}}}
	require.Error(t, l.Apply(b))
	require.Equal(t, kernel.DeviceTypeNone, b.RegistryPluggedType(3))
}

package ports

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
)

// Tri-port mode wrappers. Converting a TriPort consumes the token and limits
// the pin to one purpose; the wrapper types below are the only way to touch
// the pin afterwards.
//
// Raw get/set value calls cannot usefully fail once the mode is set: the
// only condition is a disconnected pin, and nothing guarantees the signal
// arrives anyway. Reads treat the sentinel as low/zero.

func setMode(t TriPort, config int32, op string) error {
	v, st := kernel.Active().AdiPortSetConfig(t.ext, t.pin, config)
	if v == kernel.ErrValue {
		return errcode.New(errcode.ADI, st, op, int(t.pin))
	}
	return nil
}

// AnalogIn is a tri-port limited to reading its 12-bit ADC.
type AnalogIn struct {
	t TriPort
}

// IntoAnalogIn converts the token into an analog input.
func (t TriPort) IntoAnalogIn() (AnalogIn, error) {
	if err := setMode(t, kernel.AdiConfigAnalogIn, "triport.into_analog_in"); err != nil {
		return AnalogIn{}, err
	}
	return AnalogIn{t: t}, nil
}

// Read returns the ADC value, 0..4095.
func (a AnalogIn) Read() int32 {
	v, _ := kernel.Active().AdiPortGetValue(a.t.ext, a.t.pin)
	if v == kernel.ErrValue {
		return 0
	}
	return v
}

// AnalogOut is a tri-port limited to writing an analog value.
type AnalogOut struct {
	t TriPort
}

// IntoAnalogOut converts the token into an analog output.
func (t TriPort) IntoAnalogOut() (AnalogOut, error) {
	if err := setMode(t, kernel.AdiConfigAnalogOut, "triport.into_analog_out"); err != nil {
		return AnalogOut{}, err
	}
	return AnalogOut{t: t}, nil
}

// Write sets the output value. Valid values are 0..4095.
func (a AnalogOut) Write(value uint16) {
	kernel.Active().AdiPortSetValue(a.t.ext, a.t.pin, int32(value))
}

// DigitalIn is a tri-port limited to reading a logic level.
type DigitalIn struct {
	t TriPort
}

// IntoDigitalIn converts the token into a digital input.
func (t TriPort) IntoDigitalIn() (DigitalIn, error) {
	if err := setMode(t, kernel.AdiConfigDigitalIn, "triport.into_digital_in"); err != nil {
		return DigitalIn{}, err
	}
	return DigitalIn{t: t}, nil
}

// Read returns true for HIGH.
func (d DigitalIn) Read() bool {
	v, _ := kernel.Active().AdiPortGetValue(d.t.ext, d.t.pin)
	return v != kernel.ErrValue && v != 0
}

// DigitalOut is a tri-port limited to writing a logic level.
type DigitalOut struct {
	t TriPort
}

// IntoDigitalOut converts the token into a digital output.
func (t TriPort) IntoDigitalOut() (DigitalOut, error) {
	if err := setMode(t, kernel.AdiConfigDigitalOut, "triport.into_digital_out"); err != nil {
		return DigitalOut{}, err
	}
	return DigitalOut{t: t}, nil
}

// Write drives the pin HIGH (true) or LOW (false).
func (d DigitalOut) Write(value bool) {
	var v int32
	if value {
		v = 1
	}
	kernel.Active().AdiPortSetValue(d.t.ext, d.t.pin, v)
}
